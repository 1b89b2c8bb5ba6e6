package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmdmesh/core"
)

// Interface compliance (compile-time assertions).
var (
	_ core.Agent      = (*HelpAgent)(nil)
	_ core.AsyncAgent = (*HelpAgent)(nil)
	_ core.Agent      = (*CodeAgent)(nil)
	_ core.Agent      = (*DiagnosticsAgent)(nil)
)

// fakeAgent embeds Base around a configurable exec func for contract tests.
type fakeAgent struct {
	Base
}

func newFakeAgent(meta core.Metadata, exec ExecFunc, optFns ...func(o *BaseOptions)) *fakeAgent {
	a := &fakeAgent{}
	a.Base = NewBase(meta, exec, optFns...)
	return a
}

// nullTool satisfies core.Tool for dependency gate tests.
type nullTool struct{ name string }

func (n *nullTool) Metadata() core.Metadata { return core.Metadata{Name: n.name} }
func (n *nullTool) Execute(context.Context, map[string]string) (any, error) {
	return "", nil
}

func TestBase_RunRecordsLifecycle(t *testing.T) {
	a := newFakeAgent(core.Metadata{Name: "echo"}, func(ctx context.Context, input string) (string, error) {
		return "echo: " + input, nil
	})

	out := a.Run(context.Background(), "hi")
	assert.Equal(t, "echo: hi", out)

	recs := a.Trace().Records()
	require.Len(t, recs, 1)
	assert.Equal(t, core.StatusCompleted, recs[0].Status)
	assert.Equal(t, "echo: hi", recs[0].Result)
	assert.Equal(t, "hi", recs[0].Parameters["input"])
}

func TestBase_RunAbsorbsErrors(t *testing.T) {
	a := newFakeAgent(core.Metadata{Name: "broken"}, func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	})

	out := a.Run(context.Background(), "x")
	assert.Equal(t, "Error in agent broken: boom", out)
	assert.Equal(t, core.StatusFailed, a.Trace().Records()[0].Status)
}

func TestBase_RunAbsorbsPanics(t *testing.T) {
	a := newFakeAgent(core.Metadata{Name: "wild"}, func(context.Context, string) (string, error) {
		panic("unexpected")
	})

	out := a.Run(context.Background(), "x")
	assert.Equal(t, "Error in agent wild: unexpected", out)
	assert.Equal(t, core.StatusFailed, a.Trace().Records()[0].Status)
}

func TestBase_DependencyGateVerifiesOnce(t *testing.T) {
	calls := 0
	a := newFakeAgent(core.Metadata{
		Name:          "needy",
		RequiredTools: []string{"file", "command"},
	}, func(context.Context, string) (string, error) {
		calls++
		return "ok", nil
	})

	// Gate fails with a descriptive result; execution never starts and no
	// record is opened.
	out := a.Run(context.Background(), "x")
	assert.Contains(t, out, "missing required tools")
	assert.Contains(t, out, "file")
	assert.Zero(t, calls)
	assert.Zero(t, a.Trace().Len())

	a.RegisterTool("file", &nullTool{name: "file"})
	a.RegisterTool("command", &nullTool{name: "command"})
	assert.Equal(t, "ok", a.Run(context.Background(), "x"))
	assert.Equal(t, 1, calls)
}

func TestBase_AsyncFallbackMatchesBlockingPath(t *testing.T) {
	a := newFakeAgent(core.Metadata{Name: "echo"}, func(ctx context.Context, input string) (string, error) {
		return "echo: " + input, nil
	})

	sync := a.Run(context.Background(), "same input")
	async := <-a.RunAsync(context.Background(), "same input")
	assert.Equal(t, sync, async)
	assert.Equal(t, 2, a.Trace().Len())
}

func TestBase_AsyncPrefersNativeImplementation(t *testing.T) {
	a := newFakeAgent(core.Metadata{Name: "dual"},
		func(context.Context, string) (string, error) { return "blocking", nil },
		func(o *BaseOptions) {
			o.ExecAsync = func(context.Context, string) (string, error) { return "native", nil }
		})

	assert.Equal(t, "blocking", a.Run(context.Background(), ""))
	assert.Equal(t, "native", <-a.RunAsync(context.Background(), ""))
}

func TestHelpAgent_Topics(t *testing.T) {
	a := NewHelpAgent()

	general := a.Run(context.Background(), "")
	assert.Contains(t, general, "list agents")
	assert.Contains(t, general, "use tool")

	assert.Contains(t, a.Run(context.Background(), "code"), "run code <task>")
	assert.Contains(t, a.Run(context.Background(), "diagnostics"), "check cpu")
	assert.Contains(t, a.Run(context.Background(), "tools"), "action=write")
	assert.Contains(t, a.Run(context.Background(), "bogus"), "Unknown topic")
}
