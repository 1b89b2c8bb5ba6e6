package cmdmesh

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmdmesh/controller"
	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/eventbus"
)

func TestNew_RegistersDefaults(t *testing.T) {
	m := New()

	assert.Equal(t, []string{"code", "diagnostics", "help"}, m.Registry().GetNames(core.CategoryAgent))
	assert.Equal(t, []string{"file", "command", "specs", "webhook"}, m.Registry().GetNames(core.CategoryTool))
}

func TestNew_SkipDefaults(t *testing.T) {
	m := New(func(o *Options) { o.SkipDefaults = true })

	assert.Empty(t, m.Registry().GetNames(core.CategoryAgent))
	assert.Empty(t, m.Registry().GetNames(core.CategoryTool))
}

func TestMesh_ProcessEndToEnd(t *testing.T) {
	m := New()
	path := filepath.Join(t.TempDir(), "note.txt")

	out := m.Process(context.Background(), "use", "tool file action=write path="+path+" content=hi")
	assert.Contains(t, out, "Wrote 2 bytes")

	out = m.Process(context.Background(), "use", "tool file action=read path="+path)
	assert.Equal(t, "hi", out)
}

func TestMesh_CodeAgentWritesPlaceholder(t *testing.T) {
	t.Chdir(t.TempDir())
	m := New()

	out := m.Process(context.Background(), "run", "code build a countdown timer")
	assert.Contains(t, out, "Saved code to generated_code.js")

	data, err := os.ReadFile("generated_code.js")
	require.NoError(t, err)
	assert.Contains(t, string(data), "build a countdown timer")
}

func TestMesh_ProcessAsyncMatchesSync(t *testing.T) {
	m := New()

	sync := m.Process(context.Background(), "run", "help")
	async := <-m.ProcessAsync(context.Background(), "run", "help")
	assert.Equal(t, sync, async)
}

func TestMesh_MiddlewareAndEventsVisible(t *testing.T) {
	m := New()

	var seen []string
	m.Bus().Subscribe(eventbus.Wildcard, func(e eventbus.Event) {
		seen = append(seen, e.Type)
	})
	m.Controller().RegisterMiddleware(func(req *controller.Request) error {
		req.Session.SetContext("audited", true)
		return nil
	})

	m.Process(context.Background(), "run", "help")
	assert.Equal(t, []string{controller.EventAgentBeforeRun, controller.EventAgentAfterRun}, seen)

	v, ok := m.Controller().CurrentSession().GetContext("audited")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestMesh_RunShellLoop(t *testing.T) {
	m := New()

	in := strings.NewReader("list tools\nexit\n")
	var out strings.Builder
	require.NoError(t, m.Run(context.Background(), in, &out))
	assert.Contains(t, out.String(), "Available tools: file, command, specs, webhook")
}
