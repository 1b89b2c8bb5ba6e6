package tool

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
	_ core.Tool      = (*FileTool)(nil)
	_ core.AsyncTool = (*FileTool)(nil)
	_ core.Tool      = (*CommandTool)(nil)
	_ core.Tool      = (*SpecsTool)(nil)
	_ core.Tool      = (*WebhookTool)(nil)
)

// fakeTool embeds Base around a configurable exec func for contract tests.
type fakeTool struct {
	Base
}

func newFakeTool(meta core.Metadata, exec ExecFunc, optFns ...func(o *BaseOptions)) *fakeTool {
	t := &fakeTool{}
	t.Base = NewBase(meta, exec, optFns...)
	return t
}

func TestBase_ExecuteRecordsLifecycle(t *testing.T) {
	ft := newFakeTool(core.Metadata{Name: "fake"}, func(ctx context.Context, args map[string]string) (any, error) {
		return args["x"] + "!", nil
	})

	result, err := ft.Execute(context.Background(), map[string]string{"x": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi!", result)

	recs := ft.Trace().Records()
	require.Len(t, recs, 1)
	assert.Equal(t, core.StatusCompleted, recs[0].Status)
	assert.Equal(t, "hi!", recs[0].Result)
	assert.Equal(t, "hi", recs[0].Parameters["x"])
}

func TestBase_ExecuteSurfacesErrorAfterRecording(t *testing.T) {
	boom := errors.New("boom")
	ft := newFakeTool(core.Metadata{Name: "fake"}, func(context.Context, map[string]string) (any, error) {
		return nil, boom
	})

	_, err := ft.Execute(context.Background(), nil)
	require.ErrorIs(t, err, boom)

	recs := ft.Trace().Records()
	require.Len(t, recs, 1)
	assert.Equal(t, core.StatusFailed, recs[0].Status)
	assert.Equal(t, "boom", recs[0].Error)
}

func TestBase_ExecuteRecoversPanicsAsToolError(t *testing.T) {
	ft := newFakeTool(core.Metadata{Name: "fake"}, func(context.Context, map[string]string) (any, error) {
		panic("unexpected")
	})

	_, err := ft.Execute(context.Background(), nil)
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecutionError, toolErr.Code)
	assert.Equal(t, core.StatusFailed, ft.Trace().Records()[0].Status)
}

func TestBase_PermissionGateVerifiesOnce(t *testing.T) {
	calls := 0
	ft := newFakeTool(core.Metadata{
		Name:                "fake",
		RequiredPermissions: []string{"shell"},
	}, func(context.Context, map[string]string) (any, error) {
		calls++
		return "ok", nil
	})

	// Gate fails before any permission is granted; no record is opened.
	_, err := ft.Execute(context.Background(), nil)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodePermissionDenied, toolErr.Code)
	assert.Zero(t, calls)
	assert.Zero(t, ft.Trace().Len())

	ft.Grant("shell")
	_, err = ft.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Once satisfied the check is cached and not re-verified.
	_, err = ft.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBase_AsyncFallbackMatchesBlockingPath(t *testing.T) {
	ft := newFakeTool(core.Metadata{Name: "fake"}, func(ctx context.Context, args map[string]string) (any, error) {
		return "result:" + args["in"], nil
	})

	sync, err := ft.Execute(context.Background(), map[string]string{"in": "a"})
	require.NoError(t, err)

	res := <-ft.ExecuteAsync(context.Background(), map[string]string{"in": "a"})
	require.NoError(t, res.Err)
	assert.Equal(t, sync, res.Value)
	assert.Equal(t, 2, ft.Trace().Len())
}

func TestBase_AsyncPrefersNativeImplementation(t *testing.T) {
	ft := newFakeTool(core.Metadata{Name: "fake"},
		func(context.Context, map[string]string) (any, error) { return "blocking", nil },
		func(o *BaseOptions) {
			o.ExecAsync = func(context.Context, map[string]string) (any, error) { return "native", nil }
		})

	res := <-ft.ExecuteAsync(context.Background(), nil)
	require.NoError(t, res.Err)
	assert.Equal(t, "native", res.Value)
}

func TestBase_TraceBound(t *testing.T) {
	ft := newFakeTool(core.Metadata{Name: "fake"}, func(context.Context, map[string]string) (any, error) {
		return "ok", nil
	})

	for i := 0; i < TraceLimit+10; i++ {
		_, err := ft.Execute(context.Background(), nil)
		require.NoError(t, err)
	}
	assert.Equal(t, TraceLimit, ft.Trace().Len())
}

func TestToolError_Error(t *testing.T) {
	withCode := NewToolError("file", "no such file", CodeExecutionError)
	assert.Equal(t, "tool error [EXECUTION_ERROR] in file: no such file", withCode.Error())

	withoutCode := &ToolError{Tool: "file", Message: "no such file"}
	assert.Equal(t, "tool error in file: no such file", withoutCode.Error())
}
