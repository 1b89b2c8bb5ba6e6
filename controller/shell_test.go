package controller

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_DispatchBuiltins(t *testing.T) {
	s := NewShell(newTestController())
	ctx := context.Background()

	out, quit := s.Dispatch(ctx, "")
	assert.False(t, quit)
	assert.Contains(t, out, "Please enter a command")

	out, quit = s.Dispatch(ctx, "help")
	assert.False(t, quit)
	assert.Contains(t, out, "run <agent> <input>")

	out, quit = s.Dispatch(ctx, "?")
	assert.False(t, quit)
	assert.Contains(t, out, "session switch <id>")

	out, quit = s.Dispatch(ctx, "exit")
	assert.True(t, quit)
	assert.Equal(t, "Exiting...", out)

	_, quit = s.Dispatch(ctx, "QUIT")
	assert.True(t, quit)
}

func TestShell_DispatchList(t *testing.T) {
	s := NewShell(newTestController())
	ctx := context.Background()

	out, _ := s.Dispatch(ctx, "list agents")
	assert.Equal(t, "Available agents: help", out)

	out, _ = s.Dispatch(ctx, "list tools")
	assert.Equal(t, "Available tools: file", out)

	out, _ = s.Dispatch(ctx, "list")
	assert.Contains(t, out, "Usage: list")

	out, _ = s.Dispatch(ctx, "list gizmos")
	assert.Contains(t, out, "Unknown list option: gizmos")
}

func TestShell_DispatchForwardsToController(t *testing.T) {
	s := NewShell(newTestController())

	out, quit := s.Dispatch(context.Background(), "RUN help")
	assert.False(t, quit)
	assert.Contains(t, out, "list agents")

	out, _ = s.Dispatch(context.Background(), "fly somewhere")
	assert.Equal(t, "Unknown command: fly", out)
}

func TestShell_SessionCommands(t *testing.T) {
	ctrl := newTestController()
	s := NewShell(ctrl)
	ctx := context.Background()
	first := ctrl.CurrentSession()

	out, _ := s.Dispatch(ctx, "session new")
	assert.Contains(t, out, "Started new session")
	assert.NotEqual(t, first.ID, ctrl.CurrentSession().ID)

	out, _ = s.Dispatch(ctx, "session list")
	assert.Contains(t, out, "Sessions:")
	assert.Contains(t, out, first.ID)
	assert.Contains(t, out, "* "+ctrl.CurrentSession().ID)

	out, _ = s.Dispatch(ctx, "session switch "+first.ID)
	assert.Equal(t, "Switched to session "+first.ID, out)
	assert.Equal(t, first.ID, ctrl.CurrentSession().ID)

	out, _ = s.Dispatch(ctx, "session switch nope")
	assert.Equal(t, "Unknown session: nope", out)

	out, _ = s.Dispatch(ctx, "session switch")
	assert.Equal(t, "Usage: session switch <id>", out)

	out, _ = s.Dispatch(ctx, "session info")
	assert.Contains(t, out, "Session "+first.ID)

	out, _ = s.Dispatch(ctx, "session bogus")
	assert.Contains(t, out, "Usage: session new")
}

func TestShell_RunLoop(t *testing.T) {
	s := NewShell(newTestController())

	in := strings.NewReader("list agents\nexit\nlist tools\n")
	var out strings.Builder
	require.NoError(t, s.Run(context.Background(), in, &out))

	got := out.String()
	assert.Contains(t, got, "Available agents: help")
	assert.Contains(t, got, "Exiting...")
	assert.NotContains(t, got, "Available tools", "loop must stop at exit")
}
