package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cmdmesh/agent"
	"github.com/hupe1980/cmdmesh/eventbus"
	"github.com/hupe1980/cmdmesh/tool"
)

func newTestController() *Controller {
	c := New()
	c.Registry().RegisterAgent("help", agent.NewHelpAgent())

	ft := tool.NewFileTool()
	ft.Grant("filesystem")
	c.Registry().RegisterTool("file", ft)
	return c
}

// recordTypes subscribes to every event and collects the observed types.
func recordTypes(c *Controller) *[]string {
	var types []string
	c.Bus().Subscribe(eventbus.Wildcard, func(e eventbus.Event) {
		types = append(types, e.Type)
	})
	return &types
}

func TestProcessCommand_RunsAgentAndAppendsHistory(t *testing.T) {
	c := newTestController()
	before := c.CurrentSession().HistoryLen()

	out := c.ProcessCommand(context.Background(), "run", "help")
	assert.Contains(t, out, "list agents")

	hist := c.CurrentSession().History()
	require.Len(t, hist, before+1)
	last := hist[len(hist)-1]
	assert.Equal(t, "run", last.Command)
	assert.Equal(t, "help", last.Args)
	assert.Equal(t, out, last.Response)
	assert.Empty(t, last.Error)
}

func TestProcessCommand_UnknownAgentPublishesNoAgentEvents(t *testing.T) {
	c := newTestController()
	types := recordTypes(c)

	out := c.ProcessCommand(context.Background(), "run", "missingagent x")
	assert.Equal(t, "Unknown agent: missingagent", out)
	assert.Empty(t, *types)
	// Still exactly one history entry.
	assert.Equal(t, 1, c.CurrentSession().HistoryLen())
}

func TestProcessCommand_AgentEventsBracketTheCall(t *testing.T) {
	c := newTestController()
	types := recordTypes(c)

	c.ProcessCommand(context.Background(), "run", "help code")
	assert.Equal(t, []string{EventAgentBeforeRun, EventAgentAfterRun}, *types)

	events := c.Bus().RecentEvents(EventAgentAfterRun, 1)
	require.Len(t, events, 1)
	assert.Equal(t, "help", events[0].Data["agent"])
	assert.Equal(t, "code", events[0].Data["args"])
	assert.NotEmpty(t, events[0].Data["result"])
}

func TestProcessCommand_ToolRoundTrip(t *testing.T) {
	c := newTestController()
	path := filepath.Join(t.TempDir(), "a.txt")

	out := c.ProcessCommand(context.Background(), "use", "tool file action=write path="+path+" content=hi")
	assert.Contains(t, out, "Wrote")

	out = c.ProcessCommand(context.Background(), "use", "tool file action=read path="+path)
	assert.Equal(t, "hi", out)
}

func TestProcessCommand_ToolErrorPublishedAndTranslated(t *testing.T) {
	c := newTestController()
	types := recordTypes(c)

	out := c.ProcessCommand(context.Background(), "use", "tool file action=read path="+filepath.Join(t.TempDir(), "nope.txt"))
	assert.Contains(t, out, "Error:")
	assert.Equal(t, []string{EventToolBeforeUse, EventToolError}, *types)

	// The failure is recorded in history, not raised.
	last := c.CurrentSession().History()[0]
	assert.NotEmpty(t, last.Error)
}

func TestProcessCommand_UnknownToolAndVerb(t *testing.T) {
	c := newTestController()

	assert.Equal(t, "Unknown tool: hammer",
		c.ProcessCommand(context.Background(), "use", "tool hammer x=1"))
	assert.Equal(t, "Usage: use tool <tool> <args>",
		c.ProcessCommand(context.Background(), "use", "hammer"))
	assert.Equal(t, "Unknown command: fly",
		c.ProcessCommand(context.Background(), "fly", "to the moon"))
}

func TestProcessCommand_MiddlewareShortCircuitsRouting(t *testing.T) {
	c := newTestController()
	types := recordTypes(c)
	routed := false

	c.RegisterMiddleware(func(req *Request) error {
		return errors.New("blocked by policy")
	})
	c.RegisterMiddleware(func(req *Request) error {
		routed = true
		return nil
	})

	out := c.ProcessCommand(context.Background(), "run", "help")
	assert.Equal(t, "Error: blocked by policy", out)
	assert.False(t, routed, "later middleware must not run after an error")
	assert.Equal(t, []string{EventError}, *types, "router must not be reached")

	last := c.CurrentSession().History()[0]
	assert.Equal(t, "blocked by policy", last.Error)
}

func TestProcessCommand_MiddlewareResponseShortCircuits(t *testing.T) {
	c := newTestController()
	types := recordTypes(c)

	c.RegisterMiddleware(func(req *Request) error {
		if req.Command == "run" {
			req.Response = "cached"
		}
		return nil
	})

	assert.Equal(t, "cached", c.ProcessCommand(context.Background(), "run", "help"))
	assert.Empty(t, *types)
}

func TestProcessCommand_MiddlewarePanicIsCaught(t *testing.T) {
	c := newTestController()
	types := recordTypes(c)

	c.RegisterMiddleware(func(req *Request) error {
		panic("bad middleware")
	})

	out := c.ProcessCommand(context.Background(), "run", "help")
	assert.Contains(t, out, "Error: middleware panic: bad middleware")
	assert.Equal(t, []string{EventError}, *types)
}

func TestProcessCommand_MiddlewareMutatesSessionContext(t *testing.T) {
	c := newTestController()
	c.RegisterMiddleware(func(req *Request) error {
		req.Session.SetContext("last_command", req.Command)
		return nil
	})

	c.ProcessCommand(context.Background(), "run", "help")
	v, ok := c.CurrentSession().GetContext("last_command")
	require.True(t, ok)
	assert.Equal(t, "run", v)
}

func TestController_SessionManagement(t *testing.T) {
	c := newTestController()
	first := c.CurrentSession()

	second := c.NewSession()
	assert.Equal(t, second.ID, c.CurrentSession().ID)
	assert.Len(t, c.Sessions(), 2)

	require.NoError(t, c.SwitchSession(first.ID))
	assert.Equal(t, first.ID, c.CurrentSession().ID)
	assert.Error(t, c.SwitchSession("nope"))

	// History lands in the current session only.
	c.ProcessCommand(context.Background(), "run", "help")
	assert.Equal(t, 1, first.HistoryLen())
	assert.Equal(t, 0, second.HistoryLen())
}

func TestProcessCommand_EmptyAgentName(t *testing.T) {
	c := newTestController()
	assert.Equal(t, "Usage: run <agent> <input>",
		c.ProcessCommand(context.Background(), "run", "   "))
}
