package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/eventbus"
	"github.com/hupe1980/cmdmesh/logging"
	"github.com/hupe1980/cmdmesh/registry"
)

// Event types published by the controller around component dispatch.
const (
	EventAgentBeforeRun = "agent.before_run"
	EventAgentAfterRun  = "agent.after_run"
	EventAgentError     = "agent.error"
	EventToolBeforeUse  = "tool.before_use"
	EventToolAfterUse   = "tool.after_use"
	EventToolError      = "tool.error"
	EventError          = "error"
)

// Request is the mutable context passed through the middleware pipeline.
// A middleware may set Response or return an error to short-circuit the
// remaining middleware and routing.
type Request struct {
	Command  string
	Args     string
	Session  *core.Session
	Response string
	Err      error
}

// Middleware is one stage of the interception pipeline. Returning a non-nil
// error stores it as the request error and stops the pipeline.
type Middleware func(req *Request) error

// Options configures a Controller.
type Options struct {
	// Registry resolves agents and tools. A fresh one is created when nil.
	Registry *registry.Registry
	// Bus publishes lifecycle events. A fresh one is created when nil.
	Bus *eventbus.Bus
	// Logger receives orchestration logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// SessionHistoryLimit bounds each session's command history.
	SessionHistoryLimit int
}

// Controller routes textual commands to registered agents and tools,
// wrapping each call with middleware and event bus notifications.
type Controller struct {
	registry            *registry.Registry
	bus                 *eventbus.Bus
	logger              logging.Logger
	middleware          []Middleware
	sessionHistoryLimit int

	mu           sync.RWMutex
	sessions     map[string]*core.Session
	sessionOrder []string
	current      *core.Session
}

// New constructs a Controller with an initial current session.
func New(optFns ...func(o *Options)) *Controller {
	opts := Options{
		Logger:              logging.NoOpLogger{},
		SessionHistoryLimit: core.DefaultSessionHistoryLimit,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Registry == nil {
		opts.Registry = registry.New(opts.Logger)
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New(func(o *eventbus.Options) { o.Logger = opts.Logger })
	}

	c := &Controller{
		registry:            opts.Registry,
		bus:                 opts.Bus,
		logger:              opts.Logger,
		sessionHistoryLimit: opts.SessionHistoryLimit,
		sessions:            map[string]*core.Session{},
	}
	c.NewSession()
	return c
}

// Registry returns the controller's component registry.
func (c *Controller) Registry() *registry.Registry { return c.registry }

// Bus returns the controller's event bus.
func (c *Controller) Bus() *eventbus.Bus { return c.bus }

// RegisterMiddleware appends a stage to the ordered pipeline.
func (c *Controller) RegisterMiddleware(m Middleware) {
	c.middleware = append(c.middleware, m)
}

// NewSession creates a session, registers it and makes it current.
func (c *Controller) NewSession() *core.Session {
	session := core.NewSession(c.sessionHistoryLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[session.ID] = session
	c.sessionOrder = append(c.sessionOrder, session.ID)
	c.current = session
	return session
}

// CurrentSession returns the session commands are currently recorded in.
func (c *Controller) CurrentSession() *core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Sessions returns all sessions in creation order.
func (c *Controller) Sessions() []*core.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.Session, 0, len(c.sessionOrder))
	for _, id := range c.sessionOrder {
		out = append(out, c.sessions[id])
	}
	return out
}

// SwitchSession makes the session with the given id current.
func (c *Controller) SwitchSession(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session: %s", id)
	}
	c.current = session
	return nil
}

// ProcessCommand runs the request through the middleware pipeline and, when
// no middleware produced a response or error, dispatches it via the router.
// A history entry is appended to the current session regardless of outcome.
// This method never panics and never returns an error: failures are rendered
// into the returned string.
func (c *Controller) ProcessCommand(ctx context.Context, command, args string) string {
	req := &Request{Command: command, Args: args, Session: c.CurrentSession()}

	c.runPipeline(req)
	if req.Response == "" && req.Err == nil {
		c.route(ctx, req)
	}

	entry := core.HistoryEntry{Command: command, Args: args, Response: req.Response}
	if req.Err != nil {
		entry.Error = req.Err.Error()
	}
	req.Session.AddHistory(entry)

	if req.Err != nil {
		return fmt.Sprintf("Error: %v", req.Err)
	}
	return req.Response
}

// runPipeline executes the middleware stages in registration order, stopping
// early once a stage sets a response or an error. A panicking stage is
// recorded as the request error; either failure mode publishes an "error"
// event and never reaches the router.
func (c *Controller) runPipeline(req *Request) {
	defer func() {
		if r := recover(); r != nil {
			req.Err = fmt.Errorf("middleware panic: %v", r)
			c.publishRequestError(req)
		}
	}()

	for _, m := range c.middleware {
		if err := m(req); err != nil {
			req.Err = err
			c.publishRequestError(req)
			return
		}
		if req.Response != "" || req.Err != nil {
			return
		}
	}
}

func (c *Controller) publishRequestError(req *Request) {
	c.logger.Error("command failed", "command", req.Command, "error", req.Err.Error())
	c.bus.Publish(eventbus.NewEvent(EventError, map[string]any{
		"message": req.Err.Error(),
		"command": req.Command,
		"args":    req.Args,
	}))
}

// route resolves the command verb to an agent or tool dispatch. Unknown
// names and verbs are normal responses, not errors.
func (c *Controller) route(ctx context.Context, req *Request) {
	switch req.Command {
	case "run":
		c.routeAgent(ctx, req)
	case "use":
		c.routeTool(ctx, req)
	default:
		req.Response = fmt.Sprintf("Unknown command: %s", req.Command)
	}
}

func (c *Controller) routeAgent(ctx context.Context, req *Request) {
	name, rest := splitToken(req.Args)
	if name == "" {
		req.Response = "Usage: run <agent> <input>"
		return
	}
	name = strings.ToLower(name)

	agent := c.registry.GetAgent(name)
	if agent == nil {
		req.Response = fmt.Sprintf("Unknown agent: %s", name)
		return
	}

	c.bus.Publish(eventbus.NewEvent(EventAgentBeforeRun, map[string]any{
		"agent": name,
		"args":  rest,
	}))

	result, err := c.callAgent(ctx, agent, rest)
	if err != nil {
		c.bus.Publish(eventbus.NewEvent(EventAgentError, map[string]any{
			"agent": name,
			"args":  rest,
			"error": err.Error(),
		}))
		req.Err = err
		return
	}

	c.bus.Publish(eventbus.NewEvent(EventAgentAfterRun, map[string]any{
		"agent":  name,
		"args":   rest,
		"result": result,
	}))
	req.Response = result
}

// callAgent invokes the agent, preferring the non-blocking path. Agents
// already convert internal failures into strings; the recover here is the
// safety net for genuinely unexpected failures in foreign implementations.
func (c *Controller) callAgent(ctx context.Context, agent core.Agent, input string) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panic: %v", r)
		}
	}()

	if aa, ok := agent.(core.AsyncAgent); ok {
		return <-aa.RunAsync(ctx, input), nil
	}
	return agent.Run(ctx, input), nil
}

func (c *Controller) routeTool(ctx context.Context, req *Request) {
	target, rest := splitToken(req.Args)
	if target != "tool" {
		req.Response = "Usage: use tool <tool> <args>"
		return
	}
	name, rest := splitToken(rest)
	if name == "" {
		req.Response = "Usage: use tool <tool> <args>"
		return
	}
	name = strings.ToLower(name)

	tool := c.registry.GetTool(name)
	if tool == nil {
		req.Response = fmt.Sprintf("Unknown tool: %s", name)
		return
	}

	c.bus.Publish(eventbus.NewEvent(EventToolBeforeUse, map[string]any{
		"tool": name,
		"args": rest,
	}))

	result, err := c.callTool(ctx, tool, ParseArgs(rest))
	if err != nil {
		c.bus.Publish(eventbus.NewEvent(EventToolError, map[string]any{
			"tool":  name,
			"args":  rest,
			"error": err.Error(),
		}))
		req.Err = err
		return
	}

	c.bus.Publish(eventbus.NewEvent(EventToolAfterUse, map[string]any{
		"tool":   name,
		"args":   rest,
		"result": result,
	}))
	req.Response = fmt.Sprint(result)
}

// callTool invokes the tool, preferring the non-blocking path. Per the
// asymmetric contract, tool errors surface here and are translated by the
// caller; the recover guards against foreign implementations that panic
// instead of returning an error.
func (c *Controller) callTool(ctx context.Context, tool core.Tool, args map[string]string) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panic: %v", r)
		}
	}()

	if at, ok := tool.(core.AsyncTool); ok {
		res := <-at.ExecuteAsync(ctx, args)
		return res.Value, res.Err
	}
	return tool.Execute(ctx, args)
}

// splitToken splits off the first whitespace-delimited token, returning it
// and the trimmed remainder.
func splitToken(s string) (token, rest string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}
