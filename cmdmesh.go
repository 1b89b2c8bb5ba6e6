// Package cmdmesh provides a high-level façade over the controller,
// registry and event bus, enabling rapid construction of command-driven
// assistants. Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding defaults)
//  2. Registering agents and tools (the built-in set is wired by default)
//  3. Dispatching commands via Process, or running the interactive Shell
//
// The façade delegates routing to controller.Controller while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and
// a real model backend.
package cmdmesh

import (
	"context"
	"io"
	"time"

	"github.com/hupe1980/cmdmesh/agent"
	"github.com/hupe1980/cmdmesh/controller"
	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/eventbus"
	"github.com/hupe1980/cmdmesh/logging"
	"github.com/hupe1980/cmdmesh/model"
	"github.com/hupe1980/cmdmesh/registry"
	"github.com/hupe1980/cmdmesh/tool"
)

// Options configures the Mesh instance.
type Options struct {
	// Logger receives structured logs from every layer. Defaults to NoOp.
	Logger logging.Logger

	// Model backs the code agent's generation. When nil the agent falls
	// back to a static placeholder snippet.
	Model model.Model

	// GrantedPermissions are handed to every built-in tool. Defaults to
	// the full set the built-ins require.
	GrantedPermissions []string

	// SessionHistoryLimit bounds per-session command history.
	SessionHistoryLimit int

	// EventHistoryLimit bounds the event bus history.
	EventHistoryLimit int

	// WebhookURL overrides the webhook tool's endpoint.
	WebhookURL string

	// CommandTimeout bounds shell command execution.
	CommandTimeout time.Duration

	// SkipDefaults suppresses registration of the built-in agents and
	// tools, leaving an empty registry for the caller to populate.
	SkipDefaults bool
}

// Mesh is the high-level façade aggregating the controller and its services.
type Mesh struct {
	opts  Options
	ctrl  *controller.Controller
	shell *controller.Shell
}

// New creates a Mesh with the built-in agents and tools registered and
// granted the default permissions. Overrides are applied via option
// functions.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Logger:              logging.NoOpLogger{},
		GrantedPermissions:  []string{"filesystem", "shell", "network"},
		SessionHistoryLimit: core.DefaultSessionHistoryLimit,
		EventHistoryLimit:   eventbus.DefaultHistoryLimit,
		CommandTimeout:      tool.DefaultCommandTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	reg := registry.New(opts.Logger)
	bus := eventbus.New(func(o *eventbus.Options) {
		o.Logger = opts.Logger
		o.HistoryLimit = opts.EventHistoryLimit
	})
	ctrl := controller.New(func(o *controller.Options) {
		o.Registry = reg
		o.Bus = bus
		o.Logger = opts.Logger
		o.SessionHistoryLimit = opts.SessionHistoryLimit
	})

	m := &Mesh{opts: opts, ctrl: ctrl, shell: controller.NewShell(ctrl)}
	if !opts.SkipDefaults {
		m.registerDefaults()
	}
	return m
}

// registerDefaults wires the built-in tool set, grants permissions, and
// registers the built-in agents with their tool dependencies attached.
func (m *Mesh) registerDefaults() {
	fileTool := tool.NewFileTool(func(o *tool.FileToolOptions) {
		o.Logger = m.opts.Logger
	})
	commandTool := tool.NewCommandTool(func(o *tool.CommandToolOptions) {
		o.Logger = m.opts.Logger
		o.Timeout = m.opts.CommandTimeout
	})
	specsTool := tool.NewSpecsTool(func(o *tool.SpecsToolOptions) {
		o.Logger = m.opts.Logger
	})
	webhookTool := tool.NewWebhookTool(func(o *tool.WebhookToolOptions) {
		o.Logger = m.opts.Logger
		if m.opts.WebhookURL != "" {
			o.URL = m.opts.WebhookURL
		}
	})

	for _, t := range []interface {
		core.Tool
		Grant(permissions ...string)
	}{fileTool, commandTool, specsTool, webhookTool} {
		t.Grant(m.opts.GrantedPermissions...)
	}

	m.ctrl.Registry().RegisterTool("file", fileTool)
	m.ctrl.Registry().RegisterTool("command", commandTool)
	m.ctrl.Registry().RegisterTool("specs", specsTool)
	m.ctrl.Registry().RegisterTool("webhook", webhookTool)

	codeAgent := agent.NewCodeAgent(func(o *agent.CodeAgentOptions) {
		o.Logger = m.opts.Logger
		o.Model = m.opts.Model
	})
	codeAgent.RegisterTool("file", fileTool)

	diagAgent := agent.NewDiagnosticsAgent(func(o *agent.DiagnosticsAgentOptions) {
		o.Logger = m.opts.Logger
	})
	diagAgent.RegisterTool("specs", specsTool)
	diagAgent.RegisterTool("command", commandTool)

	m.ctrl.Registry().RegisterAgent("code", codeAgent)
	m.ctrl.Registry().RegisterAgent("diagnostics", diagAgent)
	m.ctrl.Registry().RegisterAgent("help", agent.NewHelpAgent(func(o *agent.HelpAgentOptions) {
		o.Logger = m.opts.Logger
	}))
}

// Controller exposes the underlying controller for middleware registration
// and session management.
func (m *Mesh) Controller() *controller.Controller { return m.ctrl }

// Registry exposes the component registry.
func (m *Mesh) Registry() *registry.Registry { return m.ctrl.Registry() }

// Bus exposes the event bus for subscriptions and history inspection.
func (m *Mesh) Bus() *eventbus.Bus { return m.ctrl.Bus() }

// Process dispatches one command synchronously and returns the rendered
// response. It never returns an error: failures are part of the response.
func (m *Mesh) Process(ctx context.Context, command, args string) string {
	return m.ctrl.ProcessCommand(ctx, command, args)
}

// ProcessAsync dispatches one command on a goroutine, returning a channel
// that yields the single rendered response.
func (m *Mesh) ProcessAsync(ctx context.Context, command, args string) <-chan string {
	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		ch <- m.ctrl.ProcessCommand(ctx, command, args)
	}()
	return ch
}

// Run starts the interactive shell loop on the given reader and writer,
// returning when the input is exhausted or an exit command is entered.
func (m *Mesh) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	return m.shell.Run(ctx, r, w)
}
