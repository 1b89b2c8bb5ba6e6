// Package agent implements the agent side of the shared execution contract
// and the built-in agents (code, diagnostics, help).
//
// Agents are terminal: their output is the user-facing text, so the contract
// base absorbs every internal failure — including panics — and renders it as
// a descriptive string. The Controller never needs to handle an agent error.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// TraceLimit bounds each agent's retained execution records.
const TraceLimit = 100

// ExecFunc is the agent-specific logic wrapped by the contract base.
type ExecFunc func(ctx context.Context, input string) (string, error)

// Base bundles the shared agent lifecycle: dependency gating, execution
// tracing, failure translation and async fallback. Embed it in concrete
// agent implementations and supply the execution function at construction.
type Base struct {
	meta      core.Metadata
	tools     map[string]core.Tool
	depsOK    bool
	trace     *core.Trace
	logger    logging.Logger
	exec      ExecFunc
	execAsync ExecFunc // optional native non-blocking implementation
}

// BaseOptions configures an agent Base.
type BaseOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// ExecAsync supplies a native non-blocking implementation. When nil the
	// blocking implementation is run on a worker goroutine instead.
	ExecAsync ExecFunc
}

// NewBase constructs the contract base for an agent with the given metadata
// and execution function.
func NewBase(meta core.Metadata, exec ExecFunc, optFns ...func(o *BaseOptions)) Base {
	opts := BaseOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return Base{
		meta:      meta,
		tools:     map[string]core.Tool{},
		trace:     core.NewTrace(TraceLimit),
		logger:    opts.Logger,
		exec:      exec,
		execAsync: opts.ExecAsync,
	}
}

// Metadata returns the immutable agent descriptor.
func (b *Base) Metadata() core.Metadata { return b.meta }

// RegisterTool wires a tool the agent may use. Required tools must be wired
// before the first run.
func (b *Base) RegisterTool(name string, t core.Tool) {
	b.tools[name] = t
}

// Tool returns a wired tool by name, or nil.
func (b *Base) Tool(name string) core.Tool { return b.tools[name] }

// Trace exposes the bounded execution history for inspection.
func (b *Base) Trace() *core.Trace { return b.trace }

// checkDependencies verifies that every required tool has been wired. The
// check is cached: once satisfied it is skipped on later calls.
func (b *Base) checkDependencies() (string, bool) {
	if b.depsOK {
		return "", true
	}
	var missing []string
	for _, name := range b.meta.RequiredTools {
		if _, ok := b.tools[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		b.logger.Warn("agent missing required tools",
			"agent", b.meta.Name, "missing", strings.Join(missing, ", "))
		return fmt.Sprintf("Error: Agent %s is missing required tools: %s",
			b.meta.Name, strings.Join(missing, ", ")), false
	}
	b.depsOK = true
	return "", true
}

// Run executes the agent synchronously through the full contract lifecycle.
// The returned string is always a terminal user-facing response; failures
// never escape as errors or panics.
func (b *Base) Run(ctx context.Context, input string) string {
	return b.run(ctx, b.exec, input)
}

// RunAsync executes the agent without blocking the caller. When no native
// non-blocking implementation was supplied, the blocking path runs on a
// worker goroutine; the fallback is invisible to the caller. The channel
// yields exactly one result and is then closed.
func (b *Base) RunAsync(ctx context.Context, input string) <-chan string {
	fn := b.execAsync
	if fn == nil {
		fn = b.exec
	}
	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		ch <- b.run(ctx, fn, input)
	}()
	return ch
}

func (b *Base) run(ctx context.Context, fn ExecFunc, input string) (response string) {
	if msg, ok := b.checkDependencies(); !ok {
		return msg
	}

	id := b.trace.Begin(map[string]any{"input": input})

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			b.trace.Fail(id, err)
			b.logger.Error("agent run panicked", "agent", b.meta.Name, "panic", fmt.Sprint(r))
			response = fmt.Sprintf("Error in agent %s: %v", b.meta.Name, r)
		}
	}()

	out, err := fn(ctx, input)
	if err != nil {
		b.trace.Fail(id, err)
		b.logger.Error("agent run failed", "agent", b.meta.Name, "error", err.Error())
		return fmt.Sprintf("Error in agent %s: %v", b.meta.Name, err)
	}

	b.trace.Complete(id, out)
	b.logger.Debug("agent run completed", "agent", b.meta.Name)
	return out
}
