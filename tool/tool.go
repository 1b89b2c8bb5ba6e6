// Package tool implements the tool side of the shared execution contract and
// the built-in tools (file, command, specs, webhook).
//
// Every tool call runs through the same lifecycle: a verify-once permission
// gate, an execution record opened with status started, the tool-specific
// logic, and a terminal record update (completed or failed). Unlike agents,
// tools surface execution errors to the caller after recording them — the
// controller translates them into user-visible output and an error event.
package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// TraceLimit bounds each tool's retained execution records.
const TraceLimit = 50

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes used by the built-in tools and the contract base.
const (
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInvalidArgs      = "INVALID_ARGS"
	CodeExecutionError   = "EXECUTION_ERROR"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// ExecFunc is the tool-specific logic wrapped by the contract base.
type ExecFunc func(ctx context.Context, args map[string]string) (any, error)

// Base bundles the shared tool lifecycle: permission gating, execution
// tracing and async fallback. Embed it in concrete tool implementations and
// supply the execution function at construction.
type Base struct {
	meta      core.Metadata
	granted   map[string]struct{}
	permsOK   bool
	trace     *core.Trace
	logger    logging.Logger
	exec      ExecFunc
	execAsync ExecFunc // optional native non-blocking implementation
}

// BaseOptions configures a tool Base.
type BaseOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// ExecAsync supplies a native non-blocking implementation. When nil the
	// blocking implementation is run on a worker goroutine instead.
	ExecAsync ExecFunc
}

// NewBase constructs the contract base for a tool with the given metadata
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
		granted:   map[string]struct{}{},
		trace:     core.NewTrace(TraceLimit),
		logger:    opts.Logger,
		exec:      exec,
		execAsync: opts.ExecAsync,
	}
}

// Metadata returns the immutable tool descriptor.
func (b *Base) Metadata() core.Metadata { return b.meta }

// Grant adds permissions to the tool's granted set. Granting after the gate
// has passed has no further effect.
func (b *Base) Grant(permissions ...string) {
	for _, p := range permissions {
		b.granted[p] = struct{}{}
	}
}

// Trace exposes the bounded execution history for inspection.
func (b *Base) Trace() *core.Trace { return b.trace }

// checkPermissions verifies required permissions against the granted set.
// The check is cached: once satisfied it is skipped on later calls.
func (b *Base) checkPermissions() error {
	if b.permsOK {
		return nil
	}
	var missing []string
	for _, p := range b.meta.RequiredPermissions {
		if _, ok := b.granted[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		b.logger.Warn("tool missing required permissions",
			"tool", b.meta.Name, "missing", strings.Join(missing, ", "))
		return NewToolError(b.meta.Name,
			fmt.Sprintf("missing required permissions: %s", strings.Join(missing, ", ")),
			CodePermissionDenied)
	}
	b.permsOK = true
	return nil
}

// Execute runs the tool synchronously through the full contract lifecycle.
// Execution errors are returned to the caller after being recorded.
func (b *Base) Execute(ctx context.Context, args map[string]string) (any, error) {
	return b.execute(ctx, b.exec, args)
}

// ExecuteAsync runs the tool without blocking the caller. When no native
// non-blocking implementation was supplied, the blocking path runs on a
// worker goroutine; the fallback is invisible to the caller.
func (b *Base) ExecuteAsync(ctx context.Context, args map[string]string) <-chan core.ToolResult {
	fn := b.execAsync
	if fn == nil {
		fn = b.exec
	}
	ch := make(chan core.ToolResult, 1)
	go func() {
		defer close(ch)
		value, err := b.execute(ctx, fn, args)
		ch <- core.ToolResult{Value: value, Err: err}
	}()
	return ch
}

func (b *Base) execute(ctx context.Context, fn ExecFunc, args map[string]string) (result any, err error) {
	if err := b.checkPermissions(); err != nil {
		return nil, err
	}

	params := make(map[string]any, len(args))
	for k, v := range args {
		params[k] = v
	}
	id := b.trace.Begin(params)

	defer func() {
		if r := recover(); r != nil {
			err = NewToolError(b.meta.Name, fmt.Sprint(r), CodeExecutionError)
		}
		if err != nil {
			b.trace.Fail(id, err)
			b.logger.Error("tool execution failed", "tool", b.meta.Name, "error", err.Error())
			return
		}
		b.trace.Complete(id, stringify(result))
		b.logger.Debug("tool execution completed", "tool", b.meta.Name)
	}()

	result, err = fn(ctx, args)
	return result, err
}

// stringify renders a tool result into the string-safe summary stored in the
// execution record.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
