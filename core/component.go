package core

import "context"

// Category values used by the registry. The category space is open; these two
// are the built-in ones the controller routes to.
const (
	CategoryAgent = "agent"
	CategoryTool  = "tool"
)

// Agent is implemented by named components that answer a textual command with
// a terminal text response.
//
// Run must never return an error and must never panic across the interface
// boundary: implementations absorb internal failures and render them as a
// descriptive string, because their output is the user-facing text.
type Agent interface {
	// Metadata returns the immutable descriptor of the agent.
	Metadata() Metadata

	// Run executes the agent synchronously, blocking until the response is
	// produced.
	Run(ctx context.Context, input string) string
}

// AsyncAgent marks agents that provide a non-blocking execution path. The
// capability is expressed as an optional interface decided at construction
// time rather than discovered dynamically.
//
// The returned channel yields exactly one result and is then closed. The
// result carries the same error semantics as Run: failures are rendered into
// the returned string, never as a panic or a dropped send.
type AsyncAgent interface {
	Agent

	RunAsync(ctx context.Context, input string) <-chan string
}

// Tool is implemented by named components that perform a parameterized,
// composable operation.
//
// Unlike agents, tools surface failures as errors: the controller still needs
// to distinguish tool failure from success to decide whether to publish an
// error event and how to render the outcome.
type Tool interface {
	// Metadata returns the immutable descriptor of the tool.
	Metadata() Metadata

	// Execute runs the tool synchronously with the parsed key/value
	// arguments, blocking until the result is produced.
	Execute(ctx context.Context, args map[string]string) (any, error)
}

// ToolResult is the single value delivered on an AsyncTool channel.
type ToolResult struct {
	Value any
	Err   error
}

// AsyncTool marks tools that provide a non-blocking execution path, mirroring
// AsyncAgent. The returned channel yields exactly one ToolResult and is then
// closed.
type AsyncTool interface {
	Tool

	ExecuteAsync(ctx context.Context, args map[string]string) <-chan ToolResult
}
