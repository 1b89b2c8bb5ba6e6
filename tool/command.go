package tool

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// DefaultCommandTimeout bounds a single shell command execution. The timeout
// is this tool's own concern; the orchestration core imposes none.
const DefaultCommandTimeout = 30 * time.Second

// CommandTool executes a shell command given as raw_input. Commands whose
// tokens contain an entry from the banned list are refused before execution.
type CommandTool struct {
	Base

	banned  map[string]struct{}
	timeout time.Duration
}

// CommandToolOptions configures a CommandTool.
type CommandToolOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
	// Timeout bounds one command execution. Defaults to DefaultCommandTimeout.
	Timeout time.Duration
	// Banned lists command tokens refused outright.
	Banned []string
}

// NewCommandTool constructs a CommandTool.
func NewCommandTool(optFns ...func(o *CommandToolOptions)) *CommandTool {
	opts := CommandToolOptions{
		Logger:  logging.NoOpLogger{},
		Timeout: DefaultCommandTimeout,
		Banned:  []string{"rm", "del", "shutdown", "format", "mkfs"},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCommandTimeout
	}

	t := &CommandTool{
		banned:  map[string]struct{}{},
		timeout: opts.Timeout,
	}
	for _, b := range opts.Banned {
		t.banned[strings.ToLower(b)] = struct{}{}
	}
	t.Base = NewBase(core.Metadata{
		Name:        "command",
		Description: "Executes a shell command and returns its output",
		Version:     "1.0.0",
		Parameters: map[string]core.Parameter{
			"raw_input": {Type: "string", Required: true, Description: "Command line to execute"},
		},
		RequiredPermissions: []string{"shell"},
		Tags:                []string{"system", "shell"},
	}, t.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return t
}

func (t *CommandTool) execute(ctx context.Context, args map[string]string) (any, error) {
	raw := strings.TrimSpace(args["raw_input"])
	if raw == "" {
		return "No command provided. Try: use tool command echo hello", nil
	}

	tokens, err := shlex.Split(raw)
	if err != nil {
		tokens = strings.Fields(strings.ToLower(raw))
	}
	for _, token := range tokens {
		if _, blocked := t.banned[strings.ToLower(token)]; blocked {
			return "Command blocked for safety.", nil
		}
	}
	if len(tokens) == 0 {
		return "No command provided. Try: use tool command echo hello", nil
	}

	execCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, tokens[0], tokens[1:]...)
	output, err := cmd.CombinedOutput()
	if execCtx.Err() == context.DeadlineExceeded {
		return nil, NewToolError("command", fmt.Sprintf("timed out after %s", t.timeout), CodeExecutionError)
	}
	if err != nil {
		out := strings.TrimSpace(string(output))
		if out == "" {
			out = err.Error()
		}
		return fmt.Sprintf("Error:\n%s", out), nil
	}
	return strings.TrimSpace(string(output)), nil
}
