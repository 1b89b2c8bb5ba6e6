package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// DiagnosticsAgent answers system health questions. It routes "check
// cpu|ram|disk" to the specs tool and "run <command>" to the command tool.
type DiagnosticsAgent struct {
	Base
}

// DiagnosticsAgentOptions configures a DiagnosticsAgent.
type DiagnosticsAgentOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewDiagnosticsAgent constructs a DiagnosticsAgent.
func NewDiagnosticsAgent(optFns ...func(o *DiagnosticsAgentOptions)) *DiagnosticsAgent {
	opts := DiagnosticsAgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &DiagnosticsAgent{}
	a.Base = NewBase(core.Metadata{
		Name:          "diagnostics",
		Description:   "Runs system checks and diagnostic shell commands",
		Version:       "1.0.0",
		Capabilities:  []string{"system_checks", "shell_diagnostics"},
		RequiredTools: []string{"specs", "command"},
	}, a.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return a
}

func (a *DiagnosticsAgent) execute(ctx context.Context, input string) (string, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	var (
		result any
		err    error
	)
	switch {
	case strings.Contains(input, "check cpu"):
		result, err = a.Tool("specs").Execute(ctx, map[string]string{"info_type": "cpu"})
	case strings.Contains(input, "check ram"):
		result, err = a.Tool("specs").Execute(ctx, map[string]string{"info_type": "ram"})
	case strings.Contains(input, "check disk"):
		result, err = a.Tool("specs").Execute(ctx, map[string]string{"info_type": "disk"})
	case strings.HasPrefix(input, "run "):
		command := strings.TrimPrefix(input, "run ")
		result, err = a.Tool("command").Execute(ctx, map[string]string{"raw_input": command})
	default:
		return "Unrecognized command. Try: check cpu, check ram, check disk, run <command>", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}
