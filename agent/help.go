package agent

import (
	"context"
	"strings"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// HelpAgent renders usage help for the runtime and its components. An empty
// input yields the general help; known topics are code, diagnostics, tools.
type HelpAgent struct {
	Base
}

// HelpAgentOptions configures a HelpAgent.
type HelpAgentOptions struct {
	// Logger receives lifecycle logs. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewHelpAgent constructs a HelpAgent.
func NewHelpAgent(optFns ...func(o *HelpAgentOptions)) *HelpAgent {
	opts := HelpAgentOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &HelpAgent{}
	a.Base = NewBase(core.Metadata{
		Name:         "help",
		Description:  "Shows usage help for agents, tools and commands",
		Version:      "1.0.0",
		Capabilities: []string{"help"},
	}, a.execute, func(o *BaseOptions) { o.Logger = opts.Logger })
	return a
}

func (a *HelpAgent) execute(_ context.Context, input string) (string, error) {
	topic := strings.ToLower(strings.TrimSpace(input))
	switch topic {
	case "":
		return generalHelp, nil
	case "code":
		return codeHelp, nil
	case "diagnostics":
		return diagnosticsHelp, nil
	case "tools":
		return toolsHelp, nil
	default:
		return "Unknown topic '" + topic + "'. Try: code, diagnostics, tools", nil
	}
}

const generalHelp = `Available commands:

run help code            - Show how to use the code agent
run help diagnostics     - Show system check commands
run help tools           - Show how to use tools directly
list agents              - List all registered agents
list tools               - List all available tools
use tool <name> ...      - Run a tool directly`

const codeHelp = `Code agent help:

run code <task>          - Generates code for the task and saves it to a file
Examples:
  run code build a countdown timer
  run code create a react component`

const diagnosticsHelp = `Diagnostics agent help:

run diagnostics check cpu
run diagnostics check ram
run diagnostics check disk
run diagnostics run <shell command>`

const toolsHelp = `Tool help (via "use tool"):

use tool file action=write path=hello.txt content="hi"
use tool file action=read path=hello.txt

use tool command echo Hello
use tool specs info_type=cpu
use tool webhook action=trigger workflow=deploy`
