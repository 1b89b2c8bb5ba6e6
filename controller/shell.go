package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/cmdmesh/core"
)

const shellHelp = `Commands:
  run <agent> <input>         - Run an agent (e.g. run code build a countdown timer)
  use tool <tool> <input>     - Use a tool directly (e.g. use tool command echo hi)
  list agents                 - Show all available agents
  list tools                  - Show all available tools
  help / ?                    - Show this help menu
  exit / quit                 - Exit the assistant

Session commands:
  session new                 - Start a new session
  session list                - List all sessions
  session switch <id>         - Switch to an existing session
  session info                - Show the current session`

// Shell is the interactive dispatch layer on top of the controller. It
// handles the built-in surface (help, list, session management, exit) and
// forwards everything else to ProcessCommand.
type Shell struct {
	ctrl *Controller
}

// NewShell constructs a Shell for the given controller.
func NewShell(ctrl *Controller) *Shell {
	return &Shell{ctrl: ctrl}
}

// Dispatch handles one input line and returns the textual response plus
// whether the caller should terminate the loop. It never returns an error:
// the loop's job is solely to read input and print output.
func (s *Shell) Dispatch(ctx context.Context, line string) (response string, quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "Please enter a command. Type `help` or `?`.", false
	}

	verb, rest := splitToken(line)
	switch strings.ToLower(verb) {
	case "exit", "quit":
		return "Exiting...", true
	case "help", "?":
		return shellHelp, false
	case "list":
		return s.handleList(rest), false
	case "session":
		return s.handleSession(rest), false
	default:
		return s.ctrl.ProcessCommand(ctx, strings.ToLower(verb), rest), false
	}
}

// Run reads commands from r and writes responses to w until EOF or an
// exit command.
func (s *Shell) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	fmt.Fprintln(w, "cmdmesh is ready. Type a command like `run code` or `use tool`:")

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			break
		}
		response, quit := s.Dispatch(ctx, scanner.Text())
		fmt.Fprintln(w, response)
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func (s *Shell) handleList(args string) string {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "agents":
		return "Available agents: " + strings.Join(s.ctrl.Registry().GetNames(core.CategoryAgent), ", ")
	case "tools":
		return "Available tools: " + strings.Join(s.ctrl.Registry().GetNames(core.CategoryTool), ", ")
	case "":
		return "Usage: list agents | list tools"
	default:
		return fmt.Sprintf("Unknown list option: %s. Try: list agents | list tools", strings.TrimSpace(args))
	}
}

func (s *Shell) handleSession(args string) string {
	sub, rest := splitToken(args)
	switch strings.ToLower(sub) {
	case "new":
		session := s.ctrl.NewSession()
		return fmt.Sprintf("Started new session %s", session.ID)

	case "list":
		current := s.ctrl.CurrentSession()
		var sb strings.Builder
		sb.WriteString("Sessions:")
		for _, session := range s.ctrl.Sessions() {
			marker := " "
			if session.ID == current.ID {
				marker = "*"
			}
			fmt.Fprintf(&sb, "\n%s %s (created %s, %d commands)",
				marker, session.ID, session.CreatedAt.Format("15:04:05"), session.HistoryLen())
		}
		return sb.String()

	case "switch":
		if rest == "" {
			return "Usage: session switch <id>"
		}
		if err := s.ctrl.SwitchSession(rest); err != nil {
			return fmt.Sprintf("Unknown session: %s", rest)
		}
		return fmt.Sprintf("Switched to session %s", rest)

	case "info":
		session := s.ctrl.CurrentSession()
		return fmt.Sprintf("Session %s\nCreated: %s\nCommands: %d",
			session.ID, session.CreatedAt.Format("2006-01-02 15:04:05"), session.HistoryLen())

	default:
		return "Usage: session new | session list | session switch <id> | session info"
	}
}
