// Package controller implements the single entry point that turns a
// (command, args) pair into a textual response. It owns one registry, one
// event bus and the session map, and applies an ordered middleware pipeline
// before routing commands to agents ("run <agent> ...") or tools
// ("use tool <tool> ...").
//
// Nothing below the controller is allowed to terminate the command loop:
// every failure becomes either a returned string or a published event (or
// both), and ProcessCommand never panics or returns an error to its caller.
// The Shell type layers the interactive surface (help, list, session
// commands, exit) on top of ProcessCommand.
package controller
