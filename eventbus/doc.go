// Package eventbus implements the synchronous in-process publish/subscribe
// hub used by the controller to surface command lifecycle events
// (agent.before_run, tool.after_use, error, ...) to observers.
//
// Delivery is synchronous: every subscriber for the event's exact type, plus
// every wildcard ("*") subscriber, is invoked in subscription order before
// Publish returns. A panicking subscriber is recovered and logged and never
// prevents delivery to the remaining subscribers — a broken observer cannot
// break command execution. The bus also retains a bounded FIFO history of
// published events for inspection.
package eventbus
