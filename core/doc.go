// Package core provides the foundational domain types and interfaces used by
// cmdmesh. It defines the core abstractions for:
//
//   - Agents (named handlers that turn a textual command into a terminal text response)
//   - Tools (named, parameterized operations that may fail with an error)
//   - Component metadata (capabilities, parameters, requirements)
//   - Execution traces (bounded per-component call history)
//   - Sessions (per-conversation context and bounded command history)
//
// The package intentionally keeps implementation concerns (registry,
// event delivery, routing, concrete components) out of scope, exposing small
// interfaces so the controller can treat heterogeneous components uniformly.
package core
