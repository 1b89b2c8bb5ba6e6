// Package registry implements the name- and id-addressable component catalog
// used by the controller to resolve agents and tools.
//
// The registry keeps a single authoritative id-indexed entry table plus a
// per-category name index. Re-registering an existing (category, name) pair
// overwrites the forward mapping but leaves the previous entry reachable by
// id — a deliberately permissive last-writer-wins policy that supports
// hot-reloading components. Flat name-keyed views (Agents, Tools) are derived
// read-only projections, never a second source of truth.
package registry
