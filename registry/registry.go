package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/cmdmesh/core"
	"github.com/hupe1980/cmdmesh/logging"
)

// Entry is one row of the authoritative component table. The registry holds
// a reference to the component but does not own its lifetime.
type Entry struct {
	ID        string
	Name      string
	Category  string
	Component any
	Metadata  core.Metadata
	CreatedAt time.Time
}

// EntryInfo is the descriptor returned by Search. It deliberately carries no
// component reference so introspection callers never receive live objects.
type EntryInfo struct {
	ID        string        `json:"id"`
	Category  string        `json:"category"`
	Metadata  core.Metadata `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

// Registry is the catalog mapping categories and names to component
// instances and metadata. It is safe for concurrent access.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry            // id -> entry
	names   map[string]map[string]string // category -> name -> id
	order   map[string][]string          // category -> names in insertion order
	ids     []string                     // entry ids in registration order
	logger  logging.Logger
}

// New constructs an empty registry. A nil logger falls back to NoOpLogger.
func New(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{
		entries: map[string]*Entry{},
		names:   map[string]map[string]string{},
		order:   map[string][]string{},
		logger:  logger,
	}
}

// Register adds a component under (category, name) and returns its generated
// id. Registration always succeeds: an existing name mapping is overwritten,
// leaving the displaced entry reachable by id only.
func (r *Registry) Register(category, name string, component any, metadata core.Metadata) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &Entry{
		ID:        core.NewID(),
		Name:      name,
		Category:  category,
		Component: component,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	r.entries[entry.ID] = entry
	r.ids = append(r.ids, entry.ID)

	if r.names[category] == nil {
		r.names[category] = map[string]string{}
	}
	if _, replaced := r.names[category][name]; !replaced {
		r.order[category] = append(r.order[category], name)
	}
	r.names[category][name] = entry.ID

	r.logger.Info("registered component", "category", category, "name", name, "id", entry.ID)
	return entry.ID
}

// RegisterAgent registers an agent under its metadata name.
func (r *Registry) RegisterAgent(name string, agent core.Agent) string {
	return r.Register(core.CategoryAgent, name, agent, agent.Metadata())
}

// RegisterTool registers a tool under its metadata name.
func (r *Registry) RegisterTool(name string, tool core.Tool) string {
	return r.Register(core.CategoryTool, name, tool, tool.Metadata())
}

// Unregister removes the entry with the given id. If the category/name
// mapping currently points at that entry the mapping is removed too. It
// returns false for an unknown id.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	if r.names[entry.Category][entry.Name] == id {
		delete(r.names[entry.Category], entry.Name)
		r.order[entry.Category] = removeString(r.order[entry.Category], entry.Name)
	}
	delete(r.entries, id)
	r.ids = removeString(r.ids, id)

	r.logger.Info("unregistered component", "category", entry.Category, "name", entry.Name, "id", id)
	return true
}

// Get returns the component registered under the given id, or nil.
func (r *Registry) Get(id string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[id]; ok {
		return entry.Component
	}
	return nil
}

// GetByName returns the component the (category, name) mapping currently
// points at, or nil. This is the primary lookup path used by the controller.
func (r *Registry) GetByName(category, name string) any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.names[category][name]
	if !ok {
		return nil
	}
	return r.entries[id].Component
}

// GetAgent resolves an agent by name.
func (r *Registry) GetAgent(name string) core.Agent {
	if a, ok := r.GetByName(core.CategoryAgent, name).(core.Agent); ok {
		return a
	}
	return nil
}

// GetTool resolves a tool by name.
func (r *Registry) GetTool(name string) core.Tool {
	if t, ok := r.GetByName(core.CategoryTool, name).(core.Tool); ok {
		return t
	}
	return nil
}

// GetMetadata returns the metadata of the entry with the given id.
func (r *Registry) GetMetadata(id string) (core.Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.entries[id]; ok {
		return entry.Metadata, true
	}
	return core.Metadata{}, false
}

// GetNames returns the registered names for a category in insertion order.
func (r *Registry) GetNames(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order[category]))
	copy(out, r.order[category])
	return out
}

// Agents returns a derived, read-only name-keyed view of the live agents.
func (r *Registry) Agents() map[string]core.Agent {
	out := map[string]core.Agent{}
	for _, name := range r.GetNames(core.CategoryAgent) {
		if a := r.GetAgent(name); a != nil {
			out[name] = a
		}
	}
	return out
}

// Tools returns a derived, read-only name-keyed view of the live tools.
func (r *Registry) Tools() map[string]core.Tool {
	out := map[string]core.Tool{}
	for _, name := range r.GetNames(core.CategoryTool) {
		if t := r.GetTool(name); t != nil {
			out[name] = t
		}
	}
	return out
}

// Search returns descriptors for entries whose registered name or any
// string-valued metadata field contains the query, case-insensitively.
// Results are ordered by registration. Category narrows the search when
// non-empty.
func (r *Registry) Search(query, category string) []EntryInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(query)
	var results []EntryInfo
	for _, id := range r.ids {
		entry := r.entries[id]
		if category != "" && entry.Category != category {
			continue
		}
		if !entryMatches(entry, query) {
			continue
		}
		results = append(results, EntryInfo{
			ID:        entry.ID,
			Category:  entry.Category,
			Metadata:  entry.Metadata,
			CreatedAt: entry.CreatedAt,
		})
	}
	return results
}

func entryMatches(entry *Entry, query string) bool {
	if strings.Contains(strings.ToLower(entry.Name), query) {
		return true
	}
	for _, field := range entry.Metadata.StringFields() {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
