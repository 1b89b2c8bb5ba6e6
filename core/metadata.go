package core

import "github.com/google/uuid"

// Parameter describes a single named tool argument within component metadata.
type Parameter struct {
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// Metadata is the immutable descriptor of a registered component. It is
// created once at component construction and never mutated afterwards.
//
// Agents populate Capabilities and RequiredTools; tools populate Parameters
// and RequiredPermissions. Tags are free-form labels used for discovery.
type Metadata struct {
	Name                string               `json:"name"`
	Description         string               `json:"description"`
	Version             string               `json:"version"`
	Capabilities        []string             `json:"capabilities,omitempty"`
	Parameters          map[string]Parameter `json:"parameters,omitempty"`
	RequiredTools       []string             `json:"required_tools,omitempty"`
	RequiredPermissions []string             `json:"required_permissions,omitempty"`
	Tags                []string             `json:"tags,omitempty"`
}

// HasCapability reports whether the metadata declares the given capability.
func (m Metadata) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// StringFields returns the string-valued metadata fields that participate in
// registry search (name, description, version plus tags and capabilities).
func (m Metadata) StringFields() []string {
	fields := []string{m.Name, m.Description, m.Version}
	fields = append(fields, m.Tags...)
	fields = append(fields, m.Capabilities...)
	return fields
}

// NewID generates a new unique identifier for components, events, sessions
// and execution records.
func NewID() string { return uuid.NewString() }
