// Package model defines the minimal text-generation abstraction the code
// agent drives. Provider sub-packages (openai, anthropic) adapt vendor SDKs
// behind the Model interface; MockModel serves tests and examples.
package model

import (
	"context"
	"strings"
)

// Request captures the normalized model input.
type Request struct {
	// Instructions steer the model (system prompt).
	Instructions string `json:"instructions"`
	// Prompt is the user-supplied task text.
	Prompt string `json:"prompt"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed model output.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "local", "mock"
}

// Model is the interface required by agents to drive text generation.
type Model interface {
	// Generate produces a completion for the request, blocking until the
	// provider responds or ctx is cancelled.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It returns the canned response whose key is contained in the prompt, or
// the default response otherwise.
type MockModel struct {
	info            Info
	responses       map[string]string
	defaultResponse string
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:            Info{Name: name, Provider: "mock"},
		responses:       map[string]string{},
		defaultResponse: "mock response",
	}
}

// WithResponse registers a canned response for prompts containing key.
func (m *MockModel) WithResponse(key, response string) *MockModel {
	m.responses[key] = response
	return m
}

// WithDefault sets the fallback response.
func (m *MockModel) WithDefault(response string) *MockModel {
	m.defaultResponse = response
	return m
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for key, response := range m.responses {
		if strings.Contains(req.Prompt, key) {
			return &Response{Text: response}, nil
		}
	}
	return &Response{Text: m.defaultResponse}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
