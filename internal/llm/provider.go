// Package llm generates assessments and explanations through a pluggable
// language model provider. The backend is the only consumer; the client
// never talks to a provider directly.
package llm

import (
	"context"
	"encoding/json"
)

// Purposes recorded with every request event.
const (
	PurposeAssessment  = "assessment"
	PurposeExplanation = "explanation"
)

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Generate sends a prompt and returns the response. With a Schema the
	// Content is validated JSON; without one it is the text encoded as a
	// JSON string.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for structured output. When nil
	// the response is free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0.0 - 1.0
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name is used as the schema name by providers that need one.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the LLM's output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Text returns the Content of a free-text response.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err != nil {
		return string(r.Content)
	}
	return s
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
