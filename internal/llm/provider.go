package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the transport abstraction for generative model calls.
// Every workflow step in mathsim reaches the model through a Provider.
type Provider interface {
	// Generate sends a prompt to the model and returns its output.
	// When the request's Schema is set the provider uses its native
	// structured output mechanism and validates the result. When JSONMode
	// is set the provider asks for a JSON object without a fixed schema.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Messages with RoleSystem are folded
	// into System by the providers, in order.
	Messages []Message

	// Model overrides the provider's configured model when non-empty.
	Model string

	// Schema is the JSON Schema the response must conform to.
	Schema *Schema

	// JSONMode asks for a bare JSON object response.
	JSONMode bool

	// MaxTokens is the maximum number of tokens in the response.
	// Zero leaves the provider default in place.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 2.0. Providers always
	// forward it, zero included.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is the message sender role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, kebab-case, e.g. "student-attempt".
	Name string

	// Description is sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated text. For JSON requests this is the JSON
	// document, otherwise the raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// splitSystem returns the effective system prompt and the non-system
// messages of req.
func splitSystem(req Request) (string, []Message) {
	var system []string
	if req.System != "" {
		system = append(system, req.System)
	}
	msgs := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		msgs = append(msgs, m)
	}
	return strings.Join(system, "\n\n"), msgs
}

// modelFor returns the model to use for req given the provider default.
func modelFor(req Request, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	return fallback
}
