package ai

import "context"

// Provider is a pluggable text-completion capability. Implementations
// wrap one upstream API; callers hold an ordered list of providers and
// fail over in sequence.
type Provider interface {
	// Name identifies the provider in logs.
	Name() string
	// Complete sends the message list and returns the assistant reply
	// text, or an error for any failure (timeout, auth, malformed
	// response).
	Complete(ctx context.Context, request *CompletionRequest) (string, error)
}

// Message roles follow the chat-completions convention.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}
