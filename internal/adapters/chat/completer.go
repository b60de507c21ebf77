package chat

import (
	"context"

	"github.com/bridgefs/bridgefs/internal/conversation"
)

// Completer is the remote generation step behind a chat backend. The
// backend owns conversation state; the completer only turns a history
// plus a prompt into a reply.
type Completer interface {
	// Authorized reports credential presence without touching the
	// network.
	Authorized() bool

	// Models returns the model names the endpoint offers. May reach the
	// network.
	Models(ctx context.Context) ([]string, error)

	// Complete sends the conversation history and the new user prompt
	// and returns the generated reply.
	Complete(ctx context.Context, history []conversation.Message, prompt string) (string, error)
}
