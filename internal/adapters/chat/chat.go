// Package chat adapts a remote chat endpoint to the virtual filesystem
// contract. Conversations appear as directories of numbered message
// files; available models appear as pseudo-files under /models. The
// remote completion step is pluggable through the Completer interface.
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bridgefs/bridgefs/internal/conversation"
	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Backend is a chat-style vfs.Adapter. One instance owns one
// conversation ledger; ledgers are never shared across instances.
type Backend struct {
	info      vfs.Info
	completer Completer
	store     *conversation.Store

	mu          sync.Mutex
	initialized bool
	models      []string
	active      string // conversation addressed by dispatch sends
}

// NewBackend wires a completer into a chat adapter.
func NewBackend(name, description string, completer Completer) *Backend {
	return &Backend{
		info:      vfs.Info{Name: name, Description: description},
		completer: completer,
		store:     conversation.NewStore(),
	}
}

// Definition implements vfs.Adapter.
func (b *Backend) Definition() vfs.Info { return b.info }

// Store exposes the conversation ledger for tests and tooling.
func (b *Backend) Store() *conversation.Store { return b.store }

// Initialize fetches the model list once. Calling it again is a no-op
// with the same enabled outcome; a model-list failure is not fatal.
func (b *Backend) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return nil
	}
	b.initialized = true
	if b.completer.Authorized() {
		if models, err := b.completer.Models(ctx); err == nil {
			b.models = models
		}
	}
	return nil
}

// Dispose clears all conversation state.
func (b *Backend) Dispose() error {
	b.store.Clear()
	return nil
}

// IsAuthorized reports credential presence only.
func (b *Backend) IsAuthorized() bool { return b.completer.Authorized() }

// TestConnection probes the endpoint by listing models.
func (b *Backend) TestConnection(ctx context.Context) (bool, string) {
	if !b.completer.Authorized() {
		return false, "no credentials resolved"
	}
	models, err := b.completer.Models(ctx)
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("%d models available", len(models))
}

// Exists implements vfs.Adapter.
func (b *Backend) Exists(path string) bool {
	switch node := Classify(path); node.Kind {
	case KindRoot, KindConversationList, KindModelList:
		return true
	case KindConversation:
		return node.ConversationID == conversation.NewConversationID || b.store.Exists(node.ConversationID)
	case KindMessageFile:
		return node.Ordinal >= 1 && node.Ordinal <= b.store.Len(node.ConversationID)
	case KindModel:
		for _, m := range b.modelNames() {
			if m == node.ModelName {
				return true
			}
		}
	}
	return false
}

// Read returns a message file as a one-line formatted record, or a model
// pseudo-file as its name.
func (b *Backend) Read(path string) ([]byte, error) {
	switch node := Classify(path); node.Kind {
	case KindMessageFile:
		if node.Ordinal < 1 {
			return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
		}
		msg, err := b.store.Message(node.ConversationID, node.Ordinal)
		if err != nil {
			return nil, err
		}
		return []byte(msg.Format()), nil
	case KindModel:
		if b.Exists(path) {
			return []byte(node.ModelName), nil
		}
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	default:
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// Write sends data as a user message to the addressed conversation. The
// remote completion runs synchronously; the user message and the reply
// are appended as a unit, or nothing is appended on failure. Writing an
// empty payload to a conversation path just creates it. The model tree
// is immutable.
func (b *Backend) Write(path string, data []byte, overwrite bool) error {
	node := Classify(path)
	switch node.Kind {
	case KindConversation:
		if len(data) == 0 {
			b.store.Create(node.ConversationID)
			return nil
		}
		_, _, err := b.send(context.Background(), node.ConversationID, string(data))
		return err
	case KindMessageFile:
		if node.Ordinal < 1 {
			// An unparsable ordinal names no ledger slot, so the
			// message must not be appended under its name.
			return fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
		}
		if !overwrite && node.Ordinal <= b.store.Len(node.ConversationID) {
			return fmt.Errorf("%q: %w", path, vfs.ErrAlreadyExists)
		}
		_, _, err := b.send(context.Background(), node.ConversationID, string(data))
		return err
	case KindRoot, KindConversationList, KindModelList, KindModel:
		return fmt.Errorf("%q: %w", path, vfs.ErrUnsupported)
	default:
		return fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// Append is a chat write; messages always land at the end of the ledger.
func (b *Backend) Append(path string, data []byte) error {
	return b.Write(path, data, true)
}

// Delete removes one message (shifting later ordinals down) or an entire
// conversation.
func (b *Backend) Delete(path string) error {
	switch node := Classify(path); node.Kind {
	case KindMessageFile:
		if node.Ordinal < 1 {
			return fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
		}
		return b.store.DeleteMessage(node.ConversationID, node.Ordinal)
	case KindConversation:
		return b.store.DeleteConversation(node.ConversationID)
	case KindModelList, KindModel:
		return fmt.Errorf("%q: %w", path, vfs.ErrUnsupported)
	default:
		return fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// ListFiles returns message filenames of a conversation or model
// pseudo-files, filtered by pattern.
func (b *Backend) ListFiles(path, pattern string) ([]string, error) {
	switch node := Classify(path); node.Kind {
	case KindConversation:
		if !b.store.Exists(node.ConversationID) {
			return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
		}
		count := b.store.Len(node.ConversationID)
		names := make([]string, 0, count)
		for i := 1; i <= count; i++ {
			names = appendMatch(names, MessageFileName(i), pattern)
		}
		return names, nil
	case KindModelList:
		var names []string
		for _, m := range b.modelNames() {
			names = appendMatch(names, m, pattern)
		}
		return names, nil
	case KindRoot, KindConversationList:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// ListDirectories returns the fixed top-level collections at the root
// and conversation ids under /conversations.
func (b *Backend) ListDirectories(path, pattern string) ([]string, error) {
	switch Classify(path).Kind {
	case KindRoot:
		var names []string
		for _, n := range []string{collectionConversations, collectionModels} {
			names = appendMatch(names, n, pattern)
		}
		return names, nil
	case KindConversationList:
		var names []string
		for _, id := range b.store.IDs() {
			names = appendMatch(names, id, pattern)
		}
		return names, nil
	case KindConversation, KindModelList:
		return []string{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", path, vfs.ErrNotFound)
	}
}

// Size returns the byte length of a leaf's content.
func (b *Backend) Size(path string) (int64, error) {
	data, err := b.Read(path)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// SendMessage routes a dispatched payload into this backend's active
// conversation, allocating one on first use. It returns the generated
// reply; on remote failure nothing is recorded and the error surfaces
// to the dispatcher as that target's result.
func (b *Backend) SendMessage(ctx context.Context, payload string) (string, error) {
	b.mu.Lock()
	active := b.active
	b.mu.Unlock()

	id, reply, err := b.send(ctx, active, payload)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.active = id
	b.mu.Unlock()
	return reply, nil
}

// send runs the synchronous completion step and appends the exchange.
func (b *Backend) send(ctx context.Context, id, prompt string) (string, string, error) {
	if !b.completer.Authorized() {
		return "", "", fmt.Errorf("%s: %w", b.info.Name, vfs.ErrUnauthorized)
	}

	history := b.history(id)
	reply, err := b.completer.Complete(ctx, history, prompt)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", b.info.Name, err)
	}

	id = b.store.AppendExchange(id, prompt, reply)
	return id, reply, nil
}

func (b *Backend) history(id string) []conversation.Message {
	if id == "" || id == conversation.NewConversationID {
		return nil
	}
	msgs, err := b.store.Messages(id)
	if err != nil {
		return nil
	}
	return msgs
}

func (b *Backend) modelNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.models
}

func appendMatch(names []string, name, pattern string) []string {
	if pattern == "" {
		return append(names, name)
	}
	if ok, err := doublestar.Match(pattern, name); err == nil && ok {
		return append(names, name)
	}
	return names
}
