package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bridgefs/bridgefs/internal/conversation"
	"github.com/bridgefs/bridgefs/internal/creds"
)

// Credential lookup for the Anthropic completer.
const (
	anthropicCredKey = "anthropic_api_key"
	anthropicEnvVar  = "ANTHROPIC_API_KEY"
)

const defaultAnthropicModel = string(anthropic.ModelClaude3_7SonnetLatest)

// AnthropicCompleter generates replies through the Anthropic messages
// API.
type AnthropicCompleter struct {
	client *anthropic.Client
	apiKey string
	model  string
}

// NewAnthropicCompleter resolves credentials through the standard chain
// and builds the SDK client. An empty model selects the default.
func NewAnthropicCompleter(apiKey string, store creds.Store, model string) *AnthropicCompleter {
	key := creds.Resolve(apiKey, store, anthropicCredKey, anthropicEnvVar)
	if model == "" {
		model = defaultAnthropicModel
	}
	client := anthropic.NewClient(option.WithAPIKey(key))
	return &AnthropicCompleter{
		client: &client,
		apiKey: key,
		model:  model,
	}
}

// Authorized reports whether an API key was resolved.
func (c *AnthropicCompleter) Authorized() bool {
	return c.apiKey != ""
}

// Models returns the model names this completer can address.
func (c *AnthropicCompleter) Models(ctx context.Context) ([]string, error) {
	if !c.Authorized() {
		return nil, fmt.Errorf("anthropic: no API key resolved")
	}
	return []string{
		string(anthropic.ModelClaudeOpus4_0),
		string(anthropic.ModelClaudeSonnet4_0),
		string(anthropic.ModelClaude3_7SonnetLatest),
		string(anthropic.ModelClaude3_5HaikuLatest),
	}, nil
}

// Complete sends the history plus prompt and returns the reply text.
func (c *AnthropicCompleter) Complete(ctx context.Context, history []conversation.Message, prompt string) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case conversation.RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages:  msgs,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}
