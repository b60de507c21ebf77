package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/bridgefs/bridgefs/internal/conversation"
	"github.com/bridgefs/bridgefs/internal/creds"
	"github.com/bridgefs/bridgefs/internal/remote"
)

// Credential lookup for OpenAI-compatible endpoints.
const (
	openAICredKey = "openai_api_key"
	openAIEnvVar  = "OPENAI_API_KEY"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAICompleter generates replies through any chat-completions
// endpoint speaking the OpenAI wire dialect, including self-hosted
// gateways. The base URL is configurable for that reason.
type OpenAICompleter struct {
	client  *remote.Client
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAICompleter resolves credentials through the standard chain.
func NewOpenAICompleter(apiKey string, store creds.Store, baseURL, model string) *OpenAICompleter {
	key := creds.Resolve(apiKey, store, openAICredKey, openAIEnvVar)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := remote.New()
	client.SetRate(2, 4)
	return &OpenAICompleter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  key,
		model:   model,
	}
}

func (c *OpenAICompleter) Authorized() bool {
	return c.apiKey != ""
}

// Models lists the endpoint's model identifiers.
func (c *OpenAICompleter) Models(ctx context.Context) ([]string, error) {
	var body []byte
	err := c.client.Do(ctx, func() error {
		resp, err := c.client.Resty.R().
			SetContext(ctx).
			SetAuthToken(c.apiKey).
			Get(c.baseURL + "/models")
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("list models: %s: %s", resp.Status(), resp.String())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	var models []string
	for _, id := range gjson.GetBytes(body, "data.#.id").Array() {
		models = append(models, id.String())
	}
	return models, nil
}

// Complete sends the history plus prompt and returns the reply text.
func (c *OpenAICompleter) Complete(ctx context.Context, history []conversation.Message, prompt string) (string, error) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	msgs := make([]wireMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, wireMessage{Role: string(conversation.RoleUser), Content: prompt})

	var body []byte
	err := c.client.Do(ctx, func() error {
		resp, err := c.client.Resty.R().
			SetContext(ctx).
			SetAuthToken(c.apiKey).
			SetBody(map[string]interface{}{
				"model":    c.model,
				"messages": msgs,
			}).
			Post(c.baseURL + "/chat/completions")
		if err != nil {
			return fmt.Errorf("chat completion: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("chat completion: %s: %s", resp.Status(), resp.String())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return "", err
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("chat completion: no content in response")
	}
	return content.String(), nil
}
