// internal/assist/client.go
//
// AI completion client backing the support chat.
//
// Context
// -------
//   One call: forward the visitor's conversation, prefixed with a
//   jewellery-support system prompt, to a chat-completions API and hand
//   back the assistant's reply.  No streaming, no tool calls, no history
//   storage; the frontend keeps the transcript.
//
//------------------------------------------------------------------------------

package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aurelle/storefront/internal/config"
)

// systemPrompt frames every conversation.  Kept short; the model handles
// the rest.
const systemPrompt = "You are the support assistant for Aurelle, a wholesale " +
	"jewellery supplier.  Answer questions about orders, materials, care, and " +
	"wholesale accounts concisely.  If asked about pricing, remind the visitor " +
	"that wholesale pricing requires an approved account."

// Message is one turn of the conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Client calls the completion API.  Safe for concurrent use.
type Client struct {
	BaseURL string // tests override

	apiKey string
	model  string
	http   *http.Client
	log    *zap.SugaredLogger
}

// New builds a Client from the assist config section.  Returns nil when
// no API key is configured; callers treat a nil client as "assist
// disabled".
func New(cfg config.Assist, log *zap.SugaredLogger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	if log == nil {
		log = zap.S()
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	return &Client{
		BaseURL: base,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Complete sends the conversation and returns the assistant's reply.
func (c *Client) Complete(ctx context.Context, conversation []Message) (string, error) {
	msgs := make([]Message, 0, len(conversation)+1)
	msgs = append(msgs, Message{Role: "system", Content: systemPrompt})
	msgs = append(msgs, conversation...)

	body, err := json.Marshal(map[string]any{
		"model":    c.model,
		"messages": msgs,
	})
	if err != nil {
		return "", fmt.Errorf("assist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("assist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist: completion call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assist: completion status %d", resp.StatusCode)
	}

	var out struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("assist: decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("assist: completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
