package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"stock_advisor/internal/models"
)

// TokenStream is a finite, non-restartable sequence of text increments.
// Recv returns io.EOF when the stream is exhausted. Close releases the
// underlying reader and is safe after EOF.
type TokenStream interface {
	Recv() (string, error)
	Close()
}

// Config is the slice of process configuration the client needs.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client adapts the generation backend. It serializes bundles, submits
// them with the selected instruction profile, and surfaces backend
// errors to the caller without retrying.
type Client struct {
	model *openai.ChatModel
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	maxTokens := 800
	model, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generation backend: %w", err)
	}
	return &Client{model: model}, nil
}

// Analyze submits a bundle under the profile's instruction template and
// blocks until the full analysis text is available.
func (c *Client) Analyze(ctx context.Context, bundle *models.AnalysisBundle, profile Profile) (string, error) {
	payload, err := SerializeBundle(bundle)
	if err != nil {
		return "", err
	}

	msgs := []*schema.Message{
		schema.SystemMessage(profile.systemPrompt()),
		schema.UserMessage("Analyze the following structured stock data:\n\n" + payload),
	}

	out, err := c.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generation backend: %w", err)
	}
	return strings.TrimSpace(out.Content), nil
}

// ChatStream starts a streamed free-form generation and returns the
// lazy token sequence. Cancelling ctx terminates the stream early.
func (c *Client) ChatStream(ctx context.Context, text string) (TokenStream, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(ChatFollowUp.systemPrompt()),
		schema.UserMessage(text),
	}

	reader, err := c.model.Stream(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("generation backend: %w", err)
	}
	return &messageStream{reader: reader}, nil
}

type messageStream struct {
	reader *schema.StreamReader[*schema.Message]
}

func (s *messageStream) Recv() (string, error) {
	msg, err := s.reader.Recv()
	if err != nil {
		// io.EOF passes through untouched: it terminates the stream.
		return "", err
	}
	return msg.Content, nil
}

func (s *messageStream) Close() { s.reader.Close() }

// SerializeBundle renders the bundle as indented JSON for the
// instruction backend. Error-marked fields serialize as "unavailable".
func SerializeBundle(bundle *models.AnalysisBundle) (string, error) {
	raw, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize bundle: %w", err)
	}
	return string(raw), nil
}
