package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tartampluch/go-biorhythm/internal/config"
)

// ErrEmptyReply is returned when the model answers with no usable text.
var ErrEmptyReply = errors.New(config.ErrEmptyReply)

// Model generates free-form text from a prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiModel implements Model on the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini client for the given model name.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, errors.New(config.ErrAPIKeyRequired)
	}
	if model == "" {
		model = config.DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrModelInit, err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Name returns the model identifier.
func (m *GeminiModel) Name() string {
	return m.model
}

// Generate asks for a JSON object {"message": "..."} and returns the message.
func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](config.InsightTemperature),
		ResponseMIMEType: config.InsightMIMEType,
		ResponseSchema:   replySchema(),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrModelCall, err)
	}
	return ParseReply(resp.Text())
}

// replySchema constrains the model output to {"message": string}.
func replySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			config.InsightField: {Type: genai.TypeString},
		},
		Required: []string{config.InsightField},
	}
}

type reply struct {
	Message string `json:"message"`
}

// ParseReply extracts the message of a structured reply.
// Models occasionally ignore the schema, so fenced JSON and plain text are accepted too.
func ParseReply(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", ErrEmptyReply
	}

	var r reply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return text, nil
	}
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg, nil
	}
	return "", ErrEmptyReply
}
