package querygen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
	"github.com/DjordjeVuckovic/searchbench/pkg/config/env"
	"github.com/DjordjeVuckovic/searchbench/pkg/middleware"
	"github.com/DjordjeVuckovic/searchbench/pkg/stringsutil"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel           = "gpt-5-mini"
	DefaultReasoningEffort = "low"
)

// Completer is the part of *openai.Client the generator uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Generator struct {
	client          Completer
	model           string
	reasoningEffort string
}

type Option func(*Generator)

func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

func WithReasoningEffort(effort string) Option {
	return func(g *Generator) {
		g.reasoningEffort = effort
	}
}

func New(client Completer, opts ...Option) *Generator {
	g := &Generator{
		client:          client,
		model:           DefaultModel,
		reasoningEffort: DefaultReasoningEffort,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromEnv builds an OpenAI backed generator from OPENAI_API_KEY,
// OPENAI_MODEL and OPENAI_BASE_URL.
func NewFromEnv(opts ...Option) (*Generator, error) {
	apiKey := env.Lookup("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, apperr.NewConfig("OPENAI_API_KEY is required for query generation")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := env.Lookup("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Transport: middleware.Logger(nil)}

	opts = append([]Option{WithModel(env.Lookup("OPENAI_MODEL"))}, opts...)
	return New(openai.NewClientWithConfig(cfg), opts...), nil
}

type queriesResponse struct {
	Queries []string `json:"queries"`
}

// Generate asks the model for count varied search queries. The result holds
// at most count non-empty queries.
func (g *Generator) Generate(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, apperr.NewConfig(fmt.Sprintf("query count must be positive, got %d", count))
	}

	slog.Info("Generating queries", "model", g.model, "count", count)

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(count)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		ReasoningEffort: g.reasoningEffort,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate queries: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate queries: model returned no choices")
	}

	var parsed queriesResponse
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse generated queries: %w", err)
	}

	queries := stringsutil.RemoveEmptyStrings(parsed.Queries)
	if len(queries) > count {
		queries = queries[:count]
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("generate queries: model returned no usable queries")
	}

	slog.Info("Generated queries", "requested", count, "received", len(queries))
	return queries, nil
}

func buildPrompt(count int) string {
	return fmt.Sprintf(`Generate %d diverse web search queries covering a wide variety of topics, styles and use cases.

Mix:
- topics (technology, science, history, entertainment, current events, travel, health)
- styles (questions, keywords, phrases)
- lengths (short and long)
- specificity (broad and narrow)

Respond with a JSON object of the form {"queries": ["...", "..."]} and nothing else.`, count)
}
