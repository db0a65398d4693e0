// Package openai provides a model-backed query parser using an
// OpenAI-compatible chat completion API. It fulfils the same advisory
// contract as the local heuristic: extraction failures never fail a search.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/openlistings/searchd/internal/domain"
	"github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
	"github.com/openlistings/searchd/internal/metrics"
	"github.com/openlistings/searchd/internal/parser"
)

const systemPrompt = `You extract structured marketplace search filters from a query.
Respond with a single JSON object: {"categorySlug": string, "filters": object}.
categorySlug must be one of the provided slugs or "" when no category matches.
filters maps attribute keys to a value, an array of values, or for "price" an
object with numeric "min"/"max". Only use attribute keys and values from the
provided vocabulary. Omit anything the query does not imply.`

// Parser is a query parser backed by an OpenAI-compatible completion API.
type Parser struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	provider    string
	logger      *zap.Logger
}

// Config holds the parser provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Provider    string
	Logger      *zap.Logger
}

// NewParser creates an OpenAI-compatible parser provider.
func NewParser(cfg *Config) *Parser {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Parser{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Parse implements parser.Parser via one JSON-mode chat completion.
func (p *Parser) Parse(
	ctx context.Context, query string, categories []category.Category, vocab parser.Vocabulary,
) (parser.Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, categories, vocab)},
		},
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ParserRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		metrics.ParserErrorsTotal.WithLabelValues(p.provider, p.model, "api_error").Inc()
		return parser.Result{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ParserRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		metrics.ParserErrorsTotal.WithLabelValues(p.provider, p.model, "empty_response").Inc()
		return parser.Result{}, fmt.Errorf("empty completion response: %w", domain.ErrParserProvider)
	}

	res, err := decodeResult(resp.Choices[0].Message.Content, categories)
	if err != nil {
		metrics.ParserRequestsTotal.WithLabelValues(p.provider, p.model, "error").Inc()
		metrics.ParserErrorsTotal.WithLabelValues(p.provider, p.model, "bad_output").Inc()
		return parser.Result{}, err
	}

	metrics.ParserRequestsTotal.WithLabelValues(p.provider, p.model, "success").Inc()
	metrics.ParserRequestDuration.WithLabelValues(p.provider, p.model).Observe(duration.Seconds())

	return res, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Parser) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildPrompt renders the catalog context and the raw query for the model.
func buildPrompt(query string, categories []category.Category, vocab parser.Vocabulary) string {
	var b strings.Builder

	b.WriteString("Categories:\n")
	for _, cat := range categories {
		b.WriteString("- ")
		b.WriteString(cat.Slug())
		b.WriteString(" (")
		b.WriteString(cat.Name())
		if syns := cat.Synonyms(); len(syns) > 0 {
			b.WriteString("; also: ")
			b.WriteString(strings.Join(syns, ", "))
		}
		b.WriteString(")\n")
	}

	b.WriteString("Vocabulary:\n")
	for _, key := range vocab.Keys() {
		b.WriteString("- ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(strings.Join(vocab.Values(key), ", "))
		b.WriteString("\n")
	}

	b.WriteString("Query: ")
	b.WriteString(query)
	return b.String()
}

// decodeResult parses the model output. The filters object goes through the
// same untrusted-payload decoding as client filters; a slug the catalog does
// not contain is dropped rather than propagated.
func decodeResult(content string, categories []category.Category) (parser.Result, error) {
	var raw struct {
		CategorySlug string          `json:"categorySlug"`
		Filters      json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return parser.Result{}, fmt.Errorf("decode completion output: %w: %w", err, domain.ErrParserProvider)
	}

	filters, err := filterset.DecodeJSON(raw.Filters)
	if err != nil {
		return parser.Result{}, fmt.Errorf("decode completion filters: %w: %w", err, domain.ErrParserProvider)
	}

	res := parser.Result{Filters: filters}
	for _, cat := range categories {
		if cat.Slug() == raw.CategorySlug {
			res.CategorySlug = raw.CategorySlug
			break
		}
	}
	return res, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrParserProvider so callers can treat
// them uniformly as advisory failures.
func parseAPIError(err error) error {
	wrap := domain.ErrParserProvider

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("parser API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("parser API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("parse request failed: %w", wrap)
}
