// Package llm wraps the external LLM provider (spec.md §4.6, §4.8): treated
// as an opaque remote function, called once per page during extraction and
// once per claim during verification. Grounded on the retry/timeout shape of
// teacher's pkg/llm/client.go and pkg/mcp/client.go, ported from gRPC
// streaming to the anthropic-sdk-go chat-completions client since the spec
// calls for HTTPS LLM calls.
package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/NefariousNiru/papertrail-go/pkg/apperr"
	"github.com/NefariousNiru/papertrail-go/pkg/metrics"
)

// Fixed system prompts, part of the external contract (spec.md §6).
const (
	ExtractSystemPrompt = `You are extracting factual claims from one page of an academic paper.
Respond with NDJSON only: one JSON object per line, at most 8 lines, no array brackets, no code fences.
Each line is {"id":string,"text":string,"status":"cited"|"weakly_cited"|"uncited"}.
"text" must be under 280 characters. Infer "status" from the presence of citation markers such as
"[12]" or "(Smith, 2020)" near the claim: "cited" for a direct marker, "weakly_cited" for an indirect
or vague attribution, "uncited" otherwise.`

	VerifySystemPrompt = `You are judging whether a claim is supported by the numbered excerpts provided.
Respond with a single JSON object only, no code fences: {"verdict":"supported"|"partially_supported"|"unsupported","confidence":number,"reasoningMd":string}.
Judge only against the given excerpts. "confidence" is a number between 0 and 1.`
)

const (
	// ExtractTimeout bounds one page's extraction call (spec.md §4.9).
	ExtractTimeout = 60 * time.Second
	// ValidateTimeout bounds a validation-style ping.
	ValidateTimeout = 10 * time.Second
	maxTokens       = 1024
)

// Client calls the configured Anthropic-compatible endpoint. The API key is
// supplied per call since each job carries the caller's own credential
// (spec.md §4.9's pass-through auth model).
type Client struct {
	model  string
	client anthropic.Client
}

// New creates a Client pointed at apiURL using the given protocol version
// header, with model as the default completion model.
func New(apiURL, model, version string) *Client {
	return &Client{
		model: model,
		client: anthropic.NewClient(
			option.WithBaseURL(apiURL),
			option.WithHeader("anthropic-version", version),
		),
	}
}

// complete issues a single-turn chat completion with apiKey and returns the
// concatenated text of all text content blocks. purpose labels the
// llm_request_duration_seconds metric.
func (c *Client) complete(ctx context.Context, apiKey, purpose, system, userPrompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}, option.WithAPIKey(apiKey))
	if err != nil {
		metrics.LLMRequestDuration.WithLabelValues(purpose, "error").Observe(time.Since(start).Seconds())
		return "", classifyError(err)
	}
	metrics.LLMRequestDuration.WithLabelValues(purpose, "ok").Observe(time.Since(start).Seconds())

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}

// ValidateKey performs a minimal ping to confirm apiKey is accepted by the
// provider (spec.md §6 POST /validate-api-key).
func (c *Client) ValidateKey(ctx context.Context, apiKey string) error {
	ctx, cancel := context.WithTimeout(ctx, ValidateTimeout)
	defer cancel()

	_, err := c.complete(ctx, apiKey, "validate", "Reply with the single word: ok.", "ping")
	return err
}

// ExtractPage calls the LLM once for one page and returns the raw NDJSON
// completion body. Parsing and defaulting is the Extraction Worker Pool's
// job (spec.md §4.6, pkg/extract) — this client is a pure transport.
func (c *Client) ExtractPage(ctx context.Context, apiKey string, pageNumber int, pageText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	prompt := extractUserPrompt(pageNumber, pageText)
	return c.complete(ctx, apiKey, "extract", ExtractSystemPrompt, prompt)
}

func extractUserPrompt(pageNumber int, pageText string) string {
	return "Page " + strconv.Itoa(pageNumber) + ":\n" + pageText
}

// Verify calls the LLM once with the claim text and numbered evidence
// excerpts, returning the raw JSON completion body (spec.md §4.8).
func (c *Client) Verify(ctx context.Context, apiKey, claimText string, excerpts []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ExtractTimeout)
	defer cancel()

	prompt := verifyUserPrompt(claimText, excerpts)
	return c.complete(ctx, apiKey, "verify", VerifySystemPrompt, prompt)
}

func verifyUserPrompt(claimText string, excerpts []string) string {
	prompt := "Claim:\n" + claimText + "\n\nExcerpts:\n"
	for i, e := range excerpts {
		prompt += strconv.Itoa(i+1) + ". " + e + "\n"
	}
	return prompt
}

func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return apperr.ErrAuth
		}
	}
	return apperr.ErrUpstream
}
