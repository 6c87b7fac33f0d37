// Package verify is the Verification Pipeline (spec.md §4.8): it chunks the
// cited source PDF, retrieves the top-k chunks most similar to a claim, and
// asks the LLM to adjudicate a verdict against the retrieved excerpts.
// Grounded on original_source/core/embeddings_retriever.py for the
// build-index/top-k shape.
package verify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/NefariousNiru/papertrail-go/pkg/metrics"
	"github.com/NefariousNiru/papertrail-go/pkg/models"
	"github.com/NefariousNiru/papertrail-go/pkg/pdftext"
)

const (
	defaultK = 4
	maxWords = 100
)

// Caller is the claim-level LLM transport the pipeline drives (implemented
// by *llm.Client).
type Caller interface {
	Verify(ctx context.Context, apiKey, claimText string, excerpts []string) (string, error)
}

// Pipeline runs the chunk → retrieve → adjudicate flow.
type Pipeline struct {
	caller   Caller
	embedder Embedder
	k        int
}

// New creates a Pipeline with defaultK retrieved excerpts per claim.
func New(caller Caller, embedder Embedder) *Pipeline {
	if embedder == nil {
		embedder = NewHashEmbedder()
	}
	return &Pipeline{caller: caller, embedder: embedder, k: defaultK}
}

// Verify chunks sourcePdfBytes, retrieves the top-k excerpts for claimText,
// and asks the LLM to adjudicate (spec.md §4.8 algorithm steps 1–7).
func (p *Pipeline) Verify(ctx context.Context, apiKey, jobID, claimID, claimText string, sourcePdfBytes []byte) (models.Verification, error) {
	chunks := pdftext.ExtractChunks(sourcePdfBytes)
	index := BuildIndex(chunks, p.embedder)
	hits := index.TopK(claimText, p.embedder, p.k)

	excerpts := make([]string, 0, len(hits))
	evidence := make([]models.Evidence, 0, len(hits))
	for _, h := range hits {
		clipped := clipWords(h.chunk.Text, maxWords)
		excerpts = append(excerpts, clipped)
		evidence = append(evidence, models.Evidence{
			Page:      h.chunk.Page,
			Paragraph: h.chunk.Paragraph,
			Excerpt:   clipped,
		})
	}

	raw, err := p.caller.Verify(ctx, apiKey, claimText, excerpts)
	if err != nil {
		return models.Verification{}, err
	}

	verdict, confidence, reasoningMd := parseAdjudication(raw)
	metrics.VerificationsTotal.WithLabelValues(string(verdict)).Inc()
	return models.Verification{
		JobID:       jobID,
		ClaimID:     claimID,
		Verdict:     verdict,
		Confidence:  confidence,
		ReasoningMd: reasoningMd,
		Evidence:    evidence,
	}, nil
}

// parseAdjudication decodes the LLM's JSON object, mapping unknown verdicts
// to unsupported and clamping confidence to [0,1] (spec.md §4.8 step 7). A
// body that fails to parse is treated the same as an explicit "unsupported"
// with zero confidence rather than raising.
func parseAdjudication(raw string) (models.Verdict, float64, string) {
	var decoded struct {
		Verdict     string  `json:"verdict"`
		Confidence  float64 `json:"confidence"`
		ReasoningMd string  `json:"reasoningMd"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &decoded); err != nil {
		return models.VerdictUnsupported, 0, ""
	}

	verdict := models.Verdict(decoded.Verdict)
	switch verdict {
	case models.VerdictSupported, models.VerdictPartiallySupported, models.VerdictUnsupported:
	default:
		verdict = models.VerdictUnsupported
	}

	confidence := decoded.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return verdict, confidence, decoded.ReasoningMd
}

// clipWords truncates text to at most max words, word-boundary-safe.
func clipWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ")
}
