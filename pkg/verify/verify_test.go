package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

func TestHashEmbedderIsL2Normalized(t *testing.T) {
	e := NewHashEmbedder()
	vec := e.Embed("water boils at one hundred degrees celsius")

	var sumSquares float64
	for _, v := range vec {
		sumSquares += v * v
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-9)
}

func TestHashEmbedderOnEmptyTextReturnsZeroVector(t *testing.T) {
	e := NewHashEmbedder()
	vec := e.Embed("")
	for _, v := range vec {
		assert.Equal(t, 0.0, v)
	}
}

func TestTopKRanksMostSimilarChunkFirst(t *testing.T) {
	e := NewHashEmbedder()
	chunks := []models.PdfChunk{
		{Page: 1, Paragraph: 1, Text: "water boils at one hundred degrees celsius at sea level"},
		{Page: 2, Paragraph: 1, Text: "the stock market fell sharply amid recession fears"},
		{Page: 3, Paragraph: 1, Text: "boiling water reaches one hundred degrees celsius"},
	}
	index := BuildIndex(chunks, e)

	hits := index.TopK("water boils at one hundred degrees celsius", e, 2)
	require.Len(t, hits, 2)
	assert.Contains(t, []int{1, 3}, hits[0].chunk.Page)
	assert.GreaterOrEqual(t, hits[0].score, hits[1].score)
}

func TestClipWordsUnderLimitUnchanged(t *testing.T) {
	assert.Equal(t, "short excerpt", clipWords("short excerpt", 100))
}

func TestClipWordsOverLimitTruncatesAtWordBoundary(t *testing.T) {
	text := strings.Repeat("word ", 150)
	clipped := clipWords(text, 100)
	assert.Len(t, strings.Fields(clipped), 100)
}

func TestParseAdjudicationMapsUnknownVerdictToUnsupported(t *testing.T) {
	verdict, confidence, reasoning := parseAdjudication(`{"verdict":"mostly_true","confidence":0.7,"reasoningMd":"x"}`)
	assert.Equal(t, models.VerdictUnsupported, verdict)
	assert.Equal(t, 0.7, confidence)
	assert.Equal(t, "x", reasoning)
}

func TestParseAdjudicationClampsConfidence(t *testing.T) {
	verdict, confidence, _ := parseAdjudication(`{"verdict":"supported","confidence":1.8}`)
	assert.Equal(t, models.VerdictSupported, verdict)
	assert.Equal(t, 1.0, confidence)

	_, confidence, _ = parseAdjudication(`{"verdict":"supported","confidence":-0.3}`)
	assert.Equal(t, 0.0, confidence)
}

func TestParseAdjudicationOnMalformedBodyFallsBackToUnsupported(t *testing.T) {
	verdict, confidence, reasoning := parseAdjudication("not json")
	assert.Equal(t, models.VerdictUnsupported, verdict)
	assert.Equal(t, 0.0, confidence)
	assert.Empty(t, reasoning)
}

type fakeVerifyCaller struct {
	response string
}

func (f *fakeVerifyCaller) Verify(ctx context.Context, apiKey, claimText string, excerpts []string) (string, error) {
	return f.response, nil
}

func TestPipelineVerifyAssemblesEvidenceAndVerdict(t *testing.T) {
	caller := &fakeVerifyCaller{response: `{"verdict":"supported","confidence":0.95,"reasoningMd":"matches excerpt 1"}`}
	pipeline := New(caller, NewHashEmbedder())

	pdfBytes := []byte("not a real pdf")
	result, err := pipeline.Verify(context.Background(), "key", "job1", "c1", "water boils at 100C", pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, "job1", result.JobID)
	assert.Equal(t, "c1", result.ClaimID)
	assert.Equal(t, models.VerdictSupported, result.Verdict)
	assert.Equal(t, 0.95, result.Confidence)
	assert.NotEmpty(t, result.Evidence)
}
