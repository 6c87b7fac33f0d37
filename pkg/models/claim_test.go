package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneDoesNotAliasPointers(t *testing.T) {
	verdict := VerdictSupported
	confidence := 0.9
	original := Claim{
		ID:          "c1",
		Text:        "water boils at 100C",
		Status:      StatusCited,
		Verdict:     &verdict,
		Confidence:  &confidence,
		Suggestions: []Suggestion{{Title: "a paper"}},
		Evidence:    []Evidence{{PaperTitle: "p", Excerpt: "e"}},
	}

	clone := original.Clone()
	*clone.Verdict = VerdictUnsupported
	*clone.Confidence = 0.1
	clone.Suggestions[0].Title = "mutated"
	clone.Evidence[0].Excerpt = "mutated"

	assert.Equal(t, VerdictSupported, *original.Verdict)
	assert.Equal(t, 0.9, *original.Confidence)
	assert.Equal(t, "a paper", original.Suggestions[0].Title)
	assert.Equal(t, "e", original.Evidence[0].Excerpt)
}

func TestCloneOfNilPointersStaysNil(t *testing.T) {
	original := Claim{ID: "c1", Text: "x", Status: StatusUncited}
	clone := original.Clone()
	require.Nil(t, clone.Verdict)
	require.Nil(t, clone.Confidence)
	require.Nil(t, clone.Suggestions)
	require.Nil(t, clone.Evidence)
}

func TestVerificationOverlayLeavesBufferedClaimUntouched(t *testing.T) {
	buffered := Claim{ID: "c1", Text: "claim text", Status: StatusCited}
	v := Verification{
		JobID:       "job1",
		ClaimID:     "c1",
		Verdict:     VerdictPartiallySupported,
		Confidence:  0.42,
		ReasoningMd: "partially matches section 2",
		Evidence:    []Evidence{{PaperTitle: "source", Page: 3, Excerpt: "quoted text"}},
	}

	merged := v.Overlay(buffered)

	require.Nil(t, buffered.Verdict)
	require.Nil(t, buffered.Confidence)
	assert.Empty(t, buffered.ReasoningMd)
	assert.False(t, buffered.SourceUploaded)
	assert.Empty(t, buffered.Evidence)

	require.NotNil(t, merged.Verdict)
	assert.Equal(t, VerdictPartiallySupported, *merged.Verdict)
	require.NotNil(t, merged.Confidence)
	assert.Equal(t, 0.42, *merged.Confidence)
	assert.Equal(t, "partially matches section 2", merged.ReasoningMd)
	assert.True(t, merged.SourceUploaded)
	require.Len(t, merged.Evidence, 1)
	assert.Equal(t, "source", merged.Evidence[0].PaperTitle)
}

func TestVerificationOverlayWithoutEvidenceLeavesClaimEvidenceUnset(t *testing.T) {
	buffered := Claim{ID: "c1", Text: "x", Status: StatusCited}
	v := Verification{JobID: "job1", ClaimID: "c1", Verdict: VerdictUnsupported, Confidence: 0.1}

	merged := v.Overlay(buffered)

	assert.Empty(t, merged.Evidence)
}
