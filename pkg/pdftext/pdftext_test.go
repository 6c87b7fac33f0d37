package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPagesOnInvalidDataReturnsNil(t *testing.T) {
	pages := ExtractPages([]byte("not a pdf at all"))
	assert.Nil(t, pages)
}

func TestExtractChunksOnInvalidDataFallsBackToSingleEmptyChunk(t *testing.T) {
	chunks := ExtractChunks([]byte("not a pdf at all"))
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Empty(t, chunks[0].Text)
}

func TestGreedyParaSplitGroupsUnderLimit(t *testing.T) {
	text := "first paragraph\nsecond paragraph\nthird paragraph"
	parts := greedyParaSplit(text, 1400)
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0], "first paragraph")
	assert.Contains(t, parts[0], "third paragraph")
}

func TestGreedyParaSplitBreaksAtLimit(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	para := string(long)
	text := para + "\n" + para + "\n" + para

	parts := greedyParaSplit(text, 1400)
	require.Len(t, parts, 3)
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 1400)
	}
}

func TestGreedyParaSplitOnBlankTextReturnsNil(t *testing.T) {
	parts := greedyParaSplit("   \n\n  ", 1400)
	assert.Nil(t, parts)
}
