package verify

import (
	"hash/fnv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// embeddingDim is the hashed bag-of-words vector width used by Embedder.
const embeddingDim = 256

// Embedder turns text into an L2-normalized vector. The real embedding model
// is an external collaborator out of scope for this specification (spec.md
// §2 Non-goals: "the embedding model (treated as an opaque vectorizer)");
// Embedder is a self-contained stand-in satisfying the same contract so the
// verification pipeline does not depend on a second network call per claim.
type Embedder interface {
	Embed(text string) []float64
}

// HashEmbedder embeds text with a feature-hashing bag-of-words: each token
// hashes into one of embeddingDim buckets, and the resulting vector is
// L2-normalized exactly as build_index() normalizes real model output in
// original_source/core/embeddings_retriever.py.
type HashEmbedder struct{}

// NewHashEmbedder creates a HashEmbedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (HashEmbedder) Embed(text string) []float64 {
	vec := make([]float64, embeddingDim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%embeddingDim]++
	}

	norm := floats.Norm(vec, 2)
	if norm == 0 {
		return vec
	}
	floats.Scale(1/norm, vec)
	return vec
}
