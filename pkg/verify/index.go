package verify

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

// Index is a row-aligned matrix of L2-normalized chunk embeddings, built
// fresh per verify call (spec.md §3 EmbeddingIndex: "In-memory per verify
// call").
type Index struct {
	chunks     []models.PdfChunk
	embeddings *mat.Dense
}

// BuildIndex encodes every chunk's text with embedder and assembles the
// row-aligned matrix (spec.md §4.8 step 2).
func BuildIndex(chunks []models.PdfChunk, embedder Embedder) *Index {
	rows := len(chunks)
	data := make([]float64, 0, rows*embeddingDim)
	for _, c := range chunks {
		data = append(data, embedder.Embed(c.Text)...)
	}
	return &Index{
		chunks:     chunks,
		embeddings: mat.NewDense(rows, embeddingDim, data),
	}
}

// scoredChunk is one retrieval hit.
type scoredChunk struct {
	chunk models.PdfChunk
	score float64
}

// TopK returns the k highest-cosine-similarity chunks for query, computed
// via a matrix-vector product since every row is already L2-normalized
// (spec.md §4.8 steps 3–5).
func (idx *Index) TopK(query string, embedder Embedder, k int) []scoredChunk {
	rows, _ := idx.embeddings.Dims()
	if rows == 0 {
		return nil
	}
	if k > rows {
		k = rows
	}
	if k < 1 {
		k = 1
	}

	q := mat.NewVecDense(embeddingDim, embedder.Embed(query))
	var sims mat.VecDense
	sims.MulVec(idx.embeddings, q)

	scored := make([]scoredChunk, rows)
	for i := 0; i < rows; i++ {
		scored[i] = scoredChunk{chunk: idx.chunks[i], score: sims.AtVec(i)}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored[:k]
}
