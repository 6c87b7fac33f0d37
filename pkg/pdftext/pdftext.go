// Package pdftext is the PDF Reader external boundary (spec.md §4.5): it
// treats the PDF text-extraction library as an opaque page reader and never
// raises, returning an empty sequence on any failure. Grounded on
// original_source/core/pdf_text.py.
package pdftext

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/NefariousNiru/papertrail-go/pkg/models"
)

// ExtractPages returns one Page per page of data, 1-based and monotonic in
// page number. Returns nil on any parse failure — including a panic inside
// the underlying library, which the contract treats the same as any other
// failure.
func ExtractPages(data []byte) (pages []models.Page) {
	defer func() {
		if recover() != nil {
			pages = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}

	total := reader.NumPage()
	out := make([]models.Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			out = append(out, models.Page{Number: i, Text: ""})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			out = append(out, models.Page{Number: i, Text: ""})
			continue
		}
		out = append(out, models.Page{Number: i, Text: strings.TrimSpace(text)})
	}
	return out
}

// maxChunkChars is the greedy paragraph-grouping target used by the
// verification-only chunker (spec.md §4.5, §4.8).
const maxChunkChars = 1400

// ExtractChunks chunks data page-aware into paragraph groups of roughly
// maxChunkChars characters each, for the verification path only. Falls back
// to a single empty chunk when extraction yields nothing, mirroring
// original_source/core/pdf_text.py's extract_pdf_chunks.
func ExtractChunks(data []byte) []models.PdfChunk {
	pages := ExtractPages(data)
	if len(pages) == 0 {
		return []models.PdfChunk{{Page: 1, Paragraph: 0, Text: ""}}
	}

	var out []models.PdfChunk
	for _, p := range pages {
		parts := greedyParaSplit(p.Text, maxChunkChars)
		for j, chunk := range parts {
			out = append(out, models.PdfChunk{Page: p.Number, Paragraph: j + 1, Text: chunk})
		}
	}
	if len(out) == 0 {
		return []models.PdfChunk{{Page: 1, Paragraph: 0, Text: ""}}
	}
	return out
}

func greedyParaSplit(text string, maxChars int) []string {
	lines := strings.Split(text, "\n")
	paras := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			paras = append(paras, t)
		}
	}
	if len(paras) == 0 {
		return nil
	}

	var chunks []string
	var buf []string
	size := 0
	for _, p := range paras {
		if size+len(p)+1 > maxChars && len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, "\n"))
			buf = []string{p}
			size = len(p)
		} else {
			buf = append(buf, p)
			size += len(p) + 1
		}
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, "\n"))
	}
	return chunks
}
