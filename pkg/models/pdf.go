package models

// Page is one page of extracted PDF text (spec.md §4.5). Page numbers are
// 1-based.
type Page struct {
	Number int
	Text   string
}

// PdfChunk is a derived, never-persisted paragraph group used only by the
// verification path (spec.md §3, §4.8).
type PdfChunk struct {
	Page      int
	Section   string
	Paragraph int
	Text      string
}
