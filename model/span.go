package model

// StyleFlags carries the font style attributes the extraction
// collaborator could determine for a span.
type StyleFlags struct {
	Bold        bool
	Italic      bool
	Monospace   bool
	Superscript bool
}

// Span is a single styled, positioned run of text. OrderIndex is
// strictly increasing across the whole document; the extraction
// collaborator enforces that invariant. Spans are immutable once
// produced.
type Span struct {
	Text       string
	BBox       BBox
	FontName   string
	FontSize   float64
	Style      StyleFlags
	Page       int // 1-based
	OrderIndex int
}

// SpansBBox computes the union bounding box of a set of spans.
// Returns the zero box for an empty slice.
func SpansBBox(spans []Span) BBox {
	if len(spans) == 0 {
		return BBox{}
	}
	box := spans[0].BBox
	for _, s := range spans[1:] {
		box = box.Union(s.BBox)
	}
	return box
}

// SpansPageSpan computes the (first, last) page range of a set of spans.
func SpansPageSpan(spans []Span) PageSpan {
	if len(spans) == 0 {
		return PageSpan{}
	}
	ps := PageSpan{First: spans[0].Page, Last: spans[0].Page}
	for _, s := range spans[1:] {
		if s.Page < ps.First {
			ps.First = s.Page
		}
		if s.Page > ps.Last {
			ps.Last = s.Page
		}
	}
	return ps
}

// PageSpan is an inclusive 1-based page range.
type PageSpan struct {
	First int
	Last  int
}
