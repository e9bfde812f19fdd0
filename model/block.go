package model

import "strings"

// BlockKind is the closed set of block classifications produced by the
// block assembler.
type BlockKind int

const (
	KindUnknown BlockKind = iota
	KindParagraph
	KindList
	KindListItem
	KindCode
	KindTable
	KindEmptyLine
	KindHeadingCandidate
	KindFigurePlaceholder
	KindFootnotePlaceholder
	KindCallout
	KindRawNoise
)

// String returns the canonical name of the block kind.
func (k BlockKind) String() string {
	switch k {
	case KindParagraph:
		return "Paragraph"
	case KindList:
		return "List"
	case KindListItem:
		return "ListItem"
	case KindCode:
		return "CodeBlock"
	case KindTable:
		return "Table"
	case KindEmptyLine:
		return "EmptyLine"
	case KindHeadingCandidate:
		return "HeadingCandidate"
	case KindFigurePlaceholder:
		return "FigurePlaceholder"
	case KindFootnotePlaceholder:
		return "FootnotePlaceholder"
	case KindCallout:
		return "Callout"
	case KindRawNoise:
		return "RawNoise"
	default:
		return "Unknown"
	}
}

// Block is a classified logical unit built from one or more lines of
// spans. Exactly one of the typed metadata pointers is set, matching the
// kind; kinds without extra structure carry none.
type Block struct {
	Kind  BlockKind
	Spans []Span
	BBox  BBox
	Pages PageSpan

	// Lines holds the assembled per-line texts the block was built from,
	// with smart spacing and hyphenation repair already applied. When
	// set, Text uses it instead of re-joining the raw spans.
	Lines []string

	Code     *CodeMeta
	List     *ListMeta
	Table    *TableMeta
	Number   *NumberingMeta
	Footnote *FootnoteMeta
}

// NewBlock creates a block of the given kind, deriving its bounding box
// and page span from the contributing spans.
func NewBlock(kind BlockKind, spans []Span) *Block {
	return &Block{
		Kind:  kind,
		Spans: spans,
		BBox:  SpansBBox(spans),
		Pages: SpansPageSpan(spans),
	}
}

// Text returns the block's text: the assembled line texts joined with
// single spaces, or the trimmed span texts when no line view was
// recorded.
func (b *Block) Text() string {
	if len(b.Lines) > 0 {
		return strings.Join(b.Lines, " ")
	}
	parts := make([]string, 0, len(b.Spans))
	for _, s := range b.Spans {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// CodeMeta carries code block structure: dedented lines with blank lines
// preserved as empty strings. Format is "fenced_fallback" when the block
// is a low-confidence table demoted to code so content is not lost.
type CodeMeta struct {
	Language string
	Lines    []string
	Format   string
}

// ListMeta carries the flat item list produced by nested-list detection.
// Nesting is expressed per item; true tree nesting is deferred to the
// renderer.
type ListMeta struct {
	Items    []ListItem
	MaxLevel int
}

// ListItem is a single list entry with its marker x-position and the
// 0-based nesting level assigned by marker-position clustering.
type ListItem struct {
	Spans     []Span
	Text      string
	XPosition float64
	Level     int
}

// TableMeta carries extracted table rows and the detection confidence
// that admitted the block as a table.
type TableMeta struct {
	Rows       [][]string
	Confidence float64
}

// NumberingMeta carries the numbering facts the NumberingProcessor
// attached to a heading block. ChapterNumber is the normalized global
// chapter ordinal (0 when the heading is not a chapter). AppendixLetter
// is empty unless an appendix was accepted. SectionPath is the parsed
// dotted prefix, truncated to the configured maximum depth.
type NumberingMeta struct {
	ChapterNumber  int
	AppendixLetter string
	SectionPath    []int
	Level          int
}

// FootnoteMeta carries a detected footnote's marker number and merged
// body text.
type FootnoteMeta struct {
	Number string
	Text   string
}
