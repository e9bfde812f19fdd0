// Package ingest extracts positioned text spans from PDF files.
//
// It is a thin adapter over github.com/ledongthuc/pdf: per-character
// text items are grouped into spans on font changes, size changes, and
// horizontal gaps, and style flags are derived from font names. The
// rest of the pipeline consumes only model.Span values, so alternative
// extractors can be swapped in.
package ingest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tsawler/strata/model"
)

// Config controls span extraction.
type Config struct {
	// ExcludePages lists 1-based page numbers to skip.
	ExcludePages []int
	// CharGapThreshold splits a span when the horizontal gap between
	// consecutive characters exceeds this multiple of the character
	// width.
	CharGapThreshold float64
}

// DefaultConfig returns the extraction defaults.
func DefaultConfig() Config {
	return Config{CharGapThreshold: 1.5}
}

// Document is the result of extraction: the span stream in reading
// order plus per-page heights for band calculations.
type Document struct {
	Spans       []model.Span
	PageHeights map[int]float64
}

// Extractor reads PDF files into span streams.
type Extractor struct {
	config   Config
	excluded map[int]bool
}

// NewExtractor creates an extractor with the given configuration.
func NewExtractor(config Config) *Extractor {
	if config.CharGapThreshold <= 0 {
		config.CharGapThreshold = DefaultConfig().CharGapThreshold
	}
	excluded := make(map[int]bool, len(config.ExcludePages))
	for _, p := range config.ExcludePages {
		excluded[p] = true
	}
	return &Extractor{config: config, excluded: excluded}
}

// ExtractFile opens a PDF and extracts all pages.
func (e *Extractor) ExtractFile(path string) (*Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return e.Extract(reader)
}

// Extract walks every page of an opened reader. Page numbers are
// 1-based. Order indexes are strictly increasing across the whole
// document.
func (e *Extractor) Extract(reader *pdf.Reader) (*Document, error) {
	doc := &Document{PageHeights: make(map[int]float64)}
	order := 0
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if e.excluded[pageNum] {
			continue
		}
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		doc.PageHeights[pageNum] = pageHeight(page)

		spans := e.groupPage(page.Content().Text, pageNum, &order)
		doc.Spans = append(doc.Spans, spans...)
	}
	return doc, nil
}

// groupPage groups per-character text items into spans. Items are
// first sorted into reading order (top of page first, then left to
// right), then accumulated until the font, size, or gap rules break
// the run.
func (e *Extractor) groupPage(items []pdf.Text, pageNum int, order *int) []model.Span {
	if len(items) == 0 {
		return nil
	}
	sorted := append([]pdf.Text(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var spans []model.Span
	var run []pdf.Text
	flush := func() {
		if len(run) == 0 {
			return
		}
		spans = append(spans, buildSpan(run, pageNum, *order))
		*order++
		run = run[:0]
	}

	for _, item := range sorted {
		if len(run) > 0 && e.breaksRun(run[len(run)-1], item) {
			flush()
		}
		run = append(run, item)
	}
	flush()
	return spans
}

// breaksRun reports whether the next character starts a new span.
func (e *Extractor) breaksRun(prev, next pdf.Text) bool {
	if next.Font != prev.Font {
		return true
	}
	if math.Abs(next.FontSize-prev.FontSize) > 0.1 {
		return true
	}
	if prev.Y != next.Y {
		return true
	}
	gap := next.X - (prev.X + prev.W)
	width := prev.W
	if width <= 0 {
		width = prev.FontSize * 0.5
	}
	return gap > width*e.config.CharGapThreshold
}

// buildSpan folds a character run into a single span.
func buildSpan(run []pdf.Text, pageNum, order int) model.Span {
	var text strings.Builder
	first := run[0]
	bbox := model.BBox{
		X0: first.X,
		Y0: first.Y,
		X1: first.X + first.W,
		Y1: first.Y + first.FontSize,
	}
	for _, item := range run {
		text.WriteString(item.S)
		bbox = bbox.Union(model.BBox{
			X0: item.X,
			Y0: item.Y,
			X1: item.X + item.W,
			Y1: item.Y + item.FontSize,
		})
	}
	return model.Span{
		Text:       text.String(),
		BBox:       bbox,
		FontName:   first.Font,
		FontSize:   first.FontSize,
		Style:      styleFromFont(first.Font),
		Page:       pageNum,
		OrderIndex: order,
	}
}

var monospaceFonts = []string{
	"courier", "mono", "consolas", "menlo", "monaco", "inconsolata",
	"dejavusansmono", "liberationmono", "sourcecodepro",
}

// styleFromFont derives style flags from a PostScript font name.
func styleFromFont(font string) model.StyleFlags {
	lower := strings.ToLower(font)
	var flags model.StyleFlags
	if strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy") {
		flags.Bold = true
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags.Italic = true
	}
	for _, name := range monospaceFonts {
		if strings.Contains(lower, name) {
			flags.Monospace = true
			break
		}
	}
	return flags
}

// pageHeight reads the MediaBox height, falling back to US Letter.
func pageHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.Kind() == pdf.Array && box.Len() == 4 {
		y0 := box.Index(1).Float64()
		y1 := box.Index(3).Float64()
		if y1 > y0 {
			return y1 - y0
		}
	}
	return 792
}
