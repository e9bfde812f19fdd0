// Package footnotes detects footnote markers and footnote body text
// from positioned spans and pairs them into numbered footnotes.
package footnotes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/strata/diag"
	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/model"
)

var markerRE = regexp.MustCompile(`^\d{1,3}$`)

// DetectorConfig controls footnote detection.
type DetectorConfig struct {
	// BandRatio is the fraction of page height, measured from the
	// page bottom, considered the footnote zone.
	BandRatio float64
	// SizeRatioMax marks a span as a superscript marker when its font
	// size falls below this fraction of the surrounding text size and
	// the extractor did not flag it explicitly.
	SizeRatioMax float64
}

// DefaultDetectorConfig returns the detection defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		BandRatio:    0.15,
		SizeRatioMax: 0.75,
	}
}

// Footnote is a paired marker and body.
type Footnote struct {
	Number int
	Text   string
	Page   int
	// MarkerPage is the page the in-text reference appears on. Zero
	// when only the body was found.
	MarkerPage int
}

// Detector finds footnotes across a span stream.
type Detector struct {
	config DetectorConfig
	merger *layout.LineMerger
}

// NewDetector creates a detector with the given configuration.
func NewDetector(config DetectorConfig) *Detector {
	return &Detector{config: config, merger: layout.NewLineMerger()}
}

// SetLineMerger overrides the merger used to group footnote body text
// into lines, keeping the caller's y tolerance.
func (d *Detector) SetLineMerger(m *layout.LineMerger) {
	d.merger = m
}

// Detect scans spans and returns footnotes ordered by number. Page
// heights map page number to page height in points; pages without an
// entry are skipped for body detection but still scanned for markers.
// Markers without a matching body, and bodies without a matching
// marker, are reported through the collector and still returned when a
// body exists.
func (d *Detector) Detect(spans []model.Span, pageHeights map[int]float64, collector *diag.Collector) []Footnote {
	markers := d.findMarkers(spans, pageHeights)
	bodies := d.findBodies(spans, pageHeights)

	numbers := make([]int, 0, len(bodies))
	for n := range bodies {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	out := make([]Footnote, 0, len(numbers))
	for _, n := range numbers {
		body := bodies[n]
		fn := Footnote{Number: n, Text: body.text, Page: body.page}
		if mp, ok := markers[n]; ok {
			fn.MarkerPage = mp
			delete(markers, n)
		} else if collector != nil {
			collector.Record(diag.CategoryFootnote, "footnote_body_without_marker", map[string]any{"number": n})
		}
		out = append(out, fn)
	}

	if collector != nil {
		orphans := make([]int, 0, len(markers))
		for n := range markers {
			orphans = append(orphans, n)
		}
		sort.Ints(orphans)
		for _, n := range orphans {
			collector.Record(diag.CategoryFootnote, "footnote_marker_without_body", map[string]any{"number": n})
		}
	}
	return out
}

type footnoteBody struct {
	text string
	page int
}

// FilterBodySpans removes bottom-band spans on the given pages from a
// span stream. Callers use it to keep recognized footnote bodies out of
// block assembly.
func (d *Detector) FilterBodySpans(spans []model.Span, pageHeights map[int]float64, pages map[int]bool) []model.Span {
	out := make([]model.Span, 0, len(spans))
	for _, s := range spans {
		h, ok := pageHeights[s.Page]
		if ok && pages[s.Page] && s.BBox.Y1 < h*d.config.BandRatio {
			continue
		}
		out = append(out, s)
	}
	return out
}

// findMarkers returns in-text superscript numeric markers outside the
// footnote band, keyed by number, keeping the first page each appears
// on.
func (d *Detector) findMarkers(spans []model.Span, pageHeights map[int]float64) map[int]int {
	markers := make(map[int]int)
	for i, s := range spans {
		text := strings.TrimSpace(s.Text)
		if !markerRE.MatchString(text) {
			continue
		}
		if !d.isSuperscript(s, neighborSize(spans, i)) {
			continue
		}
		if h, ok := pageHeights[s.Page]; ok && s.BBox.Y1 < h*d.config.BandRatio {
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		if _, seen := markers[n]; !seen {
			markers[n] = s.Page
		}
	}
	return markers
}

// findBodies groups spans in the bottom band of each page into lines
// and reads lines starting with a footnote number as bodies.
// Continuation lines without a leading number are appended to the
// previous body.
func (d *Detector) findBodies(spans []model.Span, pageHeights map[int]float64) map[int]footnoteBody {
	byPage := make(map[int][]model.Span)
	for _, s := range spans {
		h, ok := pageHeights[s.Page]
		if !ok {
			continue
		}
		if s.BBox.Y1 < h*d.config.BandRatio {
			byPage[s.Page] = append(byPage[s.Page], s)
		}
	}

	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	bodies := make(map[int]footnoteBody)
	for _, page := range pages {
		lines := d.merger.Merge(byPage[page])
		current := 0
		for _, line := range lines {
			if line.IsEmpty() {
				continue
			}
			number, rest, ok := splitLeadingNumber(line.Text)
			if ok {
				bodies[number] = footnoteBody{text: rest, page: page}
				current = number
				continue
			}
			if current != 0 {
				body := bodies[current]
				joined := layout.RepairHyphenation([]string{body.text, strings.TrimSpace(line.Text)})
				body.text = strings.Join(joined, " ")
				bodies[current] = body
			}
		}
	}
	return bodies
}

// isSuperscript reports whether a span is a marker, either flagged by
// the extractor or visibly smaller than its neighbors.
func (d *Detector) isSuperscript(s model.Span, neighbor float64) bool {
	if s.Style.Superscript {
		return true
	}
	if neighbor <= 0 || s.FontSize <= 0 {
		return false
	}
	return s.FontSize < neighbor*d.config.SizeRatioMax
}

// neighborSize returns the font size of the nearest same-page span
// adjacent in reading order, preferring the preceding one.
func neighborSize(spans []model.Span, i int) float64 {
	if i > 0 && spans[i-1].Page == spans[i].Page {
		return spans[i-1].FontSize
	}
	if i+1 < len(spans) && spans[i+1].Page == spans[i].Page {
		return spans[i+1].FontSize
	}
	return 0
}

// splitLeadingNumber splits "3 Body text" into (3, "Body text", true).
// A bare period or parenthesis after the number is also accepted.
func splitLeadingNumber(text string) (int, string, bool) {
	trimmed := strings.TrimSpace(text)
	end := 0
	for end < len(trimmed) && trimmed[end] >= '0' && trimmed[end] <= '9' {
		end++
	}
	if end == 0 || end > 3 {
		return 0, "", false
	}
	rest := trimmed[end:]
	rest = strings.TrimPrefix(rest, ".")
	rest = strings.TrimPrefix(rest, ")")
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return 0, "", false
	}
	n, err := strconv.Atoi(trimmed[:end])
	if err != nil || n == 0 {
		return 0, "", false
	}
	return n, strings.TrimSpace(rest), true
}
