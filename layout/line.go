package layout

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/strata/model"
)

// punctuationOnlyRE matches spans consisting solely of punctuation or
// symbols. Such spans are concatenated without a leading space so that
// hyphen-prefix sequences survive for hyphenation repair.
var punctuationOnlyRE = regexp.MustCompile(`^[^\w\s]+$`)

// hyphenationRE matches a line ending in a word of three or more letters
// followed by a hyphen.
var hyphenationRE = regexp.MustCompile(`[A-Za-z]{3,}-$`)

// Line is a logical text line assembled from one or more spans. The
// span detail is retained because block classification needs indentation
// and per-character monospace ratios, not just the merged text.
type Line struct {
	// Spans are the contributing spans, sorted left to right.
	Spans []model.Span

	// Text is the assembled line text (trimmed, smart-spaced).
	Text string

	// BBox is the union bounding box of the spans.
	BBox model.BBox

	// Indent is the leading-space count of the leftmost span's raw text.
	Indent int

	// MonospaceRatio is the fraction of non-blank characters that belong
	// to spans flagged monospace.
	MonospaceRatio float64
}

// IsEmpty returns true when the line carries no visible text.
func (l Line) IsEmpty() bool {
	return strings.TrimSpace(l.Text) == ""
}

// XPosition returns the left edge of the line.
func (l Line) XPosition() float64 {
	return l.BBox.X0
}

// LineMergerConfig holds configuration for line merging.
type LineMergerConfig struct {
	// YTolerance is the maximum vertical-center distance, in points,
	// between a span and the previous span on the same logical line.
	YTolerance float64
}

// DefaultLineMergerConfig returns the default configuration.
func DefaultLineMergerConfig() LineMergerConfig {
	return LineMergerConfig{YTolerance: 3.0}
}

// LineMerger groups positioned spans into logical lines.
type LineMerger struct {
	config LineMergerConfig
}

// NewLineMerger creates a line merger with default configuration.
func NewLineMerger() *LineMerger {
	return &LineMerger{config: DefaultLineMergerConfig()}
}

// NewLineMergerWithConfig creates a line merger with custom configuration.
func NewLineMergerWithConfig(config LineMergerConfig) *LineMerger {
	return &LineMerger{config: config}
}

// Merge groups spans into logical lines. Spans are first sorted by
// OrderIndex; a new line starts when the vertical distance between a
// span's center and the previous span's center exceeds the tolerance.
// Within each line, spans are sorted left to right before the text is
// assembled. Line order therefore follows the input order index, not
// geometric row order.
func (m *LineMerger) Merge(spans []model.Span) []Line {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})

	var groups [][]model.Span
	current := []model.Span{sorted[0]}

	for _, span := range sorted[1:] {
		prev := current[len(current)-1]
		if absFloat(span.BBox.CenterY()-prev.BBox.CenterY()) <= m.config.YTolerance {
			current = append(current, span)
		} else {
			groups = append(groups, current)
			current = []model.Span{span}
		}
	}
	groups = append(groups, current)

	lines := make([]Line, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].BBox.X0 < group[j].BBox.X0
		})
		lines = append(lines, buildLine(group))
	}
	return lines
}

// MergeText merges spans into lines and returns the repaired text view:
// blank lines dropped, hyphenation breaks repaired.
func (m *LineMerger) MergeText(spans []model.Span) []string {
	lines := m.Merge(spans)
	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		if !line.IsEmpty() {
			texts = append(texts, line.Text)
		}
	}
	return RepairHyphenation(texts)
}

// buildLine assembles a Line from left-to-right sorted spans.
func buildLine(spans []model.Span) Line {
	line := Line{
		Spans: spans,
		BBox:  model.SpansBBox(spans),
		Text:  joinSpans(spans),
	}
	if len(spans) > 0 {
		line.Indent = leadingSpaces(spans[0].Text)
	}
	line.MonospaceRatio = monospaceRatio(spans)
	return line
}

// joinSpans joins span text with the smart spacing rule: the first span
// is emitted verbatim (trimmed); subsequent spans get a leading space
// unless they are punctuation-only, in which case they concatenate
// directly.
func joinSpans(spans []model.Span) string {
	var sb strings.Builder
	first := true
	for _, span := range spans {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		switch {
		case first:
			sb.WriteString(text)
			first = false
		case punctuationOnlyRE.MatchString(text):
			sb.WriteString(text)
		default:
			sb.WriteString(" ")
			sb.WriteString(text)
		}
	}
	return sb.String()
}

// RepairHyphenation repairs hyphenation breaks across line boundaries.
// A line ending in a 3+ letter word followed by a hyphen is held
// pending; if the next line starts with a lowercase letter the hyphen is
// dropped and the lines concatenated, otherwise the hyphen is kept and
// the lines joined with it. A pending line left at end of input has its
// hyphen stripped.
func RepairHyphenation(lines []string) []string {
	result := make([]string, 0, len(lines))
	pending := ""
	havePending := false

	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if havePending {
			if line != "" && unicode.IsLower(firstRune(line)) {
				result = append(result, pending+line)
			} else {
				result = append(result, pending+"-"+line)
			}
			havePending = false
			continue
		}
		if hyphenationRE.MatchString(line) {
			pending = line[:len(line)-1]
			havePending = true
		} else {
			result = append(result, line)
		}
	}

	if havePending {
		result = append(result, pending)
	}
	return result
}

// leadingSpaces counts leading space characters, expanding tabs to four.
func leadingSpaces(s string) int {
	count := 0
	for _, r := range s {
		switch r {
		case ' ':
			count++
		case '\t':
			count += 4
		default:
			return count
		}
	}
	return count
}

// monospaceRatio returns the fraction of non-blank characters belonging
// to spans flagged monospace.
func monospaceRatio(spans []model.Span) float64 {
	total := 0
	mono := 0
	for _, span := range spans {
		for _, r := range span.Text {
			if unicode.IsSpace(r) {
				continue
			}
			total++
			if span.Style.Monospace {
				mono++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(mono) / float64(total)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
