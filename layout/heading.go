package layout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/strata/diag"
	"github.com/tsawler/strata/model"
)

// MaxHeadingLevel caps dotted-numbering depth when assigning levels.
const MaxHeadingLevel = 6

// maxHeadingLength is the longest text the candidate gate accepts.
const maxHeadingLength = 180

var (
	chapterRE  = regexp.MustCompile(`^(?i)chapter\s+(\d+)`)
	partRE     = regexp.MustCompile(`^(?i)part\s+(\w+)`)
	appendixRE = regexp.MustCompile(`^(?i)appendix\s+([a-zA-Z])`)
	dottedRE   = regexp.MustCompile(`^(\d+(?:\.\d+)*)\b`)

	// headingGateRE is the pattern half of the candidate gate: chapter,
	// part, appendix, or a dotted numeric prefix up to four segments.
	headingGateRE = regexp.MustCompile(`^(?i)(part\s+\w+|chapter\s+\d+|appendix\s+[a-zA-Z]|\d+(?:\.\d+){0,3})\b`)
)

// HeadingClassifier assigns levels to heading-candidate text.
type HeadingClassifier struct{}

// NewHeadingClassifier creates a heading classifier.
func NewHeadingClassifier() *HeadingClassifier {
	return &HeadingClassifier{}
}

// IsCandidate is the generic "looks like a heading" gate: text at most
// 180 characters that either matches a heading pattern or whose words
// are at least 60% all-caps (length > 2).
func (c *HeadingClassifier) IsCandidate(text string) bool {
	if len(text) > maxHeadingLength {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if headingGateRE.MatchString(trimmed) {
		return true
	}
	words := strings.Fields(trimmed)
	if len(words) == 0 {
		return false
	}
	caps := 0
	for _, w := range words {
		if isAllCapsWord(w) && len(w) > 2 {
			caps++
		}
	}
	return float64(caps)/float64(len(words)) >= 0.6
}

// Classify returns the heading level for text, testing patterns in
// order: Chapter N, Part X and Appendix X map to level 1; a dotted
// numeric prefix maps to dot-count+1 capped at 6; an all-caps heading
// maps to level 1; any other text that passed the candidate gate
// defaults to level 1. The second return is false when the text is not
// a heading at all.
func (c *HeadingClassifier) Classify(text string) (int, bool) {
	if !c.IsCandidate(text) {
		return 0, false
	}
	trimmed := strings.TrimSpace(text)

	if chapterRE.MatchString(trimmed) || partRE.MatchString(trimmed) || appendixRE.MatchString(trimmed) {
		return 1, true
	}

	if m := dottedRE.FindString(trimmed); m != "" {
		level := strings.Count(m, ".") + 1
		if level > MaxHeadingLevel {
			level = MaxHeadingLevel
		}
		return level, true
	}

	words := strings.Fields(trimmed)
	if len(words) > 0 {
		allCaps := true
		for _, w := range words {
			if !isAllCapsWord(w) || len(w) <= 2 {
				allCaps = false
				break
			}
		}
		if allCaps {
			return 1, true
		}
	}

	// Passed the candidate gate without a specific pattern.
	return 1, true
}

// isAllCapsWord reports whether a word contains at least one letter and
// every letter in it is uppercase.
func isAllCapsWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// Heading pairs a heading block with its assigned level and joined text.
type Heading struct {
	Block *model.Block
	Text  string
	Level int
}

// AssignHeadingLevels identifies heading blocks among the assembled
// blocks, assigns levels, and runs the numbering processor over them in
// document order, attaching numbering metadata to each block. The
// numbering processor must be freshly constructed for the document.
func AssignHeadingLevels(blocks []*model.Block, classifier *HeadingClassifier, numbering *NumberingProcessor, collector *diag.Collector) []Heading {
	var headings []Heading
	for _, block := range blocks {
		if block.Kind != model.KindHeadingCandidate || len(block.Spans) == 0 {
			continue
		}
		text := block.Text()
		level, ok := classifier.Classify(text)
		if !ok {
			continue
		}
		meta := numbering.Process(block, text, collector)
		meta.Level = level
		block.Number = meta
		headings = append(headings, Heading{Block: block, Text: text, Level: level})
	}
	return headings
}
