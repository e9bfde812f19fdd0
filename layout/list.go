package layout

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/strata/model"
)

// bulletRE matches bullet-glyph list markers.
var bulletRE = regexp.MustCompile(`^\s*[•·▪▸◦‣*-]\s+`)

// enumRE matches numeric or single-letter enumerated markers ("1. ",
// "2) ", "a. ").
var enumRE = regexp.MustCompile(`^\s*(?:\d+|[a-zA-Z])[.)]\s+`)

// headingLikeWords is the closed set of section words that keep a short
// numbered line ("1. Introduction") from being treated as a list item.
var headingLikeWords = map[string]bool{
	"introduction": true,
	"background":   true,
	"overview":     true,
	"methodology":  true,
	"results":      true,
	"discussion":   true,
	"conclusion":   true,
	"conclusions":  true,
	"references":   true,
	"summary":      true,
	"preface":      true,
	"contents":     true,
	"glossary":     true,
	"index":        true,
	"appendix":     true,
	"appendices":   true,
}

// isListItemLine reports whether a line is a list item: a bullet-glyph
// prefix, or an enumerated "N. " prefix unless the line is a short,
// capitalized, indentation-zero heading-like line.
func isListItemLine(line Line) bool {
	if bulletRE.MatchString(line.Text) {
		return true
	}
	if !enumRE.MatchString(line.Text) {
		return false
	}
	if looksLikeNumberedHeading(line) {
		return false
	}
	return true
}

// looksLikeNumberedHeading recognizes enumerated lines that are really
// headings: at most four words, zero indentation, first word after the
// marker capitalized and in the heading-word set.
func looksLikeNumberedHeading(line Line) bool {
	if line.Indent > 0 {
		return false
	}
	rest := enumRE.ReplaceAllString(line.Text, "")
	words := strings.Fields(rest)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	first := words[0]
	r := firstRune(first)
	if !unicode.IsUpper(r) {
		return false
	}
	return headingLikeWords[strings.ToLower(first)]
}

// stripListMarker removes the list marker prefix from a line's text.
func stripListMarker(text string) string {
	if bulletRE.MatchString(text) {
		return bulletRE.ReplaceAllString(text, "")
	}
	return enumRE.ReplaceAllString(text, "")
}

// assignNestingLevels assigns a 0-based nesting level to each list item
// by clustering marker x-positions: positions are sorted and merged into
// clusters within the tolerance, and levels follow the order each
// cluster first appears in document order. The result is a flat item
// list; true nesting is deferred to the renderer.
func assignNestingLevels(items []model.ListItem, tolerance float64) int {
	if len(items) == 0 {
		return 0
	}

	// Cluster marker positions along x.
	xs := make([]float64, len(items))
	for i, item := range items {
		xs[i] = item.XPosition
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	var centers []float64
	for _, x := range sorted {
		if len(centers) == 0 || x-centers[len(centers)-1] > tolerance {
			centers = append(centers, x)
		}
	}

	clusterOf := func(x float64) int {
		for i, c := range centers {
			if x-c <= tolerance && c-x <= tolerance {
				return i
			}
		}
		// x sits between merged centers; take the nearest.
		best, bestDist := 0, absFloat(x-centers[0])
		for i, c := range centers[1:] {
			if d := absFloat(x - c); d < bestDist {
				best, bestDist = i+1, d
			}
		}
		return best
	}

	// Levels follow first appearance of each cluster in item order.
	levelOf := make(map[int]int)
	maxLevel := 0
	for i := range items {
		cluster := clusterOf(items[i].XPosition)
		level, seen := levelOf[cluster]
		if !seen {
			level = len(levelOf)
			levelOf[cluster] = level
		}
		items[i].Level = level
		if level > maxLevel {
			maxLevel = level
		}
	}
	return maxLevel
}
