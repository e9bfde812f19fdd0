// Package slugs produces deterministic, collision-free identifiers for
// section nodes and figure filenames.
package slugs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	gslug "github.com/gosimple/slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrExhausted is returned when the collision suffix scheme cannot
// produce a unique slug. Downstream file naming requires uniqueness, so
// this is fatal.
var ErrExhausted = errors.New("slug collision suffixes exhausted")

// maxSuffix bounds the collision suffix search.
const maxSuffix = 10000

// quoteStripper removes the quote characters dropped before
// slugification.
var quoteStripper = strings.NewReplacer("'", "", "\"", "", "‘", "", "’", "", "“", "", "”", "")

// numericPrefixRE recognizes a slug that already carries a numeric-dash
// prefix; such slugs are used as-is rather than re-prefixed.
var numericPrefixRE = regexp.MustCompile(`^\d+-[a-z0-9]+(?:-[a-z0-9]+)*$`)

// foldMarks strips combining marks after NFKD decomposition, so accented
// characters reduce to their base letters before slugification.
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts text to its base slug: lowercased, quote-stripped,
// accent-folded, then passed through the URL-slug transform.
func Slugify(text string) string {
	base := strings.ToLower(strings.TrimSpace(text))
	base = quoteStripper.Replace(base)
	if folded, _, err := transform.String(foldMarks, base); err == nil {
		base = folded
	}
	return gslug.Make(base)
}

// Allocator assigns collision-free slugs. Collision resolution operates
// on the base text slug, before the numeric prefix is attached, so
// "Section 1" and "Section 2" never collide with each other or with a
// later plain "Section". The allocator carries document-scoped state:
// construct a fresh instance per document and feed it in document order.
type Allocator struct {
	width  int
	counts map[string]int
	used   map[string]bool
}

// NewAllocator creates an allocator whose numeric prefixes are
// zero-padded to the given width.
func NewAllocator(width int) *Allocator {
	return &Allocator{
		width:  width,
		counts: make(map[string]int),
		used:   make(map[string]bool),
	}
}

// Allocate returns the slug for a node title, prefixed with the
// zero-padded index. The Nth repeat of the same base text gets a "-N"
// suffix. Text already carrying a recognizable numeric-dash prefix is
// used as-is.
func (a *Allocator) Allocate(text string, prefixIndex int) (string, error) {
	trimmed := strings.TrimSpace(text)
	if numericPrefixRE.MatchString(trimmed) {
		if a.used[trimmed] {
			return "", fmt.Errorf("pre-prefixed slug %q reused: %w", trimmed, ErrExhausted)
		}
		a.used[trimmed] = true
		return trimmed, nil
	}

	base := Slugify(text)
	if base == "" {
		base = "untitled"
	}

	n := a.counts[base]
	a.counts[base] = n + 1

	suffixed := base
	if n > 0 {
		suffixed = fmt.Sprintf("%s-%d", base, n+1)
	}

	full := fmt.Sprintf("%0*d-%s", a.width, prefixIndex, suffixed)
	if !a.used[full] {
		a.used[full] = true
		return full, nil
	}

	// The counter-derived slug is taken (a natural title like
	// "Section 2" can shadow a generated "section-2"); probe further
	// suffixes until one is free.
	for k := n + 2; k <= maxSuffix; k++ {
		candidate := fmt.Sprintf("%0*d-%s-%d", a.width, prefixIndex, base, k)
		if !a.used[candidate] {
			a.used[candidate] = true
			return candidate, nil
		}
	}
	return "", fmt.Errorf("slug for %q: %w", text, ErrExhausted)
}

// HasNumericPrefix reports whether a slug already carries a
// numeric-dash prefix.
func HasNumericPrefix(slug string) bool {
	return numericPrefixRE.MatchString(slug)
}
