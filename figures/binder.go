// Package figures binds illustrations to their best-matching caption
// text using weighted scoring, and assigns deterministic figure IDs and
// collision-free filenames.
package figures

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/slugs"
)

// captionRE matches caption-keyword text: "Fig.", "Figure", "Table",
// "Diagram", optionally numbered, followed by a separator or the end.
var captionRE = regexp.MustCompile(`^(?i)\s*(?:fig(?:ure)?\.?\s*\d*|table\s*\d*|diagram\s*\d*)(?:\s*[:.]|\s|$)`)

// BinderConfig holds configuration for caption binding. The three
// weights must each lie in [0, 1] and sum to 1.0 within 1e-6; this is
// validated when the binder is constructed, before any binding runs.
type BinderConfig struct {
	// MaxDistance is the bbox-to-bbox gathering radius, in points.
	MaxDistance float64

	// WeightDistance, WeightPosition and WeightPattern weight the three
	// normalized scoring factors.
	WeightDistance float64
	WeightPosition float64
	WeightPattern  float64
}

// DefaultBinderConfig returns the default configuration.
func DefaultBinderConfig() BinderConfig {
	return BinderConfig{
		MaxDistance:    150,
		WeightDistance: 0.5,
		WeightPosition: 0.3,
		WeightPattern:  0.2,
	}
}

// Candidate is scored caption text near a figure.
type Candidate struct {
	Text  string
	BBox  model.BBox
	Page  int
	Spans []model.Span
	Score float64
}

// Binding is a figure with its scored candidates and selected caption.
// Best is nil when no candidate lies within range, which is not an
// error.
type Binding struct {
	Figure     model.Figure
	Candidates []Candidate
	Best       *Candidate
}

// Binder scores and binds captions to figures. Binding is independent
// per figure; a Binder is safe to reuse across documents.
type Binder struct {
	config BinderConfig
}

// NewBinder creates a binder, validating the scoring weights.
func NewBinder(config BinderConfig) (*Binder, error) {
	for name, w := range map[string]float64{
		"distance": config.WeightDistance,
		"position": config.WeightPosition,
		"pattern":  config.WeightPattern,
	} {
		if w < 0 || w > 1 {
			return nil, fmt.Errorf("caption weight %s %v outside [0, 1]", name, w)
		}
	}
	sum := config.WeightDistance + config.WeightPosition + config.WeightPattern
	if math.Abs(sum-1.0) > 1e-6 {
		return nil, fmt.Errorf("caption weights sum to %v, want 1.0", sum)
	}
	if config.MaxDistance <= 0 {
		return nil, fmt.Errorf("caption max distance must be > 0, got %v", config.MaxDistance)
	}
	return &Binder{config: config}, nil
}

// Bind binds each figure to its best caption candidate. The returned
// bindings are in input figure order and carry the figure with its
// caption filled in when one was selected.
func (b *Binder) Bind(figs []model.Figure, spans []model.Span) []Binding {
	bindings := make([]Binding, 0, len(figs))
	for _, fig := range figs {
		binding := Binding{Figure: fig}
		binding.Candidates = b.gather(fig, spans)
		for i := range binding.Candidates {
			binding.Candidates[i].Score = b.score(binding.Candidates[i], fig)
		}
		b.rank(binding.Candidates, fig)
		if len(binding.Candidates) > 0 {
			binding.Best = &binding.Candidates[0]
			binding.Figure.Caption = binding.Best.Text
		}
		bindings = append(bindings, binding)
	}
	return bindings
}

// gather collects same-page spans within the configured bbox-to-bbox
// distance of the figure; overlap counts as zero distance.
func (b *Binder) gather(fig model.Figure, spans []model.Span) []Candidate {
	var out []Candidate
	for _, span := range spans {
		if span.Page != fig.Page {
			continue
		}
		if fig.BBox.GapDistance(span.BBox) > b.config.MaxDistance {
			continue
		}
		out = append(out, Candidate{
			Text:  span.Text,
			BBox:  span.BBox,
			Page:  span.Page,
			Spans: []model.Span{span},
		})
	}
	return out
}

// score computes the weighted sum of the three normalized factors.
func (b *Binder) score(c Candidate, fig model.Figure) float64 {
	distance := fig.BBox.GapDistance(c.BBox)
	distanceScore := math.Max(0, 1-distance/b.config.MaxDistance)

	positionScore := 0.5
	if isBelow(c, fig) {
		positionScore = 1.0
	}

	patternScore := 0.3
	if matchesCaptionPattern(c.Text) {
		patternScore = 1.0
	}

	total := b.config.WeightDistance*distanceScore +
		b.config.WeightPosition*positionScore +
		b.config.WeightPattern*patternScore
	return math.Min(1, math.Max(0, total))
}

// rank sorts candidates best-first. Ties break by below-figure
// preference, then pattern match, then smaller distance.
func (b *Binder) rank(candidates []Candidate, fig model.Figure) {
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Score != cj.Score {
			return ci.Score > cj.Score
		}
		bi, bj := isBelow(ci, fig), isBelow(cj, fig)
		if bi != bj {
			return bi
		}
		pi, pj := matchesCaptionPattern(ci.Text), matchesCaptionPattern(cj.Text)
		if pi != pj {
			return pi
		}
		return fig.BBox.GapDistance(ci.BBox) < fig.BBox.GapDistance(cj.BBox)
	})
}

// isBelow reports whether the candidate's vertical center sits below
// the figure's. PDF coordinates grow upward, so below means a smaller
// center y.
func isBelow(c Candidate, fig model.Figure) bool {
	return c.BBox.CenterY() < fig.BBox.CenterY()
}

// matchesCaptionPattern reports whether text starts with a caption
// keyword.
func matchesCaptionPattern(text string) bool {
	return captionRE.MatchString(strings.TrimSpace(text))
}

// ID returns the deterministic figure ID for an index in the stable,
// pre-determined figure order.
func ID(index int) string {
	return fmt.Sprintf("fig_%03d", index)
}

// Filename combines a figure ID with a slug of its bound caption (or
// the bare ID) and the image extension, appending "-2", "-3", ... on
// collision with an already used name. The used set is updated with the
// returned name.
func Filename(id, caption, ext string, used map[string]bool) string {
	base := id
	if s := slugs.Slugify(caption); s != "" {
		base = id + "_" + s
	}

	name := base + "." + ext
	for counter := 2; used[name]; counter++ {
		name = fmt.Sprintf("%s-%d.%s", base, counter, ext)
	}
	used[name] = true
	return name
}
