package strata

import (
	"log/slog"

	"github.com/tsawler/strata/config"
	"github.com/tsawler/strata/model"
)

// Pipeline carries the input stream and accumulated options of one
// conversion. Option methods return a derived pipeline and never mutate
// the receiver, so a partially configured pipeline can be reused as a
// base for several conversions.
type Pipeline struct {
	spans       []model.Span
	filename    string
	figures     []model.Figure
	pageHeights map[int]float64
	config      config.Config
	logger      *slog.Logger
}

// WithConfig replaces the configuration. Validation runs in Convert,
// not here.
func (p *Pipeline) WithConfig(cfg config.Config) *Pipeline {
	q := p.clone()
	q.config = cfg
	return q
}

// WithLogger sets the logger used for progress and mirrored
// diagnostics. The default is slog.Default().
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	q := p.clone()
	q.logger = logger
	return q
}

// WithFigures supplies extracted figures for caption binding.
func (p *Pipeline) WithFigures(figs []model.Figure) *Pipeline {
	q := p.clone()
	q.figures = make([]model.Figure, len(figs))
	copy(q.figures, figs)
	return q
}

// WithPageHeights supplies per-page heights, keyed by 1-based page
// number, for footnote-band and page-top calculations. Open fills this
// automatically; FromSpans callers provide it when known.
func (p *Pipeline) WithPageHeights(heights map[int]float64) *Pipeline {
	q := p.clone()
	q.pageHeights = make(map[int]float64, len(heights))
	for page, h := range heights {
		q.pageHeights[page] = h
	}
	return q
}

// clone creates a copy sharing the span stream but with independent
// option state.
func (p *Pipeline) clone() *Pipeline {
	q := &Pipeline{
		spans:    p.spans,
		filename: p.filename,
		config:   p.config,
		logger:   p.logger,
	}
	if p.figures != nil {
		q.figures = make([]model.Figure, len(p.figures))
		copy(q.figures, p.figures)
	}
	if p.pageHeights != nil {
		q.pageHeights = make(map[int]float64, len(p.pageHeights))
		for page, h := range p.pageHeights {
			q.pageHeights[page] = h
		}
	}
	return q
}
