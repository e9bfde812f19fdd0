// Package strata converts positioned text fragments extracted from a
// paginated document into a deterministic hierarchical document model:
// a frozen section tree, typed content blocks, bound figure captions,
// detected footnotes, and a manifest with a structural hash.
//
// Basic usage:
//
//	result, diags, err := strata.FromSpans(spans).Convert()
//	if err != nil {
//	    // handle error
//	}
//	for _, d := range diags {
//	    log.Println(d)
//	}
//
// With options:
//
//	result, _, err := strata.Open("book.pdf").
//	    WithConfig(cfg).
//	    WithLogger(logger).
//	    Convert()
//
// For advanced use cases the lower-level layout, tree, figures and
// manifest packages are also available.
package strata

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/tsawler/strata/config"
	"github.com/tsawler/strata/diag"
	"github.com/tsawler/strata/figures"
	"github.com/tsawler/strata/footnotes"
	"github.com/tsawler/strata/ingest"
	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/manifest"
	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/render"
	"github.com/tsawler/strata/slugs"
	"github.com/tsawler/strata/tree"
)

// Version identifies this release in manifest generated_with stamps.
// It never participates in the structural hash.
const Version = "1.0.0"

// Result is the complete output of a conversion.
type Result struct {
	// Roots are the frozen top-level sections, in document order.
	Roots []*tree.Node

	// Blocks is the full assembled block sequence, in reading order.
	Blocks []*model.Block

	// FrontMatter holds blocks that precede the first heading.
	FrontMatter []*model.Block

	// Figures are the caption bindings, in input figure order.
	Figures []figures.Binding

	// Footnotes are the paired footnotes, ordered by number.
	Footnotes []footnotes.Footnote

	// Manifest is the canonical projection with its structural hash.
	Manifest *manifest.Manifest
}

// WriteMarkdown renders the section tree under dir as one Markdown
// file per section, named by slug.
func (r *Result) WriteMarkdown(dir string) error {
	return render.NewWriter().Write(dir, r.Roots)
}

// FromSpans starts a pipeline over an already-extracted span stream.
// Spans may be supplied in any order; they are sorted by OrderIndex
// before processing.
func FromSpans(spans []model.Span) *Pipeline {
	return &Pipeline{
		spans:  spans,
		config: config.Default(),
	}
}

// Open starts a pipeline over a PDF file. Extraction runs in Convert,
// once the final configuration is known, so options such as excluded
// pages and the character gap threshold apply to it; extraction errors
// surface from Convert.
func Open(filename string) *Pipeline {
	return &Pipeline{
		filename: filename,
		config:   config.Default(),
	}
}

// Convert runs the full pipeline and returns the result together with
// every diagnostic recorded along the way. Diagnostics are data, not
// errors: a run with anomalies still succeeds. The returned error is
// non-nil only for invalid configuration, extraction failure, or slug
// space exhaustion.
func (p *Pipeline) Convert() (*Result, []diag.Diagnostic, error) {
	if err := p.config.Validate(); err != nil {
		return nil, nil, err
	}

	if p.filename != "" && p.spans == nil {
		extractor := ingest.NewExtractor(ingest.Config{
			ExcludePages:     p.config.ExcludePages,
			CharGapThreshold: p.config.CharGapThreshold,
		})
		doc, err := extractor.ExtractFile(p.filename)
		if err != nil {
			return nil, nil, fmt.Errorf("extract %s: %w", p.filename, err)
		}
		p.spans = doc.Spans
		if p.pageHeights == nil {
			p.pageHeights = doc.PageHeights
		}
	}

	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := diag.NewCollector()

	merger := layout.NewLineMergerWithConfig(layout.LineMergerConfig{
		YTolerance: p.config.LineMergeYTolerance,
	})

	// Footnotes are detected first so their body lines can be kept out
	// of block assembly.
	detector := footnotes.NewDetector(footnotes.DefaultDetectorConfig())
	detector.SetLineMerger(merger)
	notes := detector.Detect(p.spans, p.pageHeights, collector)
	notePages := make(map[int]bool, len(notes))
	for _, fn := range notes {
		notePages[fn.Page] = true
	}
	assemblySpans := detector.FilterBodySpans(p.spans, p.pageHeights, notePages)

	assembler := layout.NewBlockAssemblerWithConfig(layout.AssemblerConfig{
		ListIndentTolerance: p.config.ListIndentTolerance,
		CodeMinLines:        p.config.CodeMinLines,
		CodeIndentThreshold: p.config.CodeIndentThreshold,
		CodeMonospaceMin:    layout.DefaultAssemblerConfig().CodeMonospaceMin,
		TableMinRows:        layout.DefaultAssemblerConfig().TableMinRows,
		TableConfidenceMin:  p.config.TableConfidenceMin,
	})
	assembler.SetLineMerger(merger)
	blocks := insertFootnotePlaceholders(assembler.Assemble(assemblySpans), notes)
	logger.Debug("blocks assembled", "count", len(blocks))

	classifier := layout.NewHeadingClassifier()
	numbering := layout.NewNumberingProcessorWithConfig(layout.NumberingConfig{
		ValidateGaps:              p.config.NumberingValidateGaps,
		AllowChapterResets:        p.config.NumberingAllowChapterResets,
		MaxDepth:                  p.config.NumberingMaxDepth,
		AppendixRequiresPageBreak: p.config.AppendixRequiresPageBreak,
		PageTopBand:               p.config.AppendixPageTopBand,
		PageHeight:                p.pageHeight(),
	})
	headings := layout.AssignHeadingLevels(blocks, classifier, numbering, collector)

	allocator := slugs.NewAllocator(p.config.SlugPrefixWidth)
	treeHeadings := make([]tree.Heading, len(headings))
	for i, h := range headings {
		slug, err := allocator.Allocate(h.Text, i)
		if err != nil {
			return nil, collector.Events(), fmt.Errorf("slug for %q: %w", h.Text, err)
		}
		treeHeadings[i] = tree.Heading{
			Block: h.Block,
			Title: h.Text,
			Level: h.Level,
			Slug:  slug,
		}
	}

	roots, frontMatter, err := tree.Build(blocks, treeHeadings)
	if err != nil {
		return nil, collector.Events(), fmt.Errorf("build tree: %w", err)
	}

	binder, err := figures.NewBinder(figures.BinderConfig{
		MaxDistance:    p.config.FigureCaptionDistance,
		WeightDistance: p.config.CaptionWeightDistance,
		WeightPosition: p.config.CaptionWeightPosition,
		WeightPattern:  p.config.CaptionWeightPattern,
	})
	if err != nil {
		return nil, collector.Events(), fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	bindings := binder.Bind(p.figures, p.spans)

	exporter := manifest.NewExporter("strata", Version)
	m, err := exporter.Build(roots, p.figureEntries(bindings), footnoteEntries(notes))
	if err != nil {
		return nil, collector.Events(), err
	}

	for _, d := range collector.Events() {
		logger.Warn(d.Code, "category", string(d.Category))
	}

	return &Result{
		Roots:       roots,
		Blocks:      blocks,
		FrontMatter: frontMatter,
		Figures:     bindings,
		Footnotes:   notes,
		Manifest:    m,
	}, collector.Events(), nil
}

// pageHeight picks the page height used by page-top calculations. All
// pages of a document normally share one height; when heights were not
// supplied the US Letter default applies.
func (p *Pipeline) pageHeight() float64 {
	for _, h := range p.pageHeights {
		return h
	}
	return layout.DefaultNumberingConfig().PageHeight
}

// figureEntries projects caption bindings into manifest rows, assigning
// sequential IDs and collision-free filenames.
func (p *Pipeline) figureEntries(bindings []figures.Binding) []manifest.FigureEntry {
	used := make(map[string]bool, len(bindings))
	entries := make([]manifest.FigureEntry, len(bindings))
	for i, b := range bindings {
		id := figures.ID(i)
		entries[i] = manifest.FigureEntry{
			ID:       id,
			Filename: figures.Filename(id, b.Figure.Caption, p.config.ImageFormat, used),
			Caption:  b.Figure.Caption,
			Alt:      b.Figure.Alt,
			Page:     b.Figure.Page,
			BBox:     b.Figure.BBox.AsSlice(),
		}
	}
	return entries
}

// insertFootnotePlaceholders places each footnote's placeholder block
// after the last assembled block of the footnote's page, so the
// definition stays with the section that references it instead of
// collecting at the end of the document.
func insertFootnotePlaceholders(blocks []*model.Block, notes []footnotes.Footnote) []*model.Block {
	if len(notes) == 0 {
		return blocks
	}
	ordered := make([]footnotes.Footnote, len(notes))
	copy(ordered, notes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Page < ordered[j].Page
	})

	out := make([]*model.Block, 0, len(blocks)+len(ordered))
	next := 0
	for _, block := range blocks {
		for next < len(ordered) && ordered[next].Page < block.Pages.First {
			out = append(out, footnotePlaceholder(ordered[next]))
			next++
		}
		out = append(out, block)
	}
	for ; next < len(ordered); next++ {
		out = append(out, footnotePlaceholder(ordered[next]))
	}
	return out
}

func footnotePlaceholder(fn footnotes.Footnote) *model.Block {
	block := model.NewBlock(model.KindFootnotePlaceholder, nil)
	block.Footnote = &model.FootnoteMeta{
		Number: fmt.Sprintf("%d", fn.Number),
		Text:   fn.Text,
	}
	block.Pages = model.PageSpan{First: fn.Page, Last: fn.Page}
	return block
}

func footnoteEntries(notes []footnotes.Footnote) []manifest.FootnoteEntry {
	entries := make([]manifest.FootnoteEntry, len(notes))
	for i, fn := range notes {
		entries[i] = manifest.FootnoteEntry{
			ID:     manifest.FootnoteID(i),
			Marker: fmt.Sprintf("%d", fn.Number),
			Text:   fn.Text,
			Page:   fn.Page,
		}
	}
	return entries
}
