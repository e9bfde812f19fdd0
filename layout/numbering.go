package layout

import (
	"strconv"
	"strings"

	"github.com/tsawler/strata/diag"
	"github.com/tsawler/strata/model"
)

// NumberingConfig holds configuration for numbering validation.
type NumberingConfig struct {
	// ValidateGaps enables dotted section-path gap detection.
	ValidateGaps bool

	// AllowChapterResets suppresses the reset diagnostic when an
	// explicit chapter number does not exceed the running counter.
	AllowChapterResets bool

	// MaxDepth truncates dotted section paths deeper than this.
	MaxDepth int

	// AppendixRequiresPageBreak demotes appendix headings that do not
	// start near the top of their page.
	AppendixRequiresPageBreak bool

	// PageTopBand is the distance from the page top, in points, within
	// which a heading counts as starting at the top of the page.
	PageTopBand float64

	// PageHeight is the page height used by the page-top rule.
	PageHeight float64
}

// DefaultNumberingConfig returns the default configuration.
func DefaultNumberingConfig() NumberingConfig {
	return NumberingConfig{
		ValidateGaps:              true,
		AllowChapterResets:        false,
		MaxDepth:                  4,
		AppendixRequiresPageBreak: false,
		PageTopBand:               72,
		PageHeight:                792,
	}
}

// NumberingProcessor validates and normalizes chapter, section-path and
// appendix numbering. It carries mutable state across the entire
// document and must consume headings strictly in document order; each
// document conversion constructs a fresh instance. Violations are
// recorded as diagnostics, never aborts.
type NumberingProcessor struct {
	config NumberingConfig

	// chapterCounter is the monotonic global chapter ordinal. It is
	// incremented on every recognized chapter regardless of the explicit
	// number, providing continuity across "Part" boundaries.
	chapterCounter  int
	seenChapters    map[int]bool
	seenAppendixes  map[string]bool
	chapterDetected bool

	// highestSeen tracks the highest last-segment value per dotted path
	// prefix for gap detection.
	highestSeen map[string]int
}

// NewNumberingProcessor creates a processor with default configuration.
func NewNumberingProcessor() *NumberingProcessor {
	return NewNumberingProcessorWithConfig(DefaultNumberingConfig())
}

// NewNumberingProcessorWithConfig creates a processor with custom
// configuration.
func NewNumberingProcessorWithConfig(config NumberingConfig) *NumberingProcessor {
	return &NumberingProcessor{
		config:         config,
		seenChapters:   make(map[int]bool),
		seenAppendixes: make(map[string]bool),
		highestSeen:    make(map[string]int),
	}
}

// Process extracts numbering facts from a heading's text, updates the
// document-scoped counters, records anomalies on the collector, and
// returns the metadata to attach to the block.
func (p *NumberingProcessor) Process(block *model.Block, text string, collector *diag.Collector) *model.NumberingMeta {
	meta := &model.NumberingMeta{}
	trimmed := strings.TrimSpace(text)

	if m := chapterRE.FindStringSubmatch(trimmed); m != nil {
		p.chapterDetected = true
		explicit, _ := strconv.Atoi(m[1])
		p.processChapter(explicit, meta, collector)
	}

	if m := appendixRE.FindStringSubmatch(trimmed); m != nil {
		letter := strings.ToUpper(m[1])
		p.processAppendix(block, letter, trimmed, meta, collector)
	}

	if m := dottedRE.FindStringSubmatch(trimmed); m != nil {
		p.processDottedPath(m[1], meta, collector)
	}

	return meta
}

// processChapter handles the global chapter counter, duplicate explicit
// numbers, and reset detection.
func (p *NumberingProcessor) processChapter(explicit int, meta *model.NumberingMeta, collector *diag.Collector) {
	if p.seenChapters[explicit] {
		collector.Record(diag.CategoryNumbering, "duplicate_chapter_number", map[string]any{
			"explicit_number": explicit,
		})
	} else {
		p.seenChapters[explicit] = true
	}

	if !p.config.AllowChapterResets && explicit <= p.chapterCounter {
		collector.Record(diag.CategoryNumbering, "chapter_number_reset", map[string]any{
			"explicit_number": explicit,
			"global_counter":  p.chapterCounter,
		})
	}

	p.chapterCounter++
	meta.ChapterNumber = p.chapterCounter
}

// processAppendix applies the appendix acceptance rules: ignored before
// the first chapter, demoted when the page-top rule is configured and
// unmet or when the letter was already used, and flagged (but still
// accepted) when the letter breaks alphabetic continuation.
func (p *NumberingProcessor) processAppendix(block *model.Block, letter, text string, meta *model.NumberingMeta, collector *diag.Collector) {
	if !p.chapterDetected {
		collector.Record(diag.CategoryAppendix, "appendix_early_ignored", map[string]any{
			"letter": letter,
			"text":   text,
		})
		return
	}

	if p.config.AppendixRequiresPageBreak && !p.atPageTop(block) {
		collector.Record(diag.CategoryAppendix, "appendix_missing_page_break", map[string]any{
			"letter": letter,
			"text":   text,
		})
		return
	}

	if p.seenAppendixes[letter] {
		collector.Record(diag.CategoryAppendix, "appendix_duplicate_letter", map[string]any{
			"letter": letter,
			"text":   text,
		})
		return
	}

	if len(p.seenAppendixes) > 0 {
		expected := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"[:len(p.seenAppendixes)+1]
		if !strings.Contains(expected, letter) {
			collector.Record(diag.CategoryAppendix, "appendix_out_of_order", map[string]any{
				"letter":   letter,
				"expected": expected,
			})
		}
	}

	p.seenAppendixes[letter] = true
	meta.AppendixLetter = letter
}

// processDottedPath parses a dotted section path, truncates it to the
// configured depth, and checks for numbering gaps against the highest
// last segment previously seen under the same prefix.
func (p *NumberingProcessor) processDottedPath(dotted string, meta *model.NumberingMeta, collector *diag.Collector) {
	parts := strings.Split(dotted, ".")
	segments := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return
		}
		segments = append(segments, n)
	}

	if len(segments) > p.config.MaxDepth {
		collector.Record(diag.CategorySection, "section_path_truncated", map[string]any{
			"section_path": dotted,
			"max_depth":    p.config.MaxDepth,
		})
		segments = segments[:p.config.MaxDepth]
	}

	meta.SectionPath = segments

	if p.config.ValidateGaps && len(segments) >= 2 {
		p.checkGap(segments, collector)
	}
}

// checkGap compares the path's last segment against the highest value
// previously seen under the same prefix; a jump greater than one is an
// anomaly.
func (p *NumberingProcessor) checkGap(segments []int, collector *diag.Collector) {
	prefix := joinSegments(segments[:len(segments)-1])
	last := segments[len(segments)-1]

	if prev, ok := p.highestSeen[prefix]; ok && last > prev+1 {
		collector.Record(diag.CategorySection, "section_gap_detected", map[string]any{
			"section_path": joinSegments(segments),
			"previous":     prev,
			"current":      last,
		})
	}
	if last > p.highestSeen[prefix] {
		p.highestSeen[prefix] = last
	}
}

// atPageTop reports whether a block's topmost span starts within the
// configured band below the page top.
func (p *NumberingProcessor) atPageTop(block *model.Block) bool {
	if len(block.Spans) == 0 {
		return false
	}
	top := block.Spans[0].BBox.Y1
	for _, s := range block.Spans[1:] {
		if s.BBox.Y1 > top {
			top = s.BBox.Y1
		}
	}
	return top >= p.config.PageHeight-p.config.PageTopBand
}

func joinSegments(segments []int) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ".")
}
