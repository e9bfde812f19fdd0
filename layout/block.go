package layout

import (
	"strings"

	"github.com/tsawler/strata/model"
)

// lineKind is a line's provisional classification before run assembly.
type lineKind int

const (
	lineEmpty lineKind = iota
	lineList
	lineCode
	lineTable
	lineHeading
	lineParagraph
)

// AssemblerConfig holds configuration for block assembly.
type AssemblerConfig struct {
	// ListIndentTolerance is the marker x-position clustering tolerance
	// for nesting-level assignment, in points.
	ListIndentTolerance float64

	// CodeMinLines is the minimum run length for a code block; shorter
	// runs are demoted to paragraphs.
	CodeMinLines int

	// CodeIndentThreshold is the leading-space count at or beyond which
	// a line is a code candidate.
	CodeIndentThreshold int

	// CodeMonospaceMin is the minimum fraction of non-blank characters
	// in monospace spans for a line to be a code candidate.
	CodeMonospaceMin float64

	// TableMinRows is the minimum run length for a table candidate run.
	TableMinRows int

	// TableConfidenceMin is the confidence below which a table run falls
	// back to a fenced code block.
	TableConfidenceMin float64
}

// DefaultAssemblerConfig returns the default configuration.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		ListIndentTolerance: 6.0,
		CodeMinLines:        2,
		CodeIndentThreshold: 4,
		CodeMonospaceMin:    0.6,
		TableMinRows:        2,
		TableConfidenceMin:  0.5,
	}
}

// BlockAssembler classifies logical lines into typed blocks. Adjacent
// lines of the same kind merge into a single block; heading candidates
// and empty lines always stand alone.
type BlockAssembler struct {
	config     AssemblerConfig
	merger     *LineMerger
	classifier *HeadingClassifier
}

// NewBlockAssembler creates an assembler with default configuration.
func NewBlockAssembler() *BlockAssembler {
	return NewBlockAssemblerWithConfig(DefaultAssemblerConfig())
}

// NewBlockAssemblerWithConfig creates an assembler with custom
// configuration.
func NewBlockAssemblerWithConfig(config AssemblerConfig) *BlockAssembler {
	return &BlockAssembler{
		config:     config,
		merger:     NewLineMerger(),
		classifier: NewHeadingClassifier(),
	}
}

// SetLineMerger replaces the line merger used by Assemble, for callers
// that need a non-default y tolerance.
func (a *BlockAssembler) SetLineMerger(m *LineMerger) {
	a.merger = m
}

// Assemble merges spans into lines and classifies them into blocks.
func (a *BlockAssembler) Assemble(spans []model.Span) []*model.Block {
	return a.AssembleLines(a.merger.Merge(spans))
}

// AssembleLines classifies pre-merged lines into blocks.
func (a *BlockAssembler) AssembleLines(lines []Line) []*model.Block {
	st := assembleState{assembler: a}
	for _, line := range lines {
		st.feed(line)
	}
	st.flush()
	return st.blocks
}

// assembleState is the streaming run accumulator for one assembly pass.
type assembleState struct {
	assembler *BlockAssembler
	blocks    []*model.Block

	runKind  lineKind
	runLines []Line

	// pendingBlanks are blank lines seen inside an open code run; they
	// join the run if more code follows, otherwise they flush as
	// EmptyLine blocks after the run.
	pendingBlanks []Line
}

func (s *assembleState) feed(line Line) {
	kind := s.assembler.classifyLine(line)

	if kind == lineEmpty {
		// Blank lines are permitted inside a code run.
		if s.runKind == lineCode && len(s.runLines) > 0 {
			s.pendingBlanks = append(s.pendingBlanks, line)
			return
		}
		s.flush()
		s.emit(model.NewBlock(model.KindEmptyLine, line.Spans))
		return
	}

	if kind == lineHeading {
		s.flush()
		block := model.NewBlock(model.KindHeadingCandidate, line.Spans)
		block.Lines = []string{line.Text}
		s.emit(block)
		return
	}

	if kind == s.runKind && len(s.runLines) > 0 {
		if kind == lineCode && len(s.pendingBlanks) > 0 {
			s.runLines = append(s.runLines, s.pendingBlanks...)
			s.pendingBlanks = nil
		}
		s.runLines = append(s.runLines, line)
		return
	}

	s.flush()
	s.runKind = kind
	s.runLines = []Line{line}
}

// flush finalizes the open run, if any, and any trailing code blanks.
func (s *assembleState) flush() {
	if len(s.runLines) > 0 {
		s.emit(s.assembler.finalizeRun(s.runKind, s.runLines))
	}
	s.runLines = nil

	for _, blank := range s.pendingBlanks {
		s.emit(model.NewBlock(model.KindEmptyLine, blank.Spans))
	}
	s.pendingBlanks = nil
}

func (s *assembleState) emit(block *model.Block) {
	if block != nil {
		s.blocks = append(s.blocks, block)
	}
}

// classifyLine assigns a line its provisional kind. Precedence follows
// the classification rules: empty, list item, code, table, heading
// candidate, paragraph.
func (a *BlockAssembler) classifyLine(line Line) lineKind {
	switch {
	case line.IsEmpty():
		return lineEmpty
	case isListItemLine(line):
		return lineList
	case line.Indent >= a.config.CodeIndentThreshold,
		line.MonospaceRatio >= a.config.CodeMonospaceMin:
		return lineCode
	case isTableCandidateLine(line):
		return lineTable
	case a.classifier.IsCandidate(line.Text):
		return lineHeading
	default:
		return lineParagraph
	}
}

// finalizeRun converts a finished run of same-kind lines into a block.
func (a *BlockAssembler) finalizeRun(kind lineKind, lines []Line) *model.Block {
	switch kind {
	case lineList:
		return a.finalizeList(lines)
	case lineCode:
		return a.finalizeCode(lines)
	case lineTable:
		return a.finalizeTable(lines)
	default:
		return newParagraph(lines)
	}
}

// newParagraph builds a Paragraph block carrying the assembled line
// texts, with hyphenation breaks repaired across the run.
func newParagraph(lines []Line) *model.Block {
	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		if !line.IsEmpty() {
			texts = append(texts, line.Text)
		}
	}
	block := model.NewBlock(model.KindParagraph, runSpans(lines))
	block.Lines = RepairHyphenation(texts)
	return block
}

// finalizeList builds a List block with nesting levels assigned by
// marker x-position clustering.
func (a *BlockAssembler) finalizeList(lines []Line) *model.Block {
	items := make([]model.ListItem, len(lines))
	for i, line := range lines {
		items[i] = model.ListItem{
			Spans:     line.Spans,
			Text:      strings.TrimSpace(stripListMarker(line.Text)),
			XPosition: line.XPosition(),
		}
	}
	maxLevel := assignNestingLevels(items, a.config.ListIndentTolerance)

	block := model.NewBlock(model.KindList, runSpans(lines))
	block.List = &model.ListMeta{Items: items, MaxLevel: maxLevel}
	return block
}

// finalizeCode builds a CodeBlock, demoting runs shorter than the
// configured minimum to paragraphs. Code lines are dedented by the
// minimum common leading-space count; interior blank lines survive as
// empty strings.
func (a *BlockAssembler) finalizeCode(lines []Line) *model.Block {
	if len(lines) < a.config.CodeMinLines {
		return newParagraph(lines)
	}

	block := model.NewBlock(model.KindCode, runSpans(lines))
	block.Code = &model.CodeMeta{Lines: dedentRun(lines)}
	return block
}

// finalizeTable scores a table candidate run. Runs shorter than the
// minimum become paragraphs; runs scoring below the confidence floor
// fall back to a fenced code block so no content is silently lost.
func (a *BlockAssembler) finalizeTable(lines []Line) *model.Block {
	if len(lines) < a.config.TableMinRows {
		return newParagraph(lines)
	}

	confidence := tableConfidence(lines)
	if confidence >= a.config.TableConfidenceMin {
		block := model.NewBlock(model.KindTable, runSpans(lines))
		block.Table = &model.TableMeta{Rows: extractRows(lines), Confidence: confidence}
		return block
	}

	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.Text
	}
	block := model.NewBlock(model.KindCode, runSpans(lines))
	block.Code = &model.CodeMeta{Lines: texts, Format: "fenced_fallback"}
	return block
}

// dedentRun reconstructs raw code lines from indent and text, then
// strips the minimum common leading-space count across non-blank lines.
func dedentRun(lines []Line) []string {
	minIndent := -1
	for _, line := range lines {
		if line.IsEmpty() {
			continue
		}
		if minIndent < 0 || line.Indent < minIndent {
			minIndent = line.Indent
		}
	}
	if minIndent < 0 {
		minIndent = 0
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if line.IsEmpty() {
			out[i] = ""
			continue
		}
		out[i] = strings.Repeat(" ", line.Indent-minIndent) + line.Text
	}
	return out
}

// runSpans concatenates the spans of all lines in a run.
func runSpans(lines []Line) []model.Span {
	var spans []model.Span
	for _, line := range lines {
		spans = append(spans, line.Spans...)
	}
	return spans
}
