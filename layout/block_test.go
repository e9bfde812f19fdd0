package layout

import (
	"reflect"
	"testing"

	"github.com/tsawler/strata/model"
)

// textLine builds a single-span logical line at a given y.
func textLine(text string, x, y float64, order int) Line {
	return buildLine([]model.Span{span(text, x, y, order)})
}

func monoLine(text string, x, y float64, order int) Line {
	return buildLine([]model.Span{monoSpan(text, x, y, order)})
}

func kinds(blocks []*model.Block) []model.BlockKind {
	out := make([]model.BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func TestAssembleMergesAdjacentParagraphLines(t *testing.T) {
	lines := []Line{
		textLine("The first line of a paragraph", 10, 700, 0),
		textLine("continues on the second line.", 10, 688, 1),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if blocks[0].Kind != model.KindParagraph {
		t.Errorf("kind = %v, want Paragraph", blocks[0].Kind)
	}
	if len(blocks[0].Spans) != 2 {
		t.Errorf("paragraph has %d spans, want 2", len(blocks[0].Spans))
	}
}

func TestAssembleRepairsHyphenationAcrossLines(t *testing.T) {
	lines := []Line{
		textLine("The data transfor-", 10, 700, 0),
		textLine("mation pipeline runs here.", 10, 688, 1),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	want := "The data transformation pipeline runs here."
	if got := blocks[0].Text(); got != want {
		t.Errorf("paragraph text = %q, want %q", got, want)
	}
	if len(blocks[0].Lines) != 1 {
		t.Errorf("paragraph carries %d line texts, want 1", len(blocks[0].Lines))
	}
}

func TestAssembleEmptyLineBreaksRuns(t *testing.T) {
	lines := []Line{
		textLine("First paragraph here.", 10, 700, 0),
		textLine("   ", 10, 688, 1),
		textLine("Second paragraph here.", 10, 676, 2),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	want := []model.BlockKind{model.KindParagraph, model.KindEmptyLine, model.KindParagraph}
	if !reflect.DeepEqual(kinds(blocks), want) {
		t.Errorf("kinds = %v, want %v", kinds(blocks), want)
	}
}

func TestAssembleHeadingStandsAlone(t *testing.T) {
	lines := []Line{
		textLine("Chapter 1: Introduction", 10, 700, 0),
		textLine("Opening paragraph text follows the heading.", 10, 688, 1),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	want := []model.BlockKind{model.KindHeadingCandidate, model.KindParagraph}
	if !reflect.DeepEqual(kinds(blocks), want) {
		t.Errorf("kinds = %v, want %v", kinds(blocks), want)
	}
}

func TestAssembleCodeByIndentation(t *testing.T) {
	lines := []Line{
		textLine("    func main() {", 10, 700, 0),
		textLine("        run()", 10, 688, 1),
		textLine("    }", 10, 676, 2),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Kind != model.KindCode || b.Code == nil {
		t.Fatalf("kind = %v (code meta %v), want CodeBlock", b.Kind, b.Code)
	}
	want := []string{"func main() {", "    run()", "}"}
	if !reflect.DeepEqual(b.Code.Lines, want) {
		t.Errorf("code lines = %q, want %q", b.Code.Lines, want)
	}
}

func TestAssembleShortCodeRunDemotedToParagraph(t *testing.T) {
	cfg := DefaultAssemblerConfig()
	cfg.CodeMinLines = 2
	lines := []Line{
		monoLine("x := 1", 10, 700, 0),
	}
	blocks := NewBlockAssemblerWithConfig(cfg).AssembleLines(lines)

	if len(blocks) != 1 || blocks[0].Kind != model.KindParagraph {
		t.Errorf("kinds = %v, want [Paragraph]", kinds(blocks))
	}
}

func TestAssembleBlankInsideCodeRunJoins(t *testing.T) {
	lines := []Line{
		monoLine("a := 1", 10, 700, 0),
		textLine("", 10, 688, 1),
		monoLine("b := 2", 10, 676, 2),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks (%v), want 1", len(blocks), kinds(blocks))
	}
	want := []string{"a := 1", "", "b := 2"}
	if !reflect.DeepEqual(blocks[0].Code.Lines, want) {
		t.Errorf("code lines = %q, want %q", blocks[0].Code.Lines, want)
	}
}

func TestAssembleTrailingBlankAfterCodeFlushesAsEmptyLine(t *testing.T) {
	lines := []Line{
		monoLine("a := 1", 10, 700, 0),
		monoLine("b := 2", 10, 688, 1),
		textLine("", 10, 676, 2),
		textLine("A paragraph after the code.", 10, 664, 3),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	want := []model.BlockKind{model.KindCode, model.KindEmptyLine, model.KindParagraph}
	if !reflect.DeepEqual(kinds(blocks), want) {
		t.Errorf("kinds = %v, want %v", kinds(blocks), want)
	}
}

func TestAssembleBulletList(t *testing.T) {
	lines := []Line{
		textLine("• first item", 20, 700, 0),
		textLine("• second item", 20, 688, 1),
		textLine("• nested item", 40, 676, 2),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	if len(blocks) != 1 || blocks[0].Kind != model.KindList {
		t.Fatalf("kinds = %v, want [List]", kinds(blocks))
	}
	list := blocks[0].List
	if list == nil || len(list.Items) != 3 {
		t.Fatalf("list meta = %+v, want 3 items", list)
	}
	if list.Items[0].Text != "first item" {
		t.Errorf("item 0 text = %q, want %q", list.Items[0].Text, "first item")
	}
	wantLevels := []int{0, 0, 1}
	for i, item := range list.Items {
		if item.Level != wantLevels[i] {
			t.Errorf("item %d level = %d, want %d", i, item.Level, wantLevels[i])
		}
	}
	if list.MaxLevel != 1 {
		t.Errorf("MaxLevel = %d, want 1", list.MaxLevel)
	}
}

func TestNumberedHeadingNotListItem(t *testing.T) {
	// "1. Introduction" is a heading despite its enumerated marker.
	line := textLine("1. Introduction", 10, 700, 0)
	if isListItemLine(line) {
		t.Error("isListItemLine(1. Introduction) = true, want false")
	}
	// A longer enumerated line is a real list item.
	item := textLine("1. Mix the flour and water together", 10, 700, 0)
	if !isListItemLine(item) {
		t.Error("isListItemLine(long enumerated line) = false, want true")
	}
}

func TestAssembleTableRun(t *testing.T) {
	// Single-span rows with embedded multi-space column separators, all
	// left-aligned, three columns, three rows.
	lines := []Line{
		textLine("Name    Age    City", 10, 700, 0),
		textLine("Ada     36     London", 10, 688, 1),
		textLine("Alan    41     Manchester", 10, 676, 2),
	}
	blocks := NewBlockAssembler().AssembleLines(lines)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks (%v), want 1", len(blocks), kinds(blocks))
	}
	b := blocks[0]
	if b.Kind != model.KindTable || b.Table == nil {
		t.Fatalf("kind = %v, want Table with meta", b.Kind)
	}
	if len(b.Table.Rows) != 3 || len(b.Table.Rows[0]) != 3 {
		t.Errorf("rows = %v, want 3x3", b.Table.Rows)
	}
	if b.Table.Confidence < DefaultAssemblerConfig().TableConfidenceMin {
		t.Errorf("confidence = %v, want >= %v", b.Table.Confidence, DefaultAssemblerConfig().TableConfidenceMin)
	}
}

func TestAssembleLowConfidenceTableFallsBackToFencedCode(t *testing.T) {
	cfg := DefaultAssemblerConfig()
	cfg.TableConfidenceMin = 0.99
	lines := []Line{
		textLine("Name    Age", 10, 700, 0),
		textLine("Ada     36", 10, 688, 1),
	}
	blocks := NewBlockAssemblerWithConfig(cfg).AssembleLines(lines)

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Kind != model.KindCode || b.Code == nil {
		t.Fatalf("kind = %v, want CodeBlock fallback", b.Kind)
	}
	if b.Code.Format != "fenced_fallback" {
		t.Errorf("format = %q, want fenced_fallback", b.Code.Format)
	}
	want := []string{"Name    Age", "Ada     36"}
	if !reflect.DeepEqual(b.Code.Lines, want) {
		t.Errorf("fallback lines = %q, want %q", b.Code.Lines, want)
	}
}

func TestTableConfidenceFactors(t *testing.T) {
	// Consistent 4-column, 5-row, perfectly aligned single-span rows
	// score 1.0.
	var lines []Line
	for i := 0; i < 5; i++ {
		lines = append(lines, textLine("a  b  c  d", 10, 700-float64(i)*12, i))
	}
	if got := tableConfidence(lines); got != 1.0 {
		t.Errorf("tableConfidence = %v, want 1.0", got)
	}
}

func TestRowCellsFromSpanGaps(t *testing.T) {
	// Per-cell spans with wide gaps and no text-level separator.
	cells := []model.Span{
		span("Name", 10, 700, 0),
		span("Age", 120, 700, 1),
		span("City", 220, 700, 2),
	}
	line := buildLine(cells)
	got := rowCells(line)
	want := []string{"Name", "Age", "City"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rowCells = %v, want %v", got, want)
	}
}
