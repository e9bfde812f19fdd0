package layout

import (
	"reflect"
	"testing"

	"github.com/tsawler/strata/model"
)

// span builds a test span on a single baseline. The y coordinate is the
// bottom edge; height is fixed at 10 points.
func span(text string, x, y float64, order int) model.Span {
	return model.Span{
		Text:       text,
		BBox:       model.BBox{X0: x, Y0: y, X1: x + float64(len(text))*5, Y1: y + 10},
		FontSize:   10,
		Page:       1,
		OrderIndex: order,
	}
}

func monoSpan(text string, x, y float64, order int) model.Span {
	s := span(text, x, y, order)
	s.Style.Monospace = true
	return s
}

func TestMergeGroupsByVerticalCenter(t *testing.T) {
	spans := []model.Span{
		span("world", 40, 100, 1),
		span("Hello", 10, 101, 0), // within tolerance of "world"
		span("Next line", 10, 80, 2),
	}

	m := NewLineMerger()
	lines := m.Merge(spans)

	if len(lines) != 2 {
		t.Fatalf("Merge produced %d lines, want 2", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("line 0 text = %q, want %q", lines[0].Text, "Hello world")
	}
	if lines[1].Text != "Next line" {
		t.Errorf("line 1 text = %q, want %q", lines[1].Text, "Next line")
	}
}

func TestMergeRespectsOrderIndexNotGeometry(t *testing.T) {
	// The second line sits geometrically above the first; order index
	// decides line order.
	spans := []model.Span{
		span("first", 10, 50, 0),
		span("second", 10, 200, 1),
	}

	lines := NewLineMerger().Merge(spans)
	if len(lines) != 2 {
		t.Fatalf("Merge produced %d lines, want 2", len(lines))
	}
	if lines[0].Text != "first" || lines[1].Text != "second" {
		t.Errorf("line order = [%q, %q], want [first, second]", lines[0].Text, lines[1].Text)
	}
}

func TestMergeSortsSpansLeftToRightWithinLine(t *testing.T) {
	spans := []model.Span{
		span("right", 100, 100, 0),
		span("left", 10, 100, 1),
	}
	lines := NewLineMerger().Merge(spans)
	if len(lines) != 1 {
		t.Fatalf("Merge produced %d lines, want 1", len(lines))
	}
	if lines[0].Text != "left right" {
		t.Errorf("line text = %q, want %q", lines[0].Text, "left right")
	}
}

func TestMergePunctuationConcatenatesWithoutSpace(t *testing.T) {
	spans := []model.Span{
		span("word", 10, 100, 0),
		span(",", 35, 100, 1),
		span("next", 45, 100, 2),
	}
	lines := NewLineMerger().Merge(spans)
	if len(lines) != 1 {
		t.Fatalf("Merge produced %d lines, want 1", len(lines))
	}
	if lines[0].Text != "word, next" {
		t.Errorf("line text = %q, want %q", lines[0].Text, "word, next")
	}
}

func TestMergeYToleranceBoundary(t *testing.T) {
	tests := []struct {
		name      string
		deltaY    float64
		wantLines int
	}{
		{"exactly at tolerance", 3.0, 1},
		{"just beyond tolerance", 3.01, 2},
		{"well within", 1.0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := []model.Span{
				span("a", 10, 100, 0),
				span("b", 30, 100+tt.deltaY, 1),
			}
			lines := NewLineMerger().Merge(spans)
			if len(lines) != tt.wantLines {
				t.Errorf("Merge with deltaY=%v produced %d lines, want %d",
					tt.deltaY, len(lines), tt.wantLines)
			}
		})
	}
}

func TestRepairHyphenation(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			"lowercase continuation drops hyphen",
			[]string{"a transfor-", "mation is applied"},
			[]string{"a transformation is applied"},
		},
		{
			"uppercase continuation keeps hyphen",
			[]string{"value of some-", "Thing else"},
			[]string{"value of some-Thing else"},
		},
		{
			"short word before hyphen is not a break",
			[]string{"ab-", "cdef"},
			[]string{"ab-", "cdef"},
		},
		{
			"trailing pending line loses hyphen",
			[]string{"incomplete transfor-"},
			[]string{"incomplete transfor"},
		},
		{
			"no hyphenation passes through",
			[]string{"plain", "lines"},
			[]string{"plain", "lines"},
		},
		{
			"digit before hyphen is not a break",
			[]string{"ISO-8601-", "compatible"},
			[]string{"ISO-8601-", "compatible"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairHyphenation(tt.lines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RepairHyphenation(%v) = %v, want %v", tt.lines, got, tt.want)
			}
		})
	}
}

func TestMergeTextDropsBlankLines(t *testing.T) {
	spans := []model.Span{
		span("first", 10, 100, 0),
		span("   ", 10, 80, 1),
		span("second", 10, 60, 2),
	}
	got := NewLineMerger().MergeText(spans)
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeText = %v, want %v", got, want)
	}
}

func TestLineIndentCountsTabsAsFour(t *testing.T) {
	lines := NewLineMerger().Merge([]model.Span{span("\tindented", 10, 100, 0)})
	if len(lines) != 1 {
		t.Fatalf("Merge produced %d lines, want 1", len(lines))
	}
	if lines[0].Indent != 4 {
		t.Errorf("Indent = %d, want 4", lines[0].Indent)
	}
}

func TestMonospaceRatio(t *testing.T) {
	lines := NewLineMerger().Merge([]model.Span{
		monoSpan("code", 10, 100, 0), // 4 mono chars
		span("text", 40, 100, 1),     // 4 plain chars
	})
	if len(lines) != 1 {
		t.Fatalf("Merge produced %d lines, want 1", len(lines))
	}
	if got := lines[0].MonospaceRatio; got != 0.5 {
		t.Errorf("MonospaceRatio = %v, want 0.5", got)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if lines := NewLineMerger().Merge(nil); lines != nil {
		t.Errorf("Merge(nil) = %v, want nil", lines)
	}
}
