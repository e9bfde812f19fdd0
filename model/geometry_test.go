package model

import (
	"reflect"
	"testing"
)

func TestBBoxDimensions(t *testing.T) {
	b := NewBBox(10, 20, 110, 70)
	if b.Width() != 100 {
		t.Errorf("Width = %v, want 100", b.Width())
	}
	if b.Height() != 50 {
		t.Errorf("Height = %v, want 50", b.Height())
	}
	if b.CenterX() != 60 || b.CenterY() != 45 {
		t.Errorf("center = (%v, %v), want (60, 45)", b.CenterX(), b.CenterY())
	}
}

func TestBBoxUnion(t *testing.T) {
	a := NewBBox(0, 0, 10, 10)
	b := NewBBox(5, 5, 20, 30)
	got := a.Union(b)
	want := NewBBox(0, 0, 20, 30)
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestBBoxGapDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b BBox
		want float64
	}{
		{"overlapping is zero", NewBBox(0, 0, 10, 10), NewBBox(5, 5, 15, 15), 0},
		{"vertical gap", NewBBox(0, 20, 10, 30), NewBBox(0, 0, 10, 10), 10},
		{"horizontal gap", NewBBox(0, 0, 10, 10), NewBBox(25, 0, 35, 10), 15},
		{"touching is zero", NewBBox(0, 0, 10, 10), NewBBox(10, 0, 20, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.GapDistance(tt.b); got != tt.want {
				t.Errorf("GapDistance = %v, want %v", got, tt.want)
			}
			if got := tt.b.GapDistance(tt.a); got != tt.want {
				t.Errorf("GapDistance reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpansBBoxAndPageSpan(t *testing.T) {
	spans := []Span{
		{Text: "a", BBox: NewBBox(10, 10, 20, 20), Page: 2},
		{Text: "b", BBox: NewBBox(0, 15, 5, 40), Page: 4},
		{Text: "c", BBox: NewBBox(12, 5, 30, 18), Page: 3},
	}
	if got, want := SpansBBox(spans), NewBBox(0, 5, 30, 40); got != want {
		t.Errorf("SpansBBox = %+v, want %+v", got, want)
	}
	if got, want := SpansPageSpan(spans), (PageSpan{First: 2, Last: 4}); got != want {
		t.Errorf("SpansPageSpan = %+v, want %+v", got, want)
	}
}

func TestBlockText(t *testing.T) {
	b := NewBlock(KindParagraph, []Span{
		{Text: "Hello", BBox: NewBBox(0, 0, 30, 10), Page: 1},
		{Text: "world", BBox: NewBBox(35, 0, 60, 10), Page: 1},
	})
	if got := b.Text(); got != "Hello world" {
		t.Errorf("Text = %q, want %q", got, "Hello world")
	}
	if b.Pages != (PageSpan{First: 1, Last: 1}) {
		t.Errorf("Pages = %+v, want {1 1}", b.Pages)
	}

	// A recorded line view takes precedence over the raw spans.
	b.Lines = []string{"Hello, world"}
	if got := b.Text(); got != "Hello, world" {
		t.Errorf("Text with line view = %q, want %q", got, "Hello, world")
	}
}

func TestBBoxAsSlice(t *testing.T) {
	got := NewBBox(1, 2, 3, 4).AsSlice()
	if !reflect.DeepEqual(got, []float64{1, 2, 3, 4}) {
		t.Errorf("AsSlice = %v, want [1 2 3 4]", got)
	}
}
