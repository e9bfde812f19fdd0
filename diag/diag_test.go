package diag

import "testing"

func TestCollectorRecordsInOrder(t *testing.T) {
	c := NewCollector()
	c.Record(CategoryNumbering, "duplicate_chapter_number", map[string]any{"explicit_number": 3})
	c.Record(CategorySection, "section_gap_detected", nil)

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	events := c.Events()
	if events[0].Code != "duplicate_chapter_number" || events[1].Code != "section_gap_detected" {
		t.Errorf("event order wrong: %v", events)
	}
	if !c.Has("section_gap_detected") || c.Has("chapter_number_reset") {
		t.Error("Has reports wrong membership")
	}
	if got := len(c.ByCode("duplicate_chapter_number")); got != 1 {
		t.Errorf("ByCode returned %d events, want 1", got)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Category: CategoryAppendix,
		Code:     "appendix_out_of_order",
		Context:  map[string]any{"letter": "E", "expected": "AB"},
	}
	want := "appendix: appendix_out_of_order (expected=AB letter=E)"
	if got := d.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}

	bare := Diagnostic{Category: CategoryNumbering, Code: "chapter_number_reset"}
	if got := bare.String(); got != "numbering: chapter_number_reset" {
		t.Errorf("String without context = %q", got)
	}
}
