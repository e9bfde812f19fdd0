package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/tree"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		slug  string
		index int
		want  string
	}{
		{"00-intro", 0, "00-intro.md"},
		{"05-deep-dive", 5, "05-deep-dive.md"},
		{"unprefixed", 3, "03-unprefixed.md"},
	}
	for _, tt := range tests {
		if got := Filename(tt.slug, tt.index); got != tt.want {
			t.Errorf("Filename(%q, %d) = %q, want %q", tt.slug, tt.index, got, tt.want)
		}
	}
}

func TestWriteRendersOneFilePerSection(t *testing.T) {
	ch := tree.NewNode("Chapter 1: Basics", 1, "00-chapter-1-basics", model.PageSpan{First: 1, Last: 2})
	sub := tree.NewNode("1.1 First", 2, "01-1-1-first", model.PageSpan{First: 1, Last: 1})

	para := model.NewBlock(model.KindParagraph, []model.Span{{
		Text: "Opening paragraph.", Page: 1, BBox: model.NewBBox(10, 600, 200, 610),
	}})
	if err := ch.AddBlock(para); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if err := ch.AddChild(sub); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	ch.Freeze()

	dir := t.TempDir()
	if err := NewWriter().Write(dir, []*tree.Node{ch}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	root, err := os.ReadFile(filepath.Join(dir, "book", "00-chapter-1-basics.md"))
	if err != nil {
		t.Fatalf("read chapter file: %v", err)
	}
	text := string(root)
	if !strings.HasPrefix(text, "# Chapter 1: Basics\n") {
		t.Errorf("chapter file starts with %q, want level-1 heading", firstLine(text))
	}
	if !strings.Contains(text, "Opening paragraph.") {
		t.Error("chapter file missing paragraph content")
	}

	child, err := os.ReadFile(filepath.Join(dir, "book", "01-1-1-first.md"))
	if err != nil {
		t.Fatalf("read subsection file: %v", err)
	}
	if !strings.HasPrefix(string(child), "## 1.1 First\n") {
		t.Errorf("subsection file starts with %q, want level-2 heading", firstLine(string(child)))
	}
}

func TestRenderCodeAndListBlocks(t *testing.T) {
	node := tree.NewNode("Chapter 1", 1, "00-chapter-1", model.PageSpan{First: 1, Last: 1})

	code := model.NewBlock(model.KindCode, []model.Span{{Text: "x := 1", Page: 1}})
	code.Code = &model.CodeMeta{Language: "go", Lines: []string{"x := 1", "y := 2"}}
	list := model.NewBlock(model.KindList, []model.Span{{Text: "item", Page: 1}})
	list.List = &model.ListMeta{Items: []model.ListItem{
		{Text: "first", Level: 0},
		{Text: "nested", Level: 1},
	}, MaxLevel: 1}
	for _, b := range []*model.Block{code, list} {
		if err := node.AddBlock(b); err != nil {
			t.Fatalf("AddBlock: %v", err)
		}
	}
	node.Freeze()

	dir := t.TempDir()
	if err := NewWriter().Write(dir, []*tree.Node{node}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "book", "00-chapter-1.md"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	text := string(data)

	if !strings.Contains(text, "```go\nx := 1\ny := 2\n```") {
		t.Errorf("code fence missing or wrong:\n%s", text)
	}
	if !strings.Contains(text, "- first\n  - nested\n") {
		t.Errorf("list rendering wrong:\n%s", text)
	}
}

func TestRenderTableBlock(t *testing.T) {
	node := tree.NewNode("Chapter 1", 1, "00-chapter-1", model.PageSpan{First: 1, Last: 1})
	table := model.NewBlock(model.KindTable, []model.Span{{Text: "Name  Age", Page: 1}})
	table.Table = &model.TableMeta{Rows: [][]string{{"Name", "Age"}, {"Ada", "36"}}, Confidence: 0.9}
	if err := node.AddBlock(table); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	node.Freeze()

	dir := t.TempDir()
	if err := NewWriter().Write(dir, []*tree.Node{node}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "book", "00-chapter-1.md"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "| Name | Age |") {
		t.Errorf("header row missing:\n%s", text)
	}
	if !strings.Contains(text, "| --- | --- |") {
		t.Errorf("separator row missing:\n%s", text)
	}
	if !strings.Contains(text, "| Ada | 36 |") {
		t.Errorf("data row missing:\n%s", text)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
