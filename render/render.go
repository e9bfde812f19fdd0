// Package render writes the frozen section tree out as a directory of
// Markdown files, one file per section, named by allocated slug.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/slugs"
	"github.com/tsawler/strata/tree"
)

// prefixWidth pads ordering prefixes for sections whose slugs were
// allocated elsewhere without one.
const prefixWidth = 2

// Writer renders sections to disk.
type Writer struct {
	// Subdir is created under the output root and receives the
	// section files. Defaults to "book".
	Subdir string
}

// NewWriter returns a writer with default settings.
func NewWriter() *Writer {
	return &Writer{Subdir: "book"}
}

// Write renders every section, pre-order, into dir. Slugs that already
// carry a numeric ordering prefix are used verbatim as filenames;
// anything else would double-prefix on re-export.
func (w *Writer) Write(dir string, roots []*tree.Node) error {
	target := filepath.Join(dir, w.Subdir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for i, node := range tree.Flatten(roots) {
		name := Filename(node.Slug(), i)
		content := renderSection(node)
		path := filepath.Join(target, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// Filename maps a slug to its Markdown filename. Slugs allocated by
// this pipeline already carry an ordering prefix and are used as-is;
// externally supplied slugs without one get prefixed here so directory
// listings keep document order.
func Filename(slug string, index int) string {
	if slugs.HasNumericPrefix(slug) {
		return slug + ".md"
	}
	return fmt.Sprintf("%0*d-%s.md", prefixWidth, index, slug)
}

// renderSection emits the heading line followed by the section's own
// block content. Child sections land in their own files.
func renderSection(node *tree.Node) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("#", node.Level()))
	b.WriteByte(' ')
	b.WriteString(node.Title())
	b.WriteString("\n")
	for _, block := range node.Blocks() {
		b.WriteString("\n")
		b.WriteString(renderBlock(block))
	}
	return b.String()
}

func renderBlock(block *model.Block) string {
	switch block.Kind {
	case model.KindCode:
		lang := ""
		var lines []string
		if block.Code != nil {
			lang = block.Code.Language
			lines = block.Code.Lines
		}
		return "```" + lang + "\n" + strings.Join(lines, "\n") + "\n```\n"
	case model.KindList:
		if block.List == nil {
			return block.Text() + "\n"
		}
		var b strings.Builder
		for _, item := range block.List.Items {
			b.WriteString(strings.Repeat("  ", item.Level))
			b.WriteString("- ")
			b.WriteString(item.Text)
			b.WriteString("\n")
		}
		return b.String()
	case model.KindTable:
		if block.Table == nil || len(block.Table.Rows) == 0 {
			return block.Text() + "\n"
		}
		return renderTable(block.Table.Rows)
	case model.KindFigurePlaceholder:
		return "<!-- figure -->\n"
	case model.KindFootnotePlaceholder:
		if block.Footnote == nil {
			return ""
		}
		return "[^" + block.Footnote.Number + "]: " + block.Footnote.Text + "\n"
	case model.KindEmptyLine:
		return ""
	default:
		return block.Text() + "\n"
	}
}

// renderTable emits a pipe table, treating the first row as header.
func renderTable(rows [][]string) string {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	var b strings.Builder
	for i, row := range rows {
		b.WriteString("|")
		for c := 0; c < cols; c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
		if i == 0 {
			b.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	return b.String()
}
