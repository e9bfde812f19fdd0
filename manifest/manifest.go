// Package manifest projects the frozen section tree and bound figures
// into the canonical, ID-stable manifest form and computes the
// structural hash over it.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/strata/tree"
)

// SchemaVersion is the manifest schema version emitted.
const SchemaVersion = "1.0.0"

// SectionEntry is the externally visible projection of a section node.
type SectionEntry struct {
	ID         string  `json:"id"`
	Slug       string  `json:"slug"`
	ParentID   *string `json:"parent_id"`
	Level      int     `json:"level"`
	OrderIndex int     `json:"order_index"` // 1-based
	Title      string  `json:"title"`
	PageSpan   [2]int  `json:"page_span"`
}

// FigureEntry is the projection of a bound figure.
type FigureEntry struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	Caption  string    `json:"caption"`
	Alt      string    `json:"alt"`
	Page     int       `json:"page"`
	BBox     []float64 `json:"bbox"`
}

// FootnoteEntry is the projection of a detected footnote.
type FootnoteEntry struct {
	ID     string `json:"id"`
	Marker string `json:"marker"`
	Text   string `json:"text"`
	Page   int    `json:"page"`
}

// GeneratedWith identifies the producing tool. It is excluded from the
// structural hash so hashes stay stable across tool upgrades.
type GeneratedWith struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
}

// Manifest is the output document. Field order is fixed by the schema.
type Manifest struct {
	SchemaVersion   string          `json:"schema_version"`
	Sections        []SectionEntry  `json:"sections"`
	Figures         []FigureEntry   `json:"figures"`
	Footnotes       []FootnoteEntry `json:"footnotes"`
	Assets          []string        `json:"assets"`
	CrossReferences []string        `json:"cross_references"`
	StructuralHash  string          `json:"structural_hash"`
	GeneratedWith   GeneratedWith   `json:"generated_with"`
}

// Exporter builds manifests from frozen trees.
type Exporter struct {
	tool    string
	version string
}

// NewExporter creates an exporter stamping the given tool identity into
// generated_with.
func NewExporter(tool, version string) *Exporter {
	return &Exporter{tool: tool, version: version}
}

// Build flattens the tree in pre-order, assigns zero-padded sequential
// section IDs, resolves parent IDs by node identity, and computes the
// structural hash. Figures and footnotes are passed through already
// projected.
func (e *Exporter) Build(roots []*tree.Node, figures []FigureEntry, footnotes []FootnoteEntry) (*Manifest, error) {
	nodes := tree.Flatten(roots)

	// Parent lookup by identity, never by value: sections with
	// identical titles and slugs must not be mislinked.
	index := make(map[*tree.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	sections := make([]SectionEntry, len(nodes))
	for i, n := range nodes {
		sections[i] = SectionEntry{
			ID:         SectionID(i),
			Slug:       n.Slug(),
			Level:      n.Level(),
			OrderIndex: i + 1,
			Title:      n.Title(),
			PageSpan:   [2]int{n.Pages().First, n.Pages().Last},
		}
	}
	for _, n := range nodes {
		for _, child := range n.Children() {
			id := SectionID(index[n])
			sections[index[child]].ParentID = &id
		}
	}

	if figures == nil {
		figures = []FigureEntry{}
	}
	if footnotes == nil {
		footnotes = []FootnoteEntry{}
	}

	m := &Manifest{
		SchemaVersion:   SchemaVersion,
		Sections:        sections,
		Figures:         figures,
		Footnotes:       footnotes,
		Assets:          []string{},
		CrossReferences: []string{},
		GeneratedWith:   GeneratedWith{Tool: e.tool, Version: e.version},
	}

	hash, err := ComputeStructuralHash(m)
	if err != nil {
		return nil, fmt.Errorf("structural hash: %w", err)
	}
	m.StructuralHash = hash
	return m, nil
}

// SectionID returns the zero-padded sequential ID for a flatten index.
func SectionID(index int) string {
	return fmt.Sprintf("sec_%04d", index)
}

// FootnoteID returns the deterministic ID for a footnote index.
func FootnoteID(index int) string {
	return fmt.Sprintf("fn_%03d", index)
}

// ComputeStructuralHash hashes the canonical sub-projection of a
// manifest: sections and figures only, plus footnotes when non-empty.
// Tool metadata, assets and cross-reference lists are excluded so the
// hash survives tool upgrades. Arrays are sorted (sections by order
// index, figures and footnotes by the numeric suffix of their ID)
// before serialization, so row reordering never changes the hash.
// Serialization is canonical: UTF-8, keys sorted, no extra whitespace.
func ComputeStructuralHash(m *Manifest) (string, error) {
	sections := append([]SectionEntry(nil), m.Sections...)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].OrderIndex < sections[j].OrderIndex
	})

	figures := append([]FigureEntry(nil), m.Figures...)
	sort.SliceStable(figures, func(i, j int) bool {
		return idSuffix(figures[i].ID) < idSuffix(figures[j].ID)
	})

	projection := map[string]any{
		"sections": sectionMaps(sections),
		"figures":  figureMaps(figures),
	}

	if len(m.Footnotes) > 0 {
		footnotes := append([]FootnoteEntry(nil), m.Footnotes...)
		sort.SliceStable(footnotes, func(i, j int) bool {
			return idSuffix(footnotes[i].ID) < idSuffix(footnotes[j].ID)
		})
		projection["footnotes"] = footnoteMaps(footnotes)
	}

	data, err := canonicalJSON(projection)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum), nil
}

// canonicalJSON serializes with sorted keys, no extra whitespace, and
// no HTML escaping.
func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// sectionMaps converts section entries to maps so the canonical
// serializer sorts their keys.
func sectionMaps(entries []SectionEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, s := range entries {
		var parent any
		if s.ParentID != nil {
			parent = *s.ParentID
		}
		out[i] = map[string]any{
			"id":          s.ID,
			"slug":        s.Slug,
			"parent_id":   parent,
			"level":       s.Level,
			"order_index": s.OrderIndex,
			"title":       s.Title,
			"page_span":   []int{s.PageSpan[0], s.PageSpan[1]},
		}
	}
	return out
}

func figureMaps(entries []FigureEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, f := range entries {
		bbox := f.BBox
		if bbox == nil {
			bbox = []float64{}
		}
		out[i] = map[string]any{
			"id":       f.ID,
			"filename": f.Filename,
			"caption":  f.Caption,
			"alt":      f.Alt,
			"page":     f.Page,
			"bbox":     bbox,
		}
	}
	return out
}

func footnoteMaps(entries []FootnoteEntry) []map[string]any {
	out := make([]map[string]any, len(entries))
	for i, fn := range entries {
		out[i] = map[string]any{
			"id":     fn.ID,
			"marker": fn.Marker,
			"text":   fn.Text,
			"page":   fn.Page,
		}
	}
	return out
}

// idSuffix parses the numeric suffix of an ID like "fig_003".
func idSuffix(id string) int {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return 0
	}
	n, _ := strconv.Atoi(id[idx+1:])
	return n
}

// Encode serializes the manifest itself (not the hash projection) with
// two-space indentation for writing to disk.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}
