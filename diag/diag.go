// Package diag collects structured diagnostics produced during a
// pipeline run. Numbering and appendix anomalies are recorded as data
// rather than logged, so callers can inspect or assert on them.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Category groups diagnostics by the component that produced them.
type Category string

const (
	CategoryNumbering Category = "numbering"
	CategoryAppendix  Category = "appendix"
	CategorySection   Category = "section"
	CategoryFigure    Category = "figure"
	CategoryFootnote  Category = "footnote"
)

// Diagnostic is a single structured event. Code identifies the anomaly
// (e.g. "duplicate_chapter_number"); Context holds the explicit values
// involved.
type Diagnostic struct {
	Category Category
	Code     string
	Context  map[string]any
}

// String renders the diagnostic for log output, with context keys in
// sorted order for stable messages.
func (d Diagnostic) String() string {
	if len(d.Context) == 0 {
		return fmt.Sprintf("%s: %s", d.Category, d.Code)
	}
	keys := make([]string, 0, len(d.Context))
	for k := range d.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, d.Context[k]))
	}
	return fmt.Sprintf("%s: %s (%s)", d.Category, d.Code, strings.Join(parts, " "))
}

// Collector accumulates diagnostics for one document conversion.
// A fresh Collector is constructed per run; it is not safe for
// concurrent use.
type Collector struct {
	events []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends a diagnostic event.
func (c *Collector) Record(category Category, code string, context map[string]any) {
	c.events = append(c.events, Diagnostic{Category: category, Code: code, Context: context})
}

// Events returns all recorded diagnostics in recording order.
func (c *Collector) Events() []Diagnostic {
	return c.events
}

// ByCode returns the diagnostics matching a code.
func (c *Collector) ByCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.events {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether any diagnostic with the given code was recorded.
func (c *Collector) Has(code string) bool {
	return len(c.ByCode(code)) > 0
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.events)
}
