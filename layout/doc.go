// Package layout performs structural inference over positioned text
// spans: merging spans into logical lines, classifying lines into typed
// blocks (paragraph, list, code, table), detecting nested lists and
// scoring table candidates, identifying headings, and validating the
// document's chapter/section/appendix numbering scheme.
//
// The stages are pure and synchronous. LineMerger and BlockAssembler are
// stateless per call; NumberingProcessor carries document-scoped state
// and must consume headings strictly in document order, one fresh
// instance per document.
package layout
