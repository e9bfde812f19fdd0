// Package model defines the shared data types for the strata pipeline:
// positioned text spans, bounding boxes, classified blocks with their
// typed metadata, and figures.
//
// Spans are produced once by the extraction collaborator and never
// mutated. Blocks are created by the block assembler and mutated only to
// attach numbering metadata before tree construction. All geometry uses
// PDF coordinates: origin bottom-left, y increasing upward, units in
// points.
//
// Example:
//
//	span := model.Span{
//	    Text:       "Chapter 1",
//	    BBox:       model.NewBBox(72, 700, 160, 714),
//	    FontName:   "Times-Bold",
//	    FontSize:   14,
//	    Style:      model.StyleFlags{Bold: true},
//	    Page:       1,
//	    OrderIndex: 0,
//	}
package model
