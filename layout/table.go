package layout

import (
	"regexp"
	"strings"
)

// columnSplitRE splits a table row on runs of two or more spaces.
var columnSplitRE = regexp.MustCompile(`\s{2,}`)

// tablePatternRE matches a line with at least two columns separated by
// two or more spaces.
var tablePatternRE = regexp.MustCompile(`\S\s{2,}\S`)

// tableSpanGap is the horizontal span gap, in points, beyond which a
// line counts as a table candidate even without a text-level gap.
const tableSpanGap = 10.0

// tableAlignTolerance is the x-position tolerance for the cross-row
// alignment factor.
const tableAlignTolerance = 5.0

// columnCountSaturation and rowCountSaturation normalize the column and
// row count factors of the confidence score.
const (
	columnCountSaturation = 4
	rowCountSaturation    = 5
)

// isTableCandidateLine reports whether a line could belong to a table:
// its merged text shows two or more multi-space-separated columns, or
// its spans leave a horizontal gap wider than 10 points.
func isTableCandidateLine(line Line) bool {
	if tablePatternRE.MatchString(line.Text) {
		return true
	}
	for i := 1; i < len(line.Spans); i++ {
		gap := line.Spans[i].BBox.X0 - line.Spans[i-1].BBox.X1
		if gap > tableSpanGap {
			return true
		}
	}
	return false
}

// splitColumns splits a row's merged text into cells on runs of two or
// more spaces.
func splitColumns(text string) []string {
	cells := columnSplitRE.Split(strings.TrimSpace(text), -1)
	out := cells[:0]
	for _, c := range cells {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// rowCells extracts the cells of a table row. Text-level column
// separators win; when the merged text shows a single column but the
// spans leave table-sized gaps, each gap-separated span group becomes a
// cell instead.
func rowCells(line Line) []string {
	cells := splitColumns(line.Text)
	if len(cells) >= 2 || len(line.Spans) < 2 {
		return cells
	}

	var out []string
	current := strings.TrimSpace(line.Spans[0].Text)
	for i := 1; i < len(line.Spans); i++ {
		gap := line.Spans[i].BBox.X0 - line.Spans[i-1].BBox.X1
		text := strings.TrimSpace(line.Spans[i].Text)
		if gap > tableSpanGap {
			if current != "" {
				out = append(out, current)
			}
			current = text
			continue
		}
		if text != "" {
			current += " " + text
		}
	}
	if current != "" {
		out = append(out, current)
	}
	if len(out) < 2 {
		return cells
	}
	return out
}

// tableConfidence scores a run of candidate lines as the mean of four
// factors: column-count consistency across rows, normalized maximum
// column count (saturating at 4), normalized row count (saturating at
// 5), and the cross-row alignment ratio of span x-positions.
func tableConfidence(lines []Line) float64 {
	if len(lines) == 0 {
		return 0
	}

	counts := make([]int, len(lines))
	minCols, maxCols := 0, 0
	for i, line := range lines {
		counts[i] = len(rowCells(line))
		if i == 0 || counts[i] < minCols {
			minCols = counts[i]
		}
		if counts[i] > maxCols {
			maxCols = counts[i]
		}
	}

	consistency := 0.0
	if maxCols > 0 {
		consistency = float64(minCols) / float64(maxCols)
	}

	colScore := float64(maxCols) / columnCountSaturation
	if colScore > 1 {
		colScore = 1
	}

	rowScore := float64(len(lines)) / rowCountSaturation
	if rowScore > 1 {
		rowScore = 1
	}

	return (consistency + colScore + rowScore + alignmentRatio(lines)) / 4
}

// alignmentRatio is the fraction of span x-positions in rows after the
// first that align, within tolerance, with some span x-position in the
// first row.
func alignmentRatio(lines []Line) float64 {
	if len(lines) < 2 {
		return 0
	}

	var reference []float64
	for _, span := range lines[0].Spans {
		reference = append(reference, span.BBox.X0)
	}
	if len(reference) == 0 {
		return 0
	}

	aligned, total := 0, 0
	for _, line := range lines[1:] {
		for _, span := range line.Spans {
			total++
			for _, x := range reference {
				if absFloat(span.BBox.X0-x) <= tableAlignTolerance {
					aligned++
					break
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(aligned) / float64(total)
}

// extractRows converts a run of table lines into cell rows.
func extractRows(lines []Line) [][]string {
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = rowCells(line)
	}
	return rows
}
