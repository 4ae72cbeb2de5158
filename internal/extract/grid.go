package extract

import (
	"contracheques/internal/normalize"
)

// Tolerances in PDF points. Lines closer than rowTol merge into one
// stacked grid row; words further apart than gapTol start a new cell.
const (
	rowTol = 15.0
	gapTol = 12.0
)

// buildGrid reconstructs a table grid from a page's text lines.
//
// Column boundaries come from the header line (the one carrying the
// DESCRIÇÃO marker): each of its cells anchors one column, and every
// word below is assigned to the nearest anchor to its left. Lines
// closer together than rowTol are treated as one physically stacked
// row, with their cell texts joined by a line break so the normalizer
// can expand them back.
//
// Pages without a header line yield a headerless grid that the
// normalizer will skip with a typed reason.
func buildGrid(rows []textRow, page int) normalize.RawTableGrid {
	grid := normalize.RawTableGrid{Page: page}

	headerIdx, anchors := headerAnchors(rows)
	if headerIdx < 0 {
		return grid
	}

	grid.Rows = append(grid.Rows, rowCells(rows[headerIdx], anchors))

	var (
		current []string
		lastY   float64
	)
	flush := func() {
		if current != nil {
			grid.Rows = append(grid.Rows, current)
			current = nil
		}
	}

	for _, row := range rows[headerIdx+1:] {
		cells := rowCells(row, anchors)
		if current != nil && absDiff(row.y, lastY) <= rowTol {
			stackCells(current, cells)
		} else {
			flush()
			current = cells
		}
		lastY = row.y
	}
	flush()

	return grid
}

// headerAnchors finds the header line and returns the X start of each
// of its cells. The marker cell must match exactly, as emitted.
func headerAnchors(rows []textRow) (int, []float64) {
	for i, row := range rows {
		cells := clusterWords(row.words)
		for _, c := range cells {
			if c.text == normalize.HeaderMarker {
				anchors := make([]float64, len(cells))
				for j, cc := range cells {
					anchors[j] = cc.x
				}
				return i, anchors
			}
		}
	}
	return -1, nil
}

type cell struct {
	x    float64
	text string
}

// clusterWords groups a line's words into cells: a horizontal gap wider
// than gapTol separates two cells, anything tighter is one cell.
func clusterWords(words []word) []cell {
	var cells []cell
	for i, w := range words {
		if i > 0 && w.x-words[i-1].end() <= gapTol {
			last := &cells[len(cells)-1]
			last.text += " " + w.s
			continue
		}
		cells = append(cells, cell{x: w.x, text: w.s})
	}
	return cells
}

// rowCells distributes a line's words over the header's columns. A word
// belongs to the rightmost anchor starting at or left of it (with half
// a gap of slack for ragged alignment).
func rowCells(row textRow, anchors []float64) []string {
	cells := make([]string, len(anchors))
	for _, w := range row.words {
		col := 0
		for j, ax := range anchors {
			if w.x >= ax-gapTol/2 {
				col = j
			}
		}
		if cells[col] != "" {
			cells[col] += " "
		}
		cells[col] += w.s
	}
	return cells
}

// stackCells folds a second physical line into an existing grid row,
// joining overlapping cells with an embedded line break.
func stackCells(dst []string, next []string) {
	for i := range dst {
		if next[i] == "" {
			continue
		}
		if dst[i] == "" {
			dst[i] = next[i]
			continue
		}
		dst[i] = dst[i] + "\n" + next[i]
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
