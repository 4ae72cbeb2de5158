// Package normalize turns raw extracted table grids into canonical
// payslip line items. Extraction is noisy: cells arrive with embedded
// line breaks when physically stacked rows were merged, column counts
// vary per table, and header rows sit at arbitrary depths. The
// normalizer reconstructs aligned rows from that noise and reports a
// typed skip reason for every table it cannot use.
package normalize

import (
	"fmt"
	"strings"

	"contracheques/internal/core"
)

// HeaderMarker is the cell content that identifies a payslip table's
// header row, exactly as the extractor emits it.
const HeaderMarker = "DESCRIÇÃO"

// minColumns is the positional layout the SEAD/AMAZONPREV tables carry:
// Descrição, PVD, COD, BASE, VALOR UNITÁRIO, TOTAL.
const minColumns = 6

// RawTableGrid is one extracted table: ordered rows of ordered text
// cells, tagged with the page it came from. A cell may contain embedded
// line breaks representing stacked logical rows.
type RawTableGrid struct {
	Page int
	Rows [][]string
}

// SkipReason says why a table produced no line items.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipNoHeader
	SkipTooFewColumns
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipNoHeader:
		return "header marker not found"
	case SkipTooFewColumns:
		return "fewer than 6 columns"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// TableResult is the outcome of normalizing one grid: either items, or
// a skip reason. Skipped tables are not errors.
type TableResult struct {
	Page  int
	Items []core.LineItem
	Skip  SkipReason
}

// Skipped reports whether the table yielded no items for a known reason.
func (r TableResult) Skipped() bool { return r.Skip != SkipNone }

// NormalizeGrid converts one raw grid into canonical line items.
//
// The first row containing a cell exactly equal to HeaderMarker is the
// header; it and everything above it are discarded. Data rows need at
// least six columns, assigned positionally. Rows whose cells embed line
// breaks are expanded so that the i-th segment of every cell forms the
// i-th output row, preserving column alignment.
//
// The item's Date is left empty here; ResolveCompetencyDate fills it
// from the page text.
func NormalizeGrid(grid RawTableGrid) TableResult {
	res := TableResult{Page: grid.Page}

	header := headerRowIndex(grid.Rows)
	if header < 0 {
		res.Skip = SkipNoHeader
		return res
	}

	data := grid.Rows[header+1:]
	competency := fmt.Sprintf("Página %d", grid.Page)

	for _, row := range data {
		if len(row) < minColumns {
			res.Skip = SkipTooFewColumns
			res.Items = nil
			return res
		}
		for _, cells := range expandStackedRow(row) {
			res.Items = append(res.Items, core.LineItem{
				Description: cells[0],
				Code:        cells[2],
				TotalRaw:    cells[5],
				Competency:  competency,
				SourcePage:  grid.Page,
			})
		}
	}
	return res
}

func headerRowIndex(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if cell == HeaderMarker {
				return i
			}
		}
	}
	return -1
}

// expandStackedRow splits every cell on embedded line breaks and emits
// one output row per segment index. A cell with fewer segments than the
// row maximum contributes empty strings for the missing positions.
func expandStackedRow(row []string) [][]string {
	segs := make([][]string, len(row))
	max := 0
	for i, cell := range row {
		segs[i] = strings.Split(cell, "\n")
		if len(segs[i]) > max {
			max = len(segs[i])
		}
	}

	out := make([][]string, max)
	for i := 0; i < max; i++ {
		cells := make([]string, len(row))
		for c := range row {
			if i < len(segs[c]) {
				cells[c] = strings.TrimSpace(segs[c][i])
			}
		}
		out[i] = cells
	}
	return out
}
