package extract

import (
	"testing"

	"contracheques/internal/normalize"
)

// header line laid out the way the SEAD tables print it.
func headerRow(y float64) textRow {
	return textRow{y: y, words: []word{
		{x: 20, w: 50, s: "DESCRIÇÃO"},
		{x: 180, w: 20, s: "PVD"},
		{x: 230, w: 20, s: "COD"},
		{x: 280, w: 25, s: "BASE"},
		{x: 340, w: 40, s: "VALOR"},
		{x: 381, w: 45, s: "UNITÁRIO"},
		{x: 450, w: 30, s: "TOTAL"},
	}}
}

func TestBuildGridColumnsFromHeaderAnchors(t *testing.T) {
	rows := []textRow{
		{y: 700, words: []word{{x: 20, w: 100, s: "GOVERNO"}, {x: 130, w: 60, s: "DO"}}},
		headerRow(650),
		{y: 620, words: []word{
			{x: 20, w: 40, s: "CONSIG"},
			{x: 62, w: 40, s: "BANCO"},
			{x: 180, w: 10, s: "1"},
			{x: 230, w: 20, s: "055"},
			{x: 280, w: 25, s: "0,00"},
			{x: 340, w: 25, s: "0,00"},
			{x: 450, w: 30, s: "100,00"},
		}},
	}

	grid := buildGrid(rows, 4)
	if grid.Page != 4 {
		t.Fatalf("page = %d", grid.Page)
	}
	if len(grid.Rows) != 2 {
		t.Fatalf("expected header + 1 data row, got %d rows", len(grid.Rows))
	}

	header := grid.Rows[0]
	if len(header) != 6 {
		t.Fatalf("expected 6 columns, got %d: %v", len(header), header)
	}
	if header[0] != "DESCRIÇÃO" || header[4] != "VALOR UNITÁRIO" {
		t.Fatalf("header cells wrong: %v", header)
	}

	data := grid.Rows[1]
	want := []string{"CONSIG BANCO", "1", "055", "0,00", "0,00", "100,00"}
	for i := range want {
		if data[i] != want[i] {
			t.Fatalf("column %d: got %q, want %q (row %v)", i, data[i], want[i], data)
		}
	}
}

func TestBuildGridStacksCloseLines(t *testing.T) {
	rows := []textRow{
		headerRow(650),
		{y: 620, words: []word{
			{x: 20, w: 40, s: "CONSIG"},
			{x: 450, w: 20, s: "10,00"},
		}},
		{y: 610, words: []word{ // within rowTol of the previous line
			{x: 20, w: 40, s: "MENSALIDADE"},
			{x: 450, w: 20, s: "20,00"},
		}},
		{y: 560, words: []word{ // separate physical row
			{x: 20, w: 40, s: "OUTRO"},
			{x: 450, w: 20, s: "30,00"},
		}},
	}

	grid := buildGrid(rows, 1)
	if len(grid.Rows) != 3 {
		t.Fatalf("expected header + 2 data rows, got %d", len(grid.Rows))
	}
	stacked := grid.Rows[1]
	if stacked[0] != "CONSIG\nMENSALIDADE" || stacked[5] != "10,00\n20,00" {
		t.Fatalf("close lines not stacked: %v", stacked)
	}
	if grid.Rows[2][0] != "OUTRO" {
		t.Fatalf("distant line merged: %v", grid.Rows[2])
	}

	// Round trip through the normalizer: stacked cells expand again.
	res := normalize.NormalizeGrid(grid)
	if res.Skipped() {
		t.Fatalf("unexpected skip: %v", res.Skip)
	}
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 expanded items, got %d", len(res.Items))
	}
	if res.Items[1].Description != "MENSALIDADE" || res.Items[1].TotalRaw != "20,00" {
		t.Fatalf("stacked item misaligned: %+v", res.Items[1])
	}
}

func TestBuildGridWithoutHeaderYieldsEmptyGrid(t *testing.T) {
	rows := []textRow{
		{y: 700, words: []word{{x: 20, w: 100, s: "PÁGINA"}, {x: 130, w: 60, s: "AVULSA"}}},
	}
	grid := buildGrid(rows, 2)
	if len(grid.Rows) != 0 {
		t.Fatalf("headerless page must yield no rows, got %v", grid.Rows)
	}
	if res := normalize.NormalizeGrid(grid); res.Skip != normalize.SkipNoHeader {
		t.Fatalf("normalizer should skip headerless grid, got %v", res.Skip)
	}
}
