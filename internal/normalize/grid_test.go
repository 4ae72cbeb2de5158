package normalize

import "testing"

func TestNormalizeGridNoHeader(t *testing.T) {
	grid := RawTableGrid{
		Page: 1,
		Rows: [][]string{
			{"CONTRACHEQUE", "", "", "", "", ""},
			{"CONSIG BANCO", "1", "055", "0,00", "0,00", "100,00"},
		},
	}
	res := NormalizeGrid(grid)
	if !res.Skipped() || res.Skip != SkipNoHeader {
		t.Fatalf("expected SkipNoHeader, got %v", res.Skip)
	}
	if len(res.Items) != 0 {
		t.Fatalf("skipped table must yield no items, got %d", len(res.Items))
	}
}

func TestNormalizeGridTooFewColumns(t *testing.T) {
	grid := RawTableGrid{
		Page: 2,
		Rows: [][]string{
			{"DESCRIÇÃO", "PVD", "COD", "TOTAL"},
			{"CONSIG BANCO", "1", "055", "100,00"},
		},
	}
	res := NormalizeGrid(grid)
	if res.Skip != SkipTooFewColumns {
		t.Fatalf("expected SkipTooFewColumns, got %v", res.Skip)
	}
}

func TestNormalizeGridDiscardsRowsAboveHeader(t *testing.T) {
	grid := RawTableGrid{
		Page: 3,
		Rows: [][]string{
			{"GOVERNO DO ESTADO", "", "", "", "", ""},
			{"DESCRIÇÃO", "PVD", "COD", "BASE", "VALOR UNITÁRIO", "TOTAL"},
			{"CONSIG BANCO", "1", "055", "0,00", "0,00", "100,00"},
		},
	}
	res := NormalizeGrid(grid)
	if res.Skipped() {
		t.Fatalf("unexpected skip: %v", res.Skip)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	it := res.Items[0]
	if it.Description != "CONSIG BANCO" || it.Code != "055" || it.TotalRaw != "100,00" {
		t.Fatalf("wrong projection: %+v", it)
	}
	if it.Competency != "Página 3" || it.SourcePage != 3 {
		t.Fatalf("wrong provenance: %+v", it)
	}
}

func TestNormalizeGridExpandsStackedRows(t *testing.T) {
	grid := RawTableGrid{
		Page: 1,
		Rows: [][]string{
			{"DESCRIÇÃO", "PVD", "COD", "BASE", "VALOR UNITÁRIO", "TOTAL"},
			{"A\nB", "1\n2", "10\n20", "", "0,00", "1\n2"},
		},
	}
	res := NormalizeGrid(grid)
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 expanded rows, got %d", len(res.Items))
	}
	first, second := res.Items[0], res.Items[1]
	if first.Description != "A" || first.Code != "10" || first.TotalRaw != "1" {
		t.Fatalf("first expanded row wrong: %+v", first)
	}
	if second.Description != "B" || second.Code != "20" || second.TotalRaw != "2" {
		t.Fatalf("second expanded row wrong: %+v", second)
	}
	// BASE had a single empty segment; the second row must read empty.
	if first.TotalRaw == "" || second.TotalRaw == "" {
		t.Fatalf("stacked totals lost: %+v %+v", first, second)
	}
}

func TestExpandStackedRowUnevenSegments(t *testing.T) {
	rows := expandStackedRow([]string{"A\nB\nC", "x", "1\n2"})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := [][]string{
		{"A", "x", "1"},
		{"B", "", "2"},
		{"C", "", ""},
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("row %d col %d: got %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}
