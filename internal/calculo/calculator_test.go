package calculo

import (
	"testing"

	"contracheques/internal/core"
)

func selection(totals ...string) []core.LineItem {
	items := make([]core.LineItem, len(totals))
	for i, tot := range totals {
		items[i] = core.LineItem{Description: "CONSIG BANCO", TotalRaw: tot, Code: "055"}
	}
	return items
}

func TestAppendIndebito(t *testing.T) {
	got := AppendIndebito(selection("100.00", "50.00"), "50,00")

	if len(got) != 6 {
		t.Fatalf("expected 2 items + 4 summary rows, got %d", len(got))
	}

	summaries := got[2:]
	want := []struct {
		kind   core.SummaryKind
		marker string
		amount string
	}{
		{core.SummaryTotalA, core.MarkerTotalA, "150,00"},
		{core.SummaryReceivedB, core.MarkerReceivedB, "50,00"},
		{core.SummaryIndebito, core.MarkerIndebito, "100,00"},
		{core.SummaryIndebitoDobro, core.MarkerIndebitoDobro, "200,00"},
	}
	for i, w := range want {
		row := summaries[i]
		if !row.IsSummaryRow || row.SummaryKind != w.kind {
			t.Fatalf("row %d: not marked as %s summary: %+v", i, w.kind, row)
		}
		if row.Description != w.marker {
			t.Fatalf("row %d: marker %q, want %q", i, row.Description, w.marker)
		}
		if row.TotalRaw != w.amount {
			t.Fatalf("row %d (%s): amount %q, want %q", i, w.marker, row.TotalRaw, w.amount)
		}
		if row.Code != "" || row.Date != "" || row.Competency != "" {
			t.Fatalf("row %d: summary fields must be blank: %+v", i, row)
		}
	}
}

func TestAppendIndebitoZeroTotalReturnsInputUnchanged(t *testing.T) {
	in := selection("", "not a number")
	got := AppendIndebito(in, "50,00")
	if len(got) != len(in) {
		t.Fatalf("zero total must append nothing, got %d rows for %d items", len(got), len(in))
	}
	for _, row := range got {
		if row.IsSummaryRow {
			t.Fatalf("unexpected summary row: %+v", row)
		}
	}
}

func TestAppendIndebitoReceivedVerbatim(t *testing.T) {
	got := AppendIndebito(selection("10,00"), "  1234,5 ")
	var b core.FinalLineItem
	for _, row := range got {
		if row.SummaryKind == core.SummaryReceivedB {
			b = row
		}
	}
	if b.TotalRaw != "  1234,5 " {
		t.Fatalf("received amount must be carried as supplied, got %q", b.TotalRaw)
	}
}

func TestAppendIndebitoUnparseableReceivedIsZero(t *testing.T) {
	got := AppendIndebito(selection("80,00"), "abc")
	for _, row := range got {
		if row.SummaryKind == core.SummaryIndebito && row.TotalRaw != "80,00" {
			t.Fatalf("indébito with B=0 should equal A, got %q", row.TotalRaw)
		}
	}
}

func TestAppendIndebitoNegativePreserved(t *testing.T) {
	got := AppendIndebito(selection("30,00"), "100,00")
	var indebito, dobro string
	for _, row := range got {
		switch row.SummaryKind {
		case core.SummaryIndebito:
			indebito = row.TotalRaw
		case core.SummaryIndebitoDobro:
			dobro = row.TotalRaw
		}
	}
	if indebito != "-70,00" {
		t.Fatalf("negative indébito must be preserved, got %q", indebito)
	}
	if dobro != "-140,00" {
		t.Fatalf("negative indébito em dobro must be preserved, got %q", dobro)
	}
}

func TestTotalSkipsUnparseable(t *testing.T) {
	sum := Total([]core.LineItem{
		{TotalRaw: "1.000,50"},
		{TotalRaw: ""},
		{TotalRaw: "xx"},
		{TotalRaw: "0,50"},
	})
	if sum.String() != "1001" {
		t.Fatalf("Total = %s, want 1001", sum)
	}
}
