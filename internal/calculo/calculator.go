// Package calculo computes the legal-overpayment (indébito) summary
// from a user-confirmed selection of deduction line items.
package calculo

import (
	"github.com/shopspring/decimal"

	"contracheques/internal/core"
)

// AppendIndebito sums the selection into total A, parses the supplied
// received amount into B and appends the four fixed summary rows:
//
//	A = Valor Total (R$)            formatted A
//	B = Valor Recebido - Autor (a)  the received string as supplied
//	Indébito (A-B)                  formatted A − B
//	Indébito em dobro (R$)          formatted 2 × (A − B)
//
// Unparseable totals count as zero. When nothing sums (A == 0) the
// input comes back unchanged so the report never consists of degenerate
// zero rows. Negative indébito is preserved: overpayment in either
// direction stays visible.
//
// The caller is responsible for sorting the selection by competency
// date beforehand; no reordering happens here.
func AppendIndebito(items []core.LineItem, receivedRaw string) []core.FinalLineItem {
	out := make([]core.FinalLineItem, 0, len(items)+4)
	for _, it := range items {
		out = append(out, core.FinalLineItem{LineItem: it})
	}

	total := sumTotals(items)
	if total.IsZero() {
		return out
	}

	received, err := core.ParseArithmetic(receivedRaw)
	if err != nil {
		received = decimal.Zero
	}

	indebito := total.Sub(received)
	dobro := indebito.Mul(decimal.NewFromInt(2))

	out = append(out,
		summaryRow(core.SummaryTotalA, core.MarkerTotalA, core.FormatBRL(total)),
		summaryRow(core.SummaryReceivedB, core.MarkerReceivedB, receivedRaw),
		summaryRow(core.SummaryIndebito, core.MarkerIndebito, core.FormatBRL(indebito)),
		summaryRow(core.SummaryIndebitoDobro, core.MarkerIndebitoDobro, core.FormatBRL(dobro)),
	)
	return out
}

// Total is the fixed-point sum of the selection's parseable totals.
func Total(items []core.LineItem) decimal.Decimal {
	return sumTotals(items)
}

func sumTotals(items []core.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		v, err := core.ParseArithmetic(it.TotalRaw)
		if err != nil {
			continue
		}
		sum = sum.Add(v)
	}
	return sum
}

// summaryRow carries blanks in every field except the marker
// description and the amount.
func summaryRow(kind core.SummaryKind, marker, amount string) core.FinalLineItem {
	return core.FinalLineItem{
		LineItem: core.LineItem{
			Description: marker,
			TotalRaw:    amount,
		},
		IsSummaryRow: true,
		SummaryKind:  kind,
	}
}
