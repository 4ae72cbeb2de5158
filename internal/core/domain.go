package core

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// DateSentinel marks a page whose competency date could not be determined.
// It travels through every downstream stage as an opaque string.
const DateSentinel = "N/D"

type SummaryKind string

// SummaryKind identifies the fixed summary rows appended after the
// indébito calculation.
const (
	SummaryNone          SummaryKind = ""
	SummaryTotalA        SummaryKind = "total_a"
	SummaryReceivedB     SummaryKind = "received_b"
	SummaryIndebito      SummaryKind = "indebito"
	SummaryIndebitoDobro SummaryKind = "indebito_dobro"
)

// Marker descriptions carried by the summary rows, exactly as they appear
// in the generated reports.
const (
	MarkerTotalA        = "A = Valor Total (R$)"
	MarkerReceivedB     = "B = Valor Recebido - Autor (a)"
	MarkerIndebito      = "Indébito (A-B)"
	MarkerIndebitoDobro = "Indébito em dobro (R$)"
)

type (
	// LineItem is one canonical deduction line reconstructed from a payslip
	// table. Immutable once created. TotalRaw keeps the monetary value as
	// extracted; it may be empty when the row carries no amount.
	LineItem struct {
		Code        string
		Description string
		TotalRaw    string
		Date        string // competency date MM/YYYY, or DateSentinel
		Competency  string // provenance label "Página {n}"
		SourcePage  int
	}

	// FinalLineItem is a LineItem in the terminal report collection,
	// optionally marking one of the four appended summary rows.
	FinalLineItem struct {
		LineItem
		IsSummaryRow bool
		SummaryKind  SummaryKind
	}

	// Statement is the document-scoped context threaded through each
	// processing stage: the extracted identity plus the flat item
	// collection aggregated across all pages, no deduplication.
	Statement struct {
		Name      string
		Matricula string
		Items     []LineItem
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyStatement   = errors.New("statement has no line items")
	ErrSessionNotFound  = errors.New("session not found")
	ErrNothingSelected  = errors.New("no descriptions selected")
	ErrUnknownSelection = errors.New("selected description not in statement")
)

// HasTotal reports whether the item carries a monetary value. Items
// without one never participate in matching or summation.
func (li LineItem) HasTotal() bool {
	return strings.TrimSpace(li.TotalRaw) != ""
}

// IsEmpty reports whether the whole document yielded zero line items.
func (s Statement) IsEmpty() bool {
	return len(s.Items) == 0
}

// Deductions returns the items that carry a monetary value, in document
// order. This is the collection the rubric matcher operates on.
func (s Statement) Deductions() []LineItem {
	out := make([]LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		if it.HasTotal() {
			out = append(out, it)
		}
	}
	return out
}

// SortByCompetencyDate orders items chronologically by their MM/YYYY
// competency date, keeping document order among equal dates. Items whose
// date is the sentinel or malformed sort after all dated items.
func SortByCompetencyDate(items []LineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		yi, mi, oki := splitCompetency(items[i].Date)
		yj, mj, okj := splitCompetency(items[j].Date)
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		if yi != yj {
			return yi < yj
		}
		return mi < mj
	})
}

func splitCompetency(date string) (year, month int, ok bool) {
	parts := strings.Split(strings.TrimSpace(date), "/")
	if len(parts) != 2 || len(parts[1]) != 4 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return y, m, true
}
