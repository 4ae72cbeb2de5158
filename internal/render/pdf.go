package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"contracheques/internal/core"
)

// ReportMeta carries the identity shown in report titles.
type ReportMeta struct {
	Name      string
	Matricula string
}

// Fixed column widths in millimeters. The final report narrows the
// description column to make room for the highlighted summary rows.
var (
	rawColumns = []column{
		{"COD", 30, "C"},
		{"Descrição", 150, "L"},
		{"TOTAL", 40, "R"},
		{"DATA", 30, "C"},
	}
	finalColumns = []column{
		{"COD", 30, "C"},
		{"DESCRIÇÃO", 120, "L"},
		{"DESCONTOS", 40, "C"},
		{"DATA", 30, "C"},
	}
)

type column struct {
	title string
	width float64
	align string
}

const rowHeight = 7

// RawTablePDF renders the full normalized item collection, one row per
// line item, in the raw tabular layout.
func RawTablePDF(items []core.LineItem, meta ReportMeta) ([]byte, error) {
	title := fmt.Sprintf("Tabelas (SEAD / AMAZONPREV) - %s - %s", meta.Name, meta.Matricula)
	pdf, tr := newLandscape(title, rawColumns)

	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)
	for _, it := range items {
		breakPageIfNeeded(pdf)
		total := it.TotalRaw
		if total != "" {
			total = core.NormalizeDisplay(total)
		}
		writeRow(pdf, rawColumns, tr, []string{it.Code, it.Description, total, it.Date})
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render raw tables pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FinalReportPDF renders the confirmed selection plus its summary rows.
// Summary rows are set bold red so they stand apart from the items.
func FinalReportPDF(rows []core.FinalLineItem, meta ReportMeta) ([]byte, error) {
	title := fmt.Sprintf("Descontos Finais - %s - %s", meta.Name, meta.Matricula)
	pdf, tr := newLandscape(title, finalColumns)

	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		breakPageIfNeeded(pdf)

		if row.IsSummaryRow {
			pdf.SetFont("Arial", "B", 11)
			pdf.SetTextColor(255, 0, 0)
		}

		amount := row.TotalRaw
		if amount != "" {
			amount = core.NormalizeDisplay(amount)
		}
		writeRow(pdf, finalColumns, tr, []string{row.Code, row.Description, amount, row.Date})

		if row.IsSummaryRow {
			pdf.SetFont("Arial", "", 9)
			pdf.SetTextColor(0, 0, 0)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render final report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// newLandscape builds an A4 landscape document with the shared header
// and footer: centered bold title, filled column header line, page
// number in the footer.
func newLandscape(title string, cols []column) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetAutoPageBreak(false, 15)
	pdf.SetMargins(10, 10, 10)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
		drawColumnHeader(pdf, cols, tr)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Página %d", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	return pdf, tr
}

func drawColumnHeader(pdf *fpdf.Fpdf, cols []column, tr func(string) string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 220, 255)
	for _, c := range cols {
		pdf.CellFormat(c.width, 8, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func writeRow(pdf *fpdf.Fpdf, cols []column, tr func(string) string, values []string) {
	for i, c := range cols {
		pdf.CellFormat(c.width, rowHeight, tr(values[i]), "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(rowHeight)
}

// breakPageIfNeeded starts a new page before a row would collide with
// the footer area.
func breakPageIfNeeded(pdf *fpdf.Fpdf) {
	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+rowHeight+15 > pageH {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 9)
	}
}
