package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"contracheques/internal/core"
)

// One spreadsheet column-width unit is roughly 2.1 mm at the default
// font, close enough to keep the XLSX proportions matching the PDF.
const mmPerColUnit = 2.1

// FinalReportXLSX exports the confirmed selection plus summary rows as
// a single-sheet workbook mirroring the final PDF layout: same column
// titles and widths, summary rows bold red.
func FinalReportXLSX(rows []core.FinalLineItem, meta ReportMeta) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Descontos Finais"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C8DCFF"}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FF0000"},
	})
	if err != nil {
		return nil, fmt.Errorf("summary style: %w", err)
	}

	title := fmt.Sprintf("Descontos Finais - %s - %s", meta.Name, meta.Matricula)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, fmt.Errorf("set title: %w", err)
	}

	for i, c := range finalColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s2", col)
		if err := f.SetCellValue(sheet, cell, c.title); err != nil {
			return nil, fmt.Errorf("set header %s: %w", c.title, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", c.title, err)
		}
		if err := f.SetColWidth(sheet, col, col, c.width/mmPerColUnit); err != nil {
			return nil, fmt.Errorf("set width %s: %w", c.title, err)
		}
	}

	for i, row := range rows {
		rowNum := i + 3
		amount := row.TotalRaw
		if amount != "" {
			amount = core.NormalizeDisplay(amount)
		}
		values := []string{row.Code, row.Description, amount, row.Date}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			cell := fmt.Sprintf("%s%d", col, rowNum)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set row %d: %w", rowNum, err)
			}
			if row.IsSummaryRow {
				if err := f.SetCellStyle(sheet, cell, cell, summaryStyle); err != nil {
					return nil, fmt.Errorf("style summary row %d: %w", rowNum, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
