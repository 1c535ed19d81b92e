package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/relevador/internal/model"
)

// defaultSheet is the sheet excelize creates with a new workbook.
const defaultSheet = "Sheet1"

// columnWidth is the width applied to every column.
const columnWidth = 24

// XLSXWriter outputs the report as an Excel workbook with the sheets
// Relevamiento and Resumen.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the workbook.
func (w *XLSXWriter) Write(result *model.SurveyResult) (int, error) {
	f, err := w.Workbook(NewTables(result))
	if err != nil {
		return 0, err
	}
	defer f.Close() //nolint:errcheck // in-memory workbook

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("failed to write workbook: %w", err)
	}
	return int(n), nil
}

// Workbook builds the workbook for tables. The caller closes it.
func (w *XLSXWriter) Workbook(tables *Tables) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})
	if err != nil {
		_ = f.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		_ = f.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create cell style: %w", err)
	}

	for i, t := range tables.All() {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, t.Name)
		} else {
			_, err = f.NewSheet(t.Name)
		}
		if err != nil {
			_ = f.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}
		if err := w.writeSheet(f, t, headerStyle, cellStyle); err != nil {
			_ = f.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to write sheet %s: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)

	return f, nil
}

// writeSheet fills one sheet with a header row and the table rows.
func (w *XLSXWriter) writeSheet(f *excelize.File, t Table, headerStyle, cellStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = cellValue(v)
		}
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.Header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(t.Name, "A", lastCol, columnWidth); err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if len(t.Rows) > 0 {
		bottom := lastCol + strconv.Itoa(len(t.Rows)+1)
		if err := f.SetCellStyle(t.Name, "A2", bottom, cellStyle); err != nil {
			return err
		}
	}

	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue stores plain integers as numbers so that spreadsheets can sum them.
func cellValue(s string) any {
	n, err := strconv.Atoi(s)
	if err != nil || strconv.Itoa(n) != s {
		return s
	}
	return n
}
