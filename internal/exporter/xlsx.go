package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

// defaultSheet is the sheet excelize creates with a new file
const defaultSheet = "Sheet1"

// ObservationsSheet holds the derived data in the workbook
const ObservationsSheet = "dados"

// WorkbookWriter collects report tables into one .xlsx file, one sheet per table.
type WorkbookWriter struct {
	file        *excelize.File
	headerStyle int
	sheets      []string
	logger      *slog.Logger
}

// NewWorkbookWriter creates an empty workbook
func NewWorkbookWriter(logger *slog.Logger) (*WorkbookWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EBEBEB"}},
	})
	if err != nil {
		f.Close()
		return nil, errors.NewStorageError("failed to create workbook style", err)
	}

	return &WorkbookWriter{file: f, headerStyle: style, logger: logger}, nil
}

// AddTable writes a table on its own sheet: title, header, body and note.
// Cells that parse as numbers are stored as numbers.
func (w *WorkbookWriter) AddTable(tbl *domain.Table) error {
	if err := tbl.Validate(); err != nil {
		return errors.NewAppValidationError(err.Error())
	}
	sheet := tbl.Name
	if err := w.newSheet(sheet); err != nil {
		return err
	}

	row := 1
	if tbl.Title != "" {
		if err := w.file.SetCellValue(sheet, "A1", tbl.Title); err != nil {
			return errors.NewStorageError("failed to write title", err)
		}
		row = 3
	}

	header := append([]string{tbl.IndexLabel}, tbl.Columns...)
	if err := w.setRow(sheet, row, toCells(header, false)); err != nil {
		return err
	}
	if err := w.styleRow(sheet, row, len(header)); err != nil {
		return err
	}

	for i, cells := range tbl.Cells {
		values := append([]interface{}{tbl.RowLabels[i]}, toCells(cells, true)...)
		if err := w.setRow(sheet, row+1+i, values); err != nil {
			return err
		}
	}

	if tbl.Note != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row+len(tbl.Cells)+2)
		if err := w.file.SetCellValue(sheet, cell, tbl.Note); err != nil {
			return errors.NewStorageError("failed to write note", err)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(header))
	if err := w.file.SetColWidth(sheet, "A", last, 18); err != nil {
		return errors.NewStorageError("failed to set column width", err)
	}
	return nil
}

// AddObservations writes the derived data table on the observations sheet.
func (w *WorkbookWriter) AddObservations(table *domain.ObservationTable) error {
	if err := w.newSheet(ObservationsSheet); err != nil {
		return err
	}
	if err := w.setRow(ObservationsSheet, 1, toCells(ObservationHeaders, false)); err != nil {
		return err
	}
	if err := w.styleRow(ObservationsSheet, 1, len(ObservationHeaders)); err != nil {
		return err
	}

	for i, obs := range table.Rows {
		values := []interface{}{
			obs.Date,
			obs.Diesel,
			obs.Gasoline,
			obs.Brent,
			obs.ExchangeRate,
			obs.TimeIndex,
			obs.PostBreak,
			obs.Interaction,
			obs.BrentBRL,
		}
		if err := w.setRow(ObservationsSheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// Sheets returns the sheet names added so far, in order.
func (w *WorkbookWriter) Sheets() []string {
	return w.sheets
}

// Save writes the workbook to path and releases it.
func (w *WorkbookWriter) Save(path string) error {
	defer w.file.Close()

	if len(w.sheets) > 0 {
		if err := w.file.DeleteSheet(defaultSheet); err != nil {
			return errors.NewStorageError("failed to drop default sheet", err)
		}
		if idx, err := w.file.GetSheetIndex(w.sheets[0]); err == nil {
			w.file.SetActiveSheet(idx)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create workbook directory", err)
	}
	if err := w.file.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.Debug("Workbook saved",
		slog.String("path", path),
		slog.Int("sheets", len(w.sheets)))
	return nil
}

func (w *WorkbookWriter) newSheet(name string) error {
	for _, s := range w.sheets {
		if s == name {
			return errors.NewAppValidationError(fmt.Sprintf("sheet %q already added", name))
		}
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return errors.NewStorageError("failed to create sheet", err).WithContext("sheet", name)
	}
	w.sheets = append(w.sheets, name)
	return nil
}

func (w *WorkbookWriter) setRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.NewStorageError("invalid row", err)
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.NewStorageError("failed to write row", err).
			WithContext("sheet", sheet).
			WithContext("row", row)
	}
	return nil
}

func (w *WorkbookWriter) styleRow(sheet string, row, width int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(width, row)
	if err := w.file.SetCellStyle(sheet, first, last, w.headerStyle); err != nil {
		return errors.NewStorageError("failed to style header", err)
	}
	return nil
}

// toCells converts strings to cell values, as numbers when numeric is set
// and the text parses.
func toCells(values []string, numeric bool) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
		if !numeric {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !isNonFinite(v) {
			out[i] = f
		}
	}
	return out
}

func isNonFinite(v string) bool {
	switch v {
	case "NaN", "inf", "-inf":
		return true
	}
	return false
}
