package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

// ParseOptions controls how an input file is read.
type ParseOptions struct {
	// Sheet is the workbook sheet to read. When empty, the first sheet whose
	// header has every required column is used.
	Sheet  string
	Logger *slog.Logger
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// headerAliases maps accepted header spellings to canonical column names.
var headerAliases = map[string]string{
	"data":           domain.ColumnDate,
	"date":           domain.ColumnDate,
	"preco_diesel":   domain.ColumnDiesel,
	"diesel":         domain.ColumnDiesel,
	"preco_gasolina": domain.ColumnGasoline,
	"gasoline":       domain.ColumnGasoline,
	"gasolina":       domain.ColumnGasoline,
	"preco_brent":    domain.ColumnBrent,
	"brent":          domain.ColumnBrent,
	"preco_dolar":    domain.ColumnExchangeRate,
	"usd_brl":        domain.ColumnExchangeRate,
	"exchange_rate":  domain.ColumnExchangeRate,
	"dolar":          domain.ColumnExchangeRate,
}

// Text date layouts, tried in order before the Excel serial fallback.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"20060102",
}

// Excel serial range: 1900-01-01 through 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseFile reads the price table from an .xlsx or .csv file. Rows are
// returned sorted by date; derived columns are not filled in.
func ParseFile(path string, opts ParseOptions) (*domain.ObservationTable, error) {
	logger := opts.logger()

	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unsupported input format %q", ext), nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.NewParsingError("input has no header row", nil).WithContext("path", path)
	}

	table, err := ParseRows(rows[0], rows[1:], opts)
	if err != nil {
		return nil, err
	}
	table.Source = path

	logger.Info("Input parsed",
		slog.String("path", path),
		slog.Int("rows", table.Len()))

	return table, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if sheet != "" {
		return readSheet(f, path, sheet)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	// First sheet whose header has every required column, else the first
	// sheet so that the missing columns get reported against it.
	var first [][]string
	for i, name := range sheets {
		rows, err := readSheet(f, path, name)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = rows
		}
		if len(rows) > 0 {
			if _, err := ValidateColumns(rows[0]); err == nil {
				return rows, nil
			}
		}
	}
	return first, nil
}

func readSheet(f *excelize.File, path, sheet string) ([][]string, error) {
	// Raw values keep dates as serial numbers instead of locale-formatted text
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to read csv file", err).WithContext("path", path)
	}
	content = bytes.TrimPrefix(content, []byte("\xEF\xBB\xBF"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError("malformed csv", err).WithContext("path", path)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// sniffDelimiter picks ';' over ',' when the header line uses it more.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// ValidateColumns maps each required column to its index in the header.
// It fails with a missing-columns error listing every absent column.
func ValidateColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(domain.RequiredColumns))
	for i, name := range header {
		canonical, ok := headerAliases[normalizeHeader(name)]
		if !ok {
			continue
		}
		if _, seen := index[canonical]; !seen {
			index[canonical] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingColumnsError(missing)
	}
	return index, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseRows builds an observation table from a header and its data rows.
// Blank rows are skipped and the result is stable-sorted by date.
func ParseRows(header []string, rows [][]string, opts ParseOptions) (*domain.ObservationTable, error) {
	index, err := ValidateColumns(header)
	if err != nil {
		return nil, err
	}

	table := &domain.ObservationTable{
		Rows: make([]domain.Observation, 0, len(rows)),
	}

	skipped := 0
	for i, row := range rows {
		// header is spreadsheet row 1
		rowNum := i + 2
		if isBlankRow(row) {
			skipped++
			continue
		}

		obs, err := parseObservation(row, index, rowNum)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, obs)
	}

	sort.SliceStable(table.Rows, func(a, b int) bool {
		return table.Rows[a].Date.Before(table.Rows[b].Date)
	})

	if skipped > 0 {
		opts.logger().Debug("Skipped blank rows", slog.Int("count", skipped))
	}

	return table, nil
}

func parseObservation(row []string, index map[string]int, rowNum int) (domain.Observation, error) {
	var obs domain.Observation

	date, err := parseDate(cell(row, index[domain.ColumnDate]))
	if err != nil {
		return obs, cellError(rowNum, domain.ColumnDate, err)
	}
	obs.Date = date

	targets := []struct {
		column string
		dst    *float64
	}{
		{domain.ColumnDiesel, &obs.Diesel},
		{domain.ColumnGasoline, &obs.Gasoline},
		{domain.ColumnBrent, &obs.Brent},
		{domain.ColumnExchangeRate, &obs.ExchangeRate},
	}
	for _, t := range targets {
		v, err := parseNumber(cell(row, index[t.column]))
		if err != nil {
			return obs, cellError(rowNum, t.column, err)
		}
		*t.dst = v
	}

	return obs, nil
}

func cellError(rowNum int, column string, cause error) error {
	return errors.NewParsingError(
		fmt.Sprintf("row %d, column %s", rowNum, column), cause).
		WithContext("row", rowNum).
		WithContext("column", column)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts the text layouts in dateLayouts and Excel serial dates.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	serial, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, fmt.Errorf("excel date serial %q out of range", s)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid excel date %q: %w", s, err)
	}
	return t, nil
}

// parseNumber accepts '.' or ',' as the decimal separator. When both appear
// the rightmost one is the decimal separator.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}

	normalized := s
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		normalized = strings.ReplaceAll(s, ".", "")
		normalized = strings.Replace(normalized, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		normalized = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		normalized = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number %q", s)
	}
	return v, nil
}
