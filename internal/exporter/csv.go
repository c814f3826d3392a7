package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fuelbreak/internal/config"
	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

// utf8BOM helps Excel recognise UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. Relative paths
// resolve against the tables directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Writing CSV file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return "", fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return fullPath, file.Close()
}

// WriteTable writes a report table with the row labels as first column.
func (w *CSVWriter) WriteTable(tbl *domain.Table) (string, error) {
	if err := tbl.Validate(); err != nil {
		return "", errors.NewAppValidationError(err.Error())
	}
	headers := append([]string{tbl.IndexLabel}, tbl.Columns...)
	records := make([][]string, len(tbl.Cells))
	for i, row := range tbl.Cells {
		records[i] = append([]string{tbl.RowLabels[i]}, row...)
	}

	return w.WriteCSV(w.paths.TableCSVPath(tbl.Name), WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// ObservationHeaders are the columns of the derived data export.
var ObservationHeaders = []string{
	domain.ColumnDate,
	domain.ColumnDiesel,
	domain.ColumnGasoline,
	domain.ColumnBrent,
	domain.ColumnExchangeRate,
	domain.ColumnTimeIndex,
	domain.ColumnPostBreak,
	domain.ColumnInteraction,
	domain.ColumnBrentBRL,
}

// ObservationRecord formats one derived row in ObservationHeaders order.
// Values keep full precision.
func ObservationRecord(o domain.Observation) []string {
	return []string{
		formatDate(o.Date),
		formatRaw(o.Diesel),
		formatRaw(o.Gasoline),
		formatRaw(o.Brent),
		formatRaw(o.ExchangeRate),
		formatInt(o.TimeIndex),
		formatInt(o.PostBreak),
		formatRaw(o.Interaction),
		formatRaw(o.BrentBRL),
	}
}

// WriteObservations streams the derived table to the observations file.
func (w *CSVWriter) WriteObservations(table *domain.ObservationTable) (string, error) {
	stream, err := w.CreateStreamWriter(w.paths.ObservationsFile, ObservationHeaders)
	if err != nil {
		return "", err
	}
	for _, row := range table.Rows {
		if err := stream.WriteRecord(ObservationRecord(row)); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write observation: %w", err)
		}
	}
	if err := stream.Close(); err != nil {
		return "", err
	}
	return stream.path, nil
}

// StreamWriter provides row-at-a-time CSV writing
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{
		path:   fullPath,
		file:   file,
		writer: writer,
	}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// resolvePath resolves a relative path against the tables directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.paths.TablesDir, filePath)
}
