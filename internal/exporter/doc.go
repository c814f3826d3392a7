// Package exporter turns analysis results into report tables and writes
// them out.
//
// Table builders (DescriptiveTable, CorrelationTable, RegressionTable) format
// cells with shopspring/decimal rounding: 3 places for summaries, 4 for
// regressions.
//
// CSVWriter: CSV export with a UTF-8 BOM for Excel, including a streaming
// writer used for the derived observations.
//
// WorkbookWriter: all report tables plus the derived data in one .xlsx file,
// one sheet per table.
//
// Example usage:
//
//	tbl, err := exporter.RegressionTable(model, domain.FuelDiesel)
//	csvWriter := exporter.NewCSVWriter(paths, logger)
//	path, err := csvWriter.WriteTable(tbl)
//
//	wb, err := exporter.NewWorkbookWriter(logger)
//	err = wb.AddTable(tbl)
//	err = wb.Save(paths.WorkbookFile)
package exporter
