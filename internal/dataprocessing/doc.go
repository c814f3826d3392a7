// Package dataprocessing loads the fuel price table and prepares it for the
// structural-break analysis.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: reads the .xlsx or .csv input, validates the required columns
// and returns observations sorted by date
// 2. Processor: derives the time index, post-break indicator, interaction
// term and Brent converted to BRL
// 3. Summarizer: per-period descriptive statistics, Pearson correlation
// matrices and min-max normalization
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("dados_tcc_historico.xlsx", dataprocessing.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	derived, err := dataprocessing.DeriveFeatures(table, cutoff)
//	desc, err := dataprocessing.Describe(derived)
//	pre, err := dataprocessing.Correlate(derived, domain.PeriodBefore)
//
// # Data Flow
//
//	Input file → Parser → ObservationTable → Processor → derived table → Summarizer / regression
//
// # Error Handling
//
// A header without every required column fails with an error matching
// errors.ErrMissingColumns that lists all missing columns. Unreadable cells
// fail with a PARSING error carrying the spreadsheet row and column.
package dataprocessing
