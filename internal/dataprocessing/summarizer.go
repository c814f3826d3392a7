package dataprocessing

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

// Stats holds the mean and sample standard deviation of one column.
type Stats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}

// Description holds per-period statistics of the analysis columns.
type Description struct {
	Columns []string                           `json:"columns"`
	Periods []domain.Period                    `json:"periods"`
	Stats   map[domain.Period]map[string]Stats `json:"stats"`
}

// At returns the statistics of a column in a period.
func (d *Description) At(p domain.Period, column string) (Stats, bool) {
	byCol, ok := d.Stats[p]
	if !ok {
		return Stats{}, false
	}
	s, ok := byCol[column]
	return s, ok
}

// Describe groups the rows by post-break indicator and computes mean and
// sample standard deviation of every analysis column. Periods with no rows
// are left out.
func Describe(table *domain.ObservationTable) (*Description, error) {
	if err := requireDerived(table); err != nil {
		return nil, err
	}

	desc := &Description{
		Columns: domain.AnalysisColumns,
		Stats:   make(map[domain.Period]map[string]Stats),
	}

	for _, period := range []domain.Period{domain.PeriodBefore, domain.PeriodAfter} {
		rows := table.Subset(period)
		if len(rows) == 0 {
			continue
		}

		byCol := make(map[string]Stats, len(desc.Columns))
		for _, col := range desc.Columns {
			values, err := Series(rows, col)
			if err != nil {
				return nil, err
			}
			byCol[col] = describeValues(values)
		}
		desc.Periods = append(desc.Periods, period)
		desc.Stats[period] = byCol
	}

	return desc, nil
}

func describeValues(values []float64) Stats {
	s := Stats{Count: len(values), Std: math.NaN()}
	if len(values) == 0 {
		s.Mean = math.NaN()
		return s
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(values, nil)
	return s
}

// CorrelationMatrix is a symmetric matrix of Pearson correlations.
type CorrelationMatrix struct {
	Period  domain.Period `json:"period"`
	Columns []string      `json:"columns"`
	Count   int           `json:"count"`
	Values  [][]float64   `json:"values"`
}

// At returns the correlation between columns i and j.
func (m *CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Correlate computes pairwise Pearson correlations of the analysis columns
// over the rows of one period. Pairs involving a column with zero variance,
// or a period with fewer than two rows, are NaN.
func Correlate(table *domain.ObservationTable, period domain.Period) (*CorrelationMatrix, error) {
	if err := requireDerived(table); err != nil {
		return nil, err
	}

	rows := table.Subset(period)
	cols := domain.AnalysisColumns
	n := len(cols)

	series := make([][]float64, n)
	constant := make([]bool, n)
	for i, col := range cols {
		values, err := Series(rows, col)
		if err != nil {
			return nil, err
		}
		series[i] = values
		constant[i] = len(values) < 2 || stat.Variance(values, nil) == 0
	}

	m := &CorrelationMatrix{
		Period:  period,
		Columns: cols,
		Count:   len(rows),
		Values:  make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var r float64
			switch {
			case constant[i] || constant[j]:
				r = math.NaN()
			case i == j:
				r = 1
			default:
				r = stat.Correlation(series[i], series[j], nil)
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}

	return m, nil
}

// Normalize rescales values to [0, 1] by min-max. A constant series maps to zeros.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

func requireDerived(table *domain.ObservationTable) error {
	if table == nil {
		return errors.NewAppValidationError("observation table is nil")
	}
	if !table.Derived {
		return errors.NewAppValidationError("observation table has no derived columns")
	}
	return nil
}
