package dataprocessing

import (
	"sort"
	"time"

	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

// DeriveFeatures returns a copy of the table with the time index, post-break
// indicator, interaction term and Brent in BRL filled in. Rows are
// stable-sorted by date first so the time index follows the calendar.
func DeriveFeatures(table *domain.ObservationTable, cutoff time.Time) (*domain.ObservationTable, error) {
	if table == nil {
		return nil, errors.NewAppValidationError("observation table is nil")
	}
	if cutoff.IsZero() {
		return nil, errors.NewAppValidationError("cutoff date is not set")
	}

	rows := make([]domain.Observation, len(table.Rows))
	copy(rows, table.Rows)
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Date.Before(rows[b].Date)
	})

	for i := range rows {
		row := &rows[i]
		row.TimeIndex = i + 1
		row.PostBreak = 0
		if !row.Date.Before(cutoff) {
			row.PostBreak = 1
		}
		row.Interaction = float64(row.TimeIndex * row.PostBreak)
		row.BrentBRL = row.Brent * row.ExchangeRate
	}

	return &domain.ObservationTable{
		Source:  table.Source,
		Cutoff:  cutoff,
		Derived: true,
		Rows:    rows,
	}, nil
}

// Series extracts one column from the rows in order.
func Series(rows []domain.Observation, column string) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v, ok := row.Value(column)
		if !ok {
			return nil, errors.NewAppValidationError("unknown column " + column).
				WithContext("column", column)
		}
		out[i] = v
	}
	return out, nil
}

// Dates returns the row dates in order.
func Dates(rows []domain.Observation) []time.Time {
	out := make([]time.Time, len(rows))
	for i, row := range rows {
		out[i] = row.Date
	}
	return out
}
