package regression

import (
	"gonum.org/v1/gonum/mat"

	"fuelbreak/internal/errors"
	"fuelbreak/pkg/contracts/domain"
)

// InterceptName labels the constant term.
const InterceptName = "Intercept"

// InterventionRegressors is the right-hand side shared by both fuel models.
var InterventionRegressors = []string{
	domain.ColumnTimeIndex,
	domain.ColumnPostBreak,
	domain.ColumnInteraction,
	domain.ColumnBrentBRL,
	domain.ColumnExchangeRate,
}

// Design is a response vector with its design matrix.
type Design struct {
	Target string
	Y      []float64
	X      *mat.Dense
	Names  []string
}

// NewDesign builds a design with an intercept followed by the given regressors.
func NewDesign(rows []domain.Observation, target string, regressors []string) (*Design, error) {
	n, p := len(rows), len(regressors)+1
	if n == 0 {
		return nil, errors.NewAppValidationError("no observations to regress")
	}

	d := &Design{
		Target: target,
		Y:      make([]float64, n),
		X:      mat.NewDense(n, p, nil),
		Names:  append([]string{InterceptName}, regressors...),
	}

	for i, row := range rows {
		y, ok := row.Value(target)
		if !ok {
			return nil, errors.NewAppValidationError("unknown target column " + target).
				WithContext("column", target)
		}
		d.Y[i] = y
		d.X.Set(i, 0, 1)
		for j, col := range regressors {
			v, ok := row.Value(col)
			if !ok {
				return nil, errors.NewAppValidationError("unknown regressor column " + col).
					WithContext("column", col)
			}
			d.X.Set(i, j+1, v)
		}
	}

	return d, nil
}

// InterventionDesign builds the structural-break design for one fuel:
// price on time index, post-break indicator, their interaction, Brent in
// BRL and the exchange rate.
func InterventionDesign(table *domain.ObservationTable, fuel domain.Fuel) (*Design, error) {
	if table == nil || !table.Derived {
		return nil, errors.NewAppValidationError("intervention design needs a derived observation table")
	}
	return NewDesign(table.Rows, fuel.Column(), InterventionRegressors)
}

// FitIntervention fits the structural-break model for one fuel.
func FitIntervention(table *domain.ObservationTable, fuel domain.Fuel) (*Model, error) {
	design, err := InterventionDesign(table, fuel)
	if err != nil {
		return nil, err
	}
	return FitDesign(design)
}

// FitDesign fits a prepared design.
func FitDesign(d *Design) (*Model, error) {
	m, err := Fit(d.Y, d.X, d.Names)
	if err != nil {
		return nil, err
	}
	m.Target = d.Target
	return m, nil
}
