package exporter

import (
	"fmt"

	"fuelbreak/internal/dataprocessing"
	"fuelbreak/internal/errors"
	"fuelbreak/internal/regression"
	"fuelbreak/pkg/contracts/domain"
)

// Report table names, also used as output file stems and workbook sheet names.
const (
	TableDescriptives = "table1_descriptives"
	TableCorrPre      = "table2_corr_pre"
	TableCorrPost     = "table3_corr_post"
	TableOLSGasoline  = "table4_ols_gasoline"
	TableOLSDiesel    = "table5_ols_diesel"
)

// Rounding applied to each kind of table.
const (
	SummaryPlaces    int32 = 3
	RegressionPlaces int32 = 4
)

// AdjRSquaredLabel labels the extra row appended to coefficient tables.
const AdjRSquaredLabel = "Adj. R²"

// RegressionColumns are the coefficient table headers.
var RegressionColumns = []string{"Coef.", "Std.Err.", "t", "P>|t|", "[0.025", "0.975]"}

// DescriptiveTable lays out mean and standard deviation per period: one row
// per period, two columns per analysis series.
func DescriptiveTable(desc *dataprocessing.Description) (*domain.Table, error) {
	if desc == nil {
		return nil, errors.NewAppValidationError("description is nil")
	}

	tbl := &domain.Table{
		Name:       TableDescriptives,
		Title:      "Estatísticas descritivas por período",
		IndexLabel: domain.ColumnPostBreak,
	}
	for _, col := range desc.Columns {
		tbl.Columns = append(tbl.Columns, col+" mean", col+" std")
	}

	for _, period := range desc.Periods {
		row := make([]string, 0, len(tbl.Columns))
		for _, col := range desc.Columns {
			s, _ := desc.At(period, col)
			row = append(row, formatFloat(s.Mean, SummaryPlaces), formatFloat(s.Std, SummaryPlaces))
		}
		tbl.RowLabels = append(tbl.RowLabels, period.Label())
		tbl.Cells = append(tbl.Cells, row)
	}

	return tbl, nil
}

// CorrelationTable lays out a correlation matrix with the series on both axes.
func CorrelationTable(m *dataprocessing.CorrelationMatrix) (*domain.Table, error) {
	if m == nil {
		return nil, errors.NewAppValidationError("correlation matrix is nil")
	}

	name := TableCorrPre
	if m.Period == domain.PeriodAfter {
		name = TableCorrPost
	}

	tbl := &domain.Table{
		Name:      name,
		Title:     "Correlações (" + m.Period.Label() + ")",
		Columns:   m.Columns,
		RowLabels: m.Columns,
		Note:      fmt.Sprintf("n = %s", formatInt(m.Count)),
	}
	for i := range m.Columns {
		row := make([]string, len(m.Columns))
		for j := range m.Columns {
			row[j] = formatFloat(m.At(i, j), SummaryPlaces)
		}
		tbl.Cells = append(tbl.Cells, row)
	}

	return tbl, nil
}

// RegressionTable lays out a coefficient table followed by an adjusted R²
// row whose value sits in the last column.
func RegressionTable(model *regression.Model, fuel domain.Fuel) (*domain.Table, error) {
	if model == nil {
		return nil, errors.NewAppValidationError("model is nil")
	}

	name := TableOLSGasoline
	if fuel == domain.FuelDiesel {
		name = TableOLSDiesel
	}

	tbl := &domain.Table{
		Name:    name,
		Title:   "MQO: " + fuel.Label(),
		Columns: RegressionColumns,
		Note: fmt.Sprintf("N = %s, R² = %s, F = %s (p = %s)",
			formatInt(model.N),
			formatFloat(model.RSquared, RegressionPlaces),
			formatFloat(model.FStatistic, RegressionPlaces),
			formatFloat(model.FPValue, RegressionPlaces)),
	}

	for _, c := range model.Coefficients {
		tbl.RowLabels = append(tbl.RowLabels, c.Name)
		tbl.Cells = append(tbl.Cells, []string{
			formatFloat(c.Estimate, RegressionPlaces),
			formatFloat(c.StdErr, RegressionPlaces),
			formatFloat(c.TValue, RegressionPlaces),
			formatFloat(c.PValue, RegressionPlaces),
			formatFloat(c.CILower, RegressionPlaces),
			formatFloat(c.CIUpper, RegressionPlaces),
		})
	}

	adj := make([]string, len(RegressionColumns))
	adj[len(adj)-1] = formatFloat(model.AdjRSquared, RegressionPlaces)
	tbl.RowLabels = append(tbl.RowLabels, AdjRSquaredLabel)
	tbl.Cells = append(tbl.Cells, adj)

	return tbl, nil
}
