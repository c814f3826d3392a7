package regression

import (
	stderrors "errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbreak/internal/dataprocessing"
	"fuelbreak/pkg/contracts/domain"
)

var cutoff = time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

// syntheticTable builds monthly rows whose prices follow the intervention
// model exactly.
func syntheticTable(t *testing.T, start time.Time, n int) *domain.ObservationTable {
	t.Helper()

	raw := &domain.ObservationTable{}
	for i := 0; i < n; i++ {
		raw.Rows = append(raw.Rows, domain.Observation{
			Date:         start.AddDate(0, i, 0),
			Brent:        80 + 8*math.Sin(float64(i)/2),
			ExchangeRate: 5 + 0.3*math.Cos(float64(i)/5),
		})
	}

	table, err := dataprocessing.DeriveFeatures(raw, cutoff)
	require.NoError(t, err)

	for i := range table.Rows {
		r := &table.Rows[i]
		base := 0.01*float64(r.TimeIndex) + 0.5*float64(r.PostBreak) - 0.02*r.Interaction +
			0.003*r.BrentBRL + 0.2*r.ExchangeRate
		r.Diesel = 1.0 + base
		r.Gasoline = 0.5 + base
	}
	return table
}

func TestInterventionDesign(t *testing.T) {
	table := syntheticTable(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 12)

	d, err := InterventionDesign(table, domain.FuelDiesel)
	require.NoError(t, err)

	assert.Equal(t, domain.ColumnDiesel, d.Target)
	assert.Equal(t, []string{"Intercept", "tempo", "pos_2023", "tempo_pos", "brent_rs", "preco_dolar"}, d.Names)

	rows, cols := d.X.Dims()
	assert.Equal(t, 12, rows)
	assert.Equal(t, 6, cols)
	for i, row := range table.Rows {
		assert.Equal(t, 1.0, d.X.At(i, 0))
		assert.Equal(t, float64(row.TimeIndex), d.X.At(i, 1))
		assert.Equal(t, row.BrentBRL, d.X.At(i, 4))
		assert.Equal(t, row.Diesel, d.Y[i])
	}
}

func TestInterventionDesignRequiresDerived(t *testing.T) {
	_, err := InterventionDesign(&domain.ObservationTable{}, domain.FuelDiesel)
	assert.Error(t, err)
	_, err = InterventionDesign(nil, domain.FuelGasoline)
	assert.Error(t, err)
}

func TestNewDesignUnknownColumn(t *testing.T) {
	rows := []domain.Observation{{Diesel: 1}}
	_, err := NewDesign(rows, "volume", InterventionRegressors)
	assert.Error(t, err)
	_, err = NewDesign(rows, domain.ColumnDiesel, []string{"volume"})
	assert.Error(t, err)
	_, err = NewDesign(nil, domain.ColumnDiesel, InterventionRegressors)
	assert.Error(t, err)
}

func TestFitInterventionRecoversEffects(t *testing.T) {
	table := syntheticTable(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 60)

	tests := []struct {
		fuel      domain.Fuel
		intercept float64
	}{
		{domain.FuelDiesel, 1.0},
		{domain.FuelGasoline, 0.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.fuel), func(t *testing.T) {
			m, err := FitIntervention(table, tt.fuel)
			require.NoError(t, err)
			assert.Equal(t, tt.fuel.Column(), m.Target)
			assert.Equal(t, 60, m.N)
			assert.Equal(t, 5, m.DFModel)
			assert.Equal(t, 54, m.DFResid)

			want := map[string]float64{
				"Intercept":   tt.intercept,
				"tempo":       0.01,
				"pos_2023":    0.5,
				"tempo_pos":   -0.02,
				"brent_rs":    0.003,
				"preco_dolar": 0.2,
			}
			require.Len(t, m.Coefficients, len(want))
			for _, c := range m.Coefficients {
				assert.InDelta(t, want[c.Name], c.Estimate, 1e-6, c.Name)
			}
			assert.InDelta(t, 1.0, m.RSquared, 1e-9)
			assert.LessOrEqual(t, m.AdjRSquared, m.RSquared+1e-12)
		})
	}
}

func TestFitInterventionAllBeforeCutoffIsSingular(t *testing.T) {
	table := syntheticTable(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 24)

	_, err := FitIntervention(table, domain.FuelDiesel)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrSingular))
}
