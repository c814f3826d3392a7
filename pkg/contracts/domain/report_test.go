package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		wantErr string
	}{
		{
			name: "valid",
			table: &Table{
				Name:      "t",
				Columns:   []string{"a", "b"},
				RowLabels: []string{"x"},
				Cells:     [][]string{{"1", "2"}},
			},
		},
		{name: "nil", table: nil, wantErr: "nil"},
		{name: "no name", table: &Table{Columns: []string{"a"}}, wantErr: "Name"},
		{name: "no columns", table: &Table{Name: "t"}, wantErr: "Columns"},
		{
			name: "label mismatch",
			table: &Table{
				Name:      "t",
				Columns:   []string{"a"},
				RowLabels: []string{"x", "y"},
				Cells:     [][]string{{"1"}},
			},
			wantErr: "2 row labels for 1 rows",
		},
		{
			name: "ragged",
			table: &Table{
				Name:      "t",
				Columns:   []string{"a", "b"},
				RowLabels: []string{"x"},
				Cells:     [][]string{{"1"}},
			},
			wantErr: "row 0 has 1 cells, want 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestObservationPrice(t *testing.T) {
	o := Observation{Diesel: 6.1, Gasoline: 5.4}
	assert.Equal(t, 6.1, o.Price(FuelDiesel))
	assert.Equal(t, 5.4, o.Price(FuelGasoline))
}

func TestManifestByKind(t *testing.T) {
	m := &Manifest{}
	m.Add(Artifact{Name: "fig1", Kind: ArtifactChart})
	m.Add(Artifact{Name: "t1", Kind: ArtifactCSV})
	m.Add(Artifact{Name: "fig2", Kind: ArtifactChart})

	charts := m.ByKind(ArtifactChart)
	if assert.Len(t, charts, 2) {
		assert.Equal(t, "fig1", charts[0].Name)
		assert.Equal(t, "fig2", charts[1].Name)
	}
	assert.Empty(t, m.ByKind(ArtifactJSON))
}
