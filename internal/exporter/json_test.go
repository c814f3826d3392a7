package exporter

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbreak/internal/regression"
)

func TestWriteJSONModelRecord(t *testing.T) {
	model := &regression.Model{
		Target: "preco_diesel",
		Coefficients: []regression.Coefficient{
			{Name: "Intercept", Estimate: 1.5, StdErr: 0.5, TValue: 3, PValue: 0.01, CILower: 0.5, CIUpper: 2.5},
		},
		RSquared:    0,
		AdjRSquared: 0,
		FStatistic:  math.NaN(),
		FPValue:     math.NaN(),
		N:           10,
		DFResid:     9,
	}

	path := filepath.Join(t.TempDir(), "out", "models.json")
	require.NoError(t, WriteJSON(path, map[string]ModelRecord{"diesel": NewModelRecord(model)}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &decoded))

	rec := decoded["diesel"]
	assert.Equal(t, "preco_diesel", rec["target"])
	assert.Nil(t, rec["f_statistic"])
	assert.Nil(t, rec["f_p_value"])
	assert.Equal(t, float64(10), rec["n"])

	coefs := rec["coefficients"].([]interface{})
	require.Len(t, coefs, 1)
	first := coefs[0].(map[string]interface{})
	assert.Equal(t, "Intercept", first["name"])
	assert.Equal(t, 1.5, first["estimate"])
}

func TestWriteJSONUnencodable(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "bad.json"), map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}
