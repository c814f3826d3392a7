package exporter

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"fuelbreak/internal/errors"
	"fuelbreak/internal/regression"
)

// jsonFloat marshals non-finite values as null
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// CoefficientRecord is the JSON form of a coefficient row
type CoefficientRecord struct {
	Name     string    `json:"name"`
	Estimate jsonFloat `json:"estimate"`
	StdErr   jsonFloat `json:"std_err"`
	TValue   jsonFloat `json:"t"`
	PValue   jsonFloat `json:"p_value"`
	CILower  jsonFloat `json:"ci_lower"`
	CIUpper  jsonFloat `json:"ci_upper"`
}

// ModelRecord is the JSON form of a fitted model
type ModelRecord struct {
	Target         string              `json:"target"`
	N              int                 `json:"n"`
	DFModel        int                 `json:"df_model"`
	DFResid        int                 `json:"df_resid"`
	RSquared       jsonFloat           `json:"r_squared"`
	AdjRSquared    jsonFloat           `json:"adj_r_squared"`
	FStatistic     jsonFloat           `json:"f_statistic"`
	FPValue        jsonFloat           `json:"f_p_value"`
	ResidualStdErr jsonFloat           `json:"residual_std_err"`
	Coefficients   []CoefficientRecord `json:"coefficients"`
}

// NewModelRecord converts a fitted model for JSON export
func NewModelRecord(m *regression.Model) ModelRecord {
	rec := ModelRecord{
		Target:         m.Target,
		N:              m.N,
		DFModel:        m.DFModel,
		DFResid:        m.DFResid,
		RSquared:       jsonFloat(m.RSquared),
		AdjRSquared:    jsonFloat(m.AdjRSquared),
		FStatistic:     jsonFloat(m.FStatistic),
		FPValue:        jsonFloat(m.FPValue),
		ResidualStdErr: jsonFloat(m.ResidualStdErr),
	}
	for _, c := range m.Coefficients {
		rec.Coefficients = append(rec.Coefficients, CoefficientRecord{
			Name:     c.Name,
			Estimate: jsonFloat(c.Estimate),
			StdErr:   jsonFloat(c.StdErr),
			TValue:   jsonFloat(c.TValue),
			PValue:   jsonFloat(c.PValue),
			CILower:  jsonFloat(c.CILower),
			CIUpper:  jsonFloat(c.CIUpper),
		})
	}
	return rec
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to encode json", err).WithContext("path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.NewStorageError("failed to write json", err).WithContext("path", path)
	}
	return nil
}
