package domain

import (
	"time"
)

// Canonical column names of the input spreadsheet.
const (
	ColumnDate         = "data"
	ColumnDiesel       = "preco_diesel"
	ColumnGasoline     = "preco_gasolina"
	ColumnBrent        = "preco_brent"
	ColumnExchangeRate = "preco_dolar"
)

// Names of the derived columns, used as regressor labels.
const (
	ColumnTimeIndex   = "tempo"
	ColumnPostBreak   = "pos_2023"
	ColumnInteraction = "tempo_pos"
	ColumnBrentBRL    = "brent_rs"
)

// RequiredColumns lists the columns every input file must carry.
var RequiredColumns = []string{
	ColumnDate,
	ColumnDiesel,
	ColumnGasoline,
	ColumnBrent,
	ColumnExchangeRate,
}

// AnalysisColumns are the series described, correlated and normalised in the report.
var AnalysisColumns = []string{
	ColumnDiesel,
	ColumnGasoline,
	ColumnBrentBRL,
	ColumnExchangeRate,
}

var columnLabels = map[string]string{
	ColumnDiesel:       "Diesel S10 (R$/L)",
	ColumnGasoline:     "Gasolina A (R$/L)",
	ColumnBrent:        "Brent (US$/barril)",
	ColumnBrentBRL:     "Brent (R$/barril)",
	ColumnExchangeRate: "Câmbio (R$/US$)",
}

// ColumnLabel returns the display label of a column, or the column name itself.
func ColumnLabel(column string) string {
	if label, ok := columnLabels[column]; ok {
		return label
	}
	return column
}

// Fuel identifies one of the two modelled price series.
type Fuel string

const (
	FuelDiesel   Fuel = "diesel"
	FuelGasoline Fuel = "gasoline"
)

// Column returns the input column holding the fuel's price.
func (f Fuel) Column() string {
	if f == FuelDiesel {
		return ColumnDiesel
	}
	return ColumnGasoline
}

// Label returns the human-readable series label used in charts and tables.
func (f Fuel) Label() string {
	return ColumnLabel(f.Column())
}

// Observation represents one dated row of the price table.
// The first five fields come from the input file, the rest are derived.
type Observation struct {
	Date         time.Time `json:"date" validate:"required"`
	Diesel       float64   `json:"preco_diesel"`
	Gasoline     float64   `json:"preco_gasolina"`
	Brent        float64   `json:"preco_brent"`
	ExchangeRate float64   `json:"preco_dolar"`

	TimeIndex   int     `json:"tempo"`
	PostBreak   int     `json:"pos_2023"` // 1 on or after the cutoff
	Interaction float64 `json:"tempo_pos"`
	BrentBRL    float64 `json:"brent_rs"` // Brent converted to R$/barrel
}

// Price returns the observed price of the given fuel.
func (o Observation) Price(f Fuel) float64 {
	if f == FuelDiesel {
		return o.Diesel
	}
	return o.Gasoline
}

// Value returns the named column of the observation.
func (o Observation) Value(column string) (float64, bool) {
	switch column {
	case ColumnDiesel:
		return o.Diesel, true
	case ColumnGasoline:
		return o.Gasoline, true
	case ColumnBrent:
		return o.Brent, true
	case ColumnExchangeRate:
		return o.ExchangeRate, true
	case ColumnTimeIndex:
		return float64(o.TimeIndex), true
	case ColumnPostBreak:
		return float64(o.PostBreak), true
	case ColumnInteraction:
		return o.Interaction, true
	case ColumnBrentBRL:
		return o.BrentBRL, true
	}
	return 0, false
}

// ObservationTable is the batch of observations a run operates on.
type ObservationTable struct {
	Source  string        `json:"source"`
	Cutoff  time.Time     `json:"cutoff"`
	Derived bool          `json:"derived"`
	Rows    []Observation `json:"rows"`
}

// Len returns the number of rows.
func (t *ObservationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Period selects the rows before or after the structural break.
type Period int

const (
	PeriodBefore Period = 0
	PeriodAfter  Period = 1
)

// Label returns the period label used in the report.
func (p Period) Label() string {
	if p == PeriodAfter {
		return "Depois de Mai/23"
	}
	return "Antes de Mai/23"
}

// Subset returns the rows whose post-break indicator equals the period.
func (t *ObservationTable) Subset(p Period) []Observation {
	out := make([]Observation, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.PostBreak == int(p) {
			out = append(out, row)
		}
	}
	return out
}
