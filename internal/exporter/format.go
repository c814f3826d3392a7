package exporter

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// formatFloat rounds half away from zero to the given number of places and
// keeps trailing zeros so columns line up, e.g. 1 → "1.000" for 3 places.
// Non-finite values are written as NaN, inf and -inf.
func formatFloat(v float64, places int32) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}

// formatInt formats an integer cell
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate formats an observation date
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// formatRaw writes a float with the shortest exact representation
func formatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
