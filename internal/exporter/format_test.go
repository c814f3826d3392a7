package exporter

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		places   int32
		expected string
	}{
		{"integer keeps places", 1, 3, "1.000"},
		{"rounds down", 0.91249, 3, "0.912"},
		{"half away from zero", 1.0005, 3, "1.001"},
		{"negative half", -0.12345, 4, "-0.1235"},
		{"zero", 0, 4, "0.0000"},
		{"tiny negative rounds to zero", -0.00001, 3, "0.000"},
		{"large", 123.456789, 4, "123.4568"},
		{"nan", math.NaN(), 3, "NaN"},
		{"positive infinity", math.Inf(1), 4, "inf"},
		{"negative infinity", math.Inf(-1), 4, "-inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input, tt.places))
		})
	}
}

func TestFormatRaw(t *testing.T) {
	assert.Equal(t, "6.12", formatRaw(6.12))
	assert.Equal(t, "80", formatRaw(80))
	assert.Equal(t, "-0.5", formatRaw(-0.5))
}

func TestFormatIntAndDate(t *testing.T) {
	assert.Equal(t, "42", formatInt(42))
	assert.Equal(t, "2023-05-01", formatDate(time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)))
}
