package testutil

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// PriceHeader is the header of the input spreadsheet.
var PriceHeader = []string{"data", "preco_diesel", "preco_gasolina", "preco_brent", "preco_dolar"}

// FixtureStart is the date of the first fixture row. With monthly rows and
// the default May 2023 cutoff, row 16 is the first post-break row.
var FixtureStart = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// FixtureBreakRow is the index of the first row on or after 2023-05-01.
const FixtureBreakRow = 16

// PriceRow returns fixture row i in PriceHeader order. Brent and the
// exchange rate oscillate at different frequencies so that no regressor is
// a linear combination of the others, and both prices drop at the break.
func PriceRow(i int) []interface{} {
	x := float64(i)
	brent := 80 + 6*math.Sin(x/2)
	dollar := 5 + 0.2*math.Cos(1.3*x)
	post := 0.0
	if i >= FixtureBreakRow {
		post = 1
	}
	diesel := 4 + 0.01*x - 0.5*post + 0.004*brent*dollar + 0.05*math.Sin(3*x)
	gasoline := 3 + 0.005*x - 0.3*post + 0.003*brent*dollar + 0.04*math.Cos(2*x)

	return []interface{}{FixtureStart.AddDate(0, i, 0), diesel, gasoline, brent, dollar}
}

// WritePriceWorkbook saves n monthly fixture rows under header to
// dir/dados.xlsx. When header is shorter than PriceHeader the row values
// are truncated to match, which is how tests drop a required column.
// Dates are written as Excel date cells.
func WritePriceWorkbook(t *testing.T, dir string, header []string, n int) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i := 0; i < n; i++ {
		row := PriceRow(i)
		if len(header) < len(row) {
			row = row[:len(header)]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, "dados.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
