package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fuelbreak/pkg/contracts/domain"
)

func TestWorkbookWriter(t *testing.T) {
	wb, err := NewWorkbookWriter(nil)
	require.NoError(t, err)

	corr := &domain.Table{
		Name:      TableCorrPre,
		Title:     "Correlações (Antes de Mai/23)",
		Columns:   []string{"a", "b"},
		RowLabels: []string{"a", "b"},
		Cells:     [][]string{{"1.000", "0.500"}, {"0.500", "NaN"}},
		Note:      "n = 5",
	}
	require.NoError(t, wb.AddTable(corr))
	require.NoError(t, wb.AddObservations(&domain.ObservationTable{
		Rows: []domain.Observation{
			{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Diesel: 6.5, TimeIndex: 1},
		},
	}))
	assert.Equal(t, []string{TableCorrPre, ObservationsSheet}, wb.Sheets())

	path := filepath.Join(t.TempDir(), "tables", "tables.xlsx")
	require.NoError(t, wb.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{TableCorrPre, ObservationsSheet}, f.GetSheetList())

	title, err := f.GetCellValue(TableCorrPre, "A1")
	require.NoError(t, err)
	assert.Equal(t, corr.Title, title)

	header, err := f.GetCellValue(TableCorrPre, "B3")
	require.NoError(t, err)
	assert.Equal(t, "a", header)

	label, err := f.GetCellValue(TableCorrPre, "A5")
	require.NoError(t, err)
	assert.Equal(t, "b", label)

	// numeric cells are stored as numbers, NaN stays text
	cellType, err := f.GetCellType(TableCorrPre, "C4")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)

	nan, err := f.GetCellValue(TableCorrPre, "C5")
	require.NoError(t, err)
	assert.Equal(t, "NaN", nan)

	note, err := f.GetCellValue(TableCorrPre, "A7")
	require.NoError(t, err)
	assert.Equal(t, "n = 5", note)

	diesel, err := f.GetCellValue(ObservationsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "6.5", diesel)
}

func TestWorkbookWriterDuplicateSheet(t *testing.T) {
	wb, err := NewWorkbookWriter(nil)
	require.NoError(t, err)

	tbl := &domain.Table{Name: "dup", Columns: []string{"a"}}
	require.NoError(t, wb.AddTable(tbl))
	assert.Error(t, wb.AddTable(tbl))
	require.NoError(t, wb.Save(filepath.Join(t.TempDir(), "dup.xlsx")))
}
