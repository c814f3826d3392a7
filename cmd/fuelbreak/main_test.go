package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fuelbreak/internal/errors"
	"fuelbreak/internal/shared/testutil"
)

// writeConfig keeps logs and telemetry files inside dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	content := fmt.Sprintf(`logging:
  level: error
  format: json
  output: console
telemetry:
  enabled: true
  service_name: fuelbreak-test
  trace_file: %s
  metrics_file: %s
  sample_ratio: 1
`, filepath.Join(dir, "logs", "trace.json"), filepath.Join(dir, "logs", "metrics.prom"))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WritePriceWorkbook(t, dir, testutil.PriceHeader, 36)
	out := filepath.Join(dir, "output")

	err := run(context.Background(), []string{"-config", writeConfig(t, dir), "-input", input, "-out", out})
	require.NoError(t, err)

	figures, err := filepath.Glob(filepath.Join(out, "figures", "*.svg"))
	require.NoError(t, err)
	tables, err := filepath.Glob(filepath.Join(out, "tables", "*.svg"))
	require.NoError(t, err)
	assert.Len(t, figures, 4)
	assert.Len(t, tables, 5)
	assert.Len(t, append(figures, tables...), 9)

	for _, name := range []string{"fig1_levels", "fig2_normalized", "fig3_diesel_boxplot", "fig4_gasoline_boxplot"} {
		assert.FileExists(t, filepath.Join(out, "figures", name+".svg"))
	}
	for _, name := range []string{"table1_descriptives", "table2_corr_pre", "table3_corr_post", "table4_ols_gasoline", "table5_ols_diesel"} {
		assert.FileExists(t, filepath.Join(out, "tables", name+".svg"))
		assert.FileExists(t, filepath.Join(out, "tables", name+".csv"))
	}
	assert.FileExists(t, filepath.Join(out, "tables", "tables.xlsx"))
	assert.FileExists(t, filepath.Join(out, "models.json"))
	assert.FileExists(t, filepath.Join(out, "manifest.json"))
	assert.FileExists(t, filepath.Join(dir, "logs", "trace.json"))
	assert.FileExists(t, filepath.Join(dir, "logs", "metrics.prom"))
}

func TestRunMissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WritePriceWorkbook(t, dir, []string{"data", "preco_diesel", "preco_brent", "preco_dolar", "outro"}, 24)
	out := filepath.Join(dir, "output")

	err := run(context.Background(), []string{"-config", writeConfig(t, dir), "-input", input, "-out", out})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingColumns)
	assert.Equal(t, []string{"preco_gasolina"}, apperrors.MissingColumns(err))
	assert.NoFileExists(t, filepath.Join(out, "models.json"))
}

func TestRunBadFlags(t *testing.T) {
	err := run(context.Background(), []string{"-unknown"})
	assert.Error(t, err)

	err = run(context.Background(), []string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WritePriceWorkbook(t, dir, testutil.PriceHeader, 24)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx, []string{"-config", writeConfig(t, dir), "-input", input, "-out", filepath.Join(dir, "output")})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
