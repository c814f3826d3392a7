package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	tmp := t.TempDir()
	cfg := Default()
	cfg.Output.Dir = filepath.Join(tmp, "out")
	cfg.Render.Format = FormatPNG

	paths, err := NewPaths(cfg)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.OutputDir), "OutputDir should be absolute")
	assert.Equal(t, filepath.Join(tmp, "out", "figures"), paths.FiguresDir)
	assert.Equal(t, filepath.Join(tmp, "out", "tables"), paths.TablesDir)
	assert.Equal(t, filepath.Join(tmp, "out", "manifest.json"), paths.ManifestFile)
	assert.Equal(t, filepath.Join(tmp, "out", "models.json"), paths.ModelsFile)
	assert.Equal(t, filepath.Join(tmp, "out", "tables", "observations.csv"), paths.ObservationsFile)
	assert.Equal(t, filepath.Join(tmp, "out", "tables", "tables.xlsx"), paths.WorkbookFile)
	assert.Equal(t, "logs", paths.LogsDir)

	assert.Equal(t, filepath.Join(paths.FiguresDir, "fig1_levels.png"), paths.FigurePath("fig1_levels"))
	assert.Equal(t, filepath.Join(paths.TablesDir, "table2_corr_pre.png"), paths.TablePath("table2_corr_pre"))
	assert.Equal(t, filepath.Join(paths.TablesDir, "table2_corr_pre.csv"), paths.TableCSVPath("table2_corr_pre"))
	assert.Equal(t, FormatPNG, paths.Format())
}

func TestPaths_EnsureDirectories(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "nested", "out")

	paths, err := NewPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.OutputDir, paths.FiguresDir, paths.TablesDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent
	require.NoError(t, paths.EnsureDirectories())
}

func TestFileExists(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "data.xlsx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(tmp, "missing.xlsx")))
}
