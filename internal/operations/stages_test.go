package operations

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelbreak/internal/config"
	apperrors "fuelbreak/internal/errors"
	"fuelbreak/internal/infrastructure"
	"fuelbreak/internal/render"
	"fuelbreak/internal/shared/testutil"
	"fuelbreak/pkg/contracts/domain"
)

func newAnalysisState(t *testing.T, input string) *RunState {
	t.Helper()

	cfg := config.Default()
	cfg.Input.File = input
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")

	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)
	style, err := render.NewStyle(cfg.Render)
	require.NoError(t, err)
	cutoff, err := cfg.CutoffTime()
	require.NoError(t, err)

	state := NewRunState("test-run", cfg, paths)
	state.Style = style
	state.Cutoff = cutoff
	state.Logger = discardLogger()
	return state
}

func newAnalysisManager(t *testing.T, providers *infrastructure.OTelProviders, metrics *infrastructure.AnalysisMetrics) *Manager {
	t.Helper()
	registry, err := NewAnalysisRegistry(discardLogger())
	require.NoError(t, err)
	return NewManager(registry, NewOperationTracer(providers, metrics), discardLogger())
}

func TestAnalysisRun(t *testing.T) {
	state := newAnalysisState(t, testutil.WritePriceWorkbook(t, t.TempDir(), testutil.PriceHeader, 30))

	require.NoError(t, newAnalysisManager(t, nil, nil).Execute(context.Background(), state))
	assert.Equal(t, RunStatusCompleted, state.GetStatus())

	t.Run("derived table", func(t *testing.T) {
		require.Equal(t, 30, state.Table.Len())
		assert.Len(t, state.Table.Subset(domain.PeriodAfter), 14)
		assert.Equal(t, 30, state.Manifest.Rows)
		assert.Equal(t, "2023-05-01", state.Manifest.Cutoff)
	})

	t.Run("models", func(t *testing.T) {
		for _, fuel := range ModelFuels {
			m := state.Models[fuel]
			require.NotNil(t, m, fuel)
			assert.Equal(t, 30, m.N)
			assert.LessOrEqual(t, m.AdjRSquared, m.RSquared)
		}
	})

	t.Run("nine images", func(t *testing.T) {
		assert.DirExists(t, state.Paths.OutputDir)
		images := append(state.Manifest.ByKind(domain.ArtifactChart), state.Manifest.ByKind(domain.ArtifactTable)...)
		require.Len(t, images, 9)
		for _, a := range images {
			info, err := os.Stat(a.Path)
			require.NoError(t, err, a.Name)
			assert.Greater(t, info.Size(), int64(0))
			assert.Equal(t, ".svg", filepath.Ext(a.Path))
		}
		assert.FileExists(t, state.Paths.FigurePath(FigureLevels))
		assert.FileExists(t, state.Paths.FigurePath(FigureGasolineBoxplot))
		assert.FileExists(t, state.Paths.TablePath("table5_ols_diesel"))
	})

	t.Run("exports", func(t *testing.T) {
		assert.Len(t, state.Manifest.ByKind(domain.ArtifactCSV), 6)
		assert.Len(t, state.Manifest.ByKind(domain.ArtifactWorkbook), 1)
		assert.FileExists(t, state.Paths.ObservationsFile)
		assert.FileExists(t, state.Paths.WorkbookFile)

		data, err := os.ReadFile(state.Paths.ModelsFile)
		require.NoError(t, err)
		var doc struct {
			Cutoff string `json:"cutoff"`
			Models []struct {
				Target string `json:"target"`
			} `json:"models"`
		}
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, "2023-05-01", doc.Cutoff)
		require.Len(t, doc.Models, 2)
		assert.Equal(t, domain.ColumnGasoline, doc.Models[0].Target)
		assert.Equal(t, domain.ColumnDiesel, doc.Models[1].Target)
	})

	t.Run("manifest", func(t *testing.T) {
		manifest, err := LoadManifestFromFile(state.Paths.ManifestFile)
		require.NoError(t, err)
		assert.Equal(t, "test-run", manifest.RunID)
		assert.Len(t, manifest.Artifacts, 4+5+6+1+1)
		assert.False(t, manifest.CompletedAt.Before(manifest.StartedAt))
	})
}

func TestAnalysisRunOptionalExportsDisabled(t *testing.T) {
	state := newAnalysisState(t, testutil.WritePriceWorkbook(t, t.TempDir(), testutil.PriceHeader, 24))
	state.Config.Output.WriteCSV = false
	state.Config.Output.WriteXLSX = false
	state.Config.Output.WriteJSON = false

	require.NoError(t, newAnalysisManager(t, nil, nil).Execute(context.Background(), state))

	assert.Len(t, state.Manifest.Artifacts, 9)
	assert.NoFileExists(t, state.Paths.WorkbookFile)
	assert.NoFileExists(t, state.Paths.ModelsFile)
	assert.FileExists(t, state.Paths.ManifestFile)
}

func TestAnalysisRunMissingColumn(t *testing.T) {
	header := []string{"data", "preco_diesel", "preco_gasolina", "preco_dolar"}
	state := newAnalysisState(t, testutil.WritePriceWorkbook(t, t.TempDir(), header, 24))

	err := newAnalysisManager(t, nil, nil).Execute(context.Background(), state)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingColumns)
	assert.Equal(t, []string{domain.ColumnBrent}, apperrors.MissingColumns(err))
	assert.Equal(t, StepStatusFailed, state.GetStage(StepIDLoad).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStage(StepIDEstimate).GetStatus())
	assert.Empty(t, state.Models)
	assert.NoDirExists(t, state.Paths.FiguresDir)
}

func TestAnalysisRunSingularDesign(t *testing.T) {
	// Every row falls before the cutoff, so the indicator column is all zeros.
	state := newAnalysisState(t, testutil.WritePriceWorkbook(t, t.TempDir(), testutil.PriceHeader, 12))

	err := newAnalysisManager(t, nil, nil).Execute(context.Background(), state)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNumerical), "got %v", err)
	assert.Equal(t, StepStatusFailed, state.GetStage(StepIDEstimate).GetStatus())
	assert.Equal(t, StepStatusSkipped, state.GetStage(StepIDRender).GetStatus())
}

func TestAnalysisRunMissingInput(t *testing.T) {
	state := newAnalysisState(t, filepath.Join(t.TempDir(), "missing.xlsx"))

	err := newAnalysisManager(t, nil, nil).Execute(context.Background(), state)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestAnalysisRunTraced(t *testing.T) {
	dir := t.TempDir()
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "fuelbreak-test",
		Environment: "test",
		TraceFile:   filepath.Join(dir, "trace.json"),
		MetricsFile: filepath.Join(dir, "metrics.prom"),
		SampleRatio: 1,
	}, discardLogger())
	require.NoError(t, err)
	metrics, err := infrastructure.CreateAnalysisMetrics(providers.Meter)
	require.NoError(t, err)

	state := newAnalysisState(t, testutil.WritePriceWorkbook(t, t.TempDir(), testutil.PriceHeader, 24))
	state.Metrics = metrics
	require.NoError(t, newAnalysisManager(t, providers, metrics).Execute(context.Background(), state))
	require.NoError(t, providers.Shutdown(context.Background()))

	trace, err := os.ReadFile(filepath.Join(dir, "trace.json"))
	require.NoError(t, err)
	for _, id := range []string{StepIDLoad, StepIDEstimate, StepIDExport} {
		assert.Contains(t, string(trace), "step."+id)
	}
	assert.Contains(t, string(trace), "run.execute")
	assert.Contains(t, string(trace), "input.rows")
	assert.Contains(t, string(trace), "model.diesel.adj_r_squared")
	assert.Contains(t, string(trace), "model.gasoline.adj_r_squared")

	prom, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.NotEmpty(t, prom)
}
