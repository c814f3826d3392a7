package operations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"fuelbreak/internal/dataprocessing"
	apperrors "fuelbreak/internal/errors"
	"fuelbreak/internal/exporter"
	"fuelbreak/internal/infrastructure"
	"fuelbreak/internal/regression"
	"fuelbreak/internal/render"
	"fuelbreak/internal/validation"
	"fuelbreak/pkg/contracts"
	"fuelbreak/pkg/contracts/domain"
)

// Step IDs in execution order
const (
	StepIDLoad      = "load"
	StepIDDerive    = "derive"
	StepIDEstimate  = "estimate"
	StepIDSummarize = "summarize"
	StepIDRender    = "render"
	StepIDExport    = "export"
)

// Chart file stems
const (
	FigureLevels          = "fig1_levels"
	FigureNormalized      = "fig2_normalized"
	FigureDieselBoxplot   = "fig3_diesel_boxplot"
	FigureGasolineBoxplot = "fig4_gasoline_boxplot"
)

// ModelFuels fixes the order models are fitted and reported in.
var ModelFuels = []domain.Fuel{domain.FuelGasoline, domain.FuelDiesel}

// NewAnalysisRegistry registers the analysis steps in execution order
func NewAnalysisRegistry(logger *slog.Logger) (*Registry, error) {
	registry := NewRegistry()
	validator := validation.NewFileValidator(logger)

	steps := []Step{
		NewLoadStage(validator),
		NewDeriveStage(),
		NewEstimateStage(),
		NewSummarizeStage(),
		NewRenderStage(validator),
		NewExportStage(logger),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// LoadStage reads and validates the input spreadsheet
type LoadStage struct {
	BaseStage
	validator *validation.FileValidator
}

// NewLoadStage creates the load step
func NewLoadStage(validator *validation.FileValidator) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StepIDLoad, "Load Input"),
		validator: validator,
	}
}

// Validate requires a resolved input path
func (s *LoadStage) Validate(state *RunState) error {
	if state.Paths == nil || state.Paths.InputFile == "" {
		return fmt.Errorf("input file is not configured")
	}
	return nil
}

// Execute parses the input file into the raw observation table
func (s *LoadStage) Execute(ctx context.Context, state *RunState) error {
	path := state.Paths.InputFile
	if err := s.validator.ValidateInputFile(path); err != nil {
		return err
	}

	opts := dataprocessing.ParseOptions{Logger: state.Logger}
	if state.Config != nil {
		opts.Sheet = state.Config.Input.Sheet
	}

	table, err := dataprocessing.ParseFile(path, opts)
	if err != nil {
		return err
	}

	state.Raw = table
	state.Manifest.Source = path
	state.Manifest.Rows = table.Len()
	infrastructure.RecordRowsLoaded(ctx, state.Metrics, table.Len())
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"input.file": path,
		"input.rows": table.Len(),
	})

	state.Logger.InfoContext(ctx, "input_loaded",
		slog.String("file", path),
		slog.Int("rows", table.Len()))
	return nil
}

// DeriveStage adds the time index, break indicator, interaction and Brent in BRL
type DeriveStage struct {
	BaseStage
}

// NewDeriveStage creates the derive step
func NewDeriveStage() *DeriveStage {
	return &DeriveStage{BaseStage: NewBaseStage(StepIDDerive, "Derive Features")}
}

// Validate requires the loaded table and a cutoff
func (s *DeriveStage) Validate(state *RunState) error {
	if state.Raw == nil {
		return fmt.Errorf("no observations loaded")
	}
	if state.Cutoff.IsZero() {
		return fmt.Errorf("cutoff date is not set")
	}
	return nil
}

// Execute derives the model variables
func (s *DeriveStage) Execute(ctx context.Context, state *RunState) error {
	table, err := dataprocessing.DeriveFeatures(state.Raw, state.Cutoff)
	if err != nil {
		return err
	}
	state.Table = table
	state.Manifest.Cutoff = state.Cutoff.Format("2006-01-02")

	post := len(table.Subset(domain.PeriodAfter))
	state.Logger.InfoContext(ctx, "features_derived",
		slog.String("cutoff", state.Manifest.Cutoff),
		slog.Int("rows_before", table.Len()-post),
		slog.Int("rows_after", post))
	return nil
}

// EstimateStage fits the intervention model for each fuel
type EstimateStage struct {
	BaseStage
}

// NewEstimateStage creates the estimate step
func NewEstimateStage() *EstimateStage {
	return &EstimateStage{BaseStage: NewBaseStage(StepIDEstimate, "Estimate Models")}
}

// Validate requires the derived table
func (s *EstimateStage) Validate(state *RunState) error {
	if state.Table == nil || !state.Table.Derived {
		return fmt.Errorf("features have not been derived")
	}
	return nil
}

// Execute fits one OLS model per fuel
func (s *EstimateStage) Execute(ctx context.Context, state *RunState) error {
	for _, fuel := range ModelFuels {
		model, err := regression.FitIntervention(state.Table, fuel)
		if err != nil {
			return fmt.Errorf("%s model: %w", fuel, err)
		}
		state.Models[fuel] = model
		infrastructure.RecordModelFit(ctx, state.Metrics, string(fuel), model.AdjRSquared)
		infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
			"model." + string(fuel) + ".adj_r_squared": model.AdjRSquared,
		})

		state.Logger.InfoContext(ctx, "model_fitted",
			slog.String("fuel", string(fuel)),
			slog.Int("n", model.N),
			slog.Float64("r_squared", model.RSquared),
			slog.Float64("adj_r_squared", model.AdjRSquared))
	}
	return nil
}

// SummarizeStage computes the descriptive statistics and correlations and
// lays out the five report tables
type SummarizeStage struct {
	BaseStage
}

// NewSummarizeStage creates the summarize step
func NewSummarizeStage() *SummarizeStage {
	return &SummarizeStage{BaseStage: NewBaseStage(StepIDSummarize, "Summarize")}
}

// Validate requires both fitted models
func (s *SummarizeStage) Validate(state *RunState) error {
	if state.Table == nil {
		return fmt.Errorf("features have not been derived")
	}
	for _, fuel := range ModelFuels {
		if state.Models[fuel] == nil {
			return fmt.Errorf("%s model has not been fitted", fuel)
		}
	}
	return nil
}

// Execute builds the descriptive, correlation and regression tables
func (s *SummarizeStage) Execute(ctx context.Context, state *RunState) error {
	desc, err := dataprocessing.Describe(state.Table)
	if err != nil {
		return err
	}
	state.Description = desc

	descTable, err := exporter.DescriptiveTable(desc)
	if err != nil {
		return err
	}
	tables := []*domain.Table{descTable}

	for _, period := range []domain.Period{domain.PeriodBefore, domain.PeriodAfter} {
		m, err := dataprocessing.Correlate(state.Table, period)
		if err != nil {
			return err
		}
		state.Correlations[period] = m

		tbl, err := exporter.CorrelationTable(m)
		if err != nil {
			return err
		}
		tables = append(tables, tbl)
	}

	for _, fuel := range ModelFuels {
		tbl, err := exporter.RegressionTable(state.Models[fuel], fuel)
		if err != nil {
			return err
		}
		tables = append(tables, tbl)
	}

	state.Tables = tables
	state.Logger.InfoContext(ctx, "tables_built", slog.Int("tables", len(tables)))
	return nil
}

// RenderStage draws the four charts and the five table images
type RenderStage struct {
	BaseStage
	validator *validation.FileValidator
}

// NewRenderStage creates the render step
func NewRenderStage(validator *validation.FileValidator) *RenderStage {
	return &RenderStage{
		BaseStage: NewBaseStage(StepIDRender, "Render Figures"),
		validator: validator,
	}
}

// Validate requires the derived table and the report tables
func (s *RenderStage) Validate(state *RunState) error {
	if state.Table == nil {
		return fmt.Errorf("features have not been derived")
	}
	if len(state.Tables) == 0 {
		return fmt.Errorf("no report tables to render")
	}
	if state.Style.Format == "" {
		return fmt.Errorf("render style is not set")
	}
	return nil
}

// Execute writes every image under the figures and tables directories
func (s *RenderStage) Execute(ctx context.Context, state *RunState) error {
	if err := state.Paths.EnsureDirectories(); err != nil {
		return apperrors.NewStorageError("failed to create output directories", err)
	}
	for _, dir := range []string{state.Paths.FiguresDir, state.Paths.TablesDir} {
		if err := s.validator.ValidateOutputDirectory(dir); err != nil {
			return err
		}
	}

	style := state.Style
	table := state.Table
	charts := []struct {
		name string
		draw func(io.Writer) error
	}{
		{FigureLevels, func(w io.Writer) error { return render.LevelsChart(w, table, style) }},
		{FigureNormalized, func(w io.Writer) error { return render.NormalizedChart(w, table, style) }},
		{FigureDieselBoxplot, func(w io.Writer) error { return render.BoxPlotChart(w, table, domain.FuelDiesel, style) }},
		{FigureGasolineBoxplot, func(w io.Writer) error { return render.BoxPlotChart(w, table, domain.FuelGasoline, style) }},
	}
	for _, c := range charts {
		path := state.Paths.FigurePath(c.name)
		if err := writeImage(path, c.draw); err != nil {
			return fmt.Errorf("chart %s: %w", c.name, err)
		}
		if err := recordArtifact(ctx, state, c.name, domain.ArtifactChart, path); err != nil {
			return err
		}
	}

	for _, tbl := range state.Tables {
		tbl := tbl
		path := state.Paths.TablePath(tbl.Name)
		if err := writeImage(path, func(w io.Writer) error { return render.TableImage(w, tbl, style) }); err != nil {
			return fmt.Errorf("table %s: %w", tbl.Name, err)
		}
		if err := recordArtifact(ctx, state, tbl.Name, domain.ArtifactTable, path); err != nil {
			return err
		}
	}

	state.Logger.InfoContext(ctx, "images_rendered",
		slog.Int("charts", len(charts)),
		slog.Int("tables", len(state.Tables)),
		slog.String("format", style.Format))
	return nil
}

// writeImage creates path and streams one drawing into it
func writeImage(path string, draw func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := draw(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// ExportStage writes the tabular exports, models.json and the manifest
type ExportStage struct {
	BaseStage
	logger *slog.Logger
}

// NewExportStage creates the export step
func NewExportStage(logger *slog.Logger) *ExportStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStage{
		BaseStage: NewBaseStage(StepIDExport, "Export Results"),
		logger:    logger,
	}
}

// Validate requires the report tables
func (s *ExportStage) Validate(state *RunState) error {
	if state.Config == nil {
		return fmt.Errorf("configuration is not set")
	}
	if len(state.Tables) == 0 {
		return fmt.Errorf("no report tables to export")
	}
	return nil
}

// Execute writes the enabled exports and finally manifest.json
func (s *ExportStage) Execute(ctx context.Context, state *RunState) error {
	out := state.Config.Output

	if out.WriteCSV {
		if err := s.exportCSV(ctx, state); err != nil {
			return err
		}
	}
	if out.WriteXLSX {
		if err := s.exportWorkbook(ctx, state); err != nil {
			return err
		}
	}
	if out.WriteJSON {
		if err := s.exportModels(ctx, state); err != nil {
			return err
		}
	}

	if err := SaveManifest(state.Paths.ManifestFile, state.Manifest); err != nil {
		return err
	}
	state.Logger.InfoContext(ctx, "manifest_written",
		slog.String("path", state.Paths.ManifestFile),
		slog.Int("artifacts", len(state.Manifest.Artifacts)))
	return nil
}

func (s *ExportStage) exportCSV(ctx context.Context, state *RunState) error {
	writer := exporter.NewCSVWriter(state.Paths, s.logger)
	for _, tbl := range state.Tables {
		path, err := writer.WriteTable(tbl)
		if err != nil {
			return fmt.Errorf("csv %s: %w", tbl.Name, err)
		}
		if err := recordArtifact(ctx, state, tbl.Name, domain.ArtifactCSV, path); err != nil {
			return err
		}
	}

	path, err := writer.WriteObservations(state.Table)
	if err != nil {
		return fmt.Errorf("observations csv: %w", err)
	}
	return recordArtifact(ctx, state, "observations", domain.ArtifactCSV, path)
}

func (s *ExportStage) exportWorkbook(ctx context.Context, state *RunState) error {
	wb, err := exporter.NewWorkbookWriter(s.logger)
	if err != nil {
		return err
	}
	for _, tbl := range state.Tables {
		if err := wb.AddTable(tbl); err != nil {
			return err
		}
	}
	if err := wb.AddObservations(state.Table); err != nil {
		return err
	}
	if err := wb.Save(state.Paths.WorkbookFile); err != nil {
		return err
	}
	return recordArtifact(ctx, state, "tables", domain.ArtifactWorkbook, state.Paths.WorkbookFile)
}

// modelsDocument is the layout of models.json
type modelsDocument struct {
	RunID  string                 `json:"run_id"`
	Format string                 `json:"format_version"`
	Cutoff string                 `json:"cutoff"`
	Models []exporter.ModelRecord `json:"models"`
}

func (s *ExportStage) exportModels(ctx context.Context, state *RunState) error {
	doc := modelsDocument{
		RunID:  state.ID,
		Format: contracts.DataFormatVersion,
		Cutoff: state.Manifest.Cutoff,
	}
	for _, fuel := range ModelFuels {
		if m := state.Models[fuel]; m != nil {
			doc.Models = append(doc.Models, exporter.NewModelRecord(m))
		}
	}

	if err := exporter.WriteJSON(state.Paths.ModelsFile, doc); err != nil {
		return err
	}
	return recordArtifact(ctx, state, "models", domain.ArtifactJSON, state.Paths.ModelsFile)
}
