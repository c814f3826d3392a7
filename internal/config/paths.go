package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every location a run reads from or writes to.
// This is the single source of truth for output file names.
type Paths struct {
	InputFile  string
	OutputDir  string
	FiguresDir string
	TablesDir  string
	LogsDir    string

	ManifestFile     string
	ModelsFile       string
	WorkbookFile     string
	ObservationsFile string

	format string
}

// NewPaths resolves the output layout for the given configuration
func NewPaths(cfg *Config) (*Paths, error) {
	outputDir, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	logsDir := DefaultLogsDir
	if cfg.Logging.FilePath != "" {
		logsDir = filepath.Dir(cfg.Logging.FilePath)
	}

	tablesDir := filepath.Join(outputDir, TablesSubdir)

	return &Paths{
		InputFile:        cfg.Input.File,
		OutputDir:        outputDir,
		FiguresDir:       filepath.Join(outputDir, FiguresSubdir),
		TablesDir:        tablesDir,
		LogsDir:          logsDir,
		ManifestFile:     filepath.Join(outputDir, ManifestFileName),
		ModelsFile:       filepath.Join(outputDir, ModelsFileName),
		WorkbookFile:     filepath.Join(tablesDir, WorkbookFileName),
		ObservationsFile: filepath.Join(tablesDir, ObservationsFileName),
		format:           cfg.Render.Format,
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.FiguresDir,
		p.TablesDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FigurePath returns the image path of a chart, e.g. figures/fig1_levels.svg
func (p *Paths) FigurePath(name string) string {
	return filepath.Join(p.FiguresDir, name+"."+p.format)
}

// TablePath returns the image path of a table, e.g. tables/table1_descriptives.svg
func (p *Paths) TablePath(name string) string {
	return filepath.Join(p.TablesDir, name+"."+p.format)
}

// TableCSVPath returns the CSV export path of a table
func (p *Paths) TableCSVPath(name string) string {
	return filepath.Join(p.TablesDir, name+".csv")
}

// Format returns the configured image format
func (p *Paths) Format() string {
	return p.format
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
