package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Render    RenderConfig    `yaml:"render" envconfig:"RENDER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes the spreadsheet to analyse
type InputConfig struct {
	File  string `yaml:"file" envconfig:"FILE" validate:"required"`
	Sheet string `yaml:"sheet" envconfig:"SHEET"` // empty selects the first sheet with the required header
}

// AnalysisConfig contains the intervention model parameters
type AnalysisConfig struct {
	Cutoff string `yaml:"cutoff" envconfig:"CUTOFF" validate:"required,datetime=2006-01-02"`
}

// OutputConfig contains the output directory layout
type OutputConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR" validate:"required"`
	WriteCSV  bool   `yaml:"write_csv" envconfig:"WRITE_CSV"`
	WriteXLSX bool   `yaml:"write_xlsx" envconfig:"WRITE_XLSX"`
	WriteJSON bool   `yaml:"write_json" envconfig:"WRITE_JSON"`
}

// RenderConfig contains the styling applied to every chart and table.
// Sizes are in inches.
type RenderConfig struct {
	Typeface    string  `yaml:"typeface" envconfig:"TYPEFACE" validate:"required"`
	Variant     string  `yaml:"variant" envconfig:"VARIANT"`
	FontSize    float64 `yaml:"font_size" envconfig:"FONT_SIZE" validate:"gt=0"`
	ChartWidth  float64 `yaml:"chart_width" envconfig:"CHART_WIDTH" validate:"gt=0"`
	ChartHeight float64 `yaml:"chart_height" envconfig:"CHART_HEIGHT" validate:"gt=0"`
	BoxWidth    float64 `yaml:"box_width" envconfig:"BOX_WIDTH" validate:"gt=0"`
	BoxHeight   float64 `yaml:"box_height" envconfig:"BOX_HEIGHT" validate:"gt=0"`
	TableWidth  float64 `yaml:"table_width" envconfig:"TABLE_WIDTH" validate:"gt=0"`
	Format      string  `yaml:"format" envconfig:"FORMAT" validate:"oneof=svg png pdf"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceFile   string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment. An empty path searches the usual config file locations.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// Env overrides the file; fields without a variable keep their value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads a .env file from the working directory when one exists
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// loadFromFile decodes a YAML file over the given configuration
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Validate checks the struct tags and the values that need parsing
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required when output is %q", c.Logging.Output)
	}
	return nil
}

// CutoffTime returns the structural break date in UTC
func (c *Config) CutoffTime() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.Analysis.Cutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff date %q: %w", c.Analysis.Cutoff, err)
	}
	return t, nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			File: DefaultInputFile,
		},
		Analysis: AnalysisConfig{
			Cutoff: DefaultCutoff,
		},
		Output: OutputConfig{
			Dir:       DefaultOutputDir,
			WriteCSV:  true,
			WriteXLSX: true,
			WriteJSON: true,
		},
		Render: RenderConfig{
			Typeface:    "Liberation",
			Variant:     "Serif",
			FontSize:    11,
			ChartWidth:  14,
			ChartHeight: 6,
			BoxWidth:    10,
			BoxHeight:   6,
			TableWidth:  12,
			Format:      FormatSVG,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogsDir + "/fuelbreak.log",
		},
		Telemetry: TelemetryConfig{
			Enabled:     true,
			ServiceName: AppName,
			Environment: "development",
			TraceFile:   DefaultLogsDir + "/trace.json",
			MetricsFile: DefaultLogsDir + "/metrics.prom",
			SampleRatio: 1.0,
		},
	}
}
