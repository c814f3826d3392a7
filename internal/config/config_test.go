package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultInputFile, cfg.Input.File)
				assert.Equal(t, DefaultCutoff, cfg.Analysis.Cutoff)
				assert.Equal(t, DefaultOutputDir, cfg.Output.Dir)
				assert.Equal(t, FormatSVG, cfg.Render.Format)
				assert.Equal(t, 14.0, cfg.Render.ChartWidth)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.True(t, cfg.Telemetry.Enabled)
			},
		},
		{
			name: "yaml file overrides defaults",
			yaml: "input:\n  file: precos.xlsx\n  sheet: Planilha1\nrender:\n  format: png\n  font_size: 9\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "precos.xlsx", cfg.Input.File)
				assert.Equal(t, "Planilha1", cfg.Input.Sheet)
				assert.Equal(t, FormatPNG, cfg.Render.Format)
				assert.Equal(t, 9.0, cfg.Render.FontSize)
				// untouched keys keep their defaults
				assert.Equal(t, 6.0, cfg.Render.ChartHeight)
			},
		},
		{
			name: "env overrides yaml",
			yaml: "input:\n  file: precos.xlsx\n",
			env: map[string]string{
				"FUELBREAK_INPUT_FILE":        "env.xlsx",
				"FUELBREAK_ANALYSIS_CUTOFF":   "2022-01-01",
				"FUELBREAK_TELEMETRY_ENABLED": "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "env.xlsx", cfg.Input.File)
				assert.Equal(t, "2022-01-01", cfg.Analysis.Cutoff)
				assert.False(t, cfg.Telemetry.Enabled)
			},
		},
		{
			name:    "invalid format",
			env:     map[string]string{"FUELBREAK_RENDER_FORMAT": "gif"},
			wantErr: true,
		},
		{
			name:    "invalid cutoff",
			env:     map[string]string{"FUELBREAK_ANALYSIS_CUTOFF": "01/05/2023"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "input: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FUELBREAK_OUTPUT_DIR=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("FUELBREAK_OUTPUT_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Output.Dir)
}

func TestLoad_DiscoversConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultInputFile, cfg.Input.File)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte("input:\n  file: configs.xlsx\n"), 0644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "configs.xlsx", cfg.Input.File)

	// config.yaml in the working directory wins over configs/config.yaml
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("input:\n  file: root.xlsx\n"), 0644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "root.xlsx", cfg.Input.File)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("file output requires a path", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Output = "file"
		cfg.Logging.FilePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		cfg := Default()
		cfg.Telemetry.SampleRatio = 1.5
		assert.Error(t, cfg.Validate())
	})

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Default().Validate())
	})
}

func TestConfig_CutoffTime(t *testing.T) {
	cfg := Default()
	cutoff, err := cfg.CutoffTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), cutoff)

	cfg.Analysis.Cutoff = "not a date"
	_, err = cfg.CutoffTime()
	assert.Error(t, err)
}
