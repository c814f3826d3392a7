package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fuelbreak/internal/errors"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
		wantErr   bool
	}{
		{
			name: "xlsx file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "dados.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
		},
		{
			name: "csv file with upper-case extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "dados.CSV")
				require.NoError(t, os.WriteFile(file, []byte("data\n"), 0644))
				return file
			},
		},
		{
			name: "empty path",
			setupFunc: func(t *testing.T) string {
				return ""
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "dados.ods")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "temporary excel file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$dados.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "directory with spreadsheet extension",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "folder.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			err := validator.ValidateInputFile(tt.setupFunc(t))

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "output", "figures")
		validator := NewFileValidator(nil)

		require.NoError(t, validator.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		_, err = os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err), "write probe should be removed")
	})

	t.Run("path is an existing file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "output")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		err := NewFileValidator(nil).ValidateOutputDirectory(file)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})
}
