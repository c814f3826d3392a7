package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "fuelbreak/internal/errors"
)

// SupportedInputExtensions lists the spreadsheet formats the loader can read
var SupportedInputExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileValidator checks the files a run reads and the directories it writes to
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFile checks that path is a readable spreadsheet the loader
// understands. Office lock files (~$name.xlsx) are rejected.
func (v *FileValidator) ValidateInputFile(path string) error {
	if path == "" {
		return apperrors.NewAppValidationError("input file is not configured")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !isSupported(ext) {
		v.logger.Error("Unsupported input file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("file %s has unsupported extension %q (want one of %s)",
				path, ext, strings.Join(SupportedInputExtensions, ", ")))
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel file",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}

	return v.ValidateFile(path)
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

func isSupported(ext string) bool {
	for _, s := range SupportedInputExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
