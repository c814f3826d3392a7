package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fuelbreak/internal/exporter"
	"fuelbreak/internal/infrastructure"
	"fuelbreak/pkg/contracts/domain"
)

// recordArtifact adds a written file to the run manifest and counts it.
func recordArtifact(ctx context.Context, state *RunState, name string, kind domain.ArtifactKind, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("artifact %s was not written: %w", name, err)
	}

	state.Manifest.Add(domain.Artifact{
		Name:      name,
		Kind:      kind,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime().UTC(),
	})
	infrastructure.RecordArtifact(ctx, state.Metrics, string(kind))

	state.Logger.DebugContext(ctx, "artifact_written",
		slog.String("name", name),
		slog.String("kind", string(kind)),
		slog.String("path", path),
		slog.Int64("size", info.Size()))
	return nil
}

// SaveManifest stamps the completion time and writes the manifest as JSON.
func SaveManifest(path string, manifest *domain.Manifest) error {
	manifest.CompletedAt = time.Now().UTC()
	return exporter.WriteJSON(path, manifest)
}

// LoadManifestFromFile reads a manifest written by SaveManifest
func LoadManifestFromFile(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}
