package datasets

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/carlosrabelo/tabula/internal/config"
	apperrors "github.com/carlosrabelo/tabula/internal/errors"
	"github.com/carlosrabelo/tabula/internal/pipeline"
	"github.com/carlosrabelo/tabula/pkg/contracts/domain"
)

// NewManifest describes a run over frame. Results and FinishedAt are filled
// in once the orchestrator returns.
func NewManifest(runID, inputPath, outputDir string, frame *pipeline.Frame, startedAt time.Time) *domain.RunManifest {
	return &domain.RunManifest{
		RunID:         runID,
		InputPath:     inputPath,
		OutputDir:     outputDir,
		ReferenceDate: frame.Reference.Format(config.ReferenceDateLayout),
		RowCount:      frame.Len(),
		StatusColumn:  frame.StatusColumn,
		Mapping:       frame.Resolution.MappingByName(),
		Collisions:    frame.Resolution.Collisions,
		Results:       []domain.DatasetResult{},
		StartedAt:     startedAt.UTC(),
	}
}

// JSONWriter persists a JSON document next to the datasets
type JSONWriter interface {
	WriteJSON(name string, v any) (string, error)
}

// WriteManifest stores m as manifest.json in the writer's directory
func WriteManifest(w JSONWriter, m *domain.RunManifest) (string, error) {
	path, err := w.WriteJSON(config.ManifestFileName, m)
	if err != nil {
		return "", apperrors.NewStorageError("failed to write manifest", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (*domain.RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("manifest")
		}
		return nil, apperrors.NewStorageError("failed to read manifest", err)
	}

	var m domain.RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.NewDecodingError(fmt.Sprintf("invalid manifest %s", path), err)
	}
	return &m, nil
}
