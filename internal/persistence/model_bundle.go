// Package persistence stores a trained forest together with the fitted
// preprocessing state it was trained behind.
package persistence

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Arya-f4/machine-learning-uts/internal/evaluation"
	"github.com/Arya-f4/machine-learning-uts/internal/models"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
)

func init() {
	gob.Register(&models.DecisionTree{})
	gob.Register(&models.RandomForest{})
	gob.Register(&models.TreeNode{})
}

type ModelBundle struct {
	Model models.Model
	// State is the msgpack-encoded preprocessing.State.
	State     []byte
	Metadata  BundleMetadata
	CreatedAt time.Time
}

type BundleMetadata struct {
	ModelName    string
	Dataset      string
	Fingerprint  string
	Metrics      *evaluation.ClassificationMetrics
	TrainingTime time.Duration
	Features     []string
	Classes      []int
	Parameters   map[string]any
}

// NewModelBundle snapshots a fitted model and preprocessing state.
func NewModelBundle(model models.Model, state preprocessing.State) (*ModelBundle, error) {
	raw, err := preprocessing.EncodeState(state)
	if err != nil {
		return nil, err
	}
	return &ModelBundle{
		Model:     model,
		State:     raw,
		CreatedAt: time.Now(),
		Metadata: BundleMetadata{
			ModelName:   model.GetName(),
			Fingerprint: state.Fingerprint,
			Features:    state.Features,
			Classes:     model.GetClasses(),
			Parameters:  model.GetParams(),
		},
	}, nil
}

// Preprocessor restores the fitted preprocessing chain stored in the bundle.
func (mb *ModelBundle) Preprocessor() (*preprocessing.Preprocessor, error) {
	state, err := preprocessing.DecodeState(mb.State)
	if err != nil {
		return nil, err
	}
	return preprocessing.Restore(state)
}

func (mb *ModelBundle) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(mb); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	return file.Close()
}

func LoadModelBundle(filename string) (*ModelBundle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var bundle ModelBundle
	if err := gob.NewDecoder(file).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if bundle.Model == nil {
		return nil, fmt.Errorf("bundle %s holds no model", filename)
	}

	return &bundle, nil
}

// WriteSummary prints a plain-text description of the bundle.
func (mb *ModelBundle) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Model: %s\n", mb.Metadata.ModelName)
	fmt.Fprintf(w, "Dataset: %s\n", mb.Metadata.Dataset)
	fmt.Fprintf(w, "Fingerprint: %s\n", mb.Metadata.Fingerprint)
	fmt.Fprintf(w, "Created: %s\n", mb.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Features: %d\n", len(mb.Metadata.Features))
	if m := mb.Metadata.Metrics; m != nil {
		fmt.Fprintf(w, "Accuracy: %.4f\n", m.Accuracy)
		fmt.Fprintf(w, "Macro F1: %.4f\n", m.MacroF1)
	}
	fmt.Fprintf(w, "Training Time: %v\n", mb.Metadata.TrainingTime)
}
