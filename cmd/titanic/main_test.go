package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya-f4/machine-learning-uts/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	content := fmt.Sprintf(`
paths:
  cleaned: %[1]s/cleaned.csv
  normalized: %[1]s/normalized.csv
  eda_plot: %[1]s/eda.png
  confusion_plot: %[1]s/cm.png
  pca_plot: %[1]s/pca.png
  state: %[1]s/state.msgpack
  model: %[1]s/model.gob
forest:
  n_trees: 10
  workers: 2
`, filepath.ToSlash(dir))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunAndPredict(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	input := testutil.WriteCSV(t, "train.csv", testutil.PassengerRecords())

	out, _, err := execute(t, "run", "--config", cfg, "--input", input, "--log-format", "json")
	require.NoError(t, err)
	for _, want := range []string{"Clean", "Normalize", "Reduce", "Train", "Accuracy", "Total variance explained", "NON-NULL"} {
		assert.Contains(t, out, want)
	}
	for _, name := range []string{"cleaned.csv", "normalized.csv", "eda.png", "cm.png", "pca.png", "state.msgpack", "model.gob"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	predictions := filepath.Join(dir, "predictions.csv")
	out, _, err = execute(t, "predict", input, "--config", cfg, "--output", predictions, "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Predicted survivors")
	assert.Contains(t, out, "Model: RandomForest")
	assert.Contains(t, out, "Dataset: "+input)
	assert.FileExists(t, predictions)
}

func TestMissingInputExitsCleanly(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	_, logs, err := execute(t, "train", "--config", cfg, "--input", filepath.Join(dir, "absent.csv"), "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, logs, "input file not found")
	assert.NoFileExists(t, filepath.Join(dir, "eda.png"))
	assert.NoFileExists(t, filepath.Join(dir, "model.gob"))
}

func TestInvalidFlags(t *testing.T) {
	_, _, err := execute(t, "clean", "--log-format", "xml")
	assert.Error(t, err)

	_, _, err = execute(t, "train", "--trees", "0", "--input", "unused.csv")
	assert.Error(t, err)

	_, _, err = execute(t, "predict")
	assert.Error(t, err)
}
