package plots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/testutil"
)

var survivalNames = map[int]string{0: "Not Survived", 1: "Survived"}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	head := make([]byte, 8)
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	_, err = file.Read(head)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n\x1a\n", string(head))
}

func TestEDA(t *testing.T) {
	ds, err := data.FromRecords(testutil.PassengerRecords())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "eda.png")
	cols := EDAColumns{Target: "Survived", Sex: "Sex", Pclass: "Pclass", Age: "Age"}
	require.NoError(t, EDA(ds, cols, survivalNames, path))
	assertPNG(t, path)

	cols.Sex = "Gender"
	assert.ErrorIs(t, EDA(ds, cols, survivalNames, path), data.ErrColumnNotFound)
}

func TestConfusionHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cm.png")
	require.NoError(t, ConfusionHeatmap([][]int{{5, 1}, {2, 3}}, []string{"Not Survived", "Survived"}, path))
	assertPNG(t, path)

	flat := filepath.Join(t.TempDir(), "flat.png")
	require.NoError(t, ConfusionHeatmap([][]int{{0, 0}, {0, 0}}, []string{"a", "b"}, flat))
	assertPNG(t, flat)

	assert.Error(t, ConfusionHeatmap([][]int{{1, 2}}, []string{"a", "b"}, path))
	assert.Error(t, ConfusionHeatmap(nil, nil, path))
}

func TestPCAScatter(t *testing.T) {
	scores := [][]float64{{-1, 0.5}, {0.2, -0.3}, {1.4, 0.1}, {-0.6, -1.2}}
	y := []int{0, 1, 1, 0}

	path := filepath.Join(t.TempDir(), "pca.png")
	require.NoError(t, PCAScatter(scores, y, survivalNames, []float64{0.6, 0.3}, path))
	assertPNG(t, path)

	assert.Error(t, PCAScatter(scores, y[:2], survivalNames, nil, path))
	assert.Error(t, PCAScatter([][]float64{{1}}, []int{0}, survivalNames, nil, path))
}

func TestAxisLabel(t *testing.T) {
	assert.Equal(t, "PC1 (62.5%)", axisLabel(1, []float64{0.625}))
	assert.Equal(t, "PC2", axisLabel(2, []float64{0.625}))
}
