package pipeline

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/Arya-f4/machine-learning-uts/internal/config"
	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/models"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
	"github.com/Arya-f4/machine-learning-uts/internal/testutil"
)

func testRunner(t *testing.T, input string) (*Runner, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		Input:         input,
		Cleaned:       filepath.Join(dir, "train_cleaned.csv"),
		Normalized:    filepath.Join(dir, "train_normalized.csv"),
		EDAPlot:       filepath.Join(dir, "eda_plots.png"),
		ConfusionPlot: filepath.Join(dir, "confusion_matrix.png"),
		PCAPlot:       filepath.Join(dir, "pca_plot.png"),
		State:         filepath.Join(dir, "preprocess_state.msgpack"),
		Model:         filepath.Join(dir, "model.gob"),
	}
	cfg.Forest.NTrees = 15
	cfg.Forest.Workers = 2
	require.NoError(t, cfg.Validate())
	return NewRunner(cfg, zerolog.Nop()), dir
}

func fixtureRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	return testRunner(t, testutil.WriteCSV(t, "train.csv", testutil.PassengerRecords()))
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, path)
	assert.Greater(t, info.Size(), int64(0), path)
}

func TestClean(t *testing.T) {
	r, _ := fixtureRunner(t)

	res, err := r.Clean(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testutil.FixtureAgeMedian, res.AgeMedian)
	assert.Equal(t, 2, res.AgeFilled)
	assert.Equal(t, testutil.FixtureEmbarkedMode, res.EmbarkedMode)
	assert.Equal(t, 1, res.EmbarkedFilled)
	for _, c := range res.MissingAfter {
		assert.Zero(t, c.Count, c.Name)
	}

	written, _, err := data.Load(res.Output)
	require.NoError(t, err)
	assert.False(t, written.Has("Cabin"))
	assert.Equal(t, 10, written.Len())
	assert.Zero(t, written.TotalMissing())

	ages, err := written.Floats("Age")
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureAgeMedian, ages[5])
	assert.Equal(t, testutil.FixtureAgeMedian, ages[8])

	ports, _, err := written.Strings("Embarked")
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureEmbarkedMode, ports[8])
	assert.Empty(t, res.Parquet)
}

func TestCleanWritesParquet(t *testing.T) {
	r, _ := fixtureRunner(t)
	r.Config.Paths.Parquet = true

	res, err := r.Clean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ".parquet", filepath.Ext(res.Parquet))
	assertFile(t, res.Parquet)
}

func TestMissingInputWritesNothing(t *testing.T) {
	r, dir := testRunner(t, filepath.Join(t.TempDir(), "absent.csv"))

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, data.ErrFileNotFound)

	_, err = r.Train(context.Background())
	require.ErrorIs(t, err, data.ErrFileNotFound)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTargetPolicy(t *testing.T) {
	records := testutil.PassengerRecords()
	records[3][1] = ""
	input := testutil.WriteCSV(t, "train.csv", records)

	r, _ := testRunner(t, input)
	res, err := r.Clean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.DroppedTargets)
	assert.Equal(t, 9, res.Dataset.Len())

	r.Config.TargetPolicy = config.TargetPolicyRequire
	_, err = r.Clean(context.Background())
	assert.ErrorIs(t, err, data.ErrMissingValues)
}

func TestNormalize(t *testing.T) {
	r, _ := fixtureRunner(t)
	_, err := r.Clean(context.Background())
	require.NoError(t, err)

	res, err := r.Normalize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Pclass", "Age", "SibSp", "Parch", "Fare"}, res.Columns)

	for _, name := range res.Columns {
		values, err := res.Dataset.Floats(name)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, floats.Min(values), 1e-12, name)
		assert.InDelta(t, 1.0, floats.Max(values), 1e-12, name)
	}

	ids, err := res.Dataset.Floats("PassengerId")
	require.NoError(t, err)
	assert.Equal(t, 10.0, floats.Max(ids), "the id column is not scaled")
	assertFile(t, res.Output)
}

func TestNormalizeNeedsCleanedFile(t *testing.T) {
	r, _ := fixtureRunner(t)
	_, err := r.Normalize(context.Background())
	assert.ErrorIs(t, err, data.ErrFileNotFound)
}

func TestReduce(t *testing.T) {
	r, _ := fixtureRunner(t)

	res, err := r.Reduce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Dropped, "rows without an age are incomplete")
	assert.Equal(t, 8, res.Rows)
	assert.NotContains(t, res.Features, "Survived")
	assert.Len(t, res.Features, 11)

	ratios := res.Projection.Ratios
	require.Len(t, ratios, 2)
	for i, ratio := range ratios {
		assert.GreaterOrEqual(t, ratio, 0.0)
		if i > 0 {
			assert.LessOrEqual(t, ratio, ratios[i-1])
		}
	}
	assert.LessOrEqual(t, res.Projection.Total, 1.0+1e-9)
	assert.Len(t, res.Projection.Scores, 8)
	assertFile(t, res.Plot)
}

func TestTrainEndToEnd(t *testing.T) {
	r, _ := fixtureRunner(t)

	res, err := r.Train(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Summary, len(testutil.PassengerHeader))
	for _, s := range res.Summary {
		if s.Name == "Age" {
			assert.Equal(t, data.Numeric, s.Kind)
			assert.Equal(t, 8, s.NonNull)
			assert.Equal(t, 2, s.Missing)
		}
	}

	assert.Equal(t, []string{"Pclass", "Age", "Fare", "FamilySize", "IsAlone", "Sex_male", "Embarked_Q", "Embarked_S"}, res.Features)
	assert.Equal(t, map[int]int{0: 1, 1: 1}, res.TestCounts)
	assert.Equal(t, map[int]int{0: 6, 1: 2}, res.TrainCounts)
	assert.Equal(t, map[int]int{0: 6, 1: 6}, res.BalancedCounts)

	m := res.Metrics
	require.NotNil(t, m)
	assert.Equal(t, []int{0, 1}, m.Classes)
	for _, class := range m.Classes {
		pc := m.PerClassMetrics[class]
		assert.False(t, math.IsNaN(pc.Precision))
		assert.False(t, math.IsNaN(pc.Recall))
	}
	for i, row := range m.ConfusionMatrix {
		assert.Equal(t, res.TestCounts[m.Classes[i]], row[0]+row[1])
	}

	assert.Len(t, res.Importances, len(res.Features))
	for _, path := range []string{res.EDAPlot, res.ConfusionPlot, res.StatePath, res.ModelPath} {
		assertFile(t, path)
	}

	state, err := preprocessing.LoadState(res.StatePath)
	require.NoError(t, err)
	assert.Equal(t, res.Source.FingerprintHex(), state.Fingerprint)
	assert.Equal(t, res.Features, state.Features)
}

func TestModelConfigStartsFromForestDefaults(t *testing.T) {
	r, _ := fixtureRunner(t)
	r.Config.Forest.ClassWeight = ""
	r.Config.Forest.Workers = 0

	mc := r.modelConfig()
	assert.Equal(t, "forest", mc.Algorithm)
	assert.Equal(t, 15, mc.NTrees)
	assert.Equal(t, models.ClassWeightBalanced, mc.ClassWeight)
	assert.Equal(t, models.DefaultConfig("forest").Workers, mc.Workers)
	assert.Equal(t, r.Config.Forest.Seed, mc.Seed)
}

func TestTrainWithCrossValidation(t *testing.T) {
	input := testutil.WriteCSV(t, "train.csv", testutil.SyntheticRecords(60))
	r, _ := testRunner(t, input)
	r.Config.CVFolds = 3

	res, err := r.Train(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.CV)
	assert.Len(t, res.CV.Scores, 3)
	for _, s := range res.CV.Scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestPredictUsesTrainingState(t *testing.T) {
	r, dir := fixtureRunner(t)
	trained, err := r.Train(context.Background())
	require.NoError(t, err)

	records := testutil.PassengerRecords()
	for i := range records {
		records[i] = append(records[i][:1:1], records[i][2:]...)
	}
	records[5][8] = "" // Fare
	input := testutil.WriteCSV(t, "test.csv", records)
	output := filepath.Join(dir, "predictions.csv")

	res, err := r.Predict(context.Background(), input, trained.ModelPath, output)
	require.NoError(t, err)

	require.Len(t, res.Predictions, 10)
	assert.Equal(t, "1", res.IDs[0])
	assert.Equal(t, []int{0, 1}, res.Classes)
	require.NotNil(t, res.Bundle)
	assert.Equal(t, "RandomForest", res.Bundle.Metadata.ModelName)
	assert.Equal(t, trained.Source.FingerprintHex(), res.Bundle.Metadata.Fingerprint)
	for _, row := range res.Probabilities {
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-9)
	}

	written, _, err := data.Load(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"PassengerId", "Survived"}, written.Names())
	ids, _, err := written.Strings("PassengerId")
	require.NoError(t, err)
	assert.Equal(t, res.IDs, ids)
	labels, err := written.Labels("Survived")
	require.NoError(t, err)
	assert.Equal(t, res.Predictions, labels)
}

func TestPredictMissingInput(t *testing.T) {
	r, dir := fixtureRunner(t)
	output := filepath.Join(dir, "predictions.csv")

	_, err := r.Predict(context.Background(), filepath.Join(dir, "absent.csv"), r.Config.Paths.Model, output)
	assert.ErrorIs(t, err, data.ErrFileNotFound)
	assert.NoFileExists(t, output)
}
