package preprocessing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
	"github.com/Arya-f4/machine-learning-uts/internal/testutil"
)

func filledFixture(t *testing.T) *data.Dataset {
	t.Helper()
	ds, _, err := preprocessing.NewMedianImputer("Age").FitTransform(fixture(t))
	require.NoError(t, err)
	return ds
}

var scaledColumns = []string{"Pclass", "Age", "SibSp", "Parch", "Fare"}

func TestMinMaxScalerBounds(t *testing.T) {
	ds := filledFixture(t)

	scaler := preprocessing.NewScaler(preprocessing.ScaleMinMax, scaledColumns...)
	out, err := scaler.FitTransform(ds)
	require.NoError(t, err)

	assert.Equal(t, ds.Names(), out.Names())
	for _, column := range scaledColumns {
		values, err := out.Floats(column)
		require.NoError(t, err)
		assert.Equal(t, 0.0, floats.Min(values), column)
		assert.Equal(t, 1.0, floats.Max(values), column)
	}

	ids, err := out.Labels("PassengerId")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids, "unscaled columns keep their rows")
}

func TestMinMaxScalerIsFixedPoint(t *testing.T) {
	ds := filledFixture(t)

	scaler := preprocessing.NewScaler("normalized", scaledColumns...)
	once, err := scaler.FitTransform(ds)
	require.NoError(t, err)

	refit := preprocessing.NewScaler("normalized", scaledColumns...)
	twice, err := refit.FitTransform(once)
	require.NoError(t, err)

	for _, column := range scaledColumns {
		a, err := once.Floats(column)
		require.NoError(t, err)
		b, err := twice.Floats(column)
		require.NoError(t, err)
		assert.Equal(t, a, b, column)
	}
}

func TestStandardScaler(t *testing.T) {
	ds, err := data.FromRecords(testutil.SyntheticRecords(60))
	require.NoError(t, err)
	ds, _, err = preprocessing.NewMedianImputer("Age").FitTransform(ds)
	require.NoError(t, err)

	scaler := preprocessing.NewScaler(preprocessing.ScaleStandard, "Age", "Fare")
	out, err := scaler.FitTransform(ds)
	require.NoError(t, err)

	for _, column := range []string{"Age", "Fare"} {
		values, err := out.Floats(column)
		require.NoError(t, err)
		mean, std := stat.PopMeanStdDev(values, nil)
		assert.InDelta(t, 0, mean, 1e-9, column)
		assert.InDelta(t, 1, std, 1e-6, column)
	}
}

func TestScalerConstantColumn(t *testing.T) {
	ds := fixture(t)
	constant, err := ds.WithFloats("Const", []float64{4, 4, 4, 4, 4, 4, 4, 4, 4, 4})
	require.NoError(t, err)

	for _, kind := range []string{preprocessing.ScaleMinMax, preprocessing.ScaleStandard} {
		out, err := preprocessing.NewScaler(kind, "Const").FitTransform(constant)
		require.NoError(t, err)
		values, err := out.Floats("Const")
		require.NoError(t, err)
		for _, v := range values {
			assert.Equal(t, 0.0, v, kind)
		}
	}
}

func TestScalerErrors(t *testing.T) {
	ds := fixture(t)

	err := preprocessing.NewScaler("robust", "Fare").Fit(ds)
	assert.ErrorIs(t, err, preprocessing.ErrUnknownScaleType)

	err = preprocessing.NewScaler(preprocessing.ScaleMinMax, "Age").Fit(ds)
	assert.ErrorIs(t, err, data.ErrMissingValues)

	_, err = preprocessing.NewScaler(preprocessing.ScaleMinMax, "Fare").Transform(ds)
	assert.ErrorIs(t, err, preprocessing.ErrNotFitted)
}

func TestRawScalerPassesThrough(t *testing.T) {
	ds := fixture(t)
	out, err := preprocessing.NewScaler(preprocessing.ScaleRaw, "Fare").FitTransform(ds)
	require.NoError(t, err)

	before, err := ds.Floats("Fare")
	require.NoError(t, err)
	after, err := out.Floats("Fare")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
