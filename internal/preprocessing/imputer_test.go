package preprocessing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
	"github.com/Arya-f4/machine-learning-uts/internal/testutil"
)

func fixture(t *testing.T) *data.Dataset {
	t.Helper()
	ds, err := data.FromRecords(testutil.PassengerRecords())
	require.NoError(t, err)
	return ds
}

func TestMedian(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		values []float64
		want   float64
		ok     bool
	}{
		{"odd", []float64{3, 1, 2}, 2, true},
		{"even averages middle pair", []float64{4, 1, 3, 2}, 2.5, true},
		{"ignores missing", []float64{nan, 5, nan, 1}, 3, true},
		{"all missing", []float64{nan, nan}, 0, false},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := preprocessing.Median(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeTieGoesToSmallestValue(t *testing.T) {
	mode, ok := preprocessing.Mode(
		[]string{"S", "C", "C", "S"},
		[]bool{false, false, false, false},
	)
	require.True(t, ok)
	assert.Equal(t, "C", mode)

	mode, ok = preprocessing.Mode(
		[]string{"Q", "C", "", "C", "Q", ""},
		[]bool{false, false, true, false, false, true},
	)
	require.True(t, ok)
	assert.Equal(t, "C", mode, "missing entries never count")

	_, ok = preprocessing.Mode([]string{"", ""}, []bool{true, true})
	assert.False(t, ok)
}

func TestMedianImputerFillsEveryMissingAge(t *testing.T) {
	ds := fixture(t)
	before, err := ds.Missing("Age")
	require.NoError(t, err)

	imp := preprocessing.NewMedianImputer("Age")
	out, filled, err := imp.FitTransform(ds)
	require.NoError(t, err)

	assert.Equal(t, 2, filled)
	assert.Equal(t, testutil.FixtureAgeMedian, imp.Value)

	after, err := out.Floats("Age")
	require.NoError(t, err)
	for i, v := range after {
		require.False(t, math.IsNaN(v), "row %d still missing", i)
		if before[i] {
			assert.Equal(t, testutil.FixtureAgeMedian, v)
		}
	}
	assert.Equal(t, 22.0, after[0])
}

func TestMedianImputerNoOpWhenComplete(t *testing.T) {
	ds := fixture(t)
	out, filled, err := preprocessing.NewMedianImputer("Fare").FitTransform(ds)
	require.NoError(t, err)
	assert.Zero(t, filled)
	assert.Same(t, ds, out)
}

func TestMedianImputerAllMissing(t *testing.T) {
	records := testutil.PassengerRecords()
	for _, row := range records[1:] {
		row[5] = ""
	}
	ds, err := data.FromRecords(records)
	require.NoError(t, err)

	err = preprocessing.NewMedianImputer("Age").Fit(ds)
	assert.ErrorIs(t, err, data.ErrNoObservations)
}

func TestImputerErrors(t *testing.T) {
	ds := fixture(t)

	_, _, err := preprocessing.NewMedianImputer("Age").Transform(ds)
	assert.ErrorIs(t, err, preprocessing.ErrNotFitted)

	err = preprocessing.NewMedianImputer("Deck").Fit(ds)
	assert.ErrorIs(t, err, data.ErrColumnNotFound)

	err = preprocessing.NewMedianImputer("Sex").Fit(ds)
	assert.ErrorIs(t, err, data.ErrNotNumeric)
}

func TestModeImputerFillsEmbarked(t *testing.T) {
	ds := fixture(t)
	before, err := ds.Missing("Embarked")
	require.NoError(t, err)

	imp := preprocessing.NewModeImputer("Embarked")
	out, filled, err := imp.FitTransform(ds)
	require.NoError(t, err)

	assert.Equal(t, 1, filled)
	assert.Equal(t, testutil.FixtureEmbarkedMode, imp.Value)

	values, missing, err := out.Strings("Embarked")
	require.NoError(t, err)
	for i := range values {
		assert.False(t, missing[i])
		if before[i] {
			assert.Equal(t, testutil.FixtureEmbarkedMode, values[i])
		}
	}
	assert.Equal(t, "C", values[1])
}

func TestModeImputerRejectsNumeric(t *testing.T) {
	ds := fixture(t)
	imp := preprocessing.NewModeImputer("Age")
	_, _, err := imp.FitTransform(ds)
	assert.Error(t, err)
}
