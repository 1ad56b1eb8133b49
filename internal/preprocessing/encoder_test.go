package preprocessing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
)

func TestFamilyFeatures(t *testing.T) {
	ds := fixture(t)

	f := preprocessing.FamilyFeatures{SibSp: "SibSp", Parch: "Parch", FamilySize: "FamilySize", IsAlone: "IsAlone"}
	out, err := f.Apply(ds)
	require.NoError(t, err)

	sibsp, err := out.Labels("SibSp")
	require.NoError(t, err)
	parch, err := out.Labels("Parch")
	require.NoError(t, err)
	size, err := out.Labels("FamilySize")
	require.NoError(t, err)
	alone, err := out.Labels("IsAlone")
	require.NoError(t, err)

	for i := range size {
		assert.Equal(t, sibsp[i]+parch[i]+1, size[i], "row %d", i)
		if size[i] == 1 {
			assert.Equal(t, 1, alone[i], "row %d", i)
		} else {
			assert.Equal(t, 0, alone[i], "row %d", i)
		}
	}
	assert.Equal(t, 5, size[7])
}

func TestFamilyFeaturesMissingColumn(t *testing.T) {
	ds := fixture(t)
	f := preprocessing.FamilyFeatures{SibSp: "Siblings", Parch: "Parch", FamilySize: "FamilySize", IsAlone: "IsAlone"}
	_, err := f.Apply(ds)
	assert.ErrorIs(t, err, data.ErrColumnNotFound)
}

func TestDropColumns(t *testing.T) {
	ds := fixture(t)

	out, err := preprocessing.DropColumns(ds, "Cabin", "Ticket")
	require.NoError(t, err)
	assert.False(t, out.Has("Cabin"))
	assert.False(t, out.Has("Ticket"))
	assert.Len(t, out.Names(), 10)

	_, err = preprocessing.DropColumns(ds, "Cabin", "Deck")
	assert.ErrorIs(t, err, data.ErrColumnNotFound)
}

func TestLabelEncoderIsSorted(t *testing.T) {
	le := preprocessing.NewLabelEncoder()

	codes, err := le.FitTransform([]string{"S", "C", "Q", "S"})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "Q", "S"}, le.Classes)
	assert.Equal(t, []int{2, 0, 1, 2}, codes)

	back, err := le.InverseTransform(codes)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "C", "Q", "S"}, back)

	_, err = le.Transform([]string{"X"})
	assert.Error(t, err)
	_, err = le.InverseTransform([]int{3})
	assert.Error(t, err)
}

func TestLabelEncoderNotFitted(t *testing.T) {
	_, err := preprocessing.NewLabelEncoder().Transform([]string{"a"})
	assert.ErrorIs(t, err, preprocessing.ErrNotFitted)
}

func TestOrdinalEncoderEncodesMissingAsToken(t *testing.T) {
	ds := fixture(t)

	enc := preprocessing.NewOrdinalEncoder("Sex", "Embarked", "Cabin")
	out, err := enc.FitTransform(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "Q", "S", "nan"}, enc.Encoders["Embarked"].Classes)

	ports, err := out.Labels("Embarked")
	require.NoError(t, err)
	assert.Equal(t, 3, ports[8])
	assert.Equal(t, 2, ports[0])

	kind, err := out.Kind("Sex")
	require.NoError(t, err)
	assert.Equal(t, data.Numeric, kind)
	assert.Equal(t, 2, out.TotalMissing(), "only the two missing ages remain")
}

func TestOneHotEncoder(t *testing.T) {
	ds := fixture(t)

	enc := preprocessing.NewOneHotEncoder(true, "Sex", "Embarked")
	out, err := enc.FitTransform(ds)
	require.NoError(t, err)

	assert.False(t, out.Has("Sex"))
	assert.False(t, out.Has("Embarked"))
	assert.Equal(t, []string{"Sex_male"}, enc.OutputColumns("Sex"))
	assert.Equal(t, []string{"Embarked_Q", "Embarked_S"}, enc.OutputColumns("Embarked"))
	for _, name := range []string{"Sex_male", "Embarked_Q", "Embarked_S"} {
		kind, err := out.Kind(name)
		require.NoError(t, err)
		assert.Equal(t, data.Boolean, kind)
	}

	q, err := out.Floats("Embarked_Q")
	require.NoError(t, err)
	s, err := out.Floats("Embarked_S")
	require.NoError(t, err)
	assert.Equal(t, 1.0, q[5])
	assert.Equal(t, 0.0, q[8], "missing port has no indicator")
	assert.Equal(t, 0.0, s[8])
}

func TestOneHotDecodeRecoversCategories(t *testing.T) {
	ds := fixture(t)
	ds, _, err := preprocessing.NewModeImputer("Embarked").FitTransform(ds)
	require.NoError(t, err)

	for _, dropFirst := range []bool{true, false} {
		enc := preprocessing.NewOneHotEncoder(dropFirst, "Sex", "Embarked")
		out, err := enc.FitTransform(ds)
		require.NoError(t, err)

		for _, column := range []string{"Sex", "Embarked"} {
			want, _, err := ds.Strings(column)
			require.NoError(t, err)
			got, missing, err := enc.Decode(out, column)
			require.NoError(t, err)
			assert.Equal(t, want, got, "column %s drop_first=%v", column, dropFirst)
			assert.NotContains(t, missing, true)
		}
	}
}

func TestOneHotUnknownCategory(t *testing.T) {
	ds := fixture(t)
	enc := preprocessing.NewOneHotEncoder(true, "Sex")
	require.NoError(t, enc.Fit(ds))

	other, err := ds.WithStrings("Sex", []string{"male", "female", "x", "male", "male", "male", "male", "male", "female", "male"}, nil)
	require.NoError(t, err)

	_, err = enc.Transform(other)
	assert.ErrorIs(t, err, preprocessing.ErrUnknownCategory)
}

func TestOneHotNotFitted(t *testing.T) {
	_, err := preprocessing.NewOneHotEncoder(true, "Sex").Transform(fixture(t))
	assert.ErrorIs(t, err, preprocessing.ErrNotFitted)
}
