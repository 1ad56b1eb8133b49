package resample

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicesBalancesClasses(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1}

	idx, err := NewRandomOverSampler(42).Indices(y)
	require.NoError(t, err)
	require.Len(t, idx, 14)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, idx[:10], "original rows come first")
	for _, i := range idx[10:] {
		assert.Equal(t, 1, y[i], "only minority rows are duplicated")
	}

	resampled := make([]int, len(idx))
	for i, j := range idx {
		resampled[i] = y[j]
	}
	counts := Counts(resampled)
	assert.Equal(t, counts[0], counts[1])
}

func TestIndicesDeterministic(t *testing.T) {
	y := []int{2, 0, 0, 1, 0, 0, 0, 2}

	a, err := NewRandomOverSampler(7).Indices(y)
	require.NoError(t, err)
	b, err := NewRandomOverSampler(7).Indices(y)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	counts := map[int]int{}
	for _, i := range a {
		counts[y[i]]++
	}
	assert.Equal(t, map[int]int{0: 5, 1: 5, 2: 5}, counts)
}

func TestIndicesAlreadyBalanced(t *testing.T) {
	idx, err := NewRandomOverSampler(1).Indices([]int{0, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, idx)
}

func TestIndicesEmpty(t *testing.T) {
	_, err := NewRandomOverSampler(1).Indices(nil)
	assert.Error(t, err)
}

func TestResample(t *testing.T) {
	X := [][]decimal.Decimal{
		{decimal.NewFromInt(1)},
		{decimal.NewFromInt(2)},
		{decimal.NewFromInt(3)},
	}
	y := []int{0, 0, 1}

	XRes, yRes, err := NewRandomOverSampler(42).Resample(X, y)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, yRes)
	assert.True(t, XRes[3][0].Equal(decimal.NewFromInt(3)))

	_, _, err = NewRandomOverSampler(42).Resample(X, y[:2])
	assert.Error(t, err)
}
