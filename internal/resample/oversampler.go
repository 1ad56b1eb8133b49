// Package resample balances class counts in a training partition.
package resample

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// RandomOverSampler duplicates rows of every minority class, drawn uniformly
// with replacement, until each class has as many rows as the largest one.
type RandomOverSampler struct {
	Seed int64
}

func NewRandomOverSampler(seed int64) *RandomOverSampler {
	return &RandomOverSampler{Seed: seed}
}

// Indices returns every original row position in order, followed by the
// sampled duplicates. Classes are topped up in ascending label order.
func (ros *RandomOverSampler) Indices(y []int) ([]int, error) {
	if len(y) == 0 {
		return nil, fmt.Errorf("cannot resample an empty label set")
	}

	members := make(map[int][]int)
	for i, label := range y {
		members[label] = append(members[label], i)
	}

	classes := make([]int, 0, len(members))
	majority := 0
	for class, rows := range members {
		classes = append(classes, class)
		if len(rows) > majority {
			majority = len(rows)
		}
	}
	sort.Ints(classes)

	out := make([]int, len(y), len(classes)*majority)
	for i := range y {
		out[i] = i
	}

	rng := rand.New(rand.NewSource(ros.Seed))
	for _, class := range classes {
		rows := members[class]
		for n := len(rows); n < majority; n++ {
			out = append(out, rows[rng.Intn(len(rows))])
		}
	}
	return out, nil
}

// Resample returns the oversampled feature rows and labels. Rows are shared
// with X, not copied.
func (ros *RandomOverSampler) Resample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("x and y must have the same length")
	}
	idx, err := ros.Indices(y)
	if err != nil {
		return nil, nil, err
	}

	XRes := make([][]decimal.Decimal, len(idx))
	yRes := make([]int, len(idx))
	for i, j := range idx {
		XRes[i] = X[j]
		yRes[i] = y[j]
	}
	return XRes, yRes, nil
}

// Counts tallies labels per class.
func Counts(y []int) map[int]int {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	return counts
}
