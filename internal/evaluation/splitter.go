package evaluation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func groupByClass(y []int) ([]int, map[int][]int) {
	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes, classIndices
}

// StratifiedIndices partitions row positions so every class keeps its share
// in both parts. The test part holds ceil(n * testSize) rows. Each class gets
// the floor of its proportional share and the rows left over go to the classes
// with the largest remainders, lower class first on ties. Classes are visited
// in ascending order, so a fixed seed gives a fixed split.
func (tts *TrainTestSplitter) StratifiedIndices(y []int) (trainIndices, testIndices []int, err error) {
	if len(y) == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}
	if tts.testSize <= 0 || tts.testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1")
	}

	n := len(y)
	nTest := int(math.Ceil(tts.testSize * float64(n)))
	if nTest >= n {
		return nil, nil, fmt.Errorf("test size %.2f leaves no training rows out of %d", tts.testSize, n)
	}

	classes, classIndices := groupByClass(y)
	testCounts := allocate(classes, classIndices, nTest, n)

	rng := rand.New(rand.NewSource(tts.randomSeed))
	for _, class := range classes {
		indices := classIndices[class]
		if len(indices) < 2 || testCounts[class] >= len(indices) {
			return nil, nil, fmt.Errorf("class %d has %d samples, too few to appear in both train and test", class, len(indices))
		}
		if tts.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		trainCount := len(indices) - testCounts[class]
		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	if tts.shuffle {
		rng.Shuffle(len(trainIndices), func(i, j int) {
			trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
		})
		rng.Shuffle(len(testIndices), func(i, j int) {
			testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
		})
	}

	return trainIndices, testIndices, nil
}

// allocate splits nTest rows across classes by largest remainder, in integer
// arithmetic.
func allocate(classes []int, classIndices map[int][]int, nTest, n int) map[int]int {
	counts := make(map[int]int, len(classes))
	remainders := make(map[int]int, len(classes))
	assigned := 0
	for _, class := range classes {
		share := len(classIndices[class]) * nTest
		counts[class] = share / n
		remainders[class] = share % n
		assigned += counts[class]
	}

	order := append([]int(nil), classes...)
	sort.SliceStable(order, func(i, j int) bool {
		return remainders[order[i]] > remainders[order[j]]
	})
	for i := 0; assigned < nTest; i++ {
		counts[order[i%len(order)]]++
		assigned++
	}
	return counts
}

func (tts *TrainTestSplitter) StratifiedSplit(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, [][]decimal.Decimal, []int, []int, error) {
	if len(X) != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("x and y must have the same length")
	}

	trainIndices, testIndices, err := tts.StratifiedIndices(y)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	XTrain, yTrain := Take(X, y, trainIndices)
	XTest, yTest := Take(X, y, testIndices)
	return XTrain, XTest, yTrain, yTest, nil
}

// Take gathers the rows at the given positions. Feature rows are copied.
func Take(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	XOut := make([][]decimal.Decimal, len(indices))
	yOut := make([]int, len(indices))
	for i, idx := range indices {
		XOut[i] = make([]decimal.Decimal, len(X[idx]))
		copy(XOut[i], X[idx])
		yOut[i] = y[idx]
	}
	return XOut, yOut
}

// StratifiedKFold deals the shuffled rows of each class round-robin into k
// folds and returns the test positions of every fold.
func StratifiedKFold(y []int, k int, seed int64) ([][]int, error) {
	if k < 2 || k > len(y) {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", k, len(y))
	}

	classes, classIndices := groupByClass(y)
	rng := rand.New(rand.NewSource(seed))

	folds := make([][]int, k)
	next := 0
	for _, class := range classes {
		indices := classIndices[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		for _, idx := range indices {
			folds[next] = append(folds[next], idx)
			next = (next + 1) % k
		}
	}

	for i, fold := range folds {
		sort.Ints(fold)
		folds[i] = fold
	}
	return folds, nil
}
