package models

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

type TreeNode struct {
	IsLeaf           bool
	Class            int
	Feature          int
	Threshold        decimal.Decimal
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	Weight           float64
	Impurity         float64
	ImpurityDecrease float64
}

// DecisionTree is a CART classifier using weighted Gini impurity. Thresholds
// sit midway between adjacent distinct values and a sample goes left when its
// feature value is below the threshold.
type DecisionTree struct {
	BaseModel
	Root                *TreeNode
	MaxDepth            int
	MinSamplesSplit     int
	MinImpurityDecrease float64
	// MaxFeatures limits the candidate features drawn at each split; zero
	// means every feature is considered.
	MaxFeatures int
	Seed        int64
	NFeatures   int
}

func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}

	return &DecisionTree{
		MaxDepth:            maxDepth,
		MinSamplesSplit:     minSamplesSplit,
		MinImpurityDecrease: 0.01,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

// treeBuilder holds per-fit scratch state.
type treeBuilder struct {
	dt       *DecisionTree
	X        [][]decimal.Decimal
	columns  [][]float64
	y        []int
	weights  []float64
	classIdx map[int]int
	rng      *rand.Rand
}

func (dt *DecisionTree) Fit(X [][]decimal.Decimal, y []int) error {
	return dt.FitWeighted(X, y, nil)
}

// FitWeighted grows the tree with per-sample weights. A nil weights slice
// weighs every sample equally.
func (dt *DecisionTree) FitWeighted(X [][]decimal.Decimal, y []int, weights []float64) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}
	if weights == nil {
		weights = make([]float64, len(y))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(y) {
		return fmt.Errorf("got %d weights for %d samples", len(weights), len(y))
	}

	dt.Classes = ExtractClasses(y)
	dt.NFeatures = len(X[0])

	b := &treeBuilder{
		dt:       dt,
		X:        X,
		y:        y,
		weights:  weights,
		classIdx: make(map[int]int, len(dt.Classes)),
		rng:      rand.New(rand.NewSource(dt.Seed)),
	}
	for i, class := range dt.Classes {
		b.classIdx[class] = i
	}

	b.columns = make([][]float64, dt.NFeatures)
	for f := range b.columns {
		b.columns[f] = make([]float64, len(X))
		for i, sample := range X {
			if len(sample) != dt.NFeatures {
				return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, dt.NFeatures, len(sample))
			}
			b.columns[f][i] = sample[f].InexactFloat64()
		}
	}

	indices := make([]int, len(y))
	for i := range indices {
		indices[i] = i
	}
	dt.Root = b.build(indices, 0)
	return nil
}

func (b *treeBuilder) mass(indices []int) ([]float64, float64) {
	mass := make([]float64, len(b.dt.Classes))
	total := 0.0
	for _, i := range indices {
		mass[b.classIdx[b.y[i]]] += b.weights[i]
		total += b.weights[i]
	}
	return mass, total
}

func gini(mass []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	impurity := 1.0
	for _, m := range mass {
		p := m / total
		impurity -= p * p
	}
	return impurity
}

// majority returns the class with the largest weight, lowest label on ties.
func (b *treeBuilder) majority(mass []float64) int {
	best := 0
	for i := 1; i < len(mass); i++ {
		if mass[i] > mass[best] {
			best = i
		}
	}
	return b.dt.Classes[best]
}

func (b *treeBuilder) build(indices []int, depth int) *TreeNode {
	mass, total := b.mass(indices)
	node := &TreeNode{
		Samples:  len(indices),
		Weight:   total,
		Impurity: gini(mass, total),
		Class:    b.majority(mass),
	}

	if depth >= b.dt.MaxDepth ||
		len(indices) < b.dt.MinSamplesSplit ||
		isPure(mass) ||
		node.Impurity < b.dt.MinImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	feature, lo, hi, decrease, ok := b.bestSplit(indices, mass, total, node.Impurity)
	if !ok || decrease <= 0 || decrease < b.dt.MinImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	node.Feature = feature
	node.Threshold = b.X[lo][feature].Add(b.X[hi][feature]).Div(decimal.NewFromInt(2))
	node.ImpurityDecrease = decrease

	leftIndices, rightIndices := b.split(indices, feature, node.Threshold)
	if len(leftIndices) == 0 || len(rightIndices) == 0 {
		node.IsLeaf = true
		return node
	}

	node.Left = b.build(leftIndices, depth+1)
	node.Right = b.build(rightIndices, depth+1)
	return node
}

func isPure(mass []float64) bool {
	nonZero := 0
	for _, m := range mass {
		if m > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func (b *treeBuilder) candidateFeatures() []int {
	n := b.dt.NFeatures
	features := make([]int, n)
	for i := range features {
		features[i] = i
	}
	k := b.dt.MaxFeatures
	if k <= 0 || k >= n {
		return features
	}

	for i := 0; i < k; i++ {
		j := i + b.rng.Intn(n-i)
		features[i], features[j] = features[j], features[i]
	}
	chosen := features[:k]
	sort.Ints(chosen)
	return chosen
}

// bestSplit sweeps each candidate feature in sorted order and returns the
// split with the largest weighted impurity decrease. lo and hi are the rows
// holding the adjacent values the threshold falls between. Earlier features
// and smaller thresholds win ties.
func (b *treeBuilder) bestSplit(indices []int, mass []float64, total, parent float64) (feature, lo, hi int, decrease float64, ok bool) {
	const eps = 1e-12

	order := make([]int, len(indices))
	left := make([]float64, len(mass))
	right := make([]float64, len(mass))

	for _, f := range b.candidateFeatures() {
		col := b.columns[f]
		copy(order, indices)
		sort.SliceStable(order, func(a, c int) bool { return col[order[a]] < col[order[c]] })

		for k := range left {
			left[k] = 0
		}
		copy(right, mass)
		leftTotal, rightTotal := 0.0, total

		for i := 0; i < len(order)-1; i++ {
			row := order[i]
			cls := b.classIdx[b.y[row]]
			left[cls] += b.weights[row]
			right[cls] -= b.weights[row]
			leftTotal += b.weights[row]
			rightTotal -= b.weights[row]

			if col[order[i]] == col[order[i+1]] {
				continue
			}

			weighted := (leftTotal/total)*gini(left, leftTotal) + (rightTotal/total)*gini(right, rightTotal)
			d := parent - weighted
			if !ok || d > decrease+eps {
				feature, lo, hi, decrease, ok = f, order[i], order[i+1], d, true
			}
		}
	}
	return feature, lo, hi, decrease, ok
}

func (b *treeBuilder) split(indices []int, feature int, threshold decimal.Decimal) ([]int, []int) {
	var leftIndices, rightIndices []int

	for _, i := range indices {
		if b.X[i][feature].LessThan(threshold) {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}

	return leftIndices, rightIndices
}

func (dt *DecisionTree) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range X {
		predictions[i] = dt.predictSample(sample, dt.Root)
	}

	return predictions
}

func (dt *DecisionTree) PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal {
	proba := make([][]decimal.Decimal, len(X))

	for i, sample := range X {
		prediction := dt.predictSample(sample, dt.Root)
		proba[i] = make([]decimal.Decimal, len(dt.Classes))

		for j, class := range dt.Classes {
			if class == prediction {
				proba[i][j] = decimal.NewFromInt(1)
			} else {
				proba[i][j] = decimal.Zero
			}
		}
	}

	return proba
}

func (dt *DecisionTree) predictSample(sample []decimal.Decimal, node *TreeNode) int {
	for !node.IsLeaf {
		if sample[node.Feature].LessThan(node.Threshold) {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Class
}

// FeatureImportances returns the weighted impurity decrease contributed by
// each feature, normalized to sum to 1.
func (dt *DecisionTree) FeatureImportances() []float64 {
	importances := make([]float64, dt.NFeatures)
	if dt.Root == nil || dt.Root.Weight == 0 {
		return importances
	}

	var walk func(node *TreeNode)
	walk = func(node *TreeNode) {
		if node == nil || node.IsLeaf {
			return
		}
		importances[node.Feature] += node.Weight / dt.Root.Weight * node.ImpurityDecrease
		walk(node.Left)
		walk(node.Right)
	}
	walk(dt.Root)

	return normalize(importances)
}

func normalize(values []float64) []float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	if sum > 0 {
		for i := range values {
			values[i] /= sum
		}
	}
	return values
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (dt *DecisionTree) Depth() int {
	var depth func(node *TreeNode) int
	depth = func(node *TreeNode) int {
		if node == nil || node.IsLeaf {
			return 0
		}
		return 1 + max(depth(node.Left), depth(node.Right))
	}
	return depth(dt.Root)
}

func (dt *DecisionTree) GetClasses() []int {
	return dt.Classes
}

func (dt *DecisionTree) Reset() {
	dt.Root = nil
	dt.Classes = nil
	dt.NFeatures = 0
}
