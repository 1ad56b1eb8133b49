package models

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	ClassWeightNone     = "none"
	ClassWeightBalanced = "balanced"
)

// RandomForest bags decision trees grown on bootstrap samples, drawing
// sqrt(features) candidates at every split. Tree i is seeded with Seed+i,
// so a fit is reproducible regardless of how many workers run it.
type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	ClassWeight     string
	Seed            int64
	MaxWorkers      int
	Trees           []*DecisionTree
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit int) *RandomForest {
	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		ClassWeight:     ClassWeightNone,
		MaxWorkers:      4,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_trees":           nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
			},
		},
	}
}

func (rf *RandomForest) Fit(X [][]decimal.Decimal, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}
	if rf.NTrees <= 0 {
		return fmt.Errorf("forest needs at least one tree, got %d", rf.NTrees)
	}

	rf.Classes = ExtractClasses(y)
	nFeatures := len(X[0])

	rf.MaxFeatures = int(math.Sqrt(float64(nFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	var weights []float64
	switch rf.ClassWeight {
	case ClassWeightBalanced:
		weights = BalancedWeights(y)
	case ClassWeightNone, "":
	default:
		return fmt.Errorf("unknown class weight: %s", rf.ClassWeight)
	}

	rf.Params["class_weight"] = rf.ClassWeight
	rf.Params["seed"] = rf.Seed
	rf.Params["max_features"] = rf.MaxFeatures

	rf.Trees = make([]*DecisionTree, rf.NTrees)

	workers := rf.MaxWorkers
	if workers <= 0 || workers > rf.NTrees {
		workers = rf.NTrees
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < rf.NTrees; i++ {
		g.Go(func() error {
			tree, err := rf.trainSingleTree(X, y, weights, rf.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("tree %d training failed: %w", i, err)
			}
			rf.Trees[i] = tree
			return nil
		})
	}

	return g.Wait()
}

func (rf *RandomForest) trainSingleTree(X [][]decimal.Decimal, y []int, weights []float64, seed int64) (*DecisionTree, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([][]decimal.Decimal, n)
	yBoot := make([]int, n)
	var wBoot []float64
	if weights != nil {
		wBoot = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
		if weights != nil {
			wBoot[i] = weights[idx]
		}
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit)
	tree.MinImpurityDecrease = 0
	tree.MaxFeatures = rf.MaxFeatures
	tree.Seed = r.Int63()

	if err := tree.FitWeighted(XBoot, yBoot, wBoot); err != nil {
		return nil, err
	}
	return tree, nil
}

func (rf *RandomForest) votes(sample []decimal.Decimal) []int {
	counts := make([]int, len(rf.Classes))
	for _, tree := range rf.Trees {
		prediction := tree.predictSample(sample, tree.Root)
		for k, class := range rf.Classes {
			if class == prediction {
				counts[k]++
				break
			}
		}
	}
	return counts
}

// Predict returns the majority vote of the trees; ties go to the lowest class.
func (rf *RandomForest) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range X {
		counts := rf.votes(sample)
		best := 0
		for k := 1; k < len(counts); k++ {
			if counts[k] > counts[best] {
				best = k
			}
		}
		predictions[i] = rf.Classes[best]
	}

	return predictions
}

// PredictProba returns the fraction of trees voting for each class, in
// GetClasses order.
func (rf *RandomForest) PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal {
	proba := make([][]decimal.Decimal, len(X))
	nTrees := decimal.NewFromInt(int64(len(rf.Trees)))

	for i, sample := range X {
		counts := rf.votes(sample)
		proba[i] = make([]decimal.Decimal, len(rf.Classes))
		for k, c := range counts {
			proba[i][k] = decimal.NewFromInt(int64(c)).Div(nTrees)
		}
	}

	return proba
}

// FeatureImportances averages the per-tree importances.
func (rf *RandomForest) FeatureImportances() []float64 {
	if len(rf.Trees) == 0 {
		return nil
	}
	total := make([]float64, rf.Trees[0].NFeatures)
	for _, tree := range rf.Trees {
		for j, v := range tree.FeatureImportances() {
			total[j] += v
		}
	}
	return normalize(total)
}

func (rf *RandomForest) GetClasses() []int {
	return rf.Classes
}

func (rf *RandomForest) Reset() {
	rf.Trees = nil
	rf.Classes = nil
}
