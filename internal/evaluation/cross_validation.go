package evaluation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/Arya-f4/machine-learning-uts/internal/models"
	"github.com/Arya-f4/machine-learning-uts/internal/resample"
)

// CrossValidator scores a model with stratified k-fold cross-validation.
// When Oversample is set the training side of every fold is balanced with a
// RandomOverSampler; held-out folds are never resampled.
type CrossValidator struct {
	NFolds     int
	RandomSeed int64
	MaxWorkers int
	Oversample bool
}

type CVResult struct {
	Scores []float64
	Mean   float64
	Std    float64
}

func NewCrossValidator(nFolds int, seed int64) *CrossValidator {
	return &CrossValidator{
		NFolds:     nFolds,
		RandomSeed: seed,
		MaxWorkers: 4,
		Oversample: true,
	}
}

// CrossValidate fits a fresh clone of model on each fold, in parallel, and
// returns the per-fold accuracy with its mean and sample standard deviation.
func (cv *CrossValidator) CrossValidate(ctx context.Context, X [][]decimal.Decimal, y []int, model models.Model) (*CVResult, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("x and y must have the same length")
	}

	folds, err := StratifiedKFold(y, cv.NFolds, cv.RandomSeed)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(folds))

	g, ctx := errgroup.WithContext(ctx)
	if cv.MaxWorkers > 0 {
		g.SetLimit(cv.MaxWorkers)
	}
	for i, testIndices := range folds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := cv.evaluateFold(X, y, model, testIndices, int64(i))
			if err != nil {
				return fmt.Errorf("fold %d failed: %w", i, err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &CVResult{Scores: scores}
	result.Mean, result.Std = stat.MeanStdDev(scores, nil)
	return result, nil
}

func (cv *CrossValidator) evaluateFold(
	X [][]decimal.Decimal,
	y []int,
	model models.Model,
	testIndices []int,
	fold int64,
) (float64, error) {
	testSet := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	trainIndices := make([]int, 0, len(X)-len(testIndices))
	for i := 0; i < len(X); i++ {
		if !testSet[i] {
			trainIndices = append(trainIndices, i)
		}
	}

	XTrain, yTrain := Take(X, y, trainIndices)
	XTest, yTest := Take(X, y, testIndices)

	if cv.Oversample {
		var err error
		XTrain, yTrain, err = resample.NewRandomOverSampler(cv.RandomSeed+fold).Resample(XTrain, yTrain)
		if err != nil {
			return 0, err
		}
	}

	foldModel, err := models.Clone(model)
	if err != nil {
		return 0, err
	}
	if err := foldModel.Fit(XTrain, yTrain); err != nil {
		return 0, err
	}

	predictions := foldModel.Predict(XTest)

	correct := 0
	for i, pred := range predictions {
		if pred == yTest[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(yTest)), nil
}
