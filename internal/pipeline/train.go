package pipeline

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/evaluation"
	"github.com/Arya-f4/machine-learning-uts/internal/models"
	"github.com/Arya-f4/machine-learning-uts/internal/persistence"
	"github.com/Arya-f4/machine-learning-uts/internal/plots"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
	"github.com/Arya-f4/machine-learning-uts/internal/resample"
)

type TrainResult struct {
	Loaded
	// Summary profiles every raw column before preprocessing.
	Summary     []data.ColumnSummary
	Missing     []data.ColumnCount
	Features    []string
	TrainCounts map[int]int
	// BalancedCounts are the training class counts after oversampling.
	BalancedCounts map[int]int
	TestCounts     map[int]int
	Metrics        *evaluation.ClassificationMetrics
	CV             *evaluation.CVResult
	Importances    []float64
	TrainingTime   time.Duration
	EDAPlot        string
	ConfusionPlot  string
	StatePath      string
	ModelPath      string
}

// Preprocessor returns the unfitted training chain for the configured
// columns.
func (r *Runner) Preprocessor() *preprocessing.Preprocessor {
	cols := r.Config.Columns
	return &preprocessing.Preprocessor{
		Medians: []*preprocessing.MedianImputer{
			preprocessing.NewMedianImputer(cols.Age),
			preprocessing.NewMedianImputer(cols.Fare),
		},
		Modes: []*preprocessing.ModeImputer{
			preprocessing.NewModeImputer(cols.Embarked),
		},
		Family: &preprocessing.FamilyFeatures{
			SibSp:      cols.SibSp,
			Parch:      cols.Parch,
			FamilySize: cols.FamilySize,
			IsAlone:    cols.IsAlone,
		},
		Drop:    []string{cols.Cabin, cols.Ticket, cols.Name, cols.ID, cols.SibSp, cols.Parch},
		OneHot:  preprocessing.NewOneHotEncoder(true, cols.Sex, cols.Embarked),
		Exclude: []string{cols.Target},
	}
}

func (r *Runner) modelConfig() models.ModelConfig {
	f := r.Config.Forest
	mc := models.DefaultConfig("forest")
	mc.NTrees = f.NTrees
	mc.MaxDepth = f.MaxDepth
	mc.MinSplit = f.MinSamplesSplit
	mc.Seed = f.Seed
	if f.ClassWeight != "" {
		mc.ClassWeight = f.ClassWeight
	}
	if f.Workers > 0 {
		mc.Workers = f.Workers
	}
	return mc
}

// Train profiles the raw table, fits the preprocessing chain, splits with
// stratification, oversamples the training part and fits a random forest
// scored on the untouched test part.
func (r *Runner) Train(ctx context.Context) (*TrainResult, error) {
	cols := r.Config.Columns
	paths := r.Config.Paths
	log := r.Logger.With().Str("stage", "train").Logger()

	ds, loaded, err := r.load("train", paths.Input)
	if err != nil {
		return nil, err
	}
	validator := data.NewDataValidator()
	res := &TrainResult{Loaded: loaded, Summary: validator.Describe(ds), Missing: ds.MissingCounts()}
	for _, c := range res.Missing {
		if c.Count > 0 {
			log.Info().Str("column", c.Name).Int("missing", c.Count).Msg("missing values")
		}
	}

	if paths.EDAPlot != "" {
		edaCols := plots.EDAColumns{Target: cols.Target, Sex: cols.Sex, Pclass: cols.Pclass, Age: cols.Age}
		if err := plots.EDA(ds, edaCols, SurvivalNames, paths.EDAPlot); err != nil {
			return nil, err
		}
		res.EDAPlot = paths.EDAPlot
		log.Info().Str("path", paths.EDAPlot).Msg("wrote eda plot")
	}

	pre := r.Preprocessor()
	if ds, err = pre.Fit(ds); err != nil {
		return nil, err
	}
	res.Features = pre.Features
	log.Info().Strs("features", pre.Features).Msg("preprocessed")

	X, err := ds.Matrix(pre.Features)
	if err != nil {
		return nil, err
	}
	y, err := ds.Labels(cols.Target)
	if err != nil {
		return nil, err
	}

	if err := validator.ValidateDataset(X, y); err != nil {
		return nil, err
	}
	if err := validator.ValidateLabels(y); err != nil {
		return nil, err
	}

	splitter := evaluation.NewTrainTestSplitter(r.Config.Split.TestSize, r.Config.Split.Seed, true)
	XTrain, XTest, yTrain, yTest, err := splitter.StratifiedSplit(X, y)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateTrainTestSplit(XTrain, XTest, yTrain, yTest); err != nil {
		return nil, err
	}
	res.TrainCounts = resample.Counts(yTrain)
	res.TestCounts = resample.Counts(yTest)

	XBal, yBal, err := resample.NewRandomOverSampler(r.Config.Balance.Seed).Resample(XTrain, yTrain)
	if err != nil {
		return nil, err
	}
	res.BalancedCounts = resample.Counts(yBal)
	log.Info().
		Interface("before", res.TrainCounts).
		Interface("after", res.BalancedCounts).
		Msg("oversampled training partition")

	model, err := models.CreateModel(r.modelConfig())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := model.Fit(XBal, yBal); err != nil {
		return nil, err
	}
	res.TrainingTime = time.Since(start)
	if forest, ok := model.(*models.RandomForest); ok {
		res.Importances = forest.FeatureImportances()
	}
	log.Info().Dur("elapsed", res.TrainingTime).Int("rows", len(yBal)).Msg("fitted model")

	if res.Metrics, err = r.score(model, XTest, yTest, models.ExtractClasses(y)); err != nil {
		return nil, err
	}
	log.Info().
		Float64("accuracy", res.Metrics.Accuracy).
		Float64("macro_f1", res.Metrics.MacroF1).
		Msg("evaluated on test partition")

	if paths.ConfusionPlot != "" {
		labels := evaluation.ClassNames(res.Metrics.Classes, SurvivalNames)
		if err := plots.ConfusionHeatmap(res.Metrics.ConfusionMatrix, labels, paths.ConfusionPlot); err != nil {
			return nil, err
		}
		res.ConfusionPlot = paths.ConfusionPlot
	}

	if r.Config.CVFolds >= 2 {
		cv := evaluation.NewCrossValidator(r.Config.CVFolds, r.Config.Balance.Seed)
		cv.MaxWorkers = r.Config.Forest.Workers
		if res.CV, err = cv.CrossValidate(ctx, XTrain, yTrain, model); err != nil {
			return nil, err
		}
		log.Info().Floats64("scores", res.CV.Scores).Float64("mean", res.CV.Mean).Float64("std", res.CV.Std).Msg("cross-validated")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := pre.State()
	state.Fingerprint = loaded.Source.FingerprintHex()
	if paths.State != "" {
		if err := preprocessing.SaveState(paths.State, state); err != nil {
			return nil, err
		}
		res.StatePath = paths.State
	}
	if paths.Model != "" {
		bundle, err := persistence.NewModelBundle(model, state)
		if err != nil {
			return nil, err
		}
		bundle.Metadata.Dataset = loaded.Source.Path
		bundle.Metadata.Metrics = res.Metrics
		bundle.Metadata.TrainingTime = res.TrainingTime
		if err := bundle.Save(paths.Model); err != nil {
			return nil, err
		}
		res.ModelPath = paths.Model
		log.Info().Str("path", paths.Model).Msg("saved model bundle")
	}
	return res, nil
}

func (r *Runner) score(model models.Model, X [][]decimal.Decimal, y, classes []int) (*evaluation.ClassificationMetrics, error) {
	return evaluation.CalculateMetrics(y, model.Predict(X), classes)
}
