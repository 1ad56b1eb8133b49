// Package pipeline runs the clean, normalize, reduce, train and predict
// workflows. Runner methods never print; they log through zerolog and
// return result structs for the console layer to render.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Arya-f4/machine-learning-uts/internal/config"
	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
)

// SurvivalNames labels the two target classes.
var SurvivalNames = map[int]string{0: "Not Survived", 1: "Survived"}

type Runner struct {
	Config config.Config
	Logger zerolog.Logger
}

func NewRunner(cfg config.Config, logger zerolog.Logger) *Runner {
	return &Runner{Config: cfg, Logger: logger}
}

// Loaded is a dataset read from disk after the target policy was applied.
type Loaded struct {
	Source         data.Source
	DroppedTargets int
}

// load reads path and applies the target policy.
func (r *Runner) load(stage, path string) (*data.Dataset, Loaded, error) {
	log := r.Logger.With().Str("stage", stage).Logger()

	ds, src, err := data.Load(path)
	if err != nil {
		return nil, Loaded{Source: src}, err
	}
	log.Info().
		Str("path", src.Path).
		Int("rows", src.Rows).
		Int("columns", src.Columns).
		Str("fingerprint", src.FingerprintHex()).
		Msg("loaded dataset")

	ds, dropped, err := r.applyTargetPolicy(ds)
	if err != nil {
		return nil, Loaded{Source: src}, err
	}
	if dropped > 0 {
		log.Warn().Str("column", r.Config.Columns.Target).Int("rows", dropped).Msg("dropped rows without a target")
	}
	return ds, Loaded{Source: src, DroppedTargets: dropped}, nil
}

func (r *Runner) applyTargetPolicy(ds *data.Dataset) (*data.Dataset, int, error) {
	target := r.Config.Columns.Target
	switch r.Config.TargetPolicy {
	case config.TargetPolicyRequire:
		missing, err := ds.Missing(target)
		if err != nil {
			return nil, 0, err
		}
		n := 0
		for _, m := range missing {
			if m {
				n++
			}
		}
		if n > 0 {
			return nil, 0, data.NewMissingValuesError("target policy", target, n)
		}
		return ds, 0, nil
	default:
		return ds.DropMissing(target)
	}
}

// writeTable writes ds as CSV to path and, when enabled, as parquet next to
// it. It returns the parquet path or "".
func (r *Runner) writeTable(stage string, ds *data.Dataset, path string) (string, error) {
	if err := ds.WriteCSV(path); err != nil {
		return "", err
	}
	r.Logger.Info().Str("stage", stage).Str("path", path).Int("rows", ds.Len()).Msg("wrote csv")

	if !r.Config.Paths.Parquet {
		return "", nil
	}
	pq := strings.TrimSuffix(path, filepath.Ext(path)) + ".parquet"
	if err := ds.WriteParquet(pq); err != nil {
		return "", err
	}
	r.Logger.Info().Str("stage", stage).Str("path", pq).Msg("wrote parquet")
	return pq, nil
}

type CleanResult struct {
	Loaded
	MissingBefore  []data.ColumnCount
	MissingAfter   []data.ColumnCount
	AgeMedian      float64
	AgeFilled      int
	EmbarkedMode   string
	EmbarkedFilled int
	Output         string
	Parquet        string
	Dataset        *data.Dataset
}

// Clean fills Age with its median and Embarked with its mode, drops Cabin
// and writes the cleaned table.
func (r *Runner) Clean(ctx context.Context) (*CleanResult, error) {
	cols := r.Config.Columns
	ds, loaded, err := r.load("clean", r.Config.Paths.Input)
	if err != nil {
		return nil, err
	}
	res := &CleanResult{Loaded: loaded, MissingBefore: ds.MissingCounts()}

	age := preprocessing.NewMedianImputer(cols.Age)
	if ds, res.AgeFilled, err = age.FitTransform(ds); err != nil {
		return nil, err
	}
	res.AgeMedian = age.Value
	r.Logger.Info().Str("stage", "clean").Str("column", cols.Age).Float64("median", age.Value).Int("filled", res.AgeFilled).Msg("imputed missing values")

	port := preprocessing.NewModeImputer(cols.Embarked)
	if ds, res.EmbarkedFilled, err = port.FitTransform(ds); err != nil {
		return nil, err
	}
	res.EmbarkedMode = port.Value
	r.Logger.Info().Str("stage", "clean").Str("column", cols.Embarked).Str("mode", port.Value).Int("filled", res.EmbarkedFilled).Msg("imputed missing values")

	if ds, err = preprocessing.DropColumns(ds, cols.Cabin); err != nil {
		return nil, err
	}
	res.MissingAfter = ds.MissingCounts()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Output = r.Config.Paths.Cleaned
	if res.Parquet, err = r.writeTable("clean", ds, res.Output); err != nil {
		return nil, err
	}
	res.Dataset = ds
	return res, nil
}

type NormalizeResult struct {
	Loaded
	Filled  map[string]int
	Columns []string
	Output  string
	Parquet string
	Dataset *data.Dataset
}

// Normalize reads the cleaned table, fills numeric gaps with medians and
// min-max scales every numeric column except the id and the target.
func (r *Runner) Normalize(ctx context.Context) (*NormalizeResult, error) {
	cols := r.Config.Columns
	ds, loaded, err := r.load("normalize", r.Config.Paths.Cleaned)
	if err != nil {
		return nil, err
	}
	res := &NormalizeResult{Loaded: loaded, Filled: make(map[string]int)}

	res.Columns = ds.NumericColumns(cols.ID, cols.Target)
	for _, name := range res.Columns {
		imp := preprocessing.NewMedianImputer(name)
		var filled int
		if ds, filled, err = imp.FitTransform(ds); err != nil {
			return nil, err
		}
		if filled > 0 {
			res.Filled[name] = filled
			r.Logger.Info().Str("stage", "normalize").Str("column", name).Float64("median", imp.Value).Int("filled", filled).Msg("imputed missing values")
		}
	}

	if len(res.Columns) > 0 {
		scaler := preprocessing.NewScaler(preprocessing.ScaleMinMax, res.Columns...)
		if ds, err = scaler.FitTransform(ds); err != nil {
			return nil, err
		}
	}
	r.Logger.Info().Str("stage", "normalize").Strs("columns", res.Columns).Msg("min-max scaled")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Output = r.Config.Paths.Normalized
	if res.Parquet, err = r.writeTable("normalize", ds, res.Output); err != nil {
		return nil, err
	}
	res.Dataset = ds
	return res, nil
}

type RunResult struct {
	Clean     *CleanResult
	Normalize *NormalizeResult
	Reduce    *ReduceResult
	Train     *TrainResult
}

// Run executes clean, normalize, reduce and train in order and stops at the
// first failure.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	res := &RunResult{}
	var err error
	if res.Clean, err = r.Clean(ctx); err != nil {
		return res, fmt.Errorf("clean: %w", err)
	}
	if res.Normalize, err = r.Normalize(ctx); err != nil {
		return res, fmt.Errorf("normalize: %w", err)
	}
	if res.Reduce, err = r.Reduce(ctx); err != nil {
		return res, fmt.Errorf("reduce: %w", err)
	}
	if res.Train, err = r.Train(ctx); err != nil {
		return res, fmt.Errorf("train: %w", err)
	}
	return res, nil
}
