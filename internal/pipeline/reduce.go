package pipeline

import (
	"context"

	"github.com/Arya-f4/machine-learning-uts/internal/plots"
	"github.com/Arya-f4/machine-learning-uts/internal/preprocessing"
)

type ReduceResult struct {
	Loaded
	Dropped    int
	Rows       int
	Features   []string
	Projection *preprocessing.Projection
	Labels     []int
	Plot       string
}

// Reduce label-encodes the text columns, drops incomplete rows, standardizes
// every feature and projects the result on the leading principal components.
func (r *Runner) Reduce(ctx context.Context) (*ReduceResult, error) {
	cols := r.Config.Columns
	log := r.Logger.With().Str("stage", "reduce").Logger()

	ds, loaded, err := r.load("reduce", r.Config.Paths.Input)
	if err != nil {
		return nil, err
	}
	res := &ReduceResult{Loaded: loaded}

	encoder := preprocessing.NewOrdinalEncoder(cols.Name, cols.Sex, cols.Ticket, cols.Cabin, cols.Embarked)
	if ds, err = encoder.FitTransform(ds); err != nil {
		return nil, err
	}
	if ds, res.Dropped, err = ds.DropIncomplete(); err != nil {
		return nil, err
	}
	res.Rows = ds.Len()
	log.Info().Int("dropped", res.Dropped).Int("rows", res.Rows).Msg("dropped incomplete rows")

	for _, name := range ds.Names() {
		if name != cols.Target {
			res.Features = append(res.Features, name)
		}
	}

	scaler := preprocessing.NewScaler(preprocessing.ScaleStandard, res.Features...)
	if ds, err = scaler.FitTransform(ds); err != nil {
		return nil, err
	}
	X, err := ds.FloatMatrix(res.Features)
	if err != nil {
		return nil, err
	}
	if res.Labels, err = ds.Labels(cols.Target); err != nil {
		return nil, err
	}

	if res.Projection, err = preprocessing.NewPCA(r.Config.PCA.Components).FitTransform(X); err != nil {
		return nil, err
	}
	log.Info().
		Floats64("explained_variance_ratio", res.Projection.Ratios).
		Float64("total", res.Projection.Total).
		Msg("principal components")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path := r.Config.Paths.PCAPlot; path != "" && r.Config.PCA.Components >= 2 {
		if err := plots.PCAScatter(res.Projection.Scores, res.Labels, SurvivalNames, res.Projection.Ratios, path); err != nil {
			return nil, err
		}
		res.Plot = path
		log.Info().Str("path", path).Msg("wrote pca plot")
	}
	return res, nil
}
