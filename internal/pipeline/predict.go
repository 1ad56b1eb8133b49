package pipeline

import (
	"context"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
	"github.com/Arya-f4/machine-learning-uts/internal/persistence"
)

type PredictResult struct {
	Source      data.Source
	ModelPath   string
	Bundle      *persistence.ModelBundle
	IDs         []string
	Predictions []int
	// Probabilities holds one row per passenger in the order of Classes.
	Probabilities [][]float64
	Classes       []int
	Output        string
}

// Predict applies the bundle saved by Train to the passengers in input. The
// target column is not required. When output is set the predictions are
// written as an id,target CSV.
func (r *Runner) Predict(ctx context.Context, input, modelPath, output string) (*PredictResult, error) {
	cols := r.Config.Columns
	log := r.Logger.With().Str("stage", "predict").Logger()

	ds, src, err := data.Load(input)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", src.Path).Int("rows", src.Rows).Str("fingerprint", src.FingerprintHex()).Msg("loaded dataset")

	bundle, err := persistence.LoadModelBundle(modelPath)
	if err != nil {
		return nil, err
	}
	pre, err := bundle.Preprocessor()
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("model", bundle.Metadata.ModelName).
		Str("trained_on", bundle.Metadata.Fingerprint).
		Msg("loaded model bundle")

	res := &PredictResult{Source: src, ModelPath: modelPath, Bundle: bundle, Classes: bundle.Model.GetClasses()}
	if res.IDs, _, err = ds.Strings(cols.ID); err != nil {
		return nil, err
	}
	ids, err := ds.Select(cols.ID)
	if err != nil {
		return nil, err
	}

	if ds, err = pre.Transform(ds); err != nil {
		return nil, err
	}
	X, err := ds.Matrix(pre.Features)
	if err != nil {
		return nil, err
	}

	res.Predictions = bundle.Model.Predict(X)
	for _, row := range bundle.Model.PredictProba(X) {
		p := make([]float64, len(row))
		for j, v := range row {
			p[j] = v.InexactFloat64()
		}
		res.Probabilities = append(res.Probabilities, p)
	}
	log.Info().Int("rows", len(res.Predictions)).Msg("predicted")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if output != "" {
		out, err := ids.WithInts(cols.Target, res.Predictions)
		if err != nil {
			return nil, err
		}
		if _, err := r.writeTable("predict", out, output); err != nil {
			return nil, err
		}
		res.Output = output
	}
	return res, nil
}
