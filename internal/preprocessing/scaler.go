package preprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

const (
	ScaleMinMax   = "minmax"
	ScaleStandard = "standard"
	ScaleRaw      = "raw"
)

// divPrecision keeps enough decimal places that rescaling an already scaled
// column reproduces the same float64 values.
const divPrecision = 40

// Scaler rescales named numeric columns in place. Parameters are fitted per
// column in decimal arithmetic; columns not listed pass through untouched.
type Scaler struct {
	ScaleType   string            `msgpack:"scale_type"`
	Columns     []string          `msgpack:"columns"`
	IsFitted    bool              `msgpack:"fitted"`
	FeatureMin  []decimal.Decimal `msgpack:"min"`
	FeatureMax  []decimal.Decimal `msgpack:"max"`
	FeatureMean []decimal.Decimal `msgpack:"mean"`
	FeatureStd  []decimal.Decimal `msgpack:"std"`
}

func NewScaler(scaleType string, columns ...string) *Scaler {
	return &Scaler{
		ScaleType: scaleType,
		Columns:   columns,
	}
}

func (s *Scaler) kind() (string, error) {
	switch s.ScaleType {
	case "minmax", "normalized":
		return ScaleMinMax, nil
	case "standard", "standardized":
		return ScaleStandard, nil
	case "raw", "none":
		return ScaleRaw, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownScaleType, s.ScaleType)
	}
}

func (s *Scaler) Fit(ds *data.Dataset) error {
	X, err := ds.Matrix(s.Columns)
	if err != nil {
		return fmt.Errorf("scaler fit: %w", err)
	}
	return s.FitMatrix(X)
}

// FitMatrix fits on a row-major matrix whose columns line up with Columns.
func (s *Scaler) FitMatrix(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return fmt.Errorf("empty dataset")
	}
	kind, err := s.kind()
	if err != nil {
		return err
	}

	nFeatures := len(X[0])
	s.FeatureMin = make([]decimal.Decimal, nFeatures)
	s.FeatureMax = make([]decimal.Decimal, nFeatures)
	s.FeatureMean = make([]decimal.Decimal, nFeatures)
	s.FeatureStd = make([]decimal.Decimal, nFeatures)

	switch kind {
	case ScaleMinMax:
		s.fitMinMax(X)
	case ScaleStandard:
		s.fitStandard(X)
	}

	s.IsFitted = true
	return nil
}

// Transform returns ds with every fitted column replaced by its scaled
// float values, keeping column order and row identity.
func (s *Scaler) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler: %w", ErrNotFitted)
	}
	X, err := ds.Matrix(s.Columns)
	if err != nil {
		return nil, fmt.Errorf("scaler transform: %w", err)
	}
	scaled, err := s.TransformMatrix(X)
	if err != nil {
		return nil, err
	}

	out := ds
	for j, column := range s.Columns {
		values := make([]float64, len(scaled))
		for i := range scaled {
			values[i] = scaled[i][j].InexactFloat64()
		}
		if out, err = out.WithFloats(column, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Scaler) FitTransform(ds *data.Dataset) (*data.Dataset, error) {
	if err := s.Fit(ds); err != nil {
		return nil, err
	}
	return s.Transform(ds)
}

func (s *Scaler) TransformMatrix(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler: %w", ErrNotFitted)
	}
	kind, err := s.kind()
	if err != nil {
		return nil, err
	}

	result := make([][]decimal.Decimal, len(X))
	for i := range X {
		if len(X[i]) != len(s.FeatureMin) {
			return nil, fmt.Errorf("row %d has %d features, scaler was fitted on %d", i, len(X[i]), len(s.FeatureMin))
		}
		result[i] = make([]decimal.Decimal, len(X[i]))
		for j := range X[i] {
			switch kind {
			case ScaleMinMax:
				result[i][j] = s.transformMinMax(X[i][j], j)
			case ScaleStandard:
				result[i][j] = s.transformStandard(X[i][j], j)
			default:
				result[i][j] = X[i][j]
			}
		}
	}

	return result, nil
}

func (s *Scaler) fitMinMax(X [][]decimal.Decimal) {
	nFeatures := len(X[0])

	for j := 0; j < nFeatures; j++ {
		s.FeatureMin[j] = X[0][j]
		s.FeatureMax[j] = X[0][j]

		for i := 1; i < len(X); i++ {
			if X[i][j].LessThan(s.FeatureMin[j]) {
				s.FeatureMin[j] = X[i][j]
			}
			if X[i][j].GreaterThan(s.FeatureMax[j]) {
				s.FeatureMax[j] = X[i][j]
			}
		}
	}
}

// fitStandard uses the population standard deviation. A constant column gets
// std 1 so it maps to 0.
func (s *Scaler) fitStandard(X [][]decimal.Decimal) {
	nFeatures := len(X[0])
	nSamples := decimal.NewFromInt(int64(len(X)))

	for j := 0; j < nFeatures; j++ {
		sum := decimal.Zero
		for i := 0; i < len(X); i++ {
			sum = sum.Add(X[i][j])
		}
		s.FeatureMean[j] = sum.DivRound(nSamples, divPrecision)
	}

	for j := 0; j < nFeatures; j++ {
		variance := decimal.Zero
		for i := 0; i < len(X); i++ {
			diff := X[i][j].Sub(s.FeatureMean[j])
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(nSamples)

		varFloat, _ := variance.Float64()
		s.FeatureStd[j] = decimal.NewFromFloat(math.Sqrt(varFloat))

		if s.FeatureStd[j].IsZero() {
			s.FeatureStd[j] = decimal.NewFromInt(1)
		}
	}
}

func (s *Scaler) transformMinMax(value decimal.Decimal, featureIndex int) decimal.Decimal {
	span := s.FeatureMax[featureIndex].Sub(s.FeatureMin[featureIndex])
	if span.IsZero() {
		return decimal.Zero
	}
	return value.Sub(s.FeatureMin[featureIndex]).DivRound(span, divPrecision)
}

func (s *Scaler) transformStandard(value decimal.Decimal, featureIndex int) decimal.Decimal {
	return value.Sub(s.FeatureMean[featureIndex]).DivRound(s.FeatureStd[featureIndex], divPrecision)
}
