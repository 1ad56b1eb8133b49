package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects a feature matrix onto its leading principal components.
type PCA struct {
	Components int

	means   []float64
	vectors *mat.Dense
	ratios  []float64
}

// Projection is the outcome of a PCA fit: one row of scores per sample,
// the explained variance ratio per component in descending order and the
// sum of those ratios.
type Projection struct {
	Scores [][]float64
	Ratios []float64
	Total  float64
}

func NewPCA(components int) *PCA {
	return &PCA{Components: components}
}

func (p *PCA) Fit(X [][]float64) error {
	if p.Components < 1 {
		return fmt.Errorf("pca needs at least one component, got %d", p.Components)
	}
	if len(X) < 2 {
		return fmt.Errorf("pca needs at least 2 samples, got %d", len(X))
	}
	n, d := len(X), len(X[0])
	if limit := min(n, d); p.Components > limit {
		return fmt.Errorf("pca: %d components requested, at most %d available", p.Components, limit)
	}

	a := toDense(X)

	var pc stat.PC
	if ok := pc.PrincipalComponents(a, nil); !ok {
		return fmt.Errorf("pca: decomposition failed")
	}

	vars := pc.VarsTo(nil)
	total := 0.0
	for _, v := range vars {
		total += v
	}
	p.ratios = make([]float64, p.Components)
	for i := range p.ratios {
		if total > 0 && vars[i] > 0 {
			p.ratios[i] = vars[i] / total
		}
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	p.vectors = mat.DenseCopyOf(vectors.Slice(0, d, 0, p.Components))

	p.means = make([]float64, d)
	for j := range p.means {
		p.means[j] = stat.Mean(mat.Col(nil, j, a), nil)
	}
	return nil
}

// Transform centers X with the fitted means and returns the component scores.
func (p *PCA) Transform(X [][]float64) ([][]float64, error) {
	if p.vectors == nil {
		return nil, fmt.Errorf("pca: %w", ErrNotFitted)
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("pca: empty input")
	}
	if len(X[0]) != len(p.means) {
		return nil, fmt.Errorf("pca: fitted on %d features, got %d", len(p.means), len(X[0]))
	}

	centered := toDense(X)
	r, c := centered.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, centered.At(i, j)-p.means[j])
		}
	}

	var scores mat.Dense
	scores.Mul(centered, p.vectors)

	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, &scores)
	}
	return out, nil
}

func (p *PCA) FitTransform(X [][]float64) (*Projection, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	scores, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return &Projection{Scores: scores, Ratios: p.Ratios(), Total: p.TotalRatio()}, nil
}

// Ratios returns the explained variance ratio of each retained component.
func (p *PCA) Ratios() []float64 {
	return append([]float64(nil), p.ratios...)
}

func (p *PCA) TotalRatio() float64 {
	total := 0.0
	for _, r := range p.ratios {
		total += r
	}
	return total
}

func toDense(X [][]float64) *mat.Dense {
	n, d := len(X), len(X[0])
	flat := make([]float64, 0, n*d)
	for _, row := range X {
		flat = append(flat, row...)
	}
	return mat.NewDense(n, d, flat)
}
