package preprocessing

import (
	"fmt"
	"slices"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

// Preprocessor is the training-time chain: median and mode imputation,
// family features, a fixed drop list and one-hot encoding. Fit records the
// resulting feature columns so a restored Preprocessor produces the same
// layout on new data.
type Preprocessor struct {
	Medians  []*MedianImputer
	Modes    []*ModeImputer
	Family   *FamilyFeatures
	Drop     []string
	OneHot   *OneHotEncoder
	Exclude  []string
	Features []string
}

// Fit fits every step on ds in order and returns the transformed dataset.
func (p *Preprocessor) Fit(ds *data.Dataset) (*data.Dataset, error) {
	out := ds
	var err error

	for _, imp := range p.Medians {
		if out, _, err = imp.FitTransform(out); err != nil {
			return nil, err
		}
	}
	for _, imp := range p.Modes {
		if out, _, err = imp.FitTransform(out); err != nil {
			return nil, err
		}
	}
	if out, err = p.structural(out); err != nil {
		return nil, err
	}
	if p.OneHot != nil {
		if out, err = p.OneHot.FitTransform(out); err != nil {
			return nil, err
		}
	}

	p.Features = p.Features[:0]
	for _, name := range out.Names() {
		if !slices.Contains(p.Exclude, name) {
			p.Features = append(p.Features, name)
		}
	}
	return out, nil
}

func (p *Preprocessor) structural(ds *data.Dataset) (*data.Dataset, error) {
	out := ds
	var err error
	if p.Family != nil {
		if out, err = p.Family.Apply(out); err != nil {
			return nil, err
		}
	}
	if out, err = DropColumns(out, p.Drop...); err != nil {
		return nil, err
	}
	return out, nil
}

// Transform applies the fitted chain to ds. Every fitted feature column must
// be present in the result.
func (p *Preprocessor) Transform(ds *data.Dataset) (*data.Dataset, error) {
	if len(p.Features) == 0 {
		return nil, fmt.Errorf("preprocessor: %w", ErrNotFitted)
	}

	out := ds
	var err error
	for _, imp := range p.Medians {
		if out, _, err = imp.Transform(out); err != nil {
			return nil, err
		}
	}
	for _, imp := range p.Modes {
		if out, _, err = imp.Transform(out); err != nil {
			return nil, err
		}
	}
	if out, err = p.structural(out); err != nil {
		return nil, err
	}
	if p.OneHot != nil {
		if out, err = p.OneHot.Transform(out); err != nil {
			return nil, err
		}
	}

	for _, name := range p.Features {
		if !out.Has(name) {
			return nil, data.NewColumnNotFoundError("preprocess", name)
		}
	}
	return out, nil
}

// State returns a serializable snapshot of the fitted chain.
func (p *Preprocessor) State() State {
	state := State{
		Version:  StateVersion,
		Drop:     slices.Clone(p.Drop),
		Exclude:  slices.Clone(p.Exclude),
		Features: slices.Clone(p.Features),
		OneHot:   p.OneHot,
	}
	for _, imp := range p.Medians {
		state.Medians = append(state.Medians, *imp)
	}
	for _, imp := range p.Modes {
		state.Modes = append(state.Modes, *imp)
	}
	if p.Family != nil {
		family := *p.Family
		state.Family = &family
	}
	return state
}

// Restore rebuilds a fitted Preprocessor from a snapshot.
func Restore(state State) (*Preprocessor, error) {
	if state.Version != StateVersion {
		return nil, fmt.Errorf("preprocessing state version %d, expected %d", state.Version, StateVersion)
	}
	if len(state.Features) == 0 {
		return nil, fmt.Errorf("preprocessing state has no features: %w", ErrNotFitted)
	}

	p := &Preprocessor{
		Family:   state.Family,
		Drop:     state.Drop,
		OneHot:   state.OneHot,
		Exclude:  state.Exclude,
		Features: state.Features,
	}
	for i := range state.Medians {
		imp := state.Medians[i]
		p.Medians = append(p.Medians, &imp)
	}
	for i := range state.Modes {
		imp := state.Modes[i]
		p.Modes = append(p.Modes, &imp)
	}
	return p, nil
}
