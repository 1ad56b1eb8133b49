package preprocessing

import (
	"fmt"
	"math"

	"github.com/Arya-f4/machine-learning-uts/internal/data"
)

// FamilyFeatures derives FamilySize = SibSp + Parch + 1 and IsAlone, which
// is 1 exactly when FamilySize is 1.
type FamilyFeatures struct {
	SibSp      string `msgpack:"sibsp"`
	Parch      string `msgpack:"parch"`
	FamilySize string `msgpack:"family_size"`
	IsAlone    string `msgpack:"is_alone"`
}

func (f FamilyFeatures) Apply(ds *data.Dataset) (*data.Dataset, error) {
	sibsp, err := ds.Floats(f.SibSp)
	if err != nil {
		return nil, err
	}
	parch, err := ds.Floats(f.Parch)
	if err != nil {
		return nil, err
	}

	size := make([]int, len(sibsp))
	alone := make([]int, len(sibsp))
	for i := range sibsp {
		if math.IsNaN(sibsp[i]) || math.IsNaN(parch[i]) {
			return nil, &data.ColumnError{
				Op:      "family features",
				Column:  f.SibSp + "+" + f.Parch,
				Message: fmt.Sprintf("missing value at row %d", i),
				Cause:   data.ErrMissingValues,
			}
		}
		size[i] = int(sibsp[i]) + int(parch[i]) + 1
		if size[i] == 1 {
			alone[i] = 1
		}
	}

	out, err := ds.WithInts(f.FamilySize, size)
	if err != nil {
		return nil, err
	}
	return out.WithInts(f.IsAlone, alone)
}

// DropColumns removes a fixed list of columns. A name that is not present is
// a schema error.
func DropColumns(ds *data.Dataset, names ...string) (*data.Dataset, error) {
	return ds.Drop(names...)
}
