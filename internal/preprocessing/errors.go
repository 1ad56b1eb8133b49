package preprocessing

import "errors"

var (
	ErrNotFitted = errors.New("transformer must be fitted before transform")
	// ErrUnknownCategory is returned when a one-hot encoder meets a value it
	// did not see during Fit.
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownScaleType = errors.New("unknown scale type")
)
