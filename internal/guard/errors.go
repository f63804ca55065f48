package guard

import "errors"

var (
	// ErrMalformedCandidate is returned when a candidate breaks the advisor contract
	ErrMalformedCandidate = errors.New("malformed candidate")
	// ErrNoPriceHistory is returned when no analysis can be produced
	ErrNoPriceHistory = errors.New("analysis could not be produced: empty price history")
)
