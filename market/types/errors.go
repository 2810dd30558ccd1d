package types

import "errors"

// Tagged failure outcomes exposed to the transport layer.
// ErrFetchFailed wraps transport and parse faults after they are
// logged; the remaining three are expected business outcomes
var (
	ErrUnresolvedSymbol   = errors.New("unresolved symbol")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrInsufficientOffers = errors.New("insufficient offers")
	ErrRateUnavailable    = errors.New("rate unavailable")
)

// FailureTag maps a failure outcome to its wire tag, or "" for
// errors outside the taxonomy
func FailureTag(err error) string {
	switch {
	case errors.Is(err, ErrUnresolvedSymbol):
		return "unresolved-symbol"
	case errors.Is(err, ErrFetchFailed):
		return "fetch-failed"
	case errors.Is(err, ErrInsufficientOffers):
		return "insufficient-offers"
	case errors.Is(err, ErrRateUnavailable):
		return "rate-unavailable"
	default:
		return ""
	}
}
