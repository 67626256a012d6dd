package domain

import "errors"

var (
	// ErrUpstreamUnavailable covers timeouts, transport failures, 5xx and an open circuit.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedPayload means the upstream body could not be decoded.
	ErrMalformedPayload = errors.New("malformed upstream payload")
	// ErrNotFound means the upstream has no document for the id.
	ErrNotFound = errors.New("not found")
	// ErrPersistence wraps cache or ledger write failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidConfig is returned synchronously for usage mistakes such as a reversed date range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsTransient reports whether err is an upstream failure worth retrying next cycle.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrMalformedPayload) || errors.Is(err, ErrNotFound)
}
