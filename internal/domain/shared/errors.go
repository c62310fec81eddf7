package shared

import "errors"

// Error categories surfaced at the HTTP edge. Callers wrap them with fmt.Errorf("%w: ...")
// and classify with errors.Is.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
	ErrIdentityMismatch    = errors.New("identity mismatch")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("not found")
	ErrConfiguration       = errors.New("configuration error")
)

// ErrUpstreamTimeout is an upstream failure caused by the call deadline. It matches
// ErrUpstreamUnavailable as well, and is reported to clients as retryable.
var ErrUpstreamTimeout error = upstreamTimeout{}

type upstreamTimeout struct{}

func (upstreamTimeout) Error() string { return "upstream timeout" }

func (upstreamTimeout) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// UpstreamError carries the provider's own message so it can be echoed to the caller
type UpstreamError struct {
	Provider string
	Message  string
	Err      error // ErrUpstreamUnavailable or ErrUpstreamTimeout
}

func (e *UpstreamError) Error() string {
	return e.Provider + ": " + e.Err.Error() + ": " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UpstreamMessage extracts the provider message from err, if any
func UpstreamMessage(err error) string {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Message
	}
	return ""
}
