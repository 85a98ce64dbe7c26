package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type ProviderErrorKind string

const (
	ProviderErrTimeout     ProviderErrorKind = "timeout"
	ProviderErrRateLimited ProviderErrorKind = "rate_limited"
	ProviderErrMalformed   ProviderErrorKind = "malformed"
	ProviderErrHTTP        ProviderErrorKind = "http"
)

// ProviderError is the single failure type callers see from the client.
// Timeout and rate-limit kinds are transient; malformed output is permanent.
type ProviderError struct {
	Kind       ProviderErrorKind
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s): %v", e.Kind, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Transient() bool {
	return e.Kind == ProviderErrTimeout || e.Kind == ProviderErrRateLimited
}

// IsMalformed reports whether err is a permanent malformed-output failure.
func IsMalformed(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == ProviderErrMalformed
	}
	return false
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &ProviderError{Kind: ProviderErrTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ProviderError{Kind: ProviderErrTimeout, Op: op, Err: err}
	}

	var he *openAIHTTPError
	if errors.As(err, &he) {
		switch {
		case he.StatusCode == 429:
			return &ProviderError{Kind: ProviderErrRateLimited, Op: op, StatusCode: he.StatusCode, Err: err}
		case he.StatusCode == 408:
			return &ProviderError{Kind: ProviderErrTimeout, Op: op, StatusCode: he.StatusCode, Err: err}
		default:
			return &ProviderError{Kind: ProviderErrHTTP, Op: op, StatusCode: he.StatusCode, Err: err}
		}
	}

	return &ProviderError{Kind: ProviderErrHTTP, Op: op, Err: err}
}
