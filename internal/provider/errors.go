package provider

import (
	"fmt"
	"net/http"
)

// FailureKind classifies a failed provider request.
type FailureKind int

const (
	// FailureTransient covers network errors and 5xx responses.
	FailureTransient FailureKind = iota
	// FailureRateLimited is an HTTP 429 from the provider.
	FailureRateLimited
	// FailureStatus is any other non-2xx response.
	FailureStatus
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureRateLimited:
		return "rate_limited"
	case FailureStatus:
		return "status"
	default:
		return "unknown"
	}
}

// RemoteFailure describes a request that did not yield a usable response.
type RemoteFailure struct {
	Kind       FailureKind
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

func (f *RemoteFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("coingecko %s %d on %s: %s", f.Kind, f.StatusCode, f.Endpoint, f.Message)
	}
	return fmt.Sprintf("coingecko %s on %s: %s", f.Kind, f.Endpoint, f.Message)
}

func (f *RemoteFailure) Unwrap() error {
	return f.Err
}

// Retryable reports whether the same request may succeed later.
func (f *RemoteFailure) Retryable() bool {
	return f.Kind == FailureTransient || f.Kind == FailureRateLimited
}

func statusFailure(endpoint string, status int, body string) *RemoteFailure {
	kind := FailureStatus
	switch {
	case status == http.StatusTooManyRequests:
		kind = FailureRateLimited
	case status >= 500:
		kind = FailureTransient
	}
	return &RemoteFailure{
		Kind:       kind,
		StatusCode: status,
		Message:    truncate(body, 256),
		Endpoint:   endpoint,
	}
}

func transportFailure(endpoint string, err error) *RemoteFailure {
	return &RemoteFailure{
		Kind:     FailureTransient,
		Message:  err.Error(),
		Endpoint: endpoint,
		Err:      err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
