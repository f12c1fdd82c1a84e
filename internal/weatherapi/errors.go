package weatherapi

import (
	"errors"
	"fmt"
)

// NetworkErrorMessage is shown whenever no response was received.
const NetworkErrorMessage = "Network error: Could not connect to the server"

var (
	// ErrTransport matches every failure where the backend never answered.
	ErrTransport = errors.New("connection failed")

	ErrMissingID = errors.New("weather id is required")
)

// TransportError reports a request that produced no response at all
// (refused connection, DNS failure, timeout, open circuit breaker).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrTransport, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// APIError reports a non-2xx response. Detail holds the server's message when
// the body matched {"detail": string}; otherwise it is empty.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: unexpected status: %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Detail)
}

// DecodeError reports a successful status whose body could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Message converts err into the text a panel shows the user. Transport
// failures always get NetworkErrorMessage, API errors carrying a server
// detail get that detail verbatim, and everything else gets fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrTransport) {
		return NetworkErrorMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
