package httputil

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTimeout  = 30 * time.Second
	UserAgent       = "weatherdesk/1.0"
	RequestIDHeader = "X-Request-ID"
)

// NewClient returns an HTTP client with the given timeout (DefaultTimeout when
// zero) that stamps every request with a user agent and a fresh request ID.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: http.DefaultTransport},
	}
}

type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", UserAgent)
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(r)
}
