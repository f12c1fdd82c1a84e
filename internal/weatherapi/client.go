package weatherapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/lox/weatherdesk/internal/httputil"
	"github.com/lox/weatherdesk/internal/metrics"
	"github.com/lox/weatherdesk/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	// Error bodies and records are small; anything beyond this is not ours.
	maxBodyBytes = 1 << 20
)

// Endpoint names used for logging and metric labels.
const (
	EndpointHistory = "history"
	EndpointGet     = "get_weather"
	EndpointSubmit  = "submit_weather"
)

// Client talks to the weather records backend. It never retries: each call
// issues at most one HTTP request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	validate   *validator.Validate
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithCircuitBreaker stops sending requests after the given number of
// consecutive transport failures, for the cooldown period. Server error
// responses do not count: the backend answered.
func WithCircuitBreaker(failures uint32, cooldown time.Duration) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "weather-backend",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: httputil.NewClient(httputil.DefaultTimeout),
		baseURL:    strings.TrimRight(baseURL, "/"),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListHistory returns submitted (city, id) pairs in server order, oldest first.
func (c *Client) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := c.do(ctx, EndpointHistory, http.MethodGet, "/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get fetches a single record by its backend-assigned id.
func (c *Client) Get(ctx context.Context, id string) (*models.WeatherRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	var rec models.WeatherRecord
	if err := c.do(ctx, EndpointGet, http.MethodGet, "/weather/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Submit posts a new weather request and returns the id the backend assigned.
func (c *Client) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error) {
	var resp models.SubmitResponse
	if err := c.do(ctx, EndpointSubmit, http.MethodPost, "/weather", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body, out any) error {
	start := time.Now()
	defer func() {
		metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.APICallsTotal.WithLabelValues(endpoint, metrics.OutcomeCancelled).Inc()
			return fmt.Errorf("%s: %w", endpoint, ctxErr)
		}
		outcome := metrics.OutcomeTransport
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = metrics.OutcomeBreakerOpen
		}
		metrics.APICallsTotal.WithLabelValues(endpoint, outcome).Inc()
		c.logger.Debug("request failed", "endpoint", endpoint, "url", req.URL.String(), "error", err)
		return &TransportError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.APICallsTotal.WithLabelValues(endpoint, metrics.OutcomeAPIError).Inc()
		apiErr := &APIError{Op: endpoint, StatusCode: resp.StatusCode}
		if readErr == nil {
			apiErr.Detail = c.parseDetail(data)
		}
		c.logger.Debug("request returned error status", "endpoint", endpoint, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if readErr != nil {
		metrics.APICallsTotal.WithLabelValues(endpoint, metrics.OutcomeDecodeError).Inc()
		return &DecodeError{Op: endpoint, Err: fmt.Errorf("read body: %w", readErr)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			metrics.APICallsTotal.WithLabelValues(endpoint, metrics.OutcomeDecodeError).Inc()
			return &DecodeError{Op: endpoint, Err: err}
		}
	}

	metrics.APICallsTotal.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	c.logger.Debug("request ok", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))
	return nil
}

// send performs the round trip, through the circuit breaker when one is
// configured. Cancelled requests are not counted as breaker failures.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	var cancelled error
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil && req.Context().Err() != nil {
			cancelled = err
			return nil, nil
		}
		return resp, err
	})
	if cancelled != nil {
		return nil, cancelled
	}
	if err != nil {
		return nil, err
	}
	return result.(*http.Response), nil
}

// errorBody is the only error shape the backend promises.
type errorBody struct {
	Detail string `json:"detail" validate:"required"`
}

// parseDetail returns the validated detail message from an error body, or ""
// when the body is missing, malformed, or does not match the schema.
func (c *Client) parseDetail(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	if err := c.validate.Struct(eb); err != nil {
		return ""
	}
	if strings.TrimSpace(eb.Detail) == "" {
		return ""
	}
	return eb.Detail
}
