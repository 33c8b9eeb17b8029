package surfline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/surfcams/internal/forecast"
)

const (
	// DefaultBaseURL is the Surfline "kbyg" spot forecast API.
	DefaultBaseURL = "https://services.surfline.com/kbyg/spots/forecasts"

	// MinConnsPerHost keeps the four pipelines of one aggregation parallel.
	MinConnsPerHost = 4

	// The breaker opens only once breakerMinRequests attempts were seen in
	// the current interval and breakerFailureRatio of them failed. A single
	// aggregation makes at most 4 x MaxAttempts attempts.
	breakerMinRequests  = 30
	breakerFailureRatio = 0.6

	tideDays     = 2
	sunlightDays = 1
	seriesDays   = 3
)

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration // per upstream call
	Retry       RetryPolicy
	MaxConns    int
	Now         func() time.Time
	BreakerName string
}

// Client talks to the Surfline forecast API. It is safe for concurrent use
// and is meant to live for the whole process; each aggregation opens its
// own Session.
type Client struct {
	name     string
	baseURL  string
	timeout  time.Duration
	retry    RetryPolicy
	maxConns int
	now      func() time.Time
	circuit  *gobreaker.CircuitBreaker
	validate *validator.Validate
}

// NewClient creates a Client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	def := DefaultRetryPolicy()
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = def
	}
	if opts.Retry.Backoff.InitialInterval <= 0 {
		opts.Retry.Backoff.InitialInterval = def.Backoff.InitialInterval
	}
	if opts.Retry.Backoff.MaxInterval <= 0 {
		opts.Retry.Backoff.MaxInterval = max(def.Backoff.MaxInterval, opts.Retry.Backoff.InitialInterval)
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = def.Retryable
	}
	if opts.MaxConns < MinConnsPerHost {
		opts.MaxConns = MinConnsPerHost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BreakerName == "" {
		opts.BreakerName = "surfline"
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.BreakerName,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= breakerFailureRatio
		},
		IsSuccessful: upstreamHealthy,
	})

	return &Client{
		name:     "surfline",
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		timeout:  opts.Timeout,
		retry:    opts.Retry,
		maxConns: opts.MaxConns,
		now:      opts.Now,
		circuit:  cb,
		validate: validator.New(),
	}
}

func (c *Client) Name() string {
	return c.name
}

// NewSession opens a connection scope for one aggregation.
func (c *Client) NewSession() forecast.Session {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxConnsPerHost = c.maxConns
	tr.MaxIdleConnsPerHost = c.maxConns

	return &Session{
		client:    c,
		transport: tr,
		http:      &http.Client{Transport: tr},
	}
}

// Session shares one pooled transport across the four pipelines of an
// aggregation.
type Session struct {
	client    *Client
	transport *http.Transport
	http      *http.Client
}

// Close drops the session's idle connections.
func (s *Session) Close() error {
	s.transport.CloseIdleConnections()
	return nil
}

// get fetches endpoint with retries and decodes the body into out.
func (s *Session) get(ctx context.Context, endpoint, spotID string, days int, out any) error {
	params := url.Values{}
	params.Set("spotId", spotID)
	params.Set("days", strconv.Itoa(days))
	u := fmt.Sprintf("%s/%s?%s", s.client.baseURL, endpoint, params.Encode())

	var body []byte
	attempts, err := s.client.retry.Do(ctx, func(ctx context.Context) error {
		b, err := s.attempt(ctx, endpoint, u)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		return &FatalError{Endpoint: endpoint, Attempts: attempts, Err: err}
	}

	if err := s.decode(body, out); err != nil {
		return &FatalError{Endpoint: endpoint, Attempts: attempts, Err: err}
	}
	return nil
}

// attempt performs one call under the per-call timeout.
func (s *Session) attempt(ctx context.Context, endpoint, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.client.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	result, err := s.client.circuit.Execute(func() (interface{}, error) {
		resp, err := s.http.Do(req)
		if err != nil {
			return nil, &TransientError{Endpoint: endpoint, Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &TransientError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errRateLimited}
		case resp.StatusCode >= 500:
			return nil, &TransientError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errServerError}
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, &TransientError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errUnexpectedStatus}
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransientError{Endpoint: endpoint, Err: err}
		}
		return b, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	b, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return b, nil
}

// upstreamHealthy reports whether an attempt's outcome says nothing bad
// about the upstream itself. Client errors (4xx other than 429) and
// attempts abandoned by the caller do not count against the breaker.
func upstreamHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var te *TransientError
	if !errors.As(err, &te) {
		return false
	}
	switch {
	case te.StatusCode == 0:
		return false
	case te.StatusCode == http.StatusTooManyRequests, te.StatusCode >= 500:
		return false
	default:
		return true
	}
}

func (s *Session) decode(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := s.client.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
