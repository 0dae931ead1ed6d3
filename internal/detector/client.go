package detector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/truthlens/truthlens-api/pkg/httpclient"
	"github.com/truthlens/truthlens-api/pkg/logger"
	"github.com/truthlens/truthlens-api/pkg/resilience"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultAuthScheme = "Key"
	defaultTimeout    = 10 * time.Second
)

// ErrEmptyResponse is returned when the detector answers 2xx with a JSON null.
var ErrEmptyResponse = errors.New("detector returned an empty response")

// callerDoneError marks a failure caused by the caller's context ending
// before the detector answered.
type callerDoneError struct {
	err error
}

func (e *callerDoneError) Error() string { return e.err.Error() }

func (e *callerDoneError) Unwrap() error { return e.err }

// IsSuccessful classifies errors for the detector's circuit breaker. Only
// failures that say the detector itself is unhealthy count against it: the
// client's own timeout, transport and decode errors, 5xx answers, and 401,
// 403 or 429. Errors from a caller that went away and per-input 4xx answers
// are reported as successes.
func IsSuccessful(err error) bool {
	if err == nil {
		return true
	}

	var done *callerDoneError
	if errors.As(err, &done) {
		return true
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return false
		}
		return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500
	}
	return false
}

// Config configures the detector client.
type Config struct {
	URL        string
	APIKey     string
	AuthScheme string
	Timeout    time.Duration
}

// Client calls the external AI-generated-text detector. Each Detect is a
// single attempt bounded by Timeout; an optional breaker fails fast while the
// detector keeps failing.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	breaker *resilience.CircuitBreaker
	tracer  trace.Tracer
}

type detectRequest struct {
	Text string `json:"text"`
}

// NewClient creates a detector client. breaker may be nil.
func NewClient(cfg Config, breaker *resilience.CircuitBreaker) *Client {
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg:     cfg,
		http:    httpclient.NewClient(cfg.URL, cfg.Timeout),
		breaker: breaker,
		tracer:  otel.Tracer("github.com/truthlens/truthlens-api/internal/detector"),
	}
}

// Detect submits text and returns the decoded verdict. All failures come
// back as errors prefixed "detector:".
func (c *Client) Detect(ctx context.Context, text string) (Verdict, error) {
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "detector.Detect", trace.WithAttributes(
		attribute.Int("detector.text_length", len(text)),
	))
	defer span.End()

	start := time.Now()
	verdict, err := c.execute(parent, ctx, text)
	detectorLatency.Observe(time.Since(start).Seconds())
	detectorCalls.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithContext(ctx).Warn("Detector call failed", zap.Error(err))
		return nil, fmt.Errorf("detector: %w", err)
	}

	if score, ok := verdict.Score(); ok {
		span.SetAttributes(attribute.Float64("detector.score", score))
	}
	return verdict, nil
}

func (c *Client) execute(parent, ctx context.Context, text string) (Verdict, error) {
	attempt := func(ctx context.Context) (Verdict, error) {
		verdict, err := c.call(ctx, text)
		if err != nil && parent.Err() != nil {
			return nil, &callerDoneError{err: err}
		}
		return verdict, err
	}

	if c.breaker == nil {
		return attempt(ctx)
	}

	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return attempt(ctx)
	})
	if err != nil {
		return nil, err
	}

	verdict, ok := result.(Verdict)
	if !ok || verdict == nil {
		return nil, fmt.Errorf("%w: breaker returned %T", ErrEmptyResponse, result)
	}
	return verdict, nil
}

func (c *Client) call(ctx context.Context, text string) (Verdict, error) {
	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = c.cfg.AuthScheme + " " + c.cfg.APIKey
	}

	body, err := c.http.Post(ctx, "", detectRequest{Text: text}, headers)
	if err != nil {
		return nil, err
	}

	var verdict Verdict
	if err := json.Unmarshal(body, &verdict); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if verdict == nil {
		return nil, ErrEmptyResponse
	}
	return verdict, nil
}

func outcome(err error) string {
	var httpErr *httpclient.HTTPError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, ErrEmptyResponse):
		return "decode_error"
	default:
		return "transport_error"
	}
}
