package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the hosted inference endpoint prefix. Each request posts
// to <base>/<model>.
const DefaultBaseURL = "https://api-inference.huggingface.co/models"

const (
	defaultMinInterval = time.Second
	defaultCacheSize   = 100
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gradecraft",
		Subsystem: "inference",
		Name:      "request_duration_seconds",
		Help:      "Duration of inference endpoint requests",
	}, []string{"model"})

	requestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradecraft",
		Subsystem: "inference",
		Name:      "request_failures_total",
		Help:      "Number of failed inference endpoint requests",
	}, []string{"model", "reason"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gradecraft",
		Subsystem: "inference",
		Name:      "cache_events_total",
		Help:      "Request cache hits and misses",
	}, []string{"result"})
)

// Config defines construction options for the inference client.
type Config struct {
	APIKey      string
	BaseURL     string
	MinInterval time.Duration
	CacheSize   int
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

// Client issues rate-limited, cached HTTP calls to named remote models. The
// throttle and the cache are instance fields, so independent clients do not
// share state; one instance is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *requestCache
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// NewClient builds an inference client from the provided configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		cache:      newRequestCache(cfg.CacheSize),
		tracer:     otel.Tracer("github.com/gradecraft/gradecraft-api/pkg/inference"),
		logger:     cfg.Logger.With().Str("component", "inference_client").Logger(),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type requestBody struct {
	Inputs     any            `json:"inputs"`
	Parameters map[string]any `json:"parameters"`
	Options    requestOptions `json:"options"`
}

// Request performs one call to the named model and returns the raw JSON
// result. Identical (model, inputs, parameters) requests are served from the
// cache when useCache is set; cache hits skip both the throttle wait and the
// network. All cache misses across models share one min-interval throttle.
func (c *Client) Request(ctx context.Context, model string, inputs any, parameters map[string]any, useCache bool) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "inference.request", trace.WithAttributes(
		attribute.String("model", model),
	))
	defer span.End()

	key, cacheable := cacheKey(model, inputs, parameters)
	if useCache && cacheable {
		if cached, ok := c.cache.get(key); ok {
			cacheEvents.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
		cacheEvents.WithLabelValues("miss").Inc()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("inference throttle wait: %w", err)
	}

	body, err := json.Marshal(requestBody{
		Inputs:     inputs,
		Parameters: parameters,
		Options:    requestOptions{WaitForModel: true, UseCache: useCache},
	})
	if err != nil {
		return nil, fmt.Errorf("encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		requestFailures.WithLabelValues(model, "transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if err := c.statusError(model, resp.StatusCode); err != nil {
		requestFailures.WithLabelValues(model, fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		requestFailures.WithLabelValues(model, "read").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read inference response: %w", err)
	}
	if !json.Valid(raw) {
		err := fmt.Errorf("inference response from %s is not valid json", model)
		requestFailures.WithLabelValues(model, "decode").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if useCache && cacheable {
		c.cache.put(key, raw)
	}

	return raw, nil
}

func (c *Client) statusError(model string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrInvalidAPIKey
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusServiceUnavailable:
		return ErrModelLoading
	default:
		return &StatusError{Code: status, Model: model}
	}
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.cache.clear()
	c.logger.Info().Msg("request cache cleared")
}

// CacheStats reports the current cache size and its capacity bound.
func (c *Client) CacheStats() (size, capacity int) {
	return c.cache.stats()
}
