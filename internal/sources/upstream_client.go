package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"metricsdash/internal/providers"
	"metricsdash/internal/structures"
)

const errorBodyReadLimit int64 = 512

// upstreamClient is the shared HTTP plumbing of every adapter: one rate
// limiter per source, JSON decoding and upstream latency metrics.
type upstreamClient struct {
	source     string
	httpClient *http.Client
	limiter    *rate.Limiter
	headers    http.Header
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func newUpstreamClient(source string, timeout time.Duration, rl structures.RateLimit, logger providers.Logger, metrics providers.MetricsProviderInterface) *upstreamClient {
	limit := rate.Inf
	burst := rl.Burst
	if rl.RequestsPerSecond > 0 {
		limit = rate.Limit(rl.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &upstreamClient{
		source:     source,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		headers:    make(http.Header),
		logger:     logger,
		metrics:    metrics,
	}
}

func (c *upstreamClient) setHeader(key, value string) {
	if value != "" {
		c.headers.Set(key, value)
	}
}

func (c *upstreamClient) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *upstreamClient) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *upstreamClient) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveUpstreamDuration(c.source, time.Since(started))
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debugf(providers.TypeFetch, "%s: %s %s -> %d in %s", c.source, req.Method, req.URL.Path, resp.StatusCode, time.Since(started))

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

// graphQLRequest is the POST body of a GraphQL query.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (c *upstreamClient) graphQL(ctx context.Context, endpoint, query string, variables map[string]any, data any) error {
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := c.postJSON(ctx, endpoint, graphQLRequest{Query: query, Variables: variables}, &envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 {
		return fmt.Errorf("graphql: empty data")
	}
	return json.Unmarshal(envelope.Data, data)
}
