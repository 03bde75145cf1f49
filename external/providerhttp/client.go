package providerhttp

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxRetryDelay = time.Minute
	maxResponseBytes     = 6 << 20
	bodyPreviewLimit     = 240
)

var (
	errTransient = crerr.New("provider transient failure")
	errThrottled = crerr.New("provider throttled request")
)

// ThrottleFunc reports provider specific throttling hidden in a response that
// is otherwise successful.
type ThrottleFunc func(status int, body []byte) bool

type Config struct {
	Provider          string
	HTTPClient        *http.Client
	BaseURL           string
	Headers           map[string]string
	Secrets           []string
	Timeout           time.Duration
	MaxRetries        int
	MaxRetryDelay     time.Duration
	RateLimit         int
	RateWindow        time.Duration
	BlockOnBudget     bool
	RetryAfterHeaders []string
	IsThrottled       ThrottleFunc
	CircuitBreaker    resilience.CircuitBreakerConfig
	Logger            *logging.Logger
}

// Client is the only path to one upstream provider. It owns that provider's
// request budget, retry policy and circuit breaker.
type Client struct {
	provider          string
	httpClient        *http.Client
	baseURL           string
	headers           map[string]string
	secrets           []string
	maxRetries        int
	maxRetryDelay     time.Duration
	blockOnBudget     bool
	retryAfterHeaders []string
	isThrottled       ThrottleFunc
	budget            *resilience.WindowBudget
	breaker           *resilience.CircuitBreaker
	flight            resilience.SingleFlight
	logger            *logging.Logger
	sleep             func(context.Context, time.Duration) error
	now               func() time.Time
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	provider := strings.TrimSpace(cfg.Provider)
	logger = logger.With("provider", provider)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	maxRetryDelay := cfg.MaxRetryDelay
	if maxRetryDelay <= 0 {
		maxRetryDelay = defaultMaxRetryDelay
	}
	retryAfter := cfg.RetryAfterHeaders
	if len(retryAfter) == 0 {
		retryAfter = []string{"Retry-After"}
	}

	headers := make(map[string]string, len(cfg.Headers))
	for key, value := range cfg.Headers {
		if strings.TrimSpace(value) != "" {
			headers[key] = strings.TrimSpace(value)
		}
	}
	secrets := make([]string, 0, len(cfg.Secrets))
	for _, secret := range cfg.Secrets {
		if strings.TrimSpace(secret) != "" {
			secrets = append(secrets, strings.TrimSpace(secret))
		}
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	if breaker != nil {
		breaker.OnStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("provider circuit breaker state changed", "from", string(from), "to", string(to))
		})
	}

	return &Client{
		provider:          provider,
		httpClient:        httpClient,
		baseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		headers:           headers,
		secrets:           secrets,
		maxRetries:        maxInt(cfg.MaxRetries, 0),
		maxRetryDelay:     maxRetryDelay,
		blockOnBudget:     cfg.BlockOnBudget,
		retryAfterHeaders: retryAfter,
		isThrottled:       cfg.IsThrottled,
		budget:            resilience.NewWindowBudget(cfg.RateLimit, cfg.RateWindow),
		breaker:           breaker,
		logger:            logger,
		sleep:             resilience.SleepContext,
		now:               time.Now,
	}
}

func (c *Client) Provider() string {
	return c.provider
}

func (c *Client) Budget() resilience.BudgetSnapshot {
	return c.budget.Snapshot()
}

// GetJSON issues GET baseURL+path and decodes the body into target when it is
// non-nil. The raw body is returned for archiving.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, target any) ([]byte, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "provider circuit breaker rejected request", "state", string(c.breaker.State()), "path", path)
			return nil, fmt.Errorf("%w: provider %s is temporarily unavailable", usecase.ErrDependencyUnavailable, c.provider)
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(http.MethodGet+" "+fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.breaker != nil {
			if isCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	if target != nil {
		if err := sonic.Unmarshal(raw, target); err != nil {
			return raw, fmt.Errorf("%w: decode %s payload: %v", usecase.ErrUpstream, c.provider, err)
		}
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.acquire(ctx); err != nil {
			return nil, err
		}

		backoff := time.Duration(attempt+1) * time.Second
		status, header, raw, err := c.roundTrip(ctx, fullURL)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errTransient, "send request: %s", c.sanitize(err.Error()))
		case status == http.StatusTooManyRequests || (c.isThrottled != nil && c.isThrottled(status, raw)):
			lastErr = fmt.Errorf("%w: %w: provider=%s status=%d", errThrottled, usecase.ErrRateLimitExceeded, c.provider, status)
			backoff = resilience.RetryAfter(header, c.retryAfterHeaders, backoff, c.maxRetryDelay, c.now())
		case status >= 200 && status < 300:
			return raw, nil
		case status >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("%w: %w", errTransient, c.upstreamError(status, raw))
		default:
			return nil, c.upstreamError(status, raw)
		}

		if attempt == c.maxRetries {
			break
		}
		c.logger.DebugContext(ctx, "retry provider request", "attempt", attempt+1, "backoff", backoff.String(), "error", lastErr)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: provider=%s request failed", usecase.ErrUpstream, c.provider)
	}
	c.logger.WarnContext(ctx, "provider request failed", "url", c.sanitize(fullURL), "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

// acquire takes one slot from the budget. Without BlockOnBudget an exhausted
// window is reported instead of waited out.
func (c *Client) acquire(ctx context.Context) error {
	if c.blockOnBudget {
		return c.budget.Wait(ctx, c.sleep)
	}
	resetIn, err := c.budget.TryAcquire()
	if err == nil {
		return nil
	}
	c.logger.WarnContext(ctx, "provider request budget exhausted", "resets_in", resetIn.String())
	return fmt.Errorf("%w: provider=%s resets_in=%s", usecase.ErrRateLimitExceeded, c.provider, resetIn.Round(time.Second))
}

func (c *Client) roundTrip(ctx context.Context, fullURL string) (int, http.Header, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return 0, nil, nil, fmt.Errorf("read response body: %w", err)
	}
	raw := make([]byte, buf.Len())
	copy(raw, buf.B)

	return resp.StatusCode, resp.Header, raw, nil
}

func (c *Client) upstreamError(status int, raw []byte) *usecase.UpstreamError {
	return &usecase.UpstreamError{
		Provider: c.provider,
		Status:   status,
		Body:     c.sanitize(abbreviateBody(raw)),
	}
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	for _, secret := range c.secrets {
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return value
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errTransient)
}

// IsTransient reports failures worth retrying on a later run.
func IsTransient(err error) bool {
	return stderrors.Is(err, errTransient) || stderrors.Is(err, errThrottled)
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= bodyPreviewLimit {
		return text
	}
	return text[:bodyPreviewLimit] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}

// ParseTimestamp accepts the timestamp layouts providers send and returns UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
