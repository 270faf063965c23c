package oddsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/pickemhq/pickem-pool/internal/platform/logging"
	"github.com/pickemhq/pickem-pool/internal/platform/resilience"
	"github.com/pickemhq/pickem-pool/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const defaultBaseURL = "https://api.oddsfeed.example.com/v2"

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)
var errOddsFeedTransient = crerr.New("oddsfeed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the odds and scores feed. It implements
// usecase.OddsScoreProvider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type oddsEnvelope struct {
	Data oddsItem `json:"data"`
}

type oddsItem struct {
	EventID       int64    `json:"event_id"`
	HomeSpread    *float64 `json:"home_spread"`
	Total         *float64 `json:"total"`
	MoneylineHome *int     `json:"moneyline_home"`
	MoneylineAway *int     `json:"moneyline_away"`
	Book          string   `json:"book"`
	UpdatedAt     string   `json:"updated_at"`
}

type scoreEnvelope struct {
	Data scoreItem `json:"data"`
}

type scoreItem struct {
	EventID   int64  `json:"event_id"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}

func (c *Client) FetchQuote(ctx context.Context, externalID int64) (usecase.ExternalQuote, error) {
	if externalID <= 0 {
		return usecase.ExternalQuote{}, fmt.Errorf("event id must be greater than zero")
	}

	var envelope oddsEnvelope
	path := fmt.Sprintf("/events/%d/odds", externalID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.ExternalQuote{}, fmt.Errorf("fetch odds event_id=%d: %w", externalID, err)
	}

	out := usecase.ExternalQuote{
		Spread:        envelope.Data.HomeSpread,
		Total:         envelope.Data.Total,
		MoneylineHome: envelope.Data.MoneylineHome,
		MoneylineAway: envelope.Data.MoneylineAway,
		Source:        strings.TrimSpace(envelope.Data.Book),
	}
	if parsed := parseProviderDateTime(envelope.Data.UpdatedAt); parsed != nil {
		out.QuotedAt = *parsed
	}
	return out, nil
}

func (c *Client) FetchScore(ctx context.Context, externalID int64) (usecase.ExternalScore, error) {
	if externalID <= 0 {
		return usecase.ExternalScore{}, fmt.Errorf("event id must be greater than zero")
	}

	var envelope scoreEnvelope
	path := fmt.Sprintf("/events/%d/score", externalID)
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return usecase.ExternalScore{}, fmt.Errorf("fetch score event_id=%d: %w", externalID, err)
	}

	return usecase.ExternalScore{
		HomeScore: envelope.Data.HomeScore,
		AwayScore: envelope.Data.AwayScore,
		Status:    strings.TrimSpace(envelope.Data.Status),
		Completed: envelope.Data.Completed,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "oddsfeed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: odds provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_key", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errOddsFeedTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errOddsFeedTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			buf := bytebufferpool.Get()
			_, readErr := buf.ReadFrom(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			// The payload outlives the pooled buffer, so copy before Put.
			raw := append([]byte(nil), buf.B...)
			bytebufferpool.Put(buf)
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errOddsFeedTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errOddsFeedTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "oddsfeed request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiKeyParamRegex.ReplaceAllString(rawURL, "api_key=REDACTED")
	}
	query := parsed.Query()
	if query.Get("api_key") != "" {
		query.Set("api_key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	const limit = 256
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) <= limit {
		return trimmed
	}
	return trimmed[:limit] + "..."
}

func parseProviderDateTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
