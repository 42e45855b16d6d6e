package footballdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/platform/logging"
	"github.com/matchcall/predictor-league/internal/platform/resilience"
	"github.com/matchcall/predictor-league/internal/usecase"
)

const defaultBaseURL = "https://api.football-data.org/v4"

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Competition    string
	Season         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches competition matches from football-data.org. One client
// serves one competition season.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	competition    string
	season         string
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
		httpClient.Timeout = 20 * time.Second
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
		competition:    strings.TrimSpace(cfg.Competition),
		season:         strings.TrimSpace(cfg.Season),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchSeasonFixtures returns every match of the configured competition
// season mapped to the local fixture shape.
func (c *Client) FetchSeasonFixtures(ctx context.Context) ([]fixture.Fixture, error) {
	if c.competition == "" {
		return nil, crerr.New("competition code is required")
	}

	query := map[string]string{}
	if c.season != "" {
		query["season"] = c.season
	}

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, "/competitions/"+url.PathEscape(c.competition)+"/matches", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch matches competition=%s: %w", c.competition, err)
	}

	fixtures := make([]fixture.Fixture, 0, len(envelope.Matches))
	for _, m := range envelope.Matches {
		mapped, ok := mapMatch(m)
		if !ok {
			c.logger.Warn("skip unmappable match", "match_id", m.ID, "status", m.Status)
			continue
		}
		fixtures = append(fixtures, mapped)
	}

	return fixtures, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isCircuitFailure(reqErr) {
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
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("X-Auth-Token", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFootballDataTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFootballDataTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFootballDataTransient, resp.StatusCode, abbreviateBody(raw))
			default:
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
	c.logger.WarnContext(ctx, "football-data request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapMatch(m matchItem) (fixture.Fixture, bool) {
	if m.ID <= 0 || m.Matchday <= 0 {
		return fixture.Fixture{}, false
	}
	kickoff, err := time.Parse(time.RFC3339, m.UTCDate)
	if err != nil {
		return fixture.Fixture{}, false
	}

	f := fixture.Fixture{
		ID:         "fd-" + strconv.FormatInt(m.ID, 10),
		ExternalID: m.ID,
		Matchday:   m.Matchday,
		HomeTeam:   strings.TrimSpace(m.HomeTeam.Name),
		AwayTeam:   strings.TrimSpace(m.AwayTeam.Name),
		KickoffAt:  kickoff.UTC(),
		Status:     fixture.NormalizeStatus(m.Status),
	}
	if m.Score.FullTime.Home != nil && m.Score.FullTime.Away != nil {
		home, away := *m.Score.FullTime.Home, *m.Score.FullTime.Away
		f.HomeScore, f.AwayScore = &home, &away
	}

	return f, f.HomeTeam != "" && f.AwayTeam != ""
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errFootballDataTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const maxLen = 512
	body := strings.TrimSpace(string(raw))
	if len(body) > maxLen {
		return body[:maxLen] + "...(truncated)"
	}
	return body
}

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type matchItem struct {
	ID       int64     `json:"id"`
	UTCDate  string    `json:"utcDate"`
	Status   string    `json:"status"`
	Matchday int       `json:"matchday"`
	HomeTeam matchTeam `json:"homeTeam"`
	AwayTeam matchTeam `json:"awayTeam"`
	Score    struct {
		FullTime scorePair `json:"fullTime"`
	} `json:"score"`
}

type matchTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
