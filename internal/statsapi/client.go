// Package statsapi is the upstream feed client for the public MLB Stats API.
package statsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/cesargomez89/walkmlb/internal/constants"
	"github.com/cesargomez89/walkmlb/internal/domain"
	"github.com/cesargomez89/walkmlb/internal/httpclient"
	"github.com/cesargomez89/walkmlb/internal/logger"
	"github.com/cesargomez89/walkmlb/internal/metrics"
	"github.com/cesargomez89/walkmlb/internal/snapshot"
)

const (
	breakerName      = "statsapi"
	breakerThreshold = 5
	breakerTimeout   = 30 * time.Second
	maxBodyBytes     = 32 << 20
)

type Config struct {
	BaseURL           string
	LiveURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxAttempts       int
	// HTTPClient overrides the transport. Used by tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	liveURL string
	timeout time.Duration
	http    *httpclient.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultStatsAPIURL
	}
	if cfg.LiveURL == "" {
		cfg.LiveURL = constants.DefaultLiveFeedURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.WithComponent("statsapi")

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		liveURL: strings.TrimRight(cfg.LiveURL, "/"),
		timeout: cfg.Timeout,
		http: httpclient.NewClient(cfg.HTTPClient, httpclient.Options{
			RequestsPerSecond: cfg.RequestsPerSecond,
			Attempts:          cfg.MaxAttempts,
		}),
		logger: log,
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    breakerName,
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerThreshold
		},
		// A missing document is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerTransition(name, from.String(), to.String(), breakerStateValue(to))
		},
	})
	return c
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// ListGames returns the schedule for one calendar date.
func (c *Client) ListGames(ctx context.Context, date time.Time) ([]domain.ScheduledGame, error) {
	q := url.Values{}
	q.Set("sportId", constants.MLBSportID)
	q.Set("date", domain.FormatDate(date))
	q.Set("hydrate", constants.ScheduleHydrate)

	raw, err := c.get(ctx, "schedule", c.baseURL+"/schedule?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeSchedule(raw)
}

func (c *Client) BoxScore(ctx context.Context, gamePk int64) (*snapshot.BoxScore, error) {
	raw, err := c.get(ctx, "boxscore", fmt.Sprintf("%s/game/%d/boxscore", c.baseURL, gamePk))
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeBoxScore(raw)
}

func (c *Client) LineScore(ctx context.Context, gamePk int64) (*snapshot.LineScore, error) {
	raw, err := c.get(ctx, "linescore", fmt.Sprintf("%s/game/%d/linescore", c.baseURL, gamePk))
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeLineScore(raw)
}

// Status fetches the live feed and keeps its status, datetime and team names.
func (c *Client) Status(ctx context.Context, gamePk int64) (*snapshot.Status, error) {
	raw, err := c.get(ctx, "feed_live", fmt.Sprintf("%s/game/%d/feed/live", c.liveURL, gamePk))
	if err != nil {
		return nil, err
	}
	return snapshot.DecodeStatus(raw)
}

func (c *Client) get(ctx context.Context, endpoint, u string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstream(endpoint, time.Since(start), err)
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err = c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, u)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, endpoint, err)
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	c.logger.Debug("API request", "url", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, u)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: API request failed: %s", domain.ErrUpstreamUnavailable, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamUnavailable, err)
	}
	return body, nil
}
