package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"courtside/ingestion/internal/identifier"
	"courtside/ingestion/internal/metrics"
	"courtside/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Endpoint is a provider path template plus the values substituted into it
type Endpoint struct {
	Name   string
	Path   string
	Params map[string]string
}

var placeholder = regexp.MustCompile(`\{([a-zA-Z]+)\}`)

// Resolve substitutes every {param} in the path. Missing params are an error.
func (e Endpoint) Resolve() (string, error) {
	var missing []string
	resolved := placeholder.ReplaceAllStringFunc(e.Path, func(m string) string {
		key := m[1 : len(m)-1]
		value, ok := e.Params[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return url.PathEscape(value)
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("endpoint %s: missing path params %s", e.Name, strings.Join(missing, ", "))
	}
	return resolved, nil
}

// Provider endpoints
func SeasonsEndpoint() Endpoint {
	return Endpoint{Name: "seasons", Path: "seasons.json"}
}

func SeasonInfoEndpoint(seasonID string) Endpoint {
	return Endpoint{Name: "season_info", Path: "seasons/{id}/info.json", Params: map[string]string{
		"id": identifier.Qualify(seasonID, identifier.Season),
	}}
}

func SeasonCompetitorsEndpoint(seasonID string) Endpoint {
	return Endpoint{Name: "season_competitors", Path: "seasons/{id}/competitors.json", Params: map[string]string{
		"id": identifier.Qualify(seasonID, identifier.Season),
	}}
}

func CompetitorPlayersEndpoint(seasonID string) Endpoint {
	return Endpoint{Name: "competitor_players", Path: "seasons/{id}/competitor_players.json", Params: map[string]string{
		"id": identifier.Qualify(seasonID, identifier.Season),
	}}
}

func CompetitorStatisticsEndpoint(seasonID, competitorID string) Endpoint {
	return Endpoint{Name: "competitor_statistics", Path: "seasons/{id}/competitors/{competitorId}/statistics.json", Params: map[string]string{
		"id":           identifier.Qualify(seasonID, identifier.Season),
		"competitorId": identifier.Qualify(competitorID, identifier.Competitor),
	}}
}

func SchedulesEndpoint(seasonID string) Endpoint {
	return Endpoint{Name: "schedules", Path: "seasons/{id}/schedules.json", Params: map[string]string{
		"id": identifier.Qualify(seasonID, identifier.Season),
	}}
}

// Config holds the provider client settings
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Client is the Sportradar API client. Every request, retries included, passes
// through the shared gate.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	gate       *Gate
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new Sportradar API client
func NewClient(cfg Config, gate *Gate) *Client {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		gate:       gate,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch performs a throttled GET against the endpoint and decodes the JSON
// body into out.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint, out any) error {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ExternalAPIError{
			Endpoint: endpoint.Name,
			Status:   http.StatusOK,
			Message:  fmt.Sprintf("malformed response: %v", err),
		}
	}
	return nil
}

// get performs a GET request with retry logic and rate limiting
func (c *Client) get(ctx context.Context, endpoint Endpoint) ([]byte, error) {
	path, err := endpoint.Resolve()
	if err != nil {
		return nil, err
	}
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("endpoint", endpoint.Name).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.gate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		body, err := c.do(ctx, endpoint.Name, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if apiErr, ok := err.(*ExternalAPIError); ok && !apiErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Warn().
			Err(err).
			Str("endpoint", endpoint.Name).
			Int("attempt", attempt+1).
			Msg("Received retryable error")
	}

	return nil, lastErr
}

// do issues a single attempt
func (c *Client) do(ctx context.Context, name, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "courtside-ingestion/1.0")

	log.Debug().
		Str("endpoint", name).
		Str("url", reqURL).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(name, "network_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordAPICall(name, "read_error", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	metrics.RecordAPICall(name, fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ExternalAPIError{
			Endpoint: name,
			Status:   resp.StatusCode,
			Message:  errorMessage(body),
		}
	}

	if msg := errorMessage(body); msg != "" {
		return nil, &ExternalAPIError{Endpoint: name, Status: resp.StatusCode, Message: msg}
	}

	log.Debug().
		Str("endpoint", name).
		Int("status", resp.StatusCode).
		Int("size", len(body)).
		Msg("API request successful")

	return body, nil
}

// errorMessage extracts the provider's top-level "message" field, if any
func errorMessage(body []byte) string {
	var envelope struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message == nil {
		return ""
	}
	if *envelope.Message == "" {
		return truncate(body, 200)
	}
	return *envelope.Message
}

// FetchSeasons fetches every season visible to the API key
func (c *Client) FetchSeasons(ctx context.Context) ([]models.SeasonInput, error) {
	var resp models.SeasonsResponse
	if err := c.Fetch(ctx, SeasonsEndpoint(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch seasons: %w", err)
	}
	return resp.Seasons, nil
}

// FetchSeasonInfo fetches a single season
func (c *Client) FetchSeasonInfo(ctx context.Context, seasonID string) (*models.SeasonInput, error) {
	var resp models.SeasonInfoResponse
	if err := c.Fetch(ctx, SeasonInfoEndpoint(seasonID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch season info: %w", err)
	}
	return &resp.Season, nil
}

// FetchSeasonCompetitors fetches the competitors of a season
func (c *Client) FetchSeasonCompetitors(ctx context.Context, seasonID string) ([]models.CompetitorInput, error) {
	var resp models.SeasonCompetitorsResponse
	if err := c.Fetch(ctx, SeasonCompetitorsEndpoint(seasonID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch season competitors: %w", err)
	}
	return resp.SeasonCompetitors, nil
}

// FetchCompetitorPlayers fetches the squads of every competitor of a season
func (c *Client) FetchCompetitorPlayers(ctx context.Context, seasonID string) ([]models.CompetitorPlayersInput, error) {
	var resp models.CompetitorPlayersResponse
	if err := c.Fetch(ctx, CompetitorPlayersEndpoint(seasonID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch competitor players: %w", err)
	}
	return resp.SeasonCompetitorPlayers, nil
}

// FetchCompetitorStatistics fetches season statistics for one competitor and its players
func (c *Client) FetchCompetitorStatistics(ctx context.Context, seasonID, competitorID string) (*models.CompetitorStatisticsInput, error) {
	var resp models.CompetitorStatisticsResponse
	if err := c.Fetch(ctx, CompetitorStatisticsEndpoint(seasonID, competitorID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch competitor statistics: %w", err)
	}
	return &resp.Competitor, nil
}

// FetchSchedules fetches the full fixture list of a season
func (c *Client) FetchSchedules(ctx context.Context, seasonID string) ([]models.ScheduleInput, error) {
	var resp models.SchedulesResponse
	if err := c.Fetch(ctx, SchedulesEndpoint(seasonID), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}
	return resp.Schedules, nil
}
