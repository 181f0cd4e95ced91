package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"courtside/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Cache is the string cache used to memoise logo lookups
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// LogoResolver looks up team badges by name on TheSportsDB
type LogoResolver struct {
	searchURL  string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
}

// NewLogoResolver creates a resolver. cache may be nil.
func NewLogoResolver(searchURL string, cache Cache, ttl time.Duration) *LogoResolver {
	return &LogoResolver{
		searchURL:  searchURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		ttl:        ttl,
	}
}

type searchTeamsResponse struct {
	Teams []struct {
		StrTeam  string `json:"strTeam"`
		StrBadge string `json:"strBadge"`
	} `json:"teams"`
}

// Lookup returns the badge URL of the first team matching name, or "" when
// nothing matches.
func (r *LogoResolver) Lookup(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	key := "logo:" + strings.ToLower(name)
	if r.cache != nil {
		if cached, found, err := r.cache.Get(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Logo cache read failed")
		} else if found {
			metrics.RecordCacheHit()
			return cached, nil
		}
		metrics.RecordCacheMiss()
	}

	logo, err := r.search(ctx, name)
	if err != nil {
		return "", err
	}

	if logo != "" && r.cache != nil {
		if err := r.cache.Set(ctx, key, logo, r.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Logo cache write failed")
		}
	}
	return logo, nil
}

func (r *LogoResolver) search(ctx context.Context, name string) (string, error) {
	reqURL := fmt.Sprintf("%s?t=%s", r.searchURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall("logo_search", "network_error", time.Since(start).Seconds())
		return "", fmt.Errorf("logo search failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordAPICall("logo_search", fmt.Sprintf("%d", resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ExternalAPIError{Endpoint: "logo_search", Status: resp.StatusCode, Message: truncate(body, 200)}
	}

	var result searchTeamsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &ExternalAPIError{Endpoint: "logo_search", Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}

	if len(result.Teams) == 0 {
		return "", nil
	}
	return result.Teams[0].StrBadge, nil
}
