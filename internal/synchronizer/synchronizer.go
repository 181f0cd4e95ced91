// Package synchronizer pulls provider payloads and writes them into the
// store. A record whose parent is not known locally is logged and skipped;
// it never fails the batch it belongs to.
package synchronizer

import (
	"context"
	"time"

	"courtside/ingestion/internal/identifier"
	"courtside/ingestion/internal/metrics"
	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// Provider is the subset of the sports data client used for synchronization
type Provider interface {
	FetchSeasons(ctx context.Context) ([]models.SeasonInput, error)
	FetchSeasonInfo(ctx context.Context, seasonID string) (*models.SeasonInput, error)
	FetchSeasonCompetitors(ctx context.Context, seasonID string) ([]models.CompetitorInput, error)
	FetchCompetitorPlayers(ctx context.Context, seasonID string) ([]models.CompetitorPlayersInput, error)
	FetchCompetitorStatistics(ctx context.Context, seasonID, competitorID string) (*models.CompetitorStatisticsInput, error)
	FetchSchedules(ctx context.Context, seasonID string) ([]models.ScheduleInput, error)
}

// LogoLookup resolves a badge URL from a competitor name. "" means no match.
type LogoLookup interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// Synchronizer writes provider data into the store
type Synchronizer struct {
	provider     Provider
	store        *repository.Store
	logos        LogoLookup
	competitions map[string]bool
	locks        *keyedMutex
	now          func() time.Time
}

// Option configures a Synchronizer
type Option func(*Synchronizer)

// WithLogoLookup enables the best-effort logo lookup
func WithLogoLookup(logos LogoLookup) Option {
	return func(s *Synchronizer) { s.logos = logos }
}

// WithCompetitions restricts season discovery to the given competitions
func WithCompetitions(ids []string) Option {
	return func(s *Synchronizer) {
		for _, id := range ids {
			s.competitions[identifier.Strip(id, identifier.Competition)] = true
		}
	}
}

// WithClock overrides the clock used for the upcoming-match cutoff
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// New creates a synchronizer
func New(provider Provider, store *repository.Store, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		provider:     provider,
		store:        store,
		competitions: map[string]bool{},
		locks:        newKeyedMutex(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record logs the step summary and exports it
func (s *Synchronizer) record(res *Result, start time.Time, err error) {
	duration := time.Since(start)

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case res.Failed > 0:
		status = "partial"
	}
	metrics.RecordSync(res.Kind, status, duration.Seconds())
	metrics.RecordUpserts(res.Kind, res.Upserted)

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Str("kind", res.Kind).
		Int("fetched", res.Fetched).
		Int("upserted", res.Upserted).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("duration", duration).
		Msg("Sync step completed")
}

// season resolves a locally stored season by provider identifier
func (s *Synchronizer) season(ctx context.Context, seasonID string) (*models.Season, error) {
	specialID := identifier.Strip(seasonID, identifier.Season)
	season, err := s.store.Seasons.FindBySpecialID(ctx, specialID)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, &NotFoundLocallyError{Kind: "season", SpecialID: specialID}
	}
	return season, nil
}
