package synchronizer

import (
	"context"
	"fmt"
	"time"

	"courtside/ingestion/internal/identifier"
	"courtside/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncSeasons discovers seasons from /seasons.json. When competitions are
// configured, seasons of other competitions are skipped.
func (s *Synchronizer) SyncSeasons(ctx context.Context) (res Result, err error) {
	start := time.Now()
	res = Result{Kind: "seasons"}
	defer func() { s.record(&res, start, err) }()

	inputs, err := s.provider.FetchSeasons(ctx)
	if err != nil {
		return res, err
	}
	res.Fetched = len(inputs)

	for i := range inputs {
		input := &inputs[i]

		competitionID := identifier.Strip(input.CompetitionID, identifier.Competition)
		if len(s.competitions) > 0 && !s.competitions[competitionID] {
			res.Skipped++
			continue
		}

		if _, err := s.upsertSeason(ctx, input); err != nil {
			log.Error().Err(err).Str("season_id", input.ID).Msg("Failed to sync season")
			res.AddErrorf("season %s: %v", input.ID, err)
			continue
		}
		res.Upserted++
	}

	return res, nil
}

// SyncSeason refreshes a single season from /seasons/{id}/info.json
func (s *Synchronizer) SyncSeason(ctx context.Context, seasonID string) (season *models.Season, err error) {
	start := time.Now()
	res := Result{Kind: "season"}
	defer func() { s.record(&res, start, err) }()

	input, err := s.provider.FetchSeasonInfo(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	res.Fetched = 1

	season, err = s.upsertSeason(ctx, input)
	if err != nil {
		return nil, err
	}
	res.Upserted = 1

	return season, nil
}

func (s *Synchronizer) upsertSeason(ctx context.Context, input *models.SeasonInput) (*models.Season, error) {
	season, err := input.ToSeason()
	if err != nil {
		return nil, fmt.Errorf("failed to convert season: %w", err)
	}

	if err := s.store.Seasons.Upsert(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}
