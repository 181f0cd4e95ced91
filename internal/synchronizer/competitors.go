package synchronizer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// SyncCompetitors upserts the competitors of a locally stored season
func (s *Synchronizer) SyncCompetitors(ctx context.Context, seasonID string) (res Result, err error) {
	start := time.Now()
	res = Result{Kind: "competitors"}
	defer func() { s.record(&res, start, err) }()

	season, err := s.season(ctx, seasonID)
	if err != nil {
		return res, err
	}

	inputs, err := s.provider.FetchSeasonCompetitors(ctx, season.SpecialID)
	if err != nil {
		return res, err
	}
	res.Fetched = len(inputs)

	for i := range inputs {
		competitor := inputs[i].ToCompetitor(season.ID)

		if err := s.store.Competitors.Upsert(ctx, competitor); err != nil {
			log.Error().
				Err(err).
				Str("competitor_id", competitor.SpecialID).
				Msg("Failed to sync competitor")
			res.AddErrorf("competitor %s: %v", competitor.SpecialID, err)
			continue
		}
		res.Upserted++
	}

	return res, nil
}

// SyncLogos fills in missing competitor logos. Lookup failures are logged and
// ignored.
func (s *Synchronizer) SyncLogos(ctx context.Context, seasonID string) (res Result, err error) {
	start := time.Now()
	res = Result{Kind: "logos"}
	if s.logos == nil {
		return res, nil
	}
	defer func() { s.record(&res, start, err) }()

	season, err := s.season(ctx, seasonID)
	if err != nil {
		return res, err
	}

	competitors, err := s.store.Competitors.ListMissingLogo(ctx, season.ID)
	if err != nil {
		return res, err
	}
	res.Fetched = len(competitors)

	for _, competitor := range competitors {
		logo, err := s.logos.Lookup(ctx, competitor.Name)
		if err != nil {
			log.Warn().Err(err).Str("competitor", competitor.Name).Msg("Logo lookup failed")
			res.AddErrorf("logo %s: %v", competitor.Name, err)
			continue
		}
		if logo == "" {
			res.Skipped++
			continue
		}

		if err := s.store.Competitors.UpdateLogo(ctx, competitor.ID, logo); err != nil {
			log.Error().Err(err).Int("competitor_id", competitor.ID).Msg("Failed to store logo")
			res.AddErrorf("logo %s: %v", competitor.Name, err)
			continue
		}
		res.Upserted++
	}

	return res, nil
}
