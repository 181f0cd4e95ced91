package synchronizer

import (
	"context"
	"time"

	"courtside/ingestion/internal/identifier"

	"github.com/rs/zerolog/log"
)

// SyncPlayers upserts every squad of a season. Squads of competitors that
// are not stored locally are skipped.
func (s *Synchronizer) SyncPlayers(ctx context.Context, seasonID string) (res Result, err error) {
	start := time.Now()
	res = Result{Kind: "players"}
	defer func() { s.record(&res, start, err) }()

	season, err := s.season(ctx, seasonID)
	if err != nil {
		return res, err
	}

	squads, err := s.provider.FetchCompetitorPlayers(ctx, season.SpecialID)
	if err != nil {
		return res, err
	}

	for _, squad := range squads {
		res.Fetched += len(squad.Players)

		competitorID := identifier.Strip(squad.ID, identifier.Competitor)
		competitor, err := s.store.Competitors.FindBySpecialID(ctx, competitorID)
		if err != nil {
			log.Error().Err(err).Str("competitor_id", competitorID).Msg("Failed to resolve competitor")
			res.AddErrorf("competitor %s: %v", competitorID, err)
			continue
		}
		if competitor == nil {
			log.Warn().
				Str("competitor_id", competitorID).
				Int("players", len(squad.Players)).
				Msg("Competitor not found locally, skipping squad")
			res.Skipped += len(squad.Players)
			continue
		}

		for i := range squad.Players {
			player := squad.Players[i].ToPlayer(competitor.ID)

			if err := s.store.Players.Upsert(ctx, player); err != nil {
				log.Error().Err(err).Str("player_id", player.SpecialID).Msg("Failed to sync player")
				res.AddErrorf("player %s: %v", player.SpecialID, err)
				continue
			}
			res.Upserted++
		}
	}

	return res, nil
}
