package synchronizer

import (
	"context"
	"time"

	"courtside/ingestion/internal/identifier"
	"courtside/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncUpcomingMatches stores the fixtures of a season that start strictly
// after the batch start time and whose two sides are known locally.
func (s *Synchronizer) SyncUpcomingMatches(ctx context.Context, seasonID string) (res Result, err error) {
	start := time.Now()
	res = Result{Kind: "upcoming_matches"}
	defer func() { s.record(&res, start, err) }()

	season, err := s.season(ctx, seasonID)
	if err != nil {
		return res, err
	}

	schedules, err := s.provider.FetchSchedules(ctx, season.SpecialID)
	if err != nil {
		return res, err
	}
	res.Fetched = len(schedules)

	cutoff := s.now()
	for i := range schedules {
		schedule := &schedules[i]
		eventID := schedule.SpecialID()

		if !schedule.SportEvent.StartTime.After(cutoff) {
			res.Skipped++
			continue
		}

		home, away, ok := schedule.Sides()
		if !ok {
			log.Warn().Str("event_id", eventID).Msg("Match does not have two distinct competitors, skipping")
			res.Skipped++
			continue
		}

		homeCompetitor, err := s.resolveCompetitor(ctx, home)
		if err != nil {
			s.skipMatch(&res, eventID, err)
			continue
		}
		awayCompetitor, err := s.resolveCompetitor(ctx, away)
		if err != nil {
			s.skipMatch(&res, eventID, err)
			continue
		}

		match := schedule.ToUpcomingMatch(season.ID, homeCompetitor.ID, awayCompetitor.ID)
		if err := s.store.Matches.Upsert(ctx, match); err != nil {
			log.Error().Err(err).Str("event_id", eventID).Msg("Failed to sync upcoming match")
			res.AddErrorf("match %s: %v", eventID, err)
			continue
		}
		res.Upserted++
	}

	return res, nil
}

func (s *Synchronizer) resolveCompetitor(ctx context.Context, side models.EventCompetitorInput) (*models.Competitor, error) {
	specialID := identifier.Strip(side.ID, identifier.Competitor)
	competitor, err := s.store.Competitors.FindBySpecialID(ctx, specialID)
	if err != nil {
		return nil, err
	}
	if competitor == nil {
		return nil, &NotFoundLocallyError{Kind: "competitor", SpecialID: specialID}
	}
	return competitor, nil
}

func (s *Synchronizer) skipMatch(res *Result, eventID string, err error) {
	if IsNotFoundLocally(err) {
		log.Warn().Err(err).Str("event_id", eventID).Msg("Match competitor not found locally, skipping")
		res.Skipped++
		return
	}
	log.Error().Err(err).Str("event_id", eventID).Msg("Failed to resolve match competitor")
	res.AddErrorf("match %s: %v", eventID, err)
}
