// Package advice turns stored statistics into a daily buy/sell signal per
// competitor using a language model.
package advice

import (
	"context"
	"fmt"
	"time"

	"courtside/ingestion/internal/metrics"
	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// Completer sends a prompt to a language model and returns its answer
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Report summarises one generation run
type Report struct {
	Candidates     int
	Generated      int
	AlreadyAdvised int
	Failed         int
}

// Generator writes at most one advice row per competitor per calendar day
type Generator struct {
	store    *repository.Store
	llm      Completer
	location *time.Location
	now      func() time.Time
}

// NewGenerator creates a generator. loc defines the calendar day.
func NewGenerator(store *repository.Store, llm Completer, loc *time.Location) *Generator {
	return &Generator{
		store:    store,
		llm:      llm,
		location: loc,
		now:      time.Now,
	}
}

// Run generates advice for every competitor that has statistics and no advice
// yet today. A failure for one competitor is logged and the run moves on.
func (g *Generator) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var report Report

	competitors, err := g.store.Competitors.ListWithStatistics(ctx)
	if err != nil {
		metrics.RecordSync("advice", "error", time.Since(start).Seconds())
		return report, fmt.Errorf("failed to list competitors with statistics: %w", err)
	}
	report.Candidates = len(competitors)

	now := g.now()
	startOfDay := models.StartOfDay(now, g.location)

	for _, competitor := range competitors {
		existing, err := g.store.Advice.FindSince(ctx, competitor.ID, startOfDay)
		if err != nil {
			log.Error().Err(err).Int("competitor_id", competitor.ID).Msg("Failed to check existing advice")
			report.Failed++
			continue
		}
		if existing != nil {
			report.AlreadyAdvised++
			continue
		}

		if err := g.generate(ctx, competitor, now); err != nil {
			log.Error().
				Err(err).
				Int("competitor_id", competitor.ID).
				Str("competitor", competitor.Name).
				Msg("Failed to generate advice")
			metrics.RecordError("advice", "generate")
			report.Failed++
			continue
		}
		report.Generated++
	}

	status := "success"
	if report.Failed > 0 {
		status = "partial"
	}
	metrics.RecordSync("advice", status, time.Since(start).Seconds())

	log.Info().
		Int("candidates", report.Candidates).
		Int("generated", report.Generated).
		Int("already_advised", report.AlreadyAdvised).
		Int("failed", report.Failed).
		Dur("duration", time.Since(start)).
		Msg("Advice generation complete")

	return report, nil
}

func (g *Generator) generate(ctx context.Context, competitor *models.Competitor, now time.Time) error {
	input, err := g.promptInput(ctx, competitor, now)
	if err != nil {
		return err
	}

	text, err := g.llm.Complete(ctx, BuildPrompt(input))
	if err != nil {
		return err
	}

	decision, cleaned := ParseDecision(text)
	if decision == DecisionNone {
		log.Warn().
			Int("competitor_id", competitor.ID).
			Msg("No decision token in advice, storing empty order")
	}

	advice := &models.CompetitorAdvice{
		CompetitorID: competitor.ID,
		Advice:       cleaned,
		Order:        string(decision),
	}
	if err := g.store.Advice.Create(ctx, advice); err != nil {
		return err
	}
	metrics.RecordAdvice(advice.Order)

	log.Debug().
		Int("competitor_id", competitor.ID).
		Str("order", advice.Order).
		Msg("Advice stored")

	return nil
}

// promptInput gathers the competitor's statistics and, when a future match
// exists, its opponent's
func (g *Generator) promptInput(ctx context.Context, competitor *models.Competitor, now time.Time) (PromptInput, error) {
	input := PromptInput{Competitor: competitor.Name}

	stats, err := g.store.Statistics.ListByCompetitor(ctx, competitor.ID)
	if err != nil {
		return input, err
	}
	input.Statistics = models.FormatStatistics(stats)

	match, err := g.store.Matches.NextForCompetitor(ctx, competitor.ID, now)
	if err != nil {
		return input, err
	}
	if match == nil {
		return input, nil
	}

	opponent, err := g.store.Competitors.FindByID(ctx, match.OpponentOf(competitor.ID))
	if err != nil {
		return input, err
	}
	if opponent == nil {
		return input, nil
	}
	input.Opponent = opponent.DisplayName()

	opponentStats, err := g.store.Statistics.ListByCompetitor(ctx, opponent.ID)
	if err != nil {
		return input, err
	}
	input.OpponentStatistics = models.FormatStatistics(opponentStats)

	return input, nil
}
