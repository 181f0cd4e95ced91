package advice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"
	"courtside/ingestion/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db      *memstore.DB
	store   *repository.Store
	clock   *clock
	arsenal *models.Competitor
	city    *models.Competitor
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)}

	db := memstore.New()
	db.Now = c.Now
	store := db.Store()

	season := &models.Season{SpecialID: "118689", Name: "PL", EndDate: c.now.AddDate(0, 6, 0)}
	require.NoError(t, store.Seasons.Upsert(ctx, season))

	arsenal := &models.Competitor{SpecialID: "42", Name: "Arsenal FC", SeasonID: season.ID}
	city := &models.Competitor{SpecialID: "17", Name: "Manchester City", SeasonID: season.ID}
	city.ShortName.String, city.ShortName.Valid = "Man City", true
	require.NoError(t, store.Competitors.Upsert(ctx, arsenal))
	require.NoError(t, store.Competitors.Upsert(ctx, city))

	require.NoError(t, store.Statistics.Create(ctx, &models.Statistic{CompetitorID: arsenal.ID, Type: "goals_scored", Value: 10}))
	require.NoError(t, store.Statistics.Create(ctx, &models.Statistic{CompetitorID: city.ID, Type: "goals_scored", Value: 14}))

	return &fixture{db: db, store: store, clock: c, arsenal: arsenal, city: city}
}

func (f *fixture) generator(llm Completer) *Generator {
	g := NewGenerator(f.store, llm, time.UTC)
	g.now = f.clock.Now
	return g
}

func TestRun_DailyDedup(t *testing.T) {
	f := newFixture(t)
	llm := &fakeLLM{reply: func(string) (string, error) { return "Perf: in form. Order: buy", nil }}
	g := f.generator(llm)
	ctx := context.Background()

	report, err := g.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 2, report.Generated)

	// Same calendar day
	f.clock.Advance(10 * time.Hour)
	report, err = g.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Generated)
	assert.Equal(t, 2, report.AlreadyAdvised)
	assert.Len(t, f.db.Advice(), 2)

	// Next day
	f.clock.Advance(6 * time.Hour)
	report, err = g.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Generated)
	assert.Len(t, f.db.Advice(), 4)

	for _, a := range f.db.Advice() {
		assert.Equal(t, "buy", a.Order)
		assert.Equal(t, "Perf: in form.", a.Advice)
	}
}

func TestRun_UsesOpponentStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Matches.Upsert(ctx, &models.UpcomingMatch{
		SpecialID:        "1",
		HomeCompetitorID: f.arsenal.ID,
		AwayCompetitorID: f.city.ID,
		StartTime:        f.clock.Now().Add(72 * time.Hour),
		Status:           models.MatchStatusNotStarted,
		SeasonID:         f.arsenal.SeasonID,
	}))

	llm := &fakeLLM{reply: func(string) (string, error) { return "Perf: tough fixture.", nil }}
	_, err := f.generator(llm).Run(ctx)
	require.NoError(t, err)

	require.Len(t, llm.prompts, 2)
	arsenalPrompt := llm.prompts[0]
	assert.Contains(t, arsenalPrompt, "Season statistics for Arsenal FC: goals_scored: 10.")
	assert.Contains(t, arsenalPrompt, "Their next opponent is Man City. Season statistics for Man City: goals_scored: 14.")

	// No decision token still stores the advice with an empty order
	advice := f.db.Advice()
	require.Len(t, advice, 2)
	assert.Equal(t, "", advice[0].Order)
	assert.Equal(t, "Perf: tough fixture.", advice[0].Advice)
}

func TestRun_FailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	llm := &fakeLLM{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Arsenal FC") {
			return "", errors.New("chat completion returned status 500")
		}
		return "Order: sell. Perf: fading.", nil
	}}

	report, err := f.generator(llm).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Generated)

	advice := f.db.Advice()
	require.Len(t, advice, 1)
	assert.Equal(t, f.city.ID, advice[0].CompetitorID)
	assert.Equal(t, "sell", advice[0].Order)
	assert.Equal(t, "Perf: fading.", advice[0].Advice)
}

func TestRun_NoCandidates(t *testing.T) {
	db := memstore.New()
	llm := &fakeLLM{reply: func(string) (string, error) { return "", nil }}

	report, err := NewGenerator(db.Store(), llm, time.UTC).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Candidates)
	assert.Empty(t, llm.prompts)
}
