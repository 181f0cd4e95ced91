// Package memstore is an in-memory implementation of the repository stores.
// Uniqueness rules match the Postgres schema.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"
)

// DB holds every table. The zero value is not usable; call New.
type DB struct {
	mu  sync.Mutex
	seq int

	// Now stamps created_at / updated_at
	Now func() time.Time

	seasons          map[int]*models.Season
	competitors      map[int]*models.Competitor
	players          map[int]*models.Player
	statistics       map[int]*models.Statistic
	playerStatistics map[int]*models.PlayerStatistic
	matches          map[int]*models.UpcomingMatch
	advice           map[int]*models.CompetitorAdvice
}

// New creates an empty database
func New() *DB {
	return &DB{
		Now:              time.Now,
		seasons:          map[int]*models.Season{},
		competitors:      map[int]*models.Competitor{},
		players:          map[int]*models.Player{},
		statistics:       map[int]*models.Statistic{},
		playerStatistics: map[int]*models.PlayerStatistic{},
		matches:          map[int]*models.UpcomingMatch{},
		advice:           map[int]*models.CompetitorAdvice{},
	}
}

// Store returns the store set backed by this database
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Seasons:          seasonStore{db},
		Competitors:      competitorStore{db},
		Players:          playerStore{db},
		Statistics:       statisticStore{db},
		PlayerStatistics: playerStatisticStore{db},
		Matches:          matchStore{db},
		Advice:           adviceStore{db},
	}
}

func (db *DB) nextID() int {
	db.seq++
	return db.seq
}

// Counts returns the number of rows per table
func (db *DB) Counts() map[string]int {
	db.mu.Lock()
	defer db.mu.Unlock()

	return map[string]int{
		"seasons":           len(db.seasons),
		"competitors":       len(db.competitors),
		"players":           len(db.players),
		"statistics":        len(db.statistics),
		"player_statistics": len(db.playerStatistics),
		"upcoming_matches":  len(db.matches),
		"competitor_advice": len(db.advice),
	}
}

// Seasons returns a copy of every season ordered by id
func (db *DB) Seasons() []models.Season {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Season, 0, len(db.seasons))
	for _, s := range db.seasons {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Competitors returns a copy of every competitor ordered by id
func (db *DB) Competitors() []models.Competitor {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Competitor, 0, len(db.competitors))
	for _, c := range db.competitors {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Players returns a copy of every player ordered by id
func (db *DB) Players() []models.Player {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Player, 0, len(db.players))
	for _, p := range db.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Statistics returns a copy of every competitor statistic ordered by id
func (db *DB) Statistics() []models.Statistic {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Statistic, 0, len(db.statistics))
	for _, s := range db.statistics {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Advice returns a copy of every advice row ordered by id
func (db *DB) Advice() []models.CompetitorAdvice {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.CompetitorAdvice, 0, len(db.advice))
	for _, a := range db.advice {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Matches returns a copy of every upcoming match ordered by id
func (db *DB) Matches() []models.UpcomingMatch {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.UpcomingMatch, 0, len(db.matches))
	for _, m := range db.matches {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type seasonStore struct{ db *DB }

func (s seasonStore) FindBySpecialID(_ context.Context, specialID string) (*models.Season, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, season := range s.db.seasons {
		if season.SpecialID == specialID {
			cp := *season
			return &cp, nil
		}
	}
	return nil, nil
}

func (s seasonStore) Upsert(_ context.Context, season *models.Season) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := s.db.Now()
	for _, existing := range s.db.seasons {
		if existing.SpecialID == season.SpecialID {
			updatedAt := now
			if sameSeason(existing, season) {
				updatedAt = existing.UpdatedAt
			}
			season.ID, season.CreatedAt, season.UpdatedAt = existing.ID, existing.CreatedAt, updatedAt
			cp := *season
			s.db.seasons[existing.ID] = &cp
			return nil
		}
	}

	season.ID, season.CreatedAt, season.UpdatedAt = s.db.nextID(), now, now
	cp := *season
	s.db.seasons[season.ID] = &cp
	return nil
}

func (s seasonStore) ListEndingOnOrAfter(_ context.Context, day time.Time) ([]*models.Season, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*models.Season
	for _, season := range s.db.seasons {
		if season.IsActiveOn(day) {
			cp := *season
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

type competitorStore struct{ db *DB }

func (s competitorStore) FindBySpecialID(_ context.Context, specialID string) (*models.Competitor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, c := range s.db.competitors {
		if c.SpecialID == specialID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s competitorStore) FindByID(_ context.Context, id int) (*models.Competitor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if c, ok := s.db.competitors[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s competitorStore) Upsert(_ context.Context, competitor *models.Competitor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.seasons[competitor.SeasonID]; !ok {
		return fmt.Errorf("failed to upsert competitor: season %d does not exist", competitor.SeasonID)
	}

	now := s.db.Now()
	for _, existing := range s.db.competitors {
		if existing.SpecialID == competitor.SpecialID {
			updatedAt := now
			if sameCompetitor(existing, competitor) {
				updatedAt = existing.UpdatedAt
			}
			competitor.ID, competitor.CreatedAt, competitor.UpdatedAt = existing.ID, existing.CreatedAt, updatedAt
			competitor.Logo = existing.Logo
			cp := *competitor
			s.db.competitors[existing.ID] = &cp
			return nil
		}
	}

	competitor.ID, competitor.CreatedAt, competitor.UpdatedAt = s.db.nextID(), now, now
	competitor.Logo.Valid, competitor.Logo.String = false, ""
	cp := *competitor
	s.db.competitors[competitor.ID] = &cp
	return nil
}

func (s competitorStore) UpdateLogo(_ context.Context, id int, logo string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.competitors[id]
	if !ok {
		return fmt.Errorf("competitor not found: id=%d", id)
	}
	c.Logo.String, c.Logo.Valid = logo, true
	c.UpdatedAt = s.db.Now()
	return nil
}

func (s competitorStore) filter(keep func(*models.Competitor) bool) []*models.Competitor {
	var out []*models.Competitor
	for _, c := range s.db.competitors {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s competitorStore) ListBySeason(_ context.Context, seasonID int) ([]*models.Competitor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return s.filter(func(c *models.Competitor) bool { return c.SeasonID == seasonID }), nil
}

func (s competitorStore) ListMissingLogo(_ context.Context, seasonID int) ([]*models.Competitor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return s.filter(func(c *models.Competitor) bool { return c.SeasonID == seasonID && !c.Logo.Valid }), nil
}

func (s competitorStore) ListWithStatistics(_ context.Context) ([]*models.Competitor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	withStats := map[int]bool{}
	for _, stat := range s.db.statistics {
		withStats[stat.CompetitorID] = true
	}
	return s.filter(func(c *models.Competitor) bool { return withStats[c.ID] }), nil
}

type playerStore struct{ db *DB }

func (s playerStore) FindBySpecialID(_ context.Context, specialID string) (*models.Player, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, p := range s.db.players {
		if p.SpecialID == specialID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s playerStore) Upsert(_ context.Context, player *models.Player) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.competitors[player.CompetitorID]; !ok {
		return fmt.Errorf("failed to upsert player: competitor %d does not exist", player.CompetitorID)
	}

	now := s.db.Now()
	for _, existing := range s.db.players {
		if existing.SpecialID == player.SpecialID {
			updatedAt := now
			if existing.Name == player.Name && existing.CompetitorID == player.CompetitorID {
				updatedAt = existing.UpdatedAt
			}
			player.ID, player.CreatedAt, player.UpdatedAt = existing.ID, existing.CreatedAt, updatedAt
			cp := *player
			s.db.players[existing.ID] = &cp
			return nil
		}
	}

	player.ID, player.CreatedAt, player.UpdatedAt = s.db.nextID(), now, now
	cp := *player
	s.db.players[player.ID] = &cp
	return nil
}

type statisticStore struct{ db *DB }

func (s statisticStore) FindFirst(_ context.Context, competitorID int, statType string) (*models.Statistic, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var first *models.Statistic
	for _, stat := range s.db.statistics {
		if stat.CompetitorID == competitorID && stat.Type == statType {
			if first == nil || stat.ID < first.ID {
				first = stat
			}
		}
	}
	if first == nil {
		return nil, nil
	}
	cp := *first
	return &cp, nil
}

func (s statisticStore) Create(_ context.Context, stat *models.Statistic) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.statistics {
		if existing.CompetitorID == stat.CompetitorID && existing.Type == stat.Type {
			return fmt.Errorf("failed to create statistic: duplicate (%d, %s)", stat.CompetitorID, stat.Type)
		}
	}

	now := s.db.Now()
	stat.ID, stat.CreatedAt, stat.UpdatedAt = s.db.nextID(), now, now
	cp := *stat
	s.db.statistics[stat.ID] = &cp
	return nil
}

func (s statisticStore) UpdateValue(_ context.Context, id int, value float64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stat, ok := s.db.statistics[id]
	if !ok {
		return fmt.Errorf("failed to update statistic: id=%d not found", id)
	}
	stat.Value = value
	stat.UpdatedAt = s.db.Now()
	return nil
}

func (s statisticStore) ListByCompetitor(_ context.Context, competitorID int) ([]*models.Statistic, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []*models.Statistic
	for _, stat := range s.db.statistics {
		if stat.CompetitorID == competitorID {
			cp := *stat
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (s statisticStore) UpdatedSince(_ context.Context, competitorID int, since time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, stat := range s.db.statistics {
		if stat.CompetitorID == competitorID && !stat.UpdatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type playerStatisticStore struct{ db *DB }

func (s playerStatisticStore) FindFirst(_ context.Context, playerID int, statType string) (*models.PlayerStatistic, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var first *models.PlayerStatistic
	for _, stat := range s.db.playerStatistics {
		if stat.PlayerID == playerID && stat.Type == statType {
			if first == nil || stat.ID < first.ID {
				first = stat
			}
		}
	}
	if first == nil {
		return nil, nil
	}
	cp := *first
	return &cp, nil
}

func (s playerStatisticStore) Create(_ context.Context, stat *models.PlayerStatistic) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.playerStatistics {
		if existing.PlayerID == stat.PlayerID && existing.Type == stat.Type {
			return fmt.Errorf("failed to create player statistic: duplicate (%d, %s)", stat.PlayerID, stat.Type)
		}
	}

	now := s.db.Now()
	stat.ID, stat.CreatedAt, stat.UpdatedAt = s.db.nextID(), now, now
	cp := *stat
	s.db.playerStatistics[stat.ID] = &cp
	return nil
}

func (s playerStatisticStore) UpdateValue(_ context.Context, id int, value float64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stat, ok := s.db.playerStatistics[id]
	if !ok {
		return fmt.Errorf("failed to update player statistic: id=%d not found", id)
	}
	stat.Value = value
	stat.UpdatedAt = s.db.Now()
	return nil
}

type matchStore struct{ db *DB }

func (s matchStore) FindBySpecialID(_ context.Context, specialID string) (*models.UpcomingMatch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, m := range s.db.matches {
		if m.SpecialID == specialID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s matchStore) Upsert(_ context.Context, match *models.UpcomingMatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, id := range []int{match.HomeCompetitorID, match.AwayCompetitorID} {
		if _, ok := s.db.competitors[id]; !ok {
			return fmt.Errorf("failed to upsert upcoming match: competitor %d does not exist", id)
		}
	}

	now := s.db.Now()
	for _, existing := range s.db.matches {
		if existing.SpecialID == match.SpecialID {
			updatedAt := now
			if sameMatch(existing, match) {
				updatedAt = existing.UpdatedAt
			}
			match.ID, match.CreatedAt, match.UpdatedAt = existing.ID, existing.CreatedAt, updatedAt
			cp := *match
			s.db.matches[existing.ID] = &cp
			return nil
		}
	}

	match.ID, match.CreatedAt, match.UpdatedAt = s.db.nextID(), now, now
	cp := *match
	s.db.matches[match.ID] = &cp
	return nil
}

func (s matchStore) NextForCompetitor(_ context.Context, competitorID int, after time.Time) (*models.UpcomingMatch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var next *models.UpcomingMatch
	for _, m := range s.db.matches {
		if m.HomeCompetitorID != competitorID && m.AwayCompetitorID != competitorID {
			continue
		}
		if !m.StartTime.After(after) {
			continue
		}
		if next == nil || m.StartTime.Before(next.StartTime) {
			next = m
		}
	}
	if next == nil {
		return nil, nil
	}
	cp := *next
	return &cp, nil
}

type adviceStore struct{ db *DB }

func (s adviceStore) FindSince(_ context.Context, competitorID int, since time.Time) (*models.CompetitorAdvice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var latest *models.CompetitorAdvice
	for _, a := range s.db.advice {
		if a.CompetitorID != competitorID || a.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s adviceStore) Create(_ context.Context, advice *models.CompetitorAdvice) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.competitors[advice.CompetitorID]; !ok {
		return fmt.Errorf("failed to create competitor advice: competitor %d does not exist", advice.CompetitorID)
	}

	advice.ID, advice.CreatedAt = s.db.nextID(), s.db.Now()
	cp := *advice
	s.db.advice[advice.ID] = &cp
	return nil
}

// same* report whether an upsert would leave the stored columns unchanged

func sameSeason(a, b *models.Season) bool {
	return a.Name == b.Name &&
		a.StartDate.Equal(b.StartDate) &&
		a.EndDate.Equal(b.EndDate) &&
		a.Year == b.Year &&
		a.CompetitionID == b.CompetitionID
}

func sameCompetitor(a, b *models.Competitor) bool {
	return a.Name == b.Name &&
		a.ShortName == b.ShortName &&
		a.Abbreviation == b.Abbreviation &&
		a.Gender == b.Gender &&
		a.Country == b.Country &&
		a.CountryCode == b.CountryCode &&
		a.SeasonID == b.SeasonID
}

func sameMatch(a, b *models.UpcomingMatch) bool {
	return a.HomeCompetitorID == b.HomeCompetitorID &&
		a.AwayCompetitorID == b.AwayCompetitorID &&
		a.StartTime.Equal(b.StartTime) &&
		a.Venue == b.Venue &&
		a.Status == b.Status &&
		a.SeasonID == b.SeasonID
}
