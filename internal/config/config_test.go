package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SPORTRADAR_API_KEY", "sr-key")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("SEASON_IDS", "105353,106479")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.ProviderMinInterval)
	assert.Equal(t, 1200*time.Millisecond, cfg.StatsStaggerInterval)
	assert.Equal(t, []string{"105353", "106479"}, cfg.SeasonIDs)
	assert.Equal(t, "0 3 * * *", cfg.DailySyncCron)
	assert.False(t, cfg.AdviceEnabled(), "Advice should be disabled without an LLM key")
	assert.Equal(t, time.UTC.String(), cfg.Location().String())
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("SPORTRADAR_API_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{
		SportradarAPIKey:     "k",
		DatabasePassword:     "p",
		ProviderMinInterval:  time.Second,
		StatsStaggerInterval: time.Second,
		Timezone:             "UTC",
	}
	require.NoError(t, base.Validate())

	badStagger := base
	badStagger.StatsStaggerInterval = 0
	assert.Error(t, badStagger.Validate())

	badZone := base
	badZone.Timezone = "Mars/Olympus"
	assert.Error(t, badZone.Validate())
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{AppEnv: "production"}).IsDevelopment())
	assert.False(t, (&Config{AppEnv: "staging"}).IsDevelopment())
}
