package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.UTC, cfg.Cycle.Location)
	assert.Equal(t, 5, cfg.Cycle.FallbackPeriodLength)
	assert.Equal(t, 3, cfg.Cycle.DefaultPredictions)
	assert.Equal(t, 12, cfg.Cycle.MaxPredictions)
	assert.Zero(t, cfg.RateLimit.RPS)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CYCLE_TIMEZONE", "Asia/Jakarta")
	v.Set("CYCLE_DEFAULT_PREDICTIONS", 20)
	v.Set("CYCLE_MAX_PREDICTIONS", 6)
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("CYCLE_CACHE_TTL", "not-a-duration")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "Asia/Jakarta", cfg.Cycle.Location.String())
	assert.Equal(t, 6, cfg.Cycle.DefaultPredictions)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestFromViperRejectsUnknownZone(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("CYCLE_TIMEZONE", "Mars/Olympus")

	_, err := fromViper(v)
	assert.Error(t, err)
}
