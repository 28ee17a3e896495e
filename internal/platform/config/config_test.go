package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DefaultTxTimeout, cfg.Server.TxTimeout)
	assert.Equal(t, DefaultMinVisitorAge, cfg.Rules.MinVisitorAge)
	assert.Equal(t, DefaultMinRestrictionMotiveLength, cfg.Rules.MinRestrictionMotiveLength)
	assert.Equal(t, 50, cfg.Facility.MaxCapacity)
	assert.Empty(t, cfg.Database.URL)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("VISITGATE_ADDR", ":9090")
	t.Setenv("VISITGATE_TX_TIMEOUT", "2s")
	t.Setenv("VISITGATE_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("VISITGATE_MIN_VISITOR_AGE", "16")
	t.Setenv("VISITGATE_DEFAULT_FACILITY_CAPACITY", "3")
	t.Setenv("VISITGATE_DEFAULT_FACILITY_TZ", "America/Argentina/Buenos_Aires")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.TxTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 16, cfg.Rules.MinVisitorAge)
	assert.Equal(t, 3, cfg.Facility.MaxCapacity)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Facility.Timezone)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Run("non numeric age", func(t *testing.T) {
		t.Setenv("VISITGATE_MIN_VISITOR_AGE", "adult")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "VISITGATE_MIN_VISITOR_AGE")
	})
	t.Run("zero capacity", func(t *testing.T) {
		t.Setenv("VISITGATE_DEFAULT_FACILITY_CAPACITY", "0")
		_, err := FromEnv()
		assert.Error(t, err)
	})
	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("VISITGATE_TX_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.Error(t, err)
	})
}
