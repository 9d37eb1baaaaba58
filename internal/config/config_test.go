package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personaut/personaut/internal/config"
	"github.com/personaut/personaut/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := config.LoadConfig()

	assert.Equal(t, 0.2, cfg.Engine.Volatility)
	assert.Equal(t, 10, cfg.Engine.HistorySize)
	assert.Equal(t, 0.8, cfg.Engine.DecayFactor)
	assert.Equal(t, 0.3, cfg.Trust.StrangerTrust)
	assert.Equal(t, 6, cfg.Trust.MaxPathDepth)
	assert.Equal(t, "memory", cfg.Storage.Engine)
	assert.Equal(t, 256, cfg.Embedding.Dimension)
	assert.Equal(t, 24*time.Hour, cfg.Embedding.RedisTTL)
	assert.Empty(t, cfg.SettingsPath)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PERSONAUT_VOLATILITY", "0.35")
	t.Setenv("PERSONAUT_HISTORY_SIZE", "25")
	t.Setenv("PERSONAUT_STRANGER_TRUST", "0.1")
	t.Setenv("PERSONAUT_STORAGE_ENGINE", "sqlite")
	t.Setenv("PERSONAUT_STORAGE_DSN", "/tmp/p.db")
	t.Setenv("PERSONAUT_REDIS_TTL", "90m")

	cfg := config.LoadConfig()
	assert.Equal(t, 0.35, cfg.Engine.Volatility)
	assert.Equal(t, 25, cfg.Engine.HistorySize)
	assert.Equal(t, 0.1, cfg.Trust.StrangerTrust)
	assert.Equal(t, "sqlite", cfg.Storage.Engine)
	assert.Equal(t, "/tmp/p.db", cfg.Storage.DSN)
	assert.Equal(t, 90*time.Minute, cfg.Embedding.RedisTTL)
}

func TestLoadConfigIgnoresUnparseableValues(t *testing.T) {
	t.Setenv("PERSONAUT_VOLATILITY", "very high")
	t.Setenv("PERSONAUT_HISTORY_SIZE", "many")

	cfg := config.LoadConfig()
	assert.Equal(t, 0.2, cfg.Engine.Volatility)
	assert.Equal(t, 10, cfg.Engine.HistorySize)
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettings(t *testing.T) {
	path := writeSettings(t, `
volatility: 0.4
stranger_trust: 0.25
transitions:
  joy:
    joy: 0.6
    peaceful: 0.4
coefficients:
  warmth:
    loving: 0.5
`)
	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	require.NotNil(t, s.Volatility)
	assert.Equal(t, 0.4, *s.Volatility)
	require.NotNil(t, s.StrangerTrust)
	assert.Equal(t, 0.25, *s.StrangerTrust)

	table := s.TransitionTable()
	assert.Equal(t, 0.6, table[types.CategoryJoy][types.CategoryJoy])
	assert.Equal(t, 0.4, table[types.CategoryJoy][types.CategoryPeaceful])
	// Overriding one row replaces it entirely.
	assert.Zero(t, table[types.CategoryJoy][types.CategoryPowerful])
	// Untouched rows keep their defaults.
	assert.Equal(t, 0.4, table[types.CategoryAnger][types.CategoryAnger])

	coeffs := s.TraitCoefficients()
	assert.Equal(t, 0.5, coeffs.Coefficient(types.TraitWarmth, "loving"))
	// Untouched entries keep their defaults.
	defaults := types.DefaultTraitCoefficients()
	assert.Equal(t, defaults.Coefficient(types.TraitWarmth, "nurturing"),
		coeffs.Coefficient(types.TraitWarmth, "nurturing"))
}

func TestLoadSettingsRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"volatility out of range", "volatility: 1.5"},
		{"unknown category", "transitions:\n  blissful:\n    joy: 1.0"},
		{"unknown target category", "transitions:\n  joy:\n    blissful: 1.0"},
		{"negative weight", "transitions:\n  joy:\n    joy: -0.5"},
		{"empty row", "transitions:\n  joy: {}"},
		{"unknown trait", "coefficients:\n  charisma:\n    loving: 0.5"},
		{"unknown emotion", "coefficients:\n  warmth:\n    blissful: 0.5"},
		{"malformed yaml", "transitions: ["},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSettings(t, tc.content)
			_, err := config.LoadSettings(path)
			assert.Error(t, err)
		})
	}

	_, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSettingsWatcherHotReload(t *testing.T) {
	path := writeSettings(t, "volatility: 0.2\n")

	reloaded := make(chan *config.Settings, 4)
	watcher := config.NewSettingsWatcher(path, func(s *config.Settings) {
		reloaded <- s
	})

	initial, err := watcher.Start()
	require.NoError(t, err)
	defer watcher.Stop()
	require.NotNil(t, initial.Volatility)
	assert.Equal(t, 0.2, *initial.Volatility)

	require.NoError(t, os.WriteFile(path, []byte("volatility: 0.7\n"), 0o600))

	select {
	case s := <-reloaded:
		require.NotNil(t, s.Volatility)
		assert.Equal(t, 0.7, *s.Volatility)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change was not observed")
	}
}

func TestSettingsWatcherKeepsOldOnBadReload(t *testing.T) {
	path := writeSettings(t, "volatility: 0.2\n")

	reloaded := make(chan *config.Settings, 4)
	watcher := config.NewSettingsWatcher(path, func(s *config.Settings) {
		reloaded <- s
	})
	_, err := watcher.Start()
	require.NoError(t, err)
	defer watcher.Stop()

	// An invalid document must not reach the callback.
	require.NoError(t, os.WriteFile(path, []byte("volatility: 2.0\n"), 0o600))
	select {
	case s := <-reloaded:
		t.Fatalf("invalid settings delivered: %+v", s)
	case <-time.After(500 * time.Millisecond):
	}

	// A subsequent valid document does.
	require.NoError(t, os.WriteFile(path, []byte("volatility: 0.9\n"), 0o600))
	select {
	case s := <-reloaded:
		require.NotNil(t, s.Volatility)
		assert.Equal(t, 0.9, *s.Volatility)
	case <-time.After(5 * time.Second):
		t.Fatal("settings change was not observed")
	}
}
