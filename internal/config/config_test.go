package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/base-indexer/baseindexer/internal/ingesterr"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"RPC_URL", "POLL_INTERVAL_MS", "SAFETY_BUFFER_BLOCKS", "REORG_REWIND_DEPTH",
		"STATS_WINDOW_BLOCKS", "CONCURRENCY_LIMIT", "DB_PATH", "LOG_LEVEL", "METRICS_ADDR",
	} {
		os.Unsetenv(name)
	}
}

func TestLoadFailsWithoutRPCURL(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	require.Error(t, err)
	var fatal *ingesterr.FatalConfigError
	require.ErrorAs(t, err, &fatal)
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	os.Setenv("RPC_URL", "https://mainnet.base.org")
	defer clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://mainnet.base.org", cfg.RPCURL)
	require.Equal(t, defaultPollIntervalMS, cfg.PollIntervalMS)
	require.Equal(t, uint64(defaultSafetyBufferBlocks), cfg.SafetyBufferBlocks)
	require.Equal(t, uint64(defaultReorgRewindDepth), cfg.ReorgRewindDepth)
	require.Equal(t, uint64(defaultStatsWindowBlocks), cfg.StatsWindowBlocks)
	require.Equal(t, defaultConcurrencyLimit, cfg.ConcurrencyLimit)
	require.Equal(t, defaultDBPath, cfg.DBPath)
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
	require.Equal(t, defaultMetricsAddr, cfg.MetricsAddr)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("RPC_URL", "https://mainnet.base.org")
	os.Setenv("POLL_INTERVAL_MS", "500")
	os.Setenv("SAFETY_BUFFER_BLOCKS", "7")
	os.Setenv("DB_PATH", "/tmp/base.db")
	os.Setenv("LOG_LEVEL", "debug")
	defer clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.PollIntervalMS)
	require.Equal(t, uint64(7), cfg.SafetyBufferBlocks)
	require.Equal(t, "/tmp/base.db", cfg.DBPath)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsMalformedNumericEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("RPC_URL", "https://mainnet.base.org")
	os.Setenv("POLL_INTERVAL_MS", "not-a-number")
	defer clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	var fatal *ingesterr.FatalConfigError
	require.ErrorAs(t, err, &fatal)
}

func TestLoadRejectsZeroConcurrencyLimit(t *testing.T) {
	clearEnv(t)
	os.Setenv("RPC_URL", "https://mainnet.base.org")
	os.Setenv("CONCURRENCY_LIMIT", "0")
	defer clearEnv(t)

	_, err := Load()
	require.Error(t, err)
}
