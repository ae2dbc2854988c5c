// Package config loads the ingester's environment-provided configuration
// (SPEC_FULL.md §6). Every field but RPCURL is optional and defaults as
// documented in spec.md's configuration table.
//
// A small, fixed set of scalar env vars does not warrant an ecosystem
// struct-tag env-loader; os.Getenv + strconv mirrors how the teacher's
// own small binaries (e.g. erigon's individual cmd/ entrypoints) parse a
// handful of flags by hand rather than reaching for a config framework.
package config

import (
	"os"
	"strconv"

	"github.com/base-indexer/baseindexer/internal/ingesterr"
)

// Config is the fully-resolved, validated configuration for one ingester
// process.
type Config struct {
	RPCURL             string
	PollIntervalMS     int
	SafetyBufferBlocks uint64
	ReorgRewindDepth   uint64
	StatsWindowBlocks  uint64
	ConcurrencyLimit   int
	DBPath             string
	LogLevel           string
	MetricsAddr        string
}

const (
	defaultPollIntervalMS     = 2000
	defaultSafetyBufferBlocks = 3
	defaultReorgRewindDepth   = 10
	defaultStatsWindowBlocks  = 100
	defaultConcurrencyLimit   = 5
	defaultDBPath             = "./data/base.db"
	defaultLogLevel           = "info"
	defaultMetricsAddr        = ":9090"
)

// Load reads the process environment and returns a validated Config, or
// a *ingesterr.FatalConfigError if RPC_URL is unset or a numeric field is
// malformed.
func Load() (*Config, error) {
	cfg := &Config{
		RPCURL:             os.Getenv("RPC_URL"),
		PollIntervalMS:     defaultPollIntervalMS,
		SafetyBufferBlocks: defaultSafetyBufferBlocks,
		ReorgRewindDepth:   defaultReorgRewindDepth,
		StatsWindowBlocks:  defaultStatsWindowBlocks,
		ConcurrencyLimit:   defaultConcurrencyLimit,
		DBPath:             defaultDBPath,
		LogLevel:           defaultLogLevel,
		MetricsAddr:        defaultMetricsAddr,
	}

	if cfg.RPCURL == "" {
		return nil, &ingesterr.FatalConfigError{Reason: "RPC_URL is required"}
	}

	var err error
	if cfg.PollIntervalMS, err = intEnv("POLL_INTERVAL_MS", cfg.PollIntervalMS); err != nil {
		return nil, err
	}
	if cfg.SafetyBufferBlocks, err = uintEnv("SAFETY_BUFFER_BLOCKS", cfg.SafetyBufferBlocks); err != nil {
		return nil, err
	}
	if cfg.ReorgRewindDepth, err = uintEnv("REORG_REWIND_DEPTH", cfg.ReorgRewindDepth); err != nil {
		return nil, err
	}
	if cfg.StatsWindowBlocks, err = uintEnv("STATS_WINDOW_BLOCKS", cfg.StatsWindowBlocks); err != nil {
		return nil, err
	}
	if cfg.ConcurrencyLimit, err = intEnv("CONCURRENCY_LIMIT", cfg.ConcurrencyLimit); err != nil {
		return nil, err
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	if cfg.ConcurrencyLimit < 1 {
		return nil, &ingesterr.FatalConfigError{Reason: "CONCURRENCY_LIMIT must be >= 1"}
	}

	return cfg, nil
}

func intEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ingesterr.FatalConfigError{Reason: "invalid " + name + ": " + err.Error()}
	}
	return n, nil
}

func uintEnv(name string, def uint64) (uint64, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, &ingesterr.FatalConfigError{Reason: "invalid " + name + ": " + err.Error()}
	}
	return n, nil
}
