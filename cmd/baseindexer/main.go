// Command baseindexer runs the Base L2 ingester (`ingest`) or reports a
// snapshot of an existing store (`stats`). Both subcommands build their
// own dependency graph by hand in RunE: no DI framework, matching the
// teacher's own small entrypoints.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/base-indexer/baseindexer/internal/config"
	"github.com/base-indexer/baseindexer/internal/dex"
	"github.com/base-indexer/baseindexer/internal/logging"
	"github.com/base-indexer/baseindexer/internal/metrics"
	"github.com/base-indexer/baseindexer/internal/poller"
	"github.com/base-indexer/baseindexer/internal/reorg"
	"github.com/base-indexer/baseindexer/internal/rpc"
	"github.com/base-indexer/baseindexer/internal/seed"
	"github.com/base-indexer/baseindexer/internal/store"
)

// dexCacheSize bounds the resolver's in-memory LRU layer; the durable
// store-backed cache it falls through to has no such bound.
const dexCacheSize = 4096

// healthPublishInterval is how often the ingest loop mirrors the
// poller's Health snapshot onto the Prometheus gauges.
const healthPublishInterval = 5 * time.Second

func main() {
	root := &cobra.Command{
		Use:   "baseindexer",
		Short: "Base L2 block ingester and indexer",
	}
	root.AddCommand(ingestCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Poll the chain and commit blocks into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context())
		},
	}
}

func runIngest(parentCtx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rootLog := logging.New(cfg.LogLevel)
	log := logging.Component(rootLog, "ingest")

	gw, err := store.Open(cfg.DBPath, logging.Component(rootLog, "store"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer gw.Close()

	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := seed.Run(ctx, gw); err != nil {
		log.WithError(err).Warn("ingest: contract label seeding incomplete")
	}

	rpcClient := rpc.New(cfg.RPCURL, cfg.ConcurrencyLimit, logging.Component(rootLog, "rpc"))

	resolver, err := dex.New(gw, rpcClient, logging.Component(rootLog, "dex"), dexCacheSize)
	if err != nil {
		return fmt.Errorf("building dex resolver: %w", err)
	}
	warmed, err := gw.AllPoolDex(ctx)
	if err != nil {
		log.WithError(err).Warn("ingest: failed to warm dex resolver from durable cache")
	} else {
		resolver.WarmFromStore(ctx, warmed)
	}

	reorgCtl := reorg.New(gw, rpcClient, logging.Component(rootLog, "reorg"), cfg.ReorgRewindDepth)

	p := poller.New(rpcClient, gw, reorgCtl, resolver, logging.Component(rootLog, "poller"),
		time.Duration(cfg.PollIntervalMS)*time.Millisecond, cfg.SafetyBufferBlocks)

	reg := metrics.New()
	go publishHealth(ctx, p, reg)

	metricsErrCh := make(chan error, 1)
	go func() { metricsErrCh <- metrics.Serve(ctx, cfg.MetricsAddr) }()

	runErr := p.Run(ctx)

	if err := <-metricsErrCh; err != nil {
		log.WithError(err).Warn("ingest: metrics server did not shut down cleanly")
	}
	return runErr
}

func publishHealth(ctx context.Context, p *poller.Poller, reg *metrics.Registry) {
	ticker := time.NewTicker(healthPublishInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.Update(p.HealthSnapshot())
		}
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print a read-only snapshot of an existing store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context())
		},
	}
}

func runStats(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rootLog := logging.New(cfg.LogLevel)
	gw, err := store.Open(cfg.DBPath, logging.Component(rootLog, "stats"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer gw.Close()

	s, err := gw.ReadStats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	var windowStart uint64
	if s.Checkpoint > cfg.StatsWindowBlocks {
		windowStart = s.Checkpoint - cfg.StatsWindowBlocks
	}

	eventCounts, err := gw.EventCountsSince(ctx, windowStart)
	if err != nil {
		return fmt.Errorf("reading event counts: %w", err)
	}

	topPools, err := gw.TopDexPools(ctx, windowStart, 10)
	if err != nil {
		return fmt.Errorf("reading top dex pools: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "checkpoint\t%d\n", s.Checkpoint)
	fmt.Fprintf(w, "blocks\t%d\n", s.BlockCount)
	fmt.Fprintf(w, "transactions\t%d\n", s.TxCount)
	fmt.Fprintf(w, "token_transfers\t%d\n", s.TokenTransfers)
	fmt.Fprintf(w, "nft_transfers\t%d\n", s.NFTTransfers)
	fmt.Fprintf(w, "dex_swaps\t%d\n", s.DexSwaps)
	fmt.Fprintf(w, "deployments\t%d\n", s.Deployments)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "event kind (since block %d)\tcount\n", windowStart)
	for kind, count := range eventCounts {
		fmt.Fprintf(w, "%s\t%d\n", kind, count)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "top dex pools (since block %d)\tdex\tswaps\n", windowStart)
	for _, p := range topPools {
		fmt.Fprintf(w, "%s\t%s\t%d\n", p.Pool, p.DexName, p.SwapCount)
	}
	return w.Flush()
}
