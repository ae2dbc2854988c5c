// Package poller is the outer ingestion loop of SPEC_FULL.md §4.9: head
// tracking, catch-up vs idle pacing, graceful shutdown, and a read-only
// health view. It is the only component that owns time (sleeps,
// uptime); everything it calls is otherwise synchronous and
// deterministic given its inputs.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/base-indexer/baseindexer/internal/dex"
	"github.com/base-indexer/baseindexer/internal/enrich"
	"github.com/base-indexer/baseindexer/internal/ingesterr"
	"github.com/base-indexer/baseindexer/internal/rpc"
	"github.com/base-indexer/baseindexer/internal/store"
)

// catchupThreshold is the "behind by more than 5 blocks" boundary of
// spec.md §4.9's Catchup pseudostate.
const catchupThreshold = 5

// Fetcher is the RPC surface the poller drives.
type Fetcher interface {
	LatestHead(ctx context.Context) (uint64, error)
	BlockWithTxs(ctx context.Context, number uint64) (rpc.Block, error)
	BlockReceiptsOrFallback(ctx context.Context, number uint64, txHashes []string) ([]rpc.Receipt, error)
}

// Store is the store-gateway surface the poller drives directly (beyond
// what it hands to the reorg controller).
type Store interface {
	Checkpoint(ctx context.Context) (uint64, bool, error)
	SetCheckpoint(ctx context.Context, number uint64) error
	CommitBlock(ctx context.Context, snap store.Snapshot) error
}

// Reorg is the subset of *reorg.Controller the poller depends on.
type Reorg interface {
	Resolve(ctx context.Context, next uint64) (uint64, error)
}

// Health is the read-only view exposed to the Prometheus gauges. The
// stats CLI does not use it; it reads the store instead.
type Health struct {
	LastProcessedBlock uint64
	BlocksProcessed    uint64
	BlocksBehind       uint64
	CatchingUp         bool
	ErrorCount         uint64
	UptimeSeconds      float64
	BlocksPerSec       float64
}

// Poller drives the single cooperative ingestion loop.
type Poller struct {
	fetcher            Fetcher
	store              Store
	reorgCtl           Reorg
	resolver           *dex.Resolver
	log                *logrus.Entry
	pollInterval       time.Duration
	safetyBufferBlocks uint64

	startedAt time.Time

	mu                 sync.RWMutex
	lastProcessedBlock uint64
	blocksProcessed    uint64
	errorCount         uint64
	blocksBehind       uint64
	catchingUp         bool
}

// New constructs a Poller. pollInterval and safetyBufferBlocks come from
// internal/config.
func New(fetcher Fetcher, st Store, reorgCtl Reorg, resolver *dex.Resolver, log *logrus.Entry, pollInterval time.Duration, safetyBufferBlocks uint64) *Poller {
	return &Poller{
		fetcher:            fetcher,
		store:              st,
		reorgCtl:           reorgCtl,
		resolver:           resolver,
		log:                log,
		pollInterval:       pollInterval,
		safetyBufferBlocks: safetyBufferBlocks,
	}
}

// Run is the cooperative loop. It returns when ctx is cancelled, after
// finishing any in-flight block (spec.md §4.9's Shutdown pseudostate).
func (p *Poller) Run(ctx context.Context) error {
	p.startedAt = time.Now()

	next, err := p.init(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller: shutdown signal received, exiting after in-flight block")
			return nil
		default:
		}

		head, err := p.fetcher.LatestHead(ctx)
		if err != nil {
			p.recordError()
			p.log.WithError(err).Warn("poller: failed to fetch latest head, backing off")
			if !sleepOrDone(ctx, p.pollInterval) {
				return nil
			}
			continue
		}

		if next > head-p.safetyBufferBlocks {
			// Idle: nothing stable enough to ingest yet.
			if !sleepOrDone(ctx, p.pollInterval) {
				return nil
			}
			continue
		}

		behind := head - p.safetyBufferBlocks - next
		catchingUp := behind > catchupThreshold
		p.mu.Lock()
		p.blocksBehind = behind
		p.catchingUp = catchingUp
		p.mu.Unlock()

		resolved, err := p.reorgCtl.Resolve(ctx, next)
		if err != nil {
			p.recordError()
			p.log.WithError(err).WithField("block", next).Warn("poller: reorg resolution failed, retrying")
			if !sleepOrDone(ctx, 2*p.pollInterval) {
				return nil
			}
			continue
		}
		next = resolved

		if err := p.processBlock(ctx, next); err != nil {
			p.recordError()
			p.log.WithError(err).WithField("block", next).Warn("poller: block processing failed, retrying same block")
			if !sleepOrDone(ctx, 2*p.pollInterval) {
				return nil
			}
			continue
		}

		p.mu.Lock()
		p.lastProcessedBlock = next
		p.blocksProcessed++
		p.mu.Unlock()

		next++

		if !catchingUp {
			if !sleepOrDone(ctx, p.pollInterval) {
				return nil
			}
		}
	}
}

func (p *Poller) init(ctx context.Context) (uint64, error) {
	checkpoint, ok, err := p.store.Checkpoint(ctx)
	if ok {
		return checkpoint + 1, nil
	}
	if err != nil {
		return 0, &ingesterr.StoreFailureError{Op: "reading initial checkpoint", Err: err}
	}

	head, err := p.fetcher.LatestHead(ctx)
	if err != nil {
		return 0, err
	}
	var seed uint64
	if head > p.safetyBufferBlocks {
		seed = head - p.safetyBufferBlocks
	}
	if err := p.store.SetCheckpoint(ctx, seed); err != nil {
		return 0, &ingesterr.StoreFailureError{Op: "seeding initial checkpoint", Err: err}
	}
	return seed + 1, nil
}

func (p *Poller) processBlock(ctx context.Context, number uint64) error {
	block, err := p.fetcher.BlockWithTxs(ctx, number)
	if err != nil {
		return err
	}

	hashes := make([]string, len(block.Txs))
	for i, tx := range block.Txs {
		hashes[i] = tx.Hash
	}
	receipts, err := p.fetcher.BlockReceiptsOrFallback(ctx, number, hashes)
	if err != nil {
		return err
	}

	result := enrich.Block(ctx, block, receipts, p.resolver)

	if err := p.store.CommitBlock(ctx, store.Snapshot{Block: block, Receipts: receipts, Enriched: result}); err != nil {
		return &ingesterr.StoreFailureError{Op: "commitBlock", Err: err}
	}
	return nil
}

func (p *Poller) recordError() {
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()
}

// HealthSnapshot returns the current read-only health view.
func (p *Poller) HealthSnapshot() Health {
	p.mu.RLock()
	defer p.mu.RUnlock()

	uptime := time.Since(p.startedAt).Seconds()
	var blocksPerSec float64
	if uptime > 0 {
		blocksPerSec = float64(p.blocksProcessed) / uptime
	}

	return Health{
		LastProcessedBlock: p.lastProcessedBlock,
		BlocksProcessed:    p.blocksProcessed,
		BlocksBehind:       p.blocksBehind,
		CatchingUp:         p.catchingUp,
		ErrorCount:         p.errorCount,
		UptimeSeconds:      uptime,
		BlocksPerSec:       blocksPerSec,
	}
}

// sleepOrDone sleeps for d, returning false early (without completing the
// sleep) if ctx is cancelled first: the cooperative-cancellation point
// between blocks required by spec.md §5.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

