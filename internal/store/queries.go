package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// BlockRecord is the minimal persisted block shape the Reorg Controller
// compares against a freshly fetched header.
type BlockRecord struct {
	Number     uint64
	Hash       string
	ParentHash string
	Reorged    bool
}

// Checkpoint returns the stored checkpoint block number, and false if no
// checkpoint row exists yet (neither committed nor set via SetCheckpoint).
func (g *Gateway) Checkpoint(ctx context.Context) (uint64, bool, error) {
	var n uint64
	err := g.db.QueryRowContext(ctx, `SELECT block_number FROM `+TableCheckpoint+` WHERE id = 0`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: reading checkpoint: %w", err)
	}
	return n, true, nil
}

// SetCheckpoint forcibly sets the checkpoint to number, bypassing the
// monotonic guard CommitBlock's internal upsert applies. Used by the
// Reorg Controller after a rewind, where the checkpoint must move
// backward, and by the poller to seed the checkpoint at startup.
func (g *Gateway) SetCheckpoint(ctx context.Context, number uint64) error {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO `+TableCheckpoint+` (id, block_number) VALUES (0, ?)
		ON CONFLICT(id) DO UPDATE SET block_number = excluded.block_number`, number)
	if err != nil {
		return fmt.Errorf("store: setting checkpoint to %d: %w", number, err)
	}
	return nil
}

// BlockByNumber returns the persisted block record at number, and false
// if no such block has been committed. A block marked reorged is still
// returned, with ok true and Reorged set.
func (g *Gateway) BlockByNumber(ctx context.Context, number uint64) (BlockRecord, bool, error) {
	var rec BlockRecord
	var reorged int
	err := g.db.QueryRowContext(ctx, `
		SELECT number, hash, parent_hash, reorged FROM `+TableBlocks+` WHERE number = ?`, number).
		Scan(&rec.Number, &rec.Hash, &rec.ParentHash, &reorged)
	if errors.Is(err, sql.ErrNoRows) {
		return BlockRecord{}, false, nil
	}
	if err != nil {
		return BlockRecord{}, false, fmt.Errorf("store: reading block %d: %w", number, err)
	}
	rec.Reorged = reorged != 0
	return rec, true, nil
}

// MarkReorged flags every block at or above from as reorged, without
// deleting its rows: SPEC_FULL.md §4.8 keeps reorged blocks queryable
// for audit rather than erasing history.
func (g *Gateway) MarkReorged(ctx context.Context, from uint64) error {
	_, err := g.db.ExecContext(ctx, `UPDATE `+TableBlocks+` SET reorged = 1 WHERE number >= ?`, from)
	if err != nil {
		return fmt.Errorf("store: marking blocks reorged from %d: %w", from, err)
	}
	return nil
}

// Rewind deletes every row at or above block number from across the
// append-only tables and resets the checkpoint to from-1, so the poller
// resumes by re-fetching and re-committing from from onward. Blocks are
// left in place (as reorged, via MarkReorged) rather than deleted.
// Transactions and receipts are hash-keyed, and a reorg generally
// replaces tx membership at the rewound blocks, so their stale rows
// would never be overwritten by a later upsert; they are deleted here
// like every other append-only table. Deletion order respects the
// logs/receipts -> transactions foreign keys.
func (g *Gateway) Rewind(ctx context.Context, from uint64) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning rewind transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		TableLogs, TableReceipts, TableTransactions, TableEventCounts, TableTokenTransfers,
		TableNFTTransfers, TableDexSwaps, TableContractDeployments, TableBlockMetrics,
	} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE block_number >= ?`, from); err != nil {
			return fmt.Errorf("store: rewinding %s from %d: %w", table, from, err)
		}
	}

	var checkpoint uint64
	if from > 0 {
		checkpoint = from - 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO `+TableCheckpoint+` (id, block_number) VALUES (0, ?)
		ON CONFLICT(id) DO UPDATE SET block_number = excluded.block_number`, checkpoint); err != nil {
		return fmt.Errorf("store: resetting checkpoint during rewind: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: committing rewind from %d: %w", from, err)
	}
	return nil
}

// GetPoolDex implements internal/dex.Store: the durable pool-to-DEX-name
// cache lookup.
func (g *Gateway) GetPoolDex(ctx context.Context, pool string) (string, bool, error) {
	var name string
	err := g.db.QueryRowContext(ctx, `SELECT dex_name FROM `+TablePoolDexCache+` WHERE pool_address = ?`, pool).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: reading pool dex cache for %s: %w", pool, err)
	}
	return name, true, nil
}

// PutPoolDex implements internal/dex.Store: persists a resolved
// pool-to-DEX-name mapping.
func (g *Gateway) PutPoolDex(ctx context.Context, pool, name, factory string) error {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO `+TablePoolDexCache+` (pool_address, dex_name, factory) VALUES (?, ?, ?)
		ON CONFLICT(pool_address) DO UPDATE SET dex_name = excluded.dex_name, factory = excluded.factory`,
		pool, name, nullIfEmpty(factory))
	if err != nil {
		return fmt.Errorf("store: persisting pool dex %s: %w", pool, err)
	}
	return nil
}

// AllPoolDex loads the entire durable pool_dex_cache, for warming the
// resolver's in-memory LRU at startup.
func (g *Gateway) AllPoolDex(ctx context.Context) (map[string]string, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT pool_address, dex_name FROM `+TablePoolDexCache)
	if err != nil {
		return nil, fmt.Errorf("store: loading pool dex cache: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var pool, name string
		if err := rows.Scan(&pool, &name); err != nil {
			return nil, fmt.Errorf("store: scanning pool dex cache row: %w", err)
		}
		out[pool] = name
	}
	return out, rows.Err()
}

// ContractLabel is a seeded, human-readable identity for a known
// contract address.
type ContractLabel struct {
	Address  string
	Name     string
	Category string
	Protocol string
}

// PutContractLabel upserts one seeded contract label row.
func (g *Gateway) PutContractLabel(ctx context.Context, label ContractLabel) error {
	_, err := g.db.ExecContext(ctx, `
		INSERT INTO `+TableContractLabels+` (address, name, category, protocol) VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET name = excluded.name, category = excluded.category, protocol = excluded.protocol`,
		label.Address, label.Name, label.Category, label.Protocol)
	if err != nil {
		return fmt.Errorf("store: upserting contract label %s: %w", label.Address, err)
	}
	return nil
}

// Stats is the summary row the "stats" CLI subcommand reports.
type Stats struct {
	Checkpoint       uint64
	BlockCount       int64
	TxCount          int64
	TokenTransfers   int64
	NFTTransfers     int64
	DexSwaps         int64
	Deployments      int64
}

// ReadStats computes the current store-wide summary used by the stats
// CLI subcommand.
func (g *Gateway) ReadStats(ctx context.Context) (Stats, error) {
	var s Stats
	checkpoint, ok, err := g.Checkpoint(ctx)
	if err != nil {
		return Stats{}, err
	}
	if ok {
		s.Checkpoint = checkpoint
	}

	counts := []struct {
		table string
		dest  *int64
	}{
		{TableBlocks, &s.BlockCount},
		{TableTransactions, &s.TxCount},
		{TableTokenTransfers, &s.TokenTransfers},
		{TableNFTTransfers, &s.NFTTransfers},
		{TableDexSwaps, &s.DexSwaps},
		{TableContractDeployments, &s.Deployments},
	}
	for _, c := range counts {
		if err := g.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("store: counting %s: %w", c.table, err)
		}
	}
	return s, nil
}

// EventCountsSince sums event_counts by kind for every block at or above
// fromBlock, for the stats CLI's STATS_WINDOW_BLOCKS report.
func (g *Gateway) EventCountsSince(ctx context.Context, fromBlock uint64) (map[string]int64, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT event_kind, SUM(count) FROM `+TableEventCounts+`
		WHERE block_number >= ? GROUP BY event_kind ORDER BY event_kind`, fromBlock)
	if err != nil {
		return nil, fmt.Errorf("store: reading event counts since %d: %w", fromBlock, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("store: scanning event count row: %w", err)
		}
		out[kind] = count
	}
	return out, rows.Err()
}

// DexPoolActivity is one row of the stats CLI's top-pools-by-swap-count
// report.
type DexPoolActivity struct {
	Pool      string
	DexName   string
	SwapCount int64
}

// TopDexPools returns the limit pools with the most dex_swaps rows at or
// above fromBlock, most active first.
func (g *Gateway) TopDexPools(ctx context.Context, fromBlock uint64, limit int) ([]DexPoolActivity, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT pool, dex_name, COUNT(*) AS swaps FROM `+TableDexSwaps+`
		WHERE block_number >= ?
		GROUP BY pool, dex_name
		ORDER BY swaps DESC, pool ASC
		LIMIT ?`, fromBlock, limit)
	if err != nil {
		return nil, fmt.Errorf("store: reading top dex pools since %d: %w", fromBlock, err)
	}
	defer rows.Close()

	var out []DexPoolActivity
	for rows.Next() {
		var row DexPoolActivity
		if err := rows.Scan(&row.Pool, &row.DexName, &row.SwapCount); err != nil {
			return nil, fmt.Errorf("store: scanning top dex pool row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
