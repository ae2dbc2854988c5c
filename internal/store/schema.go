// Copyright 2021 The Erigon Authors
// (original work)
// Copyright 2026 The Base Indexer Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package store is the Store Gateway of SPEC_FULL.md §4.7: schema,
// prepared statements, and the single commitBlock write path. Backed by
// modernc.org/sqlite in WAL journaling mode.
package store

// SchemaVersion tracks DDL revisions the way the teacher's
// erigon-lib/kv package tracks its own DBSchemaVersion; bump on any
// incompatible schema change (none yet).
const SchemaVersion = "1.0.0"

// Table name constants, one const block per logical group, each
// documented with its key columns and value shape: the convention
// erigon-lib/kv/tables.go uses for its key-value buckets, adapted here
// to name this gateway's SQL tables instead.
const (
	// Blocks: the anchor entity, one row per ingested block number.
	// key   - number (PRIMARY KEY)
	// value - hash, parent_hash, timestamp, gas_used, gas_limit,
	//         base_fee, reorged
	TableBlocks = "blocks"

	// Transactions: keyed by tx hash, one row per transaction.
	// key   - hash (PRIMARY KEY)
	// value - block_number, from, to (nullable), value, input, gas
	//         price/fees, gas_used, effective_gas_price, type
	TableTransactions = "transactions"

	// Receipts: 1:1 with a transaction hash.
	// key   - tx_hash (PRIMARY KEY)
	// value - block_number, status, gas_used, log_count,
	//         contract_address (nullable), effective_gas_price
	TableReceipts = "receipts"
)

const (
	// Logs: append-only, surrogate-keyed. Not stable across rewind;
	// (tx_hash, log_index) is the durable identity (SPEC_FULL.md §9).
	// key   - id (autoincrement)
	// value - tx_hash, block_number, log_index, address, topic0..3,
	//         data
	TableLogs = "logs"
)

const (
	// BlockMetrics: one row per block, replaced (not appended) on
	// re-processing.
	// key   - block_number (PRIMARY KEY)
	// value - tx_count, log_count, total_gas_used, avg_gas_per_tx,
	//         top_contracts (JSON), unique_senders, unique_recipients,
	//         avg_gas_price, avg_priority_fee
	TableBlockMetrics = "block_metrics"

	// EventCounts: (blockNumber, eventKind) -> count.
	// key   - (block_number, event_kind)
	// value - count
	TableEventCounts = "event_counts"
)

const (
	// TokenTransfers: decoded ERC-20/WETH-wrap rows.
	TableTokenTransfers = "token_transfers"

	// NFTTransfers: decoded ERC-721/ERC-1155 rows.
	TableNFTTransfers = "nft_transfers"

	// DexSwaps: decoded swap rows across all supported DEX variants.
	TableDexSwaps = "dex_swaps"

	// ContractDeployments: tx-scoped, one row per creation receipt
	// with a non-null contractAddress.
	TableContractDeployments = "contract_deployments"
)

const (
	// Checkpoint: single-row table holding the highest fully-committed
	// block number.
	TableCheckpoint = "checkpoint"

	// PoolDexCache: durable (poolAddress -> dexName) cache, the §4.4
	// "durable cache" tier.
	TablePoolDexCache = "pool_dex_cache"

	// ContractLabels: static, read-only (address -> {name, category,
	// protocol}), seeded at startup by internal/seed.
	TableContractLabels = "contract_labels"
)

// ddl is executed once, in order, against a freshly opened database.
// Every statement is idempotent (CREATE TABLE IF NOT EXISTS /
// CREATE INDEX IF NOT EXISTS) so repeated opens of an existing file are
// cheap no-ops.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS ` + TableBlocks + ` (
		number      INTEGER PRIMARY KEY,
		hash        TEXT NOT NULL,
		parent_hash TEXT NOT NULL,
		timestamp   INTEGER NOT NULL,
		gas_used    INTEGER NOT NULL,
		gas_limit   INTEGER NOT NULL,
		base_fee    TEXT,
		reorged     INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS ` + TableTransactions + ` (
		hash                   TEXT PRIMARY KEY,
		block_number           INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		sender                 TEXT NOT NULL,
		recipient              TEXT,
		value                  TEXT NOT NULL,
		input                  BLOB,
		gas_price              TEXT NOT NULL,
		max_fee_per_gas        TEXT,
		max_priority_fee       TEXT,
		gas_used               INTEGER NOT NULL DEFAULT 0,
		effective_gas_price    TEXT,
		tx_type                TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_block ON ` + TableTransactions + `(block_number)`,

	`CREATE TABLE IF NOT EXISTS ` + TableReceipts + ` (
		tx_hash             TEXT PRIMARY KEY REFERENCES ` + TableTransactions + `(hash),
		block_number        INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		status              INTEGER NOT NULL,
		gas_used            INTEGER NOT NULL,
		log_count           INTEGER NOT NULL,
		contract_address    TEXT,
		effective_gas_price TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_block ON ` + TableReceipts + `(block_number)`,

	`CREATE TABLE IF NOT EXISTS ` + TableLogs + ` (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_hash      TEXT NOT NULL REFERENCES ` + TableTransactions + `(hash),
		block_number INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		log_index    INTEGER NOT NULL,
		address      TEXT NOT NULL,
		topic0       TEXT,
		topic1       TEXT,
		topic2       TEXT,
		topic3       TEXT,
		data         BLOB
	)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_block ON ` + TableLogs + `(block_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_logs_tx_logindex ON ` + TableLogs + `(tx_hash, log_index)`,

	`CREATE TABLE IF NOT EXISTS ` + TableBlockMetrics + ` (
		block_number       INTEGER PRIMARY KEY REFERENCES ` + TableBlocks + `(number),
		tx_count           INTEGER NOT NULL,
		log_count          INTEGER NOT NULL,
		total_gas_used     TEXT NOT NULL,
		avg_gas_per_tx     TEXT NOT NULL,
		top_contracts_json TEXT NOT NULL,
		unique_senders     INTEGER NOT NULL,
		unique_recipients  INTEGER NOT NULL,
		avg_gas_price      TEXT NOT NULL,
		avg_priority_fee   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ` + TableEventCounts + ` (
		block_number INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		event_kind   TEXT NOT NULL,
		count        INTEGER NOT NULL,
		PRIMARY KEY (block_number, event_kind)
	)`,

	`CREATE TABLE IF NOT EXISTS ` + TableTokenTransfers + ` (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_hash      TEXT NOT NULL,
		block_number INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		log_index    INTEGER NOT NULL,
		standard     TEXT NOT NULL,
		token        TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address   TEXT NOT NULL,
		amount       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_token_transfers_block ON ` + TableTokenTransfers + `(block_number)`,

	`CREATE TABLE IF NOT EXISTS ` + TableNFTTransfers + ` (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_hash      TEXT NOT NULL,
		block_number INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		log_index    INTEGER NOT NULL,
		standard     TEXT NOT NULL,
		token        TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address   TEXT NOT NULL,
		token_id     TEXT NOT NULL,
		amount       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_nft_transfers_block ON ` + TableNFTTransfers + `(block_number)`,

	`CREATE TABLE IF NOT EXISTS ` + TableDexSwaps + ` (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_hash      TEXT NOT NULL,
		block_number INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		log_index    INTEGER NOT NULL,
		dex_name     TEXT NOT NULL,
		pool         TEXT NOT NULL,
		sender       TEXT NOT NULL,
		recipient    TEXT NOT NULL,
		amount0_in   TEXT NOT NULL,
		amount1_in   TEXT NOT NULL,
		amount0_out  TEXT NOT NULL,
		amount1_out  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dex_swaps_block ON ` + TableDexSwaps + `(block_number)`,
	`CREATE INDEX IF NOT EXISTS idx_dex_swaps_pool ON ` + TableDexSwaps + `(pool)`,

	`CREATE TABLE IF NOT EXISTS ` + TableContractDeployments + ` (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_hash          TEXT NOT NULL,
		block_number     INTEGER NOT NULL REFERENCES ` + TableBlocks + `(number),
		deployer         TEXT NOT NULL,
		contract_address TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contract_deployments_block ON ` + TableContractDeployments + `(block_number)`,

	`CREATE TABLE IF NOT EXISTS ` + TableCheckpoint + ` (
		id          INTEGER PRIMARY KEY CHECK (id = 0),
		block_number INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS ` + TablePoolDexCache + ` (
		pool_address TEXT PRIMARY KEY,
		dex_name     TEXT NOT NULL,
		factory      TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS ` + TableContractLabels + ` (
		address  TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		category TEXT NOT NULL,
		protocol TEXT NOT NULL
	)`,
}
