// Package rpc implements the narrow JSON-RPC fetch interface the poller
// depends on (SPEC_FULL.md §4.5): latest head, a full block with
// transactions, receipts (batch-preferred with per-hash fallback), and a
// read-only factory() contract call for the DEX resolver.
package rpc

// Block is the normalized form of eth_getBlockByNumber(number, true).
// All hex-quantity fields have already been parsed into Go-native types
// by the time a Block leaves this package; nothing downstream touches
// raw JSON.
type Block struct {
	Number     uint64
	Hash       string
	ParentHash string
	Timestamp  uint64
	GasUsed    uint64
	GasLimit   uint64
	BaseFee    string // decimal string; "" if the block predates EIP-1559
	Txs        []Tx
}

// Tx is the normalized form of one transaction entry in a block's
// transaction list.
type Tx struct {
	Hash                 string
	BlockNumber           uint64
	From                  string
	To                    *string // nil on contract creation
	Value                 string  // decimal string
	Input                 []byte
	GasPrice              string
	MaxFeePerGas          string // "" for legacy/eip2930
	MaxPriorityFeePerGas  string // "" for legacy/eip2930
	Gas                   uint64
	Type                  string // "legacy" | "eip1559" | "eip2930"
}

// Receipt is the normalized form of one transaction receipt.
type Receipt struct {
	TxHash            string
	BlockNumber       uint64
	Status            uint64 // 0 or 1
	GasUsed           uint64
	EffectiveGasPrice string
	ContractAddress   *string // non-nil only for a creation receipt
	Logs              []Log
}

// Log is the normalized form of one receipt log entry.
type Log struct {
	Address     string
	Topics      []string // 1-4 entries, topic0 first
	Data        []byte
	LogIndex    uint64
	TxHash      string
	BlockNumber uint64
}
