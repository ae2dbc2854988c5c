package enrich

// BlockMetrics is the per-block aggregate row of SPEC_FULL.md §4.6,
// persisted to the block_metrics table.
type BlockMetrics struct {
	BlockNumber      uint64
	TxCount          int
	LogCount         int
	TotalGasUsed     string
	AvgGasPerTx      string
	TopContracts     []ContractActivity
	UniqueSenders    int
	UniqueRecipients int
	AvgGasPrice      string
	AvgPriorityFee   string
}

// ContractActivity is one entry of the top-10 log-emitter ranking:
// address plus the number of logs it emitted in the block. Ties break on
// address, ascending, for determinism across re-runs.
type ContractActivity struct {
	Address  string
	LogCount int
}

// TokenTransfer is a decoded ERC-20 or WETH wrap/unwrap row, reshaped to
// a single transfer-like shape: a WETH Deposit is recorded as a transfer
// from the zero address into the depositor, a Withdrawal as a transfer
// from the withdrawer into the zero address.
type TokenTransfer struct {
	TxHash      string
	BlockNumber uint64
	LogIndex    uint64
	Standard    string
	Token       string
	From        string
	To          string
	Amount      string
}

// NFTTransfer is a decoded ERC-721 or ERC-1155 row. ERC-1155 batches
// expand into one row per (id, amount) leg, all sharing the owning log's
// (TxHash, LogIndex).
type NFTTransfer struct {
	TxHash      string
	BlockNumber uint64
	LogIndex    uint64
	Standard    string
	Token       string
	From        string
	To          string
	TokenID     string
	Amount      string
}

// DexSwap is a decoded swap row, normalized across every supported
// variant (V2, V3, Aerodrome, Curve, CL) into one shape. Variants with no
// natural amount0/amount1-in/out split (Curve) put TokensSold in
// Amount0In and TokensBought in Amount1Out, with Amount1In and Amount0Out
// "0", whatever the sold/bought coin indices are; the indices are not
// stored.
type DexSwap struct {
	TxHash      string
	BlockNumber uint64
	LogIndex    uint64
	DexName     string
	Pool        string
	Sender      string
	Recipient   string
	Amount0In   string
	Amount1In   string
	Amount0Out  string
	Amount1Out  string
}

// Deployment is a contract-creation row, emitted for any receipt whose
// ContractAddress is non-nil.
type Deployment struct {
	TxHash          string
	BlockNumber     uint64
	Deployer        string
	ContractAddress string
}

// Result is everything the Block Enricher produces for one block, ready
// for the Store Gateway to commit as a single transaction.
type Result struct {
	Metrics        BlockMetrics
	EventCounts    map[string]int
	TokenTransfers []TokenTransfer
	NFTTransfers   []NFTTransfer
	DexSwaps       []DexSwap
	Deployments    []Deployment
}

const zeroAddress = "0x0000000000000000000000000000000000000000"
