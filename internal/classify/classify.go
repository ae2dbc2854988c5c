// Package classify implements the two classification rules of
// SPEC_FULL.md §4.2: transaction classification by shape, and log
// classification by (topic0, topicCount) with the ERC-20/ERC-721
// Transfer tie-break.
package classify

import (
	"github.com/base-indexer/baseindexer/internal/sigs"
)

// TxKind is exactly one of the three transaction classes.
type TxKind string

const (
	TxKindContractCreation TxKind = "contract_creation"
	TxKindEthTransfer      TxKind = "eth_transfer"
	TxKindContractCall     TxKind = "contract_call"
)

// TxShape carries the minimal fields needed to classify a transaction,
// decoupling this package from the concrete RPC transaction type.
type TxShape struct {
	To    *string // nil on contract creation
	Value string  // decimal string; "0" or "" means zero
	Input []byte
}

// Tx classifies a transaction as exactly one of contract_creation,
// eth_transfer, or contract_call.
func Tx(t TxShape) TxKind {
	if t.To == nil {
		return TxKindContractCreation
	}
	if valueIsPositive(t.Value) && len(t.Input) == 0 {
		return TxKindEthTransfer
	}
	return TxKindContractCall
}

func valueIsPositive(decimal string) bool {
	for _, c := range decimal {
		if c != '0' {
			return true
		}
	}
	return false
}

// Log classifies a log's topic0 plus the number of non-null topics it
// carries. ERC-20 and ERC-721 Transfer share a topic0; disambiguation
// is topicCount == 4 (three indexed args + topic0) for ERC-721, else
// ERC-20. TransferSingle/TransferBatch map regardless of count, since
// their topic0s are distinct from the Transfer selector, to two separate
// kinds (erc1155_transfer_single, erc1155_transfer_batch); they are not
// merged into one erc1155_transfer kind.
func Log(topic0 [32]byte, topicCount int) sigs.Kind {
	kind, ok := sigs.Lookup(topic0)
	if !ok {
		return sigs.KindOther
	}

	if kind == sigs.KindERC20Transfer {
		if topicCount == 4 {
			return sigs.KindERC721Transfer
		}
		return sigs.KindERC20Transfer
	}

	switch kind {
	case sigs.KindERC1155Single, sigs.KindERC1155Batch:
		return kind
	default:
		return kind
	}
}
