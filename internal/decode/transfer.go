package decode

import "github.com/holiman/uint256"

// ERC20Transfer is the decoded form of the ERC-20 Transfer(address,
// address,uint256) event.
type ERC20Transfer struct {
	From   string
	To     string
	Amount *uint256.Int
}

// ERC20 decodes an ERC-20 Transfer log: from/to are the last 20 bytes of
// topics[1]/topics[2], amount is the full 32-byte data word.
func ERC20(l Log) (ERC20Transfer, bool) {
	from, ok := addressFromTopic(l.Topics[1])
	if !ok {
		return ERC20Transfer{}, false
	}
	to, ok := addressFromTopic(l.Topics[2])
	if !ok {
		return ERC20Transfer{}, false
	}
	if !requireLen(l.Data, 32) {
		return ERC20Transfer{}, false
	}
	return ERC20Transfer{From: from, To: to, Amount: uint256FromSlice(l.Data[0:32])}, true
}

// ERC721Transfer is the decoded form of the ERC-721 Transfer(address,
// address,uint256) event (amount is always 1; the tokenId comes from
// topics[3] rather than data).
type ERC721Transfer struct {
	From    string
	To      string
	TokenID *uint256.Int
}

// ERC721 decodes an ERC-721 Transfer log. Unlike ERC-20, tokenId is
// itself indexed (topics[3]), so it has no data requirement.
func ERC721(l Log) (ERC721Transfer, bool) {
	from, ok := addressFromTopic(l.Topics[1])
	if !ok {
		return ERC721Transfer{}, false
	}
	to, ok := addressFromTopic(l.Topics[2])
	if !ok {
		return ERC721Transfer{}, false
	}
	if l.Topics[3] == nil {
		return ERC721Transfer{}, false
	}
	return ERC721Transfer{From: from, To: to, TokenID: uint256FromSlice(l.Topics[3][:])}, true
}

// ERC1155Single is the decoded form of TransferSingle(address operator,
// address from, address to, uint256 id, uint256 value).
type ERC1155Single struct {
	From    string
	To      string
	TokenID *uint256.Int
	Amount  *uint256.Int
}

// ERC1155TransferSingle decodes a TransferSingle log: from/to are
// topics[2]/topics[3] (operator is topics[1] and not carried forward,
// per SPEC_FULL.md's token-transfer row shape); (id, value) are the two
// packed data words.
func ERC1155TransferSingle(l Log) (ERC1155Single, bool) {
	from, ok := addressFromTopic(l.Topics[2])
	if !ok {
		return ERC1155Single{}, false
	}
	to, ok := addressFromTopic(l.Topics[3])
	if !ok {
		return ERC1155Single{}, false
	}
	if !requireLen(l.Data, 64) {
		return ERC1155Single{}, false
	}
	return ERC1155Single{
		From:    from,
		To:      to,
		TokenID: uint256FromSlice(l.Data[0:32]),
		Amount:  uint256FromSlice(l.Data[32:64]),
	}, true
}

// ERC1155BatchLeg is one (id, amount) pair out of a TransferBatch's
// dynamic arrays; the decoder emits one enriched row per leg sharing the
// owning log's (txHash, logIndex).
type ERC1155BatchLeg struct {
	TokenID *uint256.Int
	Amount  *uint256.Int
}

// ERC1155Batch is the decoded form of TransferBatch(address operator,
// address from, address to, uint256[] ids, uint256[] values).
type ERC1155Batch struct {
	From string
	To   string
	Legs []ERC1155BatchLeg
}

// ERC1155TransferBatch decodes a TransferBatch log. The ABI layout for
// the two dynamic uint256[] arrays is: [offset to ids][offset to
// values][ids.length][ids...][values.length][values...]. Both arrays
// share a length; mismatched lengths are a decode failure.
func ERC1155TransferBatch(l Log) (ERC1155Batch, bool) {
	from, ok := addressFromTopic(l.Topics[2])
	if !ok {
		return ERC1155Batch{}, false
	}
	to, ok := addressFromTopic(l.Topics[3])
	if !ok {
		return ERC1155Batch{}, false
	}
	if !requireLen(l.Data, 64) {
		return ERC1155Batch{}, false
	}
	idsOffset := uint256FromSlice(l.Data[0:32])
	valuesOffset := uint256FromSlice(l.Data[32:64])
	if !idsOffset.IsUint64() || !valuesOffset.IsUint64() {
		return ERC1155Batch{}, false
	}
	idsStart := int(idsOffset.Uint64())
	valuesStart := int(valuesOffset.Uint64())
	if !requireLen(l.Data, idsStart+32) || !requireLen(l.Data, valuesStart+32) {
		return ERC1155Batch{}, false
	}

	idsLen := uint256FromSlice(l.Data[idsStart : idsStart+32])
	valuesLen := uint256FromSlice(l.Data[valuesStart : valuesStart+32])
	if !idsLen.IsUint64() || !valuesLen.IsUint64() || idsLen.Uint64() != valuesLen.Uint64() {
		return ERC1155Batch{}, false
	}
	n := int(idsLen.Uint64())

	idsDataStart := idsStart + 32
	valuesDataStart := valuesStart + 32
	if !requireLen(l.Data, idsDataStart+n*32) || !requireLen(l.Data, valuesDataStart+n*32) {
		return ERC1155Batch{}, false
	}

	legs := make([]ERC1155BatchLeg, 0, n)
	for i := 0; i < n; i++ {
		id := uint256FromSlice(l.Data[idsDataStart+i*32 : idsDataStart+(i+1)*32])
		amt := uint256FromSlice(l.Data[valuesDataStart+i*32 : valuesDataStart+(i+1)*32])
		legs = append(legs, ERC1155BatchLeg{TokenID: id, Amount: amt})
	}

	return ERC1155Batch{From: from, To: to, Legs: legs}, true
}
