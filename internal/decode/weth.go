package decode

import "github.com/holiman/uint256"

// WethTransfer is the decoded form of WETH's Deposit(address dst,
// uint256 wad) / Withdrawal(address src, uint256 wad) events. It is
// reshaped into a TokenTransfer by the enricher, with a synthetic zero-
// address leg to express mint/burn-like wrap/unwrap semantics.
type WethTransfer struct {
	Who    string
	Amount *uint256.Int
}

// WethWrap decodes a WETH Deposit log.
func WethWrap(l Log) (WethTransfer, bool) {
	return wethCommon(l)
}

// WethUnwrap decodes a WETH Withdrawal log. Bit-for-bit identical shape
// to Deposit; kept as a distinct entry point so call sites read the way
// the event they handle reads.
func WethUnwrap(l Log) (WethTransfer, bool) {
	return wethCommon(l)
}

func wethCommon(l Log) (WethTransfer, bool) {
	who, ok := addressFromTopic(l.Topics[1])
	if !ok {
		return WethTransfer{}, false
	}
	if !requireLen(l.Data, 32) {
		return WethTransfer{}, false
	}
	return WethTransfer{Who: who, Amount: uint256FromSlice(l.Data[0:32])}, true
}
