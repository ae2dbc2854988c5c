package decode

import (
	"math/big"

	"github.com/holiman/uint256"
)

// V2Swap is the decoded form of a Uniswap-V2-shaped Swap event (also
// covers solidly/ve(3,3) variants, which share this data layout and are
// distinguished only by topic0, a Classifier concern, not a decoder
// one).
type V2Swap struct {
	Sender     string
	Recipient  string
	Amount0In  *uint256.Int
	Amount1In  *uint256.Int
	Amount0Out *uint256.Int
	Amount1Out *uint256.Int
}

// V2 decodes a V2-shaped swap: sender/recipient from topics[1]/topics[2];
// four packed uint256 words in data (amount0In, amount1In, amount0Out,
// amount1Out).
func V2(l Log) (V2Swap, bool) {
	sender, ok := addressFromTopic(l.Topics[1])
	if !ok {
		return V2Swap{}, false
	}
	recipient, ok := addressFromTopic(l.Topics[2])
	if !ok {
		return V2Swap{}, false
	}
	if !requireLen(l.Data, 128) {
		return V2Swap{}, false
	}
	return V2Swap{
		Sender:     sender,
		Recipient:  recipient,
		Amount0In:  uint256FromSlice(l.Data[0:32]),
		Amount1In:  uint256FromSlice(l.Data[32:64]),
		Amount0Out: uint256FromSlice(l.Data[64:96]),
		Amount1Out: uint256FromSlice(l.Data[96:128]),
	}, true
}

// maxSignedAbs bounds the magnitude of a valid int256: the absolute
// value of a well-formed two's-complement int256 never exceeds 2^255.
var maxSignedAbs = new(big.Int).Lsh(big.NewInt(1), 255)

// V3Swap is the decoded form of a Uniswap-V3-shaped Swap event. amount0
// and amount1 are signed (positive = token flowed into the pool,
// negative = flowed out), per Uniswap's convention.
type V3Swap struct {
	Sender       string
	Recipient    string
	Amount0      *big.Int
	Amount1      *big.Int
	SqrtPriceX96 *uint256.Int
	Liquidity    *uint256.Int
	Tick         int32
}

// V3 decodes a V3-shaped swap: sender/recipient from topics[1]/topics[2];
// data carries int256 amount0, int256 amount1, uint160 sqrtPriceX96,
// uint128 liquidity, int24 tick, each right-aligned in its own 32-byte
// word. An amount whose absolute value reaches 2^255 (only -2^255, the
// int256 minimum, can) is rejected as a decode failure (SPEC_FULL.md §8,
// "V3 signed-amount decoding").
func V3(l Log) (V3Swap, bool) {
	sender, ok := addressFromTopic(l.Topics[1])
	if !ok {
		return V3Swap{}, false
	}
	recipient, ok := addressFromTopic(l.Topics[2])
	if !ok {
		return V3Swap{}, false
	}
	if !requireLen(l.Data, 160) {
		return V3Swap{}, false
	}

	amount0 := signedFromTwosComplement(l.Data[0:32], 32)
	amount1 := signedFromTwosComplement(l.Data[32:64], 32)
	if absExceeds(amount0, maxSignedAbs) || absExceeds(amount1, maxSignedAbs) {
		return V3Swap{}, false
	}

	sqrtPrice := uint256FromSlice(l.Data[64:96])
	liquidity := uint256FromSlice(l.Data[96:128])
	tickBig := signedFromTwosComplement(l.Data[128:160][29:32], 3) // int24 lives in the low 3 bytes
	if !tickBig.IsInt64() {
		return V3Swap{}, false
	}

	return V3Swap{
		Sender:       sender,
		Recipient:    recipient,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: sqrtPrice,
		Liquidity:    liquidity,
		Tick:         int32(tickBig.Int64()),
	}, true
}

func absExceeds(v, bound *big.Int) bool {
	abs := new(big.Int).Abs(v)
	return abs.Cmp(bound) >= 0
}

// CLSwap is the decoded form of a concentrated-liquidity Swap event in
// the Aerodrome Slipstream shape: identical layout to V3Swap.
type CLSwap V3Swap

// CL decodes a CL-shaped swap using the same layout as V3.
func CL(l Log) (CLSwap, bool) {
	v3, ok := V3(l)
	return CLSwap(v3), ok
}

// CurveExchange is the decoded form of Curve's TokenExchange(address
// buyer, int128 sold_id, uint256 tokens_sold, int128 bought_id, uint256
// tokens_bought).
type CurveExchange struct {
	Buyer        string
	SoldID       int32
	TokensSold   *uint256.Int
	BoughtID     int32
	TokensBought *uint256.Int
}

// Curve decodes a Curve TokenExchange log: buyer from topics[1]; the
// four data fields are each right-aligned 32-byte words, sold_id/
// bought_id declared int128 (16 bytes) but ABI-padded to a full word.
func Curve(l Log) (CurveExchange, bool) {
	buyer, ok := addressFromTopic(l.Topics[1])
	if !ok {
		return CurveExchange{}, false
	}
	if !requireLen(l.Data, 128) {
		return CurveExchange{}, false
	}

	soldID := signedFromTwosComplement(l.Data[0:32][16:32], 16)
	tokensSold := uint256FromSlice(l.Data[32:64])
	boughtID := signedFromTwosComplement(l.Data[64:96][16:32], 16)
	tokensBought := uint256FromSlice(l.Data[96:128])

	if !soldID.IsInt64() || !boughtID.IsInt64() {
		return CurveExchange{}, false
	}

	return CurveExchange{
		Buyer:        buyer,
		SoldID:       int32(soldID.Int64()),
		TokensSold:   tokensSold,
		BoughtID:     int32(boughtID.Int64()),
		TokensBought: tokensBought,
	}, true
}
