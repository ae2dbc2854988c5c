package decode

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func topicFromAddress(t *testing.T, addr string) *[32]byte {
	t.Helper()
	var out [32]byte
	b := mustHexBytes(t, addr)
	require.LessOrEqual(t, len(b), 20)
	copy(out[32-len(b):], b)
	return &out
}

func mustHexBytes(t *testing.T, s string) []byte {
	t.Helper()
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := hexDigit(s[i*2])
		lo := hexDigit(s[i*2+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

func word256(t *testing.T, z *uint256.Int) []byte {
	t.Helper()
	var b [32]byte
	z.WriteToSlice(b[:])
	return b[:]
}

func TestERC20RoundTrip(t *testing.T) {
	from := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	to := topicFromAddress(t, "0x2222222222222222222222222222222222222222")
	amount := uint256.MustFromDecimal("123456789012345678901234567890")

	l := Log{Topics: [4]*[32]byte{nil, from, to, nil}, Data: word256(t, amount)}
	got, ok := ERC20(l)
	require.True(t, ok)
	require.Equal(t, "0x1111111111111111111111111111111111111111", got.From)
	require.Equal(t, "0x2222222222222222222222222222222222222222", got.To)
	require.Equal(t, amount.Dec(), got.Amount.Dec())
}

func TestERC20ShortDataIsDecodeFailure(t *testing.T) {
	from := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	to := topicFromAddress(t, "0x2222222222222222222222222222222222222222")
	l := Log{Topics: [4]*[32]byte{nil, from, to, nil}, Data: []byte{0x01, 0x02}}
	_, ok := ERC20(l)
	require.False(t, ok)
}

func TestERC721RoundTrip(t *testing.T) {
	from := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	to := topicFromAddress(t, "0x2222222222222222222222222222222222222222")
	var tokenIDTopic [32]byte
	tokenID := uint256.NewInt(42)
	tokenID.WriteToSlice(tokenIDTopic[:])

	l := Log{Topics: [4]*[32]byte{nil, from, to, &tokenIDTopic}, Data: nil}
	got, ok := ERC721(l)
	require.True(t, ok)
	require.Equal(t, "0x2222222222222222222222222222222222222222", got.To)
	require.Equal(t, uint64(42), got.TokenID.Uint64())
}

func TestTieBreakByTopicCount(t *testing.T) {
	// Same topic0 (Transfer), different topic counts: checks that
	// decode.Log.TopicCount reports 4 and 3 for the two shapes, the
	// values the classify package's tie-break is keyed on (the
	// classification itself is tested in internal/classify).
	from := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	to := topicFromAddress(t, "0x2222222222222222222222222222222222222222")
	var topic0, tokenIDTopic [32]byte

	erc721Shaped := Log{Topics: [4]*[32]byte{&topic0, from, to, &tokenIDTopic}}
	require.Equal(t, 4, erc721Shaped.TopicCount())

	erc20Shaped := Log{Topics: [4]*[32]byte{&topic0, from, to, nil}, Data: make([]byte, 32)}
	require.Equal(t, 3, erc20Shaped.TopicCount())
}

func TestERC1155TransferSingleRoundTrip(t *testing.T) {
	operator := topicFromAddress(t, "0x3333333333333333333333333333333333333333")
	from := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	to := topicFromAddress(t, "0x2222222222222222222222222222222222222222")

	data := append(word256(t, uint256.NewInt(7)), word256(t, uint256.NewInt(1000))...)
	l := Log{Topics: [4]*[32]byte{nil, operator, from, to}, Data: data}
	got, ok := ERC1155TransferSingle(l)
	require.True(t, ok)
	require.Equal(t, uint64(7), got.TokenID.Uint64())
	require.Equal(t, uint64(1000), got.Amount.Uint64())
}

func TestERC1155TransferBatchRoundTrip(t *testing.T) {
	operator := topicFromAddress(t, "0x3333333333333333333333333333333333333333")
	from := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	to := topicFromAddress(t, "0x2222222222222222222222222222222222222222")

	var data []byte
	data = append(data, word256(t, uint256.NewInt(64))...)  // ids offset
	data = append(data, word256(t, uint256.NewInt(160))...) // values offset
	data = append(data, word256(t, uint256.NewInt(2))...)   // ids length
	data = append(data, word256(t, uint256.NewInt(1))...)
	data = append(data, word256(t, uint256.NewInt(2))...)
	data = append(data, word256(t, uint256.NewInt(2))...) // values length
	data = append(data, word256(t, uint256.NewInt(100))...)
	data = append(data, word256(t, uint256.NewInt(200))...)

	l := Log{Topics: [4]*[32]byte{nil, operator, from, to}, Data: data}
	got, ok := ERC1155TransferBatch(l)
	require.True(t, ok)
	require.Len(t, got.Legs, 2)
	require.Equal(t, uint64(1), got.Legs[0].TokenID.Uint64())
	require.Equal(t, uint64(100), got.Legs[0].Amount.Uint64())
	require.Equal(t, uint64(2), got.Legs[1].TokenID.Uint64())
	require.Equal(t, uint64(200), got.Legs[1].Amount.Uint64())
}

func TestV2SwapRoundTrip(t *testing.T) {
	sender := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	recipient := topicFromAddress(t, "0x2222222222222222222222222222222222222222")

	var data []byte
	data = append(data, word256(t, uint256.NewInt(10))...)
	data = append(data, word256(t, uint256.NewInt(0))...)
	data = append(data, word256(t, uint256.NewInt(0))...)
	data = append(data, word256(t, uint256.NewInt(20))...)

	l := Log{Topics: [4]*[32]byte{nil, sender, recipient, nil}, Data: data}
	got, ok := V2(l)
	require.True(t, ok)
	require.Equal(t, uint64(10), got.Amount0In.Uint64())
	require.Equal(t, uint64(20), got.Amount1Out.Uint64())
}

func signedWord(v int64) []byte {
	var out [32]byte
	if v >= 0 {
		b := big.NewInt(v).Bytes()
		copy(out[32-len(b):], b)
		return out[:]
	}
	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	b := new(big.Int).Add(mod, big.NewInt(v)).Bytes()
	copy(out[32-len(b):], b)
	return out[:]
}

func TestV3SwapSignedAmounts(t *testing.T) {
	sender := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	recipient := topicFromAddress(t, "0x2222222222222222222222222222222222222222")

	var data []byte
	data = append(data, signedWord(-500)...) // amount0 negative (token left the pool)
	data = append(data, signedWord(1000)...) // amount1 positive
	data = append(data, word256(t, uint256.NewInt(1<<40))...)
	data = append(data, word256(t, uint256.NewInt(99999))...)
	data = append(data, signedWord(-120)...) // tick, packed in low 3 bytes

	l := Log{Topics: [4]*[32]byte{nil, sender, recipient, nil}, Data: data}
	got, ok := V3(l)
	require.True(t, ok)
	require.Equal(t, int64(-500), got.Amount0.Int64())
	require.Equal(t, int64(1000), got.Amount1.Int64())
	require.Equal(t, int32(-120), got.Tick)
}

func TestV3SwapRejectsOutOfRangeMagnitude(t *testing.T) {
	sender := topicFromAddress(t, "0x1111111111111111111111111111111111111111")
	recipient := topicFromAddress(t, "0x2222222222222222222222222222222222222222")

	// 2^255 exactly: top bit set with no remaining magnitude is the
	// boundary value that must be rejected (not representable as a
	// legal signed amount in this domain).
	var amount0 [32]byte
	amount0[0] = 0x80

	var data []byte
	data = append(data, amount0[:]...)
	data = append(data, signedWord(0)...)
	data = append(data, word256(t, uint256.NewInt(0))...)
	data = append(data, word256(t, uint256.NewInt(0))...)
	data = append(data, signedWord(0)...)

	l := Log{Topics: [4]*[32]byte{nil, sender, recipient, nil}, Data: data}
	_, ok := V3(l)
	require.False(t, ok)
}

func TestCurveExchangeRoundTrip(t *testing.T) {
	buyer := topicFromAddress(t, "0x1111111111111111111111111111111111111111")

	var data []byte
	data = append(data, signedWord(0)...) // sold_id = 0
	data = append(data, word256(t, uint256.NewInt(5000))...)
	data = append(data, signedWord(1)...) // bought_id = 1
	data = append(data, word256(t, uint256.NewInt(4980))...)

	l := Log{Topics: [4]*[32]byte{nil, buyer, nil, nil}, Data: data}
	got, ok := Curve(l)
	require.True(t, ok)
	require.Equal(t, int32(0), got.SoldID)
	require.Equal(t, int32(1), got.BoughtID)
	require.Equal(t, uint64(5000), got.TokensSold.Uint64())
	require.Equal(t, uint64(4980), got.TokensBought.Uint64())
}
