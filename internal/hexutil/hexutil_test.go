package hexutil

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestParseUint64HandlesHexDecimalAndEmpty(t *testing.T) {
	v, ok := ParseUint64("0x1a")
	require.True(t, ok)
	require.Equal(t, uint64(26), v)

	v, ok = ParseUint64("42")
	require.True(t, ok)
	require.Equal(t, uint64(42), v)

	v, ok = ParseUint64("")
	require.True(t, ok)
	require.Equal(t, uint64(0), v)

	_, ok = ParseUint64("0xzz")
	require.False(t, ok)
}

func TestEncodeUint64(t *testing.T) {
	require.Equal(t, "0x1a", EncodeUint64(26))
	require.Equal(t, "0x0", EncodeUint64(0))
}

func TestMustParseUint64PanicsOnInvalid(t *testing.T) {
	require.Panics(t, func() { MustParseUint64("not-hex") })
	require.Equal(t, uint64(26), MustParseUint64("0x1a"))
}

func TestParseBig256RoundTrips(t *testing.T) {
	z, ok := ParseBig256("0xde0b6b3a7640000")
	require.True(t, ok)
	require.Equal(t, "1000000000000000000", z.Dec())

	z, ok = ParseBig256("")
	require.True(t, ok)
	require.True(t, z.IsZero())

	_, ok = ParseBig256("0xzz")
	require.False(t, ok)
}

func TestDecimalStringHandlesNil(t *testing.T) {
	require.Equal(t, "0", DecimalString(nil))
	require.Equal(t, "26", DecimalString(uint256.NewInt(26)))
}

func TestParseDecimal256RoundTrips(t *testing.T) {
	z, err := ParseDecimal256("1000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", z.Dec())

	z, err = ParseDecimal256("")
	require.NoError(t, err)
	require.True(t, z.IsZero())

	_, err = ParseDecimal256("not-a-number")
	require.Error(t, err)
}

func TestParseAddressLowercasesAndValidatesLength(t *testing.T) {
	addr, ok := ParseAddress("0x4200000000000000000000000000000000000006")
	require.True(t, ok)
	require.Equal(t, "0x4200000000000000000000000000000000000006", addr)

	addr, ok = ParseAddress("0x4200000000000000000000000000000000000006"[:2] + "ABCDEF0000000000000000000000000000000006")
	require.True(t, ok)
	require.Equal(t, "0xabcdef0000000000000000000000000000000006", addr)
}

func TestParseAddressRejectsWrongLength(t *testing.T) {
	_, ok := ParseAddress("0x1234")
	require.False(t, ok)
}

func TestParseHashValidLength(t *testing.T) {
	valid := "0x" + stringRepeat("ab", 32)
	hash, ok := ParseHash(valid)
	require.True(t, ok)
	require.Equal(t, valid, hash)
}

func TestParseHashRejectsWrongLength(t *testing.T) {
	_, ok := ParseHash("0x1234")
	require.False(t, ok)
}

func TestBigToUint256Converts(t *testing.T) {
	b := big.NewInt(12345)
	z := BigToUint256(b)
	require.Equal(t, "12345", z.Dec())
}

func stringRepeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
