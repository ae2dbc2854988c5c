package bigint

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSumOverflowAddsAndSkipsNil(t *testing.T) {
	sum, ok := SumOverflow(uint256.NewInt(10), nil, uint256.NewInt(5))
	require.True(t, ok)
	require.Equal(t, uint256.NewInt(15), sum)
}

func TestSumOverflowDetectsWraparound(t *testing.T) {
	max := new(uint256.Int).Sub(uint256.NewInt(0), uint256.NewInt(1)) // 2^256 - 1
	_, ok := SumOverflow(max, uint256.NewInt(1))
	require.False(t, ok)
}

func TestAvgFloorTruncatesAndHandlesZeroCount(t *testing.T) {
	require.Equal(t, uint256.NewInt(3), AvgFloor(uint256.NewInt(10), 3))
	require.Equal(t, uint256.NewInt(0), AvgFloor(uint256.NewInt(10), 0))
	require.Equal(t, uint256.NewInt(0), AvgFloor(nil, 5))
}

func TestAdd256TreatsNilAsZero(t *testing.T) {
	require.Equal(t, uint256.NewInt(7), Add256(uint256.NewInt(7), nil))
	require.Equal(t, uint256.NewInt(0), Add256(nil, nil))
}

func TestIsZero(t *testing.T) {
	require.True(t, IsZero(nil))
	require.True(t, IsZero(uint256.NewInt(0)))
	require.False(t, IsZero(uint256.NewInt(1)))
}
