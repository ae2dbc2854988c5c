package classify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/base-indexer/baseindexer/internal/sigs"
)

func TestTxContractCreationWhenToIsNil(t *testing.T) {
	kind := Tx(TxShape{To: nil, Value: "0", Input: nil})
	require.Equal(t, TxKindContractCreation, kind)
}

func TestTxEthTransferWhenValuePositiveAndInputEmpty(t *testing.T) {
	to := "0x4200000000000000000000000000000000000006"
	kind := Tx(TxShape{To: &to, Value: "1000000000000000000", Input: nil})
	require.Equal(t, TxKindEthTransfer, kind)
}

func TestTxContractCallWhenInputPresent(t *testing.T) {
	to := "0x4200000000000000000000000000000000000006"
	kind := Tx(TxShape{To: &to, Value: "0", Input: []byte{0xa9, 0x05, 0x9c, 0xbb}})
	require.Equal(t, TxKindContractCall, kind)
}

func TestTxContractCallWhenValueZeroAndInputEmpty(t *testing.T) {
	to := "0x4200000000000000000000000000000000000006"
	kind := Tx(TxShape{To: &to, Value: "", Input: nil})
	require.Equal(t, TxKindContractCall, kind)
}

func TestTxContractCallWhenValuePositiveButInputAlsoPresent(t *testing.T) {
	to := "0x4200000000000000000000000000000000000006"
	kind := Tx(TxShape{To: &to, Value: "5", Input: []byte{0x01}})
	require.Equal(t, TxKindContractCall, kind)
}

func TestLogERC20TransferWithThreeTopics(t *testing.T) {
	topic0 := sigs.Topic0("Transfer(address,address,uint256)")
	require.Equal(t, sigs.KindERC20Transfer, Log(topic0, 3))
}

func TestLogERC721TransferWithFourTopics(t *testing.T) {
	topic0 := sigs.Topic0("Transfer(address,address,uint256)")
	require.Equal(t, sigs.KindERC721Transfer, Log(topic0, 4))
}

func TestLogERC1155SinglePassesThrough(t *testing.T) {
	topic0 := sigs.Topic0("TransferSingle(address,address,address,uint256,uint256)")
	require.Equal(t, sigs.KindERC1155Single, Log(topic0, 4))
}

func TestLogERC1155BatchPassesThrough(t *testing.T) {
	topic0 := sigs.Topic0("TransferBatch(address,address,address,uint256[],uint256[])")
	require.Equal(t, sigs.KindERC1155Batch, Log(topic0, 4))
}

func TestLogUnknownTopicFallsBackToOther(t *testing.T) {
	var unknown [32]byte
	for i := range unknown {
		unknown[i] = 0xff
	}
	require.Equal(t, sigs.KindOther, Log(unknown, 3))
}

func TestLogSwapV3PassesThroughDefaultCase(t *testing.T) {
	topic0 := sigs.Topic0("Swap(address,address,int256,int256,uint160,uint128,int24)")
	require.Equal(t, sigs.KindSwapV3, Log(topic0, 3))
}
