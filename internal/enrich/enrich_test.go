package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/base-indexer/baseindexer/internal/rpc"
	"github.com/base-indexer/baseindexer/internal/sigs"
)

func transferTopics() []string {
	topic0 := sigs.Topic0("Transfer(address,address,uint256)")
	from := "0x" + repeatHex("11", 12) + repeatHex("aa", 20)
	to := "0x" + repeatHex("11", 12) + repeatHex("bb", 20)
	return []string{hexOf(topic0), from, to}
}

func repeatHex(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func hexOf(b [32]byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 2+64)
	out[0], out[1] = '0', 'x'
	for i, c := range b {
		out[2+i*2] = hexdigits[c>>4]
		out[2+i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}

func wordOf(n uint64) []byte {
	out := make([]byte, 32)
	for i := 0; i < 8; i++ {
		out[31-i] = byte(n >> (8 * i))
	}
	return out
}

func TestBlockCountsERC20TransferAndGas(t *testing.T) {
	block := rpc.Block{
		Number: 100,
		Txs: []rpc.Tx{
			{Hash: "0xaa", From: "0xsender1", To: strPtr("0xrecipient1"), GasPrice: "1000000000"},
			{Hash: "0xbb", From: "0xsender2", To: strPtr("0xrecipient1"), GasPrice: "3000000000"},
		},
	}
	receipts := []rpc.Receipt{
		{
			TxHash: "0xaa", BlockNumber: 100, GasUsed: 21000,
			Logs: []rpc.Log{
				{
					Address:     "0xtokenaddress00000000000000000000000001",
					Topics:      transferTopics(),
					Data:        wordOf(500),
					TxHash:      "0xaa",
					BlockNumber: 100,
					LogIndex:    0,
				},
			},
		},
		{TxHash: "0xbb", BlockNumber: 100, GasUsed: 30000},
	}

	res := Block(context.Background(), block, receipts, nil)

	require.Equal(t, uint64(100), res.Metrics.BlockNumber)
	require.Equal(t, 2, res.Metrics.TxCount)
	require.Equal(t, 1, res.Metrics.LogCount)
	require.Equal(t, "51000", res.Metrics.TotalGasUsed)
	require.Equal(t, "25500", res.Metrics.AvgGasPerTx)
	require.Equal(t, 2, res.Metrics.UniqueSenders)
	require.Equal(t, 1, res.Metrics.UniqueRecipients)
	require.Equal(t, "2000000000", res.Metrics.AvgGasPrice)

	require.Len(t, res.TokenTransfers, 1)
	require.Equal(t, "erc20", res.TokenTransfers[0].Standard)
	require.Equal(t, "500", res.TokenTransfers[0].Amount)
	require.Equal(t, 1, res.EventCounts[string(sigs.KindERC20Transfer)])
}

func TestBlockEmitsDeploymentRowForCreationReceipt(t *testing.T) {
	block := rpc.Block{
		Number: 5,
		Txs:    []rpc.Tx{{Hash: "0xcreate", From: "0xdeployer", To: nil}},
	}
	contractAddr := "0xnewcontract"
	receipts := []rpc.Receipt{
		{TxHash: "0xcreate", BlockNumber: 5, ContractAddress: &contractAddr},
	}

	res := Block(context.Background(), block, receipts, nil)

	require.Len(t, res.Deployments, 1)
	require.Equal(t, "0xdeployer", res.Deployments[0].Deployer)
	require.Equal(t, contractAddr, res.Deployments[0].ContractAddress)
}

func TestTopContractsTieBreaksByAddress(t *testing.T) {
	block := rpc.Block{Number: 1}
	receipts := []rpc.Receipt{
		{
			Logs: []rpc.Log{
				{Address: "0xbbbb", Topics: transferTopics(), Data: wordOf(1)},
				{Address: "0xaaaa", Topics: transferTopics(), Data: wordOf(1)},
			},
		},
	}

	res := Block(context.Background(), block, receipts, nil)

	require.Len(t, res.Metrics.TopContracts, 2)
	require.Equal(t, "0xaaaa", res.Metrics.TopContracts[0].Address)
	require.Equal(t, "0xbbbb", res.Metrics.TopContracts[1].Address)
}

func strPtr(s string) *string { return &s }
