package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logrus.New().WithField("test", "rpc")
	return New(srv.URL, 4, log, WithRetryBudget(2))
}

func writeResult(t *testing.T, w http.ResponseWriter, result interface{}) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	resp := rpcResponse{Result: raw}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func TestLatestHead(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, "0x64")
	})
	head, err := c.LatestHead(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(100), head)
}

func TestBlockWithTxsParsesHexFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResult(t, w, rawBlock{
			Number:        "0x63",
			Hash:          "0x" + repeat("ab", 32),
			ParentHash:    "0x" + repeat("cd", 32),
			Timestamp:     "0x5f5e100",
			GasUsed:       "0x5208",
			GasLimit:      "0x1c9c380",
			BaseFeePerGas: "0x3b9aca00",
			Transactions: []rawTx{
				{
					Hash:     "0x" + repeat("11", 32),
					From:     "0x" + repeat("22", 20),
					To:       "0x" + repeat("33", 20),
					Value:    "0xde0b6b3a7640000",
					Input:    "0x",
					GasPrice: "0x3b9aca00",
					Gas:      "0x5208",
					Type:     "0x0",
				},
			},
		})
	})

	block, err := c.BlockWithTxs(context.Background(), 99)
	require.NoError(t, err)
	require.Equal(t, uint64(99), block.Number)
	require.Equal(t, "1000000000", block.BaseFee)
	require.Len(t, block.Txs, 1)
	require.Equal(t, "1000000000000000000", block.Txs[0].Value)
	require.Equal(t, "legacy", block.Txs[0].Type)
}

func TestBatchReceiptsFallsBackAndLatches(t *testing.T) {
	var batchCalls, perHashCalls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "eth_getBlockReceipts":
			batchCalls++
			resp := rpcResponse{Error: &rpcError{Code: -32601, Message: "method not found"}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		case "eth_getTransactionReceipt":
			perHashCalls++
			writeResult(t, w, rawReceipt{
				TransactionHash: "0x" + repeat("11", 32),
				BlockNumber:     "0x63",
				Status:          "0x1",
				GasUsed:         "0x5208",
			})
		}
	})

	receipts, err := c.BlockReceiptsOrFallback(context.Background(), 99, []string{"0x" + repeat("11", 32)})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, 1, batchCalls)
	require.Equal(t, 1, perHashCalls)

	// Second block must never re-probe the batch method.
	_, err = c.BlockReceiptsOrFallback(context.Background(), 100, []string{"0x" + repeat("11", 32)})
	require.NoError(t, err)
	require.Equal(t, 1, batchCalls, "batch method must be probed exactly once per process lifetime")
	require.Equal(t, 2, perHashCalls)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
