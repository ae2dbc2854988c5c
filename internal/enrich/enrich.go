// Package enrich is the Block Enricher of SPEC_FULL.md §4.6: a pure
// reduction over one fetched block plus its receipts into the row sets
// the Store Gateway commits. DEX name resolution is the only step that
// may trigger background I/O (an async factory probe on a cache miss);
// everything else is computed from already-fetched data.
package enrich

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/holiman/uint256"

	"github.com/base-indexer/baseindexer/internal/bigint"
	"github.com/base-indexer/baseindexer/internal/classify"
	"github.com/base-indexer/baseindexer/internal/decode"
	"github.com/base-indexer/baseindexer/internal/dex"
	"github.com/base-indexer/baseindexer/internal/hexutil"
	"github.com/base-indexer/baseindexer/internal/rpc"
	"github.com/base-indexer/baseindexer/internal/sigs"
)

// Block reduces a fetched block and its receipts into a Result. resolver
// is consulted synchronously (Lookup only, never LookupDurable) for DEX
// swap rows; a miss queues an async probe, scoped to ctx, and falls back
// to a signature-based name for this block's row.
func Block(ctx context.Context, block rpc.Block, receipts []rpc.Receipt, resolver *dex.Resolver) Result {
	res := Result{
		EventCounts: make(map[string]int),
	}

	senders := make(map[string]struct{}, len(block.Txs))
	recipients := make(map[string]struct{}, len(block.Txs))
	contractLogCounts := make(map[string]int)

	var gasUsedSum uint256.Int
	var gasPriceSum uint256.Int
	var priorityFeeSum uint256.Int
	var priorityFeeCount uint64
	logCount := 0

	for _, tx := range block.Txs {
		senders[strings.ToLower(tx.From)] = struct{}{}
		if tx.To != nil {
			recipients[strings.ToLower(*tx.To)] = struct{}{}
		}

		if gp, err := hexutil.ParseDecimal256(tx.GasPrice); err == nil {
			gasPriceSum = *bigint.Add256(&gasPriceSum, gp)
		}
		if tx.MaxPriorityFeePerGas != "" {
			if pf, err := hexutil.ParseDecimal256(tx.MaxPriorityFeePerGas); err == nil {
				priorityFeeSum = *bigint.Add256(&priorityFeeSum, pf)
				priorityFeeCount++
			}
		}
	}

	for _, receipt := range receipts {
		gasUsedSum = *bigint.Add256(&gasUsedSum, uint256.NewInt(receipt.GasUsed))

		if receipt.ContractAddress != nil {
			res.Deployments = append(res.Deployments, Deployment{
				TxHash:          receipt.TxHash,
				BlockNumber:     receipt.BlockNumber,
				Deployer:        deployerOf(block, receipt.TxHash),
				ContractAddress: *receipt.ContractAddress,
			})
		}

		for _, log := range receipt.Logs {
			logCount++
			addr := strings.ToLower(log.Address)
			contractLogCounts[addr]++

			dl, topic0, ok := toDecodeLog(log)
			if !ok {
				continue
			}
			kind := classify.Log(topic0, dl.TopicCount())
			res.EventCounts[string(kind)]++
			dispatchLog(ctx, &res, kind, log, dl, resolver)
		}
	}

	res.Metrics = BlockMetrics{
		BlockNumber:      block.Number,
		TxCount:          len(block.Txs),
		LogCount:         logCount,
		TotalGasUsed:     hexutil.DecimalString(&gasUsedSum),
		AvgGasPerTx:      hexutil.DecimalString(bigint.AvgFloor(&gasUsedSum, uint64(len(block.Txs)))),
		TopContracts:     topContracts(contractLogCounts, 10),
		UniqueSenders:    len(senders),
		UniqueRecipients: len(recipients),
		AvgGasPrice:      hexutil.DecimalString(bigint.AvgFloor(&gasPriceSum, uint64(len(block.Txs)))),
		AvgPriorityFee:   hexutil.DecimalString(bigint.AvgFloor(&priorityFeeSum, priorityFeeCount)),
	}

	return res
}

func deployerOf(block rpc.Block, txHash string) string {
	for _, tx := range block.Txs {
		if tx.Hash == txHash {
			return tx.From
		}
	}
	return ""
}

// toDecodeLog converts an rpc.Log into the decoder's input shape,
// reporting the parsed topic0 alongside for classification. ok is false
// if the log has no topics at all (malformed; every real log carries at
// least topic0).
func toDecodeLog(l rpc.Log) (decode.Log, [32]byte, bool) {
	var out decode.Log
	var topic0 [32]byte
	if len(l.Topics) == 0 {
		return out, topic0, false
	}
	for i, t := range l.Topics {
		if i >= 4 {
			break
		}
		b := mustHash32(t)
		out.Topics[i] = &b
	}
	topic0 = *out.Topics[0]
	out.Data = l.Data
	return out, topic0, true
}

func mustHash32(hexHash string) [32]byte {
	hexHash = strings.TrimPrefix(hexHash, "0x")
	var out [32]byte
	for i := 0; i < 32 && i*2+1 < len(hexHash); i++ {
		hi := hexDigit(hexHash[i*2])
		lo := hexDigit(hexHash[i*2+1])
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

func dispatchLog(ctx context.Context, res *Result, kind sigs.Kind, raw rpc.Log, dl decode.Log, resolver *dex.Resolver) {
	switch kind {
	case sigs.KindERC20Transfer:
		if t, ok := decode.ERC20(dl); ok {
			res.TokenTransfers = append(res.TokenTransfers, TokenTransfer{
				TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
				Standard: "erc20", Token: raw.Address, From: t.From, To: t.To,
				Amount: hexutil.DecimalString(t.Amount),
			})
		}

	case sigs.KindWethWrap:
		if t, ok := decode.WethWrap(dl); ok {
			res.TokenTransfers = append(res.TokenTransfers, TokenTransfer{
				TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
				Standard: "weth_wrap", Token: raw.Address, From: zeroAddress, To: t.Who,
				Amount: hexutil.DecimalString(t.Amount),
			})
		}

	case sigs.KindWethUnwrap:
		if t, ok := decode.WethUnwrap(dl); ok {
			res.TokenTransfers = append(res.TokenTransfers, TokenTransfer{
				TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
				Standard: "weth_unwrap", Token: raw.Address, From: t.Who, To: zeroAddress,
				Amount: hexutil.DecimalString(t.Amount),
			})
		}

	case sigs.KindERC721Transfer:
		if t, ok := decode.ERC721(dl); ok {
			res.NFTTransfers = append(res.NFTTransfers, NFTTransfer{
				TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
				Standard: "erc721", Token: raw.Address, From: t.From, To: t.To,
				TokenID: hexutil.DecimalString(t.TokenID), Amount: "1",
			})
		}

	case sigs.KindERC1155Single:
		if t, ok := decode.ERC1155TransferSingle(dl); ok {
			res.NFTTransfers = append(res.NFTTransfers, NFTTransfer{
				TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
				Standard: "erc1155", Token: raw.Address, From: t.From, To: t.To,
				TokenID: hexutil.DecimalString(t.TokenID), Amount: hexutil.DecimalString(t.Amount),
			})
		}

	case sigs.KindERC1155Batch:
		if t, ok := decode.ERC1155TransferBatch(dl); ok {
			for _, leg := range t.Legs {
				res.NFTTransfers = append(res.NFTTransfers, NFTTransfer{
					TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
					Standard: "erc1155", Token: raw.Address, From: t.From, To: t.To,
					TokenID: hexutil.DecimalString(leg.TokenID), Amount: hexutil.DecimalString(leg.Amount),
				})
			}
		}

	case sigs.KindSwapV2, sigs.KindSwapAero:
		if t, ok := decode.V2(dl); ok {
			res.DexSwaps = append(res.DexSwaps, v2SwapRow(ctx, raw, t, resolver, kind))
		}

	case sigs.KindSwapV3:
		if t, ok := decode.V3(dl); ok {
			res.DexSwaps = append(res.DexSwaps, v3SwapRow(ctx, raw, t, resolver, kind))
		}

	case sigs.KindSwapCL:
		if t, ok := decode.CL(dl); ok {
			res.DexSwaps = append(res.DexSwaps, v3SwapRow(ctx, raw, decode.V3Swap(t), resolver, kind))
		}

	case sigs.KindSwapCurve:
		if t, ok := decode.Curve(dl); ok {
			res.DexSwaps = append(res.DexSwaps, curveSwapRow(ctx, raw, t, resolver))
		}
	}
}

func resolveDexName(ctx context.Context, resolver *dex.Resolver, pool string, fallbackKind sigs.Kind) string {
	if resolver == nil {
		return dex.FallbackName(fallbackKind)
	}
	if name, ok := resolver.Lookup(pool); ok {
		return name
	}
	resolver.Queue(ctx, pool, fallbackKind)
	return dex.FallbackName(fallbackKind)
}

func v2SwapRow(ctx context.Context, raw rpc.Log, t decode.V2Swap, resolver *dex.Resolver, kind sigs.Kind) DexSwap {
	return DexSwap{
		TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
		DexName: resolveDexName(ctx, resolver, raw.Address, kind), Pool: raw.Address,
		Sender: t.Sender, Recipient: t.Recipient,
		Amount0In: hexutil.DecimalString(t.Amount0In), Amount1In: hexutil.DecimalString(t.Amount1In),
		Amount0Out: hexutil.DecimalString(t.Amount0Out), Amount1Out: hexutil.DecimalString(t.Amount1Out),
	}
}

func v3SwapRow(ctx context.Context, raw rpc.Log, t decode.V3Swap, resolver *dex.Resolver, kind sigs.Kind) DexSwap {
	amount0In, amount0Out := splitSigned(t.Amount0)
	amount1In, amount1Out := splitSigned(t.Amount1)
	return DexSwap{
		TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
		DexName: resolveDexName(ctx, resolver, raw.Address, kind), Pool: raw.Address,
		Sender: t.Sender, Recipient: t.Recipient,
		Amount0In: amount0In, Amount1In: amount1In, Amount0Out: amount0Out, Amount1Out: amount1Out,
	}
}

func curveSwapRow(ctx context.Context, raw rpc.Log, t decode.CurveExchange, resolver *dex.Resolver) DexSwap {
	return DexSwap{
		TxHash: raw.TxHash, BlockNumber: raw.BlockNumber, LogIndex: raw.LogIndex,
		DexName: resolveDexName(ctx, resolver, raw.Address, sigs.KindSwapCurve), Pool: raw.Address,
		Sender: t.Buyer, Recipient: t.Buyer,
		Amount0In: hexutil.DecimalString(t.TokensSold), Amount1In: "0",
		Amount0Out: "0", Amount1Out: hexutil.DecimalString(t.TokensBought),
	}
}

// splitSigned renders a signed V3-style amount as (in, out) decimal
// strings: positive means the token flowed into the pool (an "in" leg),
// negative means it flowed out.
func splitSigned(v *big.Int) (in string, out string) {
	if v.Sign() >= 0 {
		return v.String(), "0"
	}
	return "0", new(big.Int).Neg(v).String()
}

func topContracts(counts map[string]int, n int) []ContractActivity {
	out := make([]ContractActivity, 0, len(counts))
	for addr, count := range counts {
		out = append(out, ContractActivity{Address: addr, LogCount: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LogCount != out[j].LogCount {
			return out[i].LogCount > out[j].LogCount
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
