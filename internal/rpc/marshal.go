package rpc

import (
	"fmt"

	"github.com/base-indexer/baseindexer/internal/hexutil"
)

// rawBlock is the loosely-typed JSON shape of eth_getBlockByNumber's
// result. Every hex-quantity/hex-address field is parsed explicitly by
// normalize(), never accessed structurally downstream (SPEC_FULL.md §9,
// "dynamic/duck-typed RPC payloads").
type rawBlock struct {
	Number       string   `json:"number"`
	Hash         string   `json:"hash"`
	ParentHash   string   `json:"parentHash"`
	Timestamp    string   `json:"timestamp"`
	GasUsed      string   `json:"gasUsed"`
	GasLimit     string   `json:"gasLimit"`
	BaseFeePerGas string  `json:"baseFeePerGas"`
	Transactions []rawTx `json:"transactions"`
}

type rawTx struct {
	Hash                 string `json:"hash"`
	From                 string `json:"from"`
	To                   string `json:"to"`
	Value                string `json:"value"`
	Input                string `json:"input"`
	GasPrice             string `json:"gasPrice"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	Gas                  string `json:"gas"`
	Type                 string `json:"type"`
}

type rawReceipt struct {
	TransactionHash   string     `json:"transactionHash"`
	BlockNumber       string     `json:"blockNumber"`
	Status            string     `json:"status"`
	GasUsed           string     `json:"gasUsed"`
	EffectiveGasPrice string     `json:"effectiveGasPrice"`
	ContractAddress   string     `json:"contractAddress"`
	Logs              []rawLog   `json:"logs"`
}

type rawLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	LogIndex    string   `json:"logIndex"`
	TxHash      string   `json:"transactionHash"`
	BlockNumber string   `json:"blockNumber"`
}

func (r rawBlock) normalize() (Block, error) {
	number, ok := hexutil.ParseUint64(r.Number)
	if !ok {
		return Block{}, fmt.Errorf("rpc: malformed block number %q", r.Number)
	}
	hash, ok := hexutil.ParseHash(r.Hash)
	if !ok {
		return Block{}, fmt.Errorf("rpc: malformed block hash %q", r.Hash)
	}
	parentHash, ok := hexutil.ParseHash(r.ParentHash)
	if !ok {
		return Block{}, fmt.Errorf("rpc: malformed parent hash %q", r.ParentHash)
	}
	timestamp, ok := hexutil.ParseUint64(r.Timestamp)
	if !ok {
		return Block{}, fmt.Errorf("rpc: malformed timestamp %q", r.Timestamp)
	}
	gasUsed, _ := hexutil.ParseUint64(r.GasUsed)
	gasLimit, _ := hexutil.ParseUint64(r.GasLimit)

	baseFee := ""
	if r.BaseFeePerGas != "" {
		z, ok := hexutil.ParseBig256(r.BaseFeePerGas)
		if !ok {
			return Block{}, fmt.Errorf("rpc: malformed base fee %q", r.BaseFeePerGas)
		}
		baseFee = hexutil.DecimalString(z)
	}

	txs := make([]Tx, 0, len(r.Transactions))
	for _, rt := range r.Transactions {
		tx, err := rt.normalize(number)
		if err != nil {
			return Block{}, err
		}
		txs = append(txs, tx)
	}

	return Block{
		Number:     number,
		Hash:       hash,
		ParentHash: parentHash,
		Timestamp:  timestamp,
		GasUsed:    gasUsed,
		GasLimit:   gasLimit,
		BaseFee:    baseFee,
		Txs:        txs,
	}, nil
}

func (rt rawTx) normalize(blockNumber uint64) (Tx, error) {
	hash, ok := hexutil.ParseHash(rt.Hash)
	if !ok {
		return Tx{}, fmt.Errorf("rpc: malformed tx hash %q", rt.Hash)
	}
	from, ok := hexutil.ParseAddress(rt.From)
	if !ok {
		return Tx{}, fmt.Errorf("rpc: malformed tx from %q", rt.From)
	}

	var to *string
	if rt.To != "" {
		addr, ok := hexutil.ParseAddress(rt.To)
		if !ok {
			return Tx{}, fmt.Errorf("rpc: malformed tx to %q", rt.To)
		}
		to = &addr
	}

	value, ok := hexutil.ParseBig256(rt.Value)
	if !ok {
		return Tx{}, fmt.Errorf("rpc: malformed tx value %q", rt.Value)
	}

	input, err := decodeHexBytes(rt.Input)
	if err != nil {
		return Tx{}, fmt.Errorf("rpc: malformed tx input: %w", err)
	}

	gas, _ := hexutil.ParseUint64(rt.Gas)
	gasPriceZ, _ := hexutil.ParseBig256(rt.GasPrice)

	txType := classifyTxType(rt.Type)

	maxFee := ""
	if rt.MaxFeePerGas != "" {
		z, _ := hexutil.ParseBig256(rt.MaxFeePerGas)
		maxFee = hexutil.DecimalString(z)
	}
	maxPriority := ""
	if rt.MaxPriorityFeePerGas != "" {
		z, _ := hexutil.ParseBig256(rt.MaxPriorityFeePerGas)
		maxPriority = hexutil.DecimalString(z)
	}

	return Tx{
		Hash:                 hash,
		BlockNumber:          blockNumber,
		From:                 from,
		To:                   to,
		Value:                hexutil.DecimalString(value),
		Input:                input,
		GasPrice:             hexutil.DecimalString(gasPriceZ),
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: maxPriority,
		Gas:                  gas,
		Type:                 txType,
	}, nil
}

func classifyTxType(rawType string) string {
	n, ok := hexutil.ParseUint64(rawType)
	if !ok {
		return "legacy"
	}
	switch n {
	case 0:
		return "legacy"
	case 1:
		return "eip2930"
	case 2:
		return "eip1559"
	default:
		return "legacy"
	}
}

func normalizeReceipts(raws []rawReceipt) ([]Receipt, error) {
	out := make([]Receipt, 0, len(raws))
	for _, raw := range raws {
		r, err := raw.normalize()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (rr rawReceipt) normalize() (Receipt, error) {
	txHash, ok := hexutil.ParseHash(rr.TransactionHash)
	if !ok {
		return Receipt{}, fmt.Errorf("rpc: malformed receipt tx hash %q", rr.TransactionHash)
	}
	blockNumber, ok := hexutil.ParseUint64(rr.BlockNumber)
	if !ok {
		return Receipt{}, fmt.Errorf("rpc: malformed receipt block number %q", rr.BlockNumber)
	}
	status, _ := hexutil.ParseUint64(rr.Status)
	gasUsed, _ := hexutil.ParseUint64(rr.GasUsed)
	effGasPriceZ, _ := hexutil.ParseBig256(rr.EffectiveGasPrice)

	var contractAddr *string
	if rr.ContractAddress != "" {
		addr, ok := hexutil.ParseAddress(rr.ContractAddress)
		if ok {
			contractAddr = &addr
		}
	}

	logs := make([]Log, 0, len(rr.Logs))
	for _, rl := range rr.Logs {
		l, err := rl.normalize()
		if err != nil {
			return Receipt{}, err
		}
		logs = append(logs, l)
	}

	return Receipt{
		TxHash:            txHash,
		BlockNumber:       blockNumber,
		Status:            status,
		GasUsed:           gasUsed,
		EffectiveGasPrice: hexutil.DecimalString(effGasPriceZ),
		ContractAddress:   contractAddr,
		Logs:              logs,
	}, nil
}

func (rl rawLog) normalize() (Log, error) {
	addr, ok := hexutil.ParseAddress(rl.Address)
	if !ok {
		return Log{}, fmt.Errorf("rpc: malformed log address %q", rl.Address)
	}
	data, err := decodeHexBytes(rl.Data)
	if err != nil {
		return Log{}, fmt.Errorf("rpc: malformed log data: %w", err)
	}
	logIndex, _ := hexutil.ParseUint64(rl.LogIndex)
	txHash, ok := hexutil.ParseHash(rl.TxHash)
	if !ok {
		return Log{}, fmt.Errorf("rpc: malformed log tx hash %q", rl.TxHash)
	}
	blockNumber, _ := hexutil.ParseUint64(rl.BlockNumber)

	topics := make([]string, 0, len(rl.Topics))
	for _, t := range rl.Topics {
		h, ok := hexutil.ParseHash(t)
		if !ok {
			return Log{}, fmt.Errorf("rpc: malformed log topic %q", t)
		}
		topics = append(topics, h)
	}

	return Log{
		Address:     addr,
		Topics:      topics,
		Data:        data,
		LogIndex:    logIndex,
		TxHash:      txHash,
		BlockNumber: blockNumber,
	}, nil
}

func decodeHexBytes(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return nil, nil
	}
	if len(s) < 2 || s[0:2] != "0x" {
		return nil, fmt.Errorf("missing 0x prefix")
	}
	s = s[2:]
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid hex digit")
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
