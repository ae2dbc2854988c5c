package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/base-indexer/baseindexer/internal/hexutil"
	"github.com/base-indexer/baseindexer/internal/ingesterr"
)

// Client is a JSON-RPC 2.0 client bound to one endpoint, with the
// exponential-backoff retry policy of SPEC_FULL.md §4.5 (initial 1s,
// cap 30s) and the batch-receipts-unsupported latch.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        *logrus.Entry

	concurrencyLimit int
	retryBudget      int

	// batchReceiptsUnsupported latches permanently the first time
	// eth_getBlockReceipts reports method-not-found; per SPEC_FULL.md
	// §4.5, probed once, then never retried.
	batchReceiptsUnsupported atomic.Bool
}

// Option configures a Client at construction.
type Option func(*Client)

// WithRetryBudget overrides the default retry budget (number of retries
// after the first attempt) for each request.
func WithRetryBudget(n int) Option {
	return func(c *Client) { c.retryBudget = n }
}

// New builds a Client against endpoint with the given per-block receipt
// fan-out concurrency limit.
func New(endpoint string, concurrencyLimit int, log *logrus.Entry, opts ...Option) *Client {
	c := &Client{
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		endpoint:         endpoint,
		log:              log,
		concurrencyLimit: concurrencyLimit,
		retryBudget:      8,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) backoffPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 1 * time.Second
	b.MaxInterval = 30 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	return backoff.WithMaxRetries(b, uint64(c.retryBudget))
}

// call performs a single JSON-RPC method invocation with the retry
// policy applied. methodNotFound reports whether the remote returned a
// "method not found"-shaped error, so callers probing optional methods
// can distinguish that from a transient failure.
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) (methodNotFound bool, err error) {
	op := func() error {
		body, marshalErr := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
		if marshalErr != nil {
			return backoff.Permanent(marshalErr)
		}

		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if reqErr != nil {
			return backoff.Permanent(reqErr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return &ingesterr.TransientRPCError{Op: method, Err: doErr}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &ingesterr.TransientRPCError{Op: method, Err: fmt.Errorf("http status %d", resp.StatusCode)}
		}

		var rpcResp rpcResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&rpcResp); decodeErr != nil {
			return &ingesterr.TransientRPCError{Op: method, Err: decodeErr}
		}
		if rpcResp.Error != nil {
			if isMethodNotFound(rpcResp.Error) {
				methodNotFound = true
				return backoff.Permanent(&ingesterr.RPCMethodUnsupportedError{Method: method})
			}
			return backoff.Permanent(fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
		}
		if out != nil && len(rpcResp.Result) > 0 {
			if unmarshalErr := json.Unmarshal(rpcResp.Result, out); unmarshalErr != nil {
				return backoff.Permanent(unmarshalErr)
			}
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.log.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"wait":   wait.String(),
		}).Warn("rpc: retrying after transient failure")
	}

	err = backoff.RetryNotify(op, c.backoffPolicy(), notify)
	return methodNotFound, err
}

func isMethodNotFound(e *rpcError) bool {
	// -32601 is the JSON-RPC 2.0 reserved code for "method not found";
	// some providers instead report -32000 with a descriptive message.
	return e.Code == -32601 || (e.Code == -32000 && (containsFold(e.Message, "not supported") || containsFold(e.Message, "not found")))
}

func containsFold(haystack, needle string) bool {
	hl, nl := len(haystack), len(needle)
	if nl == 0 || nl > hl {
		return false
	}
	for i := 0; i+nl <= hl; i++ {
		if equalFold(haystack[i:i+nl], needle) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// LatestHead returns the remote node's current head block number.
func (c *Client) LatestHead(ctx context.Context) (uint64, error) {
	var result string
	if _, err := c.call(ctx, "eth_blockNumber", nil, &result); err != nil {
		return 0, err
	}
	n, ok := hexutil.ParseUint64(result)
	if !ok {
		return 0, fmt.Errorf("rpc: malformed block number %q", result)
	}
	return n, nil
}

// BlockWithTxs fetches a full block including its transactions.
func (c *Client) BlockWithTxs(ctx context.Context, number uint64) (Block, error) {
	var raw rawBlock
	params := []interface{}{hexutil.EncodeUint64(number), true}
	if _, err := c.call(ctx, "eth_getBlockByNumber", params, &raw); err != nil {
		return Block{}, err
	}
	return raw.normalize()
}

// BlockReceiptsOrFallback fetches every receipt for a block in one
// round-trip via eth_getBlockReceipts; on the first-ever
// "method not found" response, it permanently latches to per-hash
// fan-out (bounded by concurrencyLimit) for the remainder of the
// process's lifetime, per SPEC_FULL.md §4.5.
func (c *Client) BlockReceiptsOrFallback(ctx context.Context, number uint64, txHashes []string) ([]Receipt, error) {
	if !c.batchReceiptsUnsupported.Load() {
		var raw []rawReceipt
		notFound, err := c.call(ctx, "eth_getBlockReceipts", []interface{}{hexutil.EncodeUint64(number)}, &raw)
		if notFound {
			c.batchReceiptsUnsupported.Store(true)
			c.log.Warn("rpc: eth_getBlockReceipts unsupported, switching to per-hash fan-out for remainder of process")
		} else if err != nil {
			return nil, err
		} else {
			return normalizeReceipts(raw)
		}
	}
	return c.receiptsByHashFanOut(ctx, txHashes)
}

func (c *Client) receiptsByHashFanOut(ctx context.Context, txHashes []string) ([]Receipt, error) {
	out := make([]Receipt, len(txHashes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrencyLimit)

	for i, hash := range txHashes {
		i, hash := i, hash
		g.Go(func() error {
			var raw rawReceipt
			if _, err := c.call(gctx, "eth_getTransactionReceipt", []interface{}{hash}, &raw); err != nil {
				return err
			}
			r, err := raw.normalize()
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FactoryOf implements internal/dex.Factory: a read-only eth_call to
// factory() on the pool contract. ok is false (with a nil error) when
// the call reverts or returns empty data, signaling "no factory()
// method" rather than a transport failure.
func (c *Client) FactoryOf(ctx context.Context, pool string) (factory string, ok bool, err error) {
	const factorySelector = "0xc45a0155" // factory()
	callObj := map[string]interface{}{"to": pool, "data": factorySelector}
	var result string
	_, callErr := c.call(ctx, "eth_call", []interface{}{callObj, "latest"}, &result)
	if callErr != nil {
		var transient *ingesterr.TransientRPCError
		if errors.As(callErr, &transient) {
			return "", false, callErr
		}
		// A revert during eth_call surfaces as an RPC error, not a
		// transient transport failure; treat it as "no factory()".
		return "", false, nil
	}
	if len(result) < 2+64 {
		return "", false, nil
	}
	addr, valid := hexutil.ParseAddress("0x" + result[len(result)-40:])
	if !valid {
		return "", false, nil
	}
	return addr, true, nil
}
