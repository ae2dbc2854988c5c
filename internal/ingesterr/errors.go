// Package ingesterr classifies the ingestion pipeline's failure modes into
// the semantic kinds named by SPEC_FULL.md §7: TransientRPC,
// RPCMethodUnsupported, DecodeFailure, StoreFailure, and FatalConfig
// (ReorgDetected is reorg.DetectedError, defined in internal/reorg).
// Callers use errors.As/errors.Is to branch on kind rather
// than matching on string content.
package ingesterr

import "fmt"

// TransientRPCError wraps a retryable network/RPC failure. The fetcher's
// backoff loop retries on this; the poller sleeps and retries the same
// block when the retry budget is exhausted.
type TransientRPCError struct {
	Op  string
	Err error
}

func (e *TransientRPCError) Error() string {
	return fmt.Sprintf("transient rpc error during %s: %v", e.Op, e.Err)
}

func (e *TransientRPCError) Unwrap() error { return e.Err }

// RPCMethodUnsupportedError signals that eth_getBlockReceipts is not
// implemented by the remote endpoint. Observed exactly once per process
// lifetime before the fetcher's batch-support latch trips permanently.
type RPCMethodUnsupportedError struct {
	Method string
}

func (e *RPCMethodUnsupportedError) Error() string {
	return fmt.Sprintf("rpc method not supported: %s", e.Method)
}

// DecodeFailureError signals a log whose data was too short, or otherwise
// malformed, for the kind it classified as. Non-fatal: the raw log is
// still persisted and the event count still increments; only the
// enriched row is dropped.
type DecodeFailureError struct {
	Kind   string
	Reason string
}

func (e *DecodeFailureError) Error() string {
	return fmt.Sprintf("decode failure for kind %s: %s", e.Kind, e.Reason)
}

// StoreFailureError wraps a persistence error: a constraint violation or
// I/O failure during commitBlock. The per-block transaction is rolled
// back and the checkpoint does not advance.
type StoreFailureError struct {
	Op  string
	Err error
}

func (e *StoreFailureError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreFailureError) Unwrap() error { return e.Err }

// FatalConfigError signals a startup configuration error (missing
// RPC_URL, invalid schema). The process exits non-zero without
// attempting any ingestion.
type FatalConfigError struct {
	Reason string
}

func (e *FatalConfigError) Error() string {
	return fmt.Sprintf("fatal configuration error: %s", e.Reason)
}
