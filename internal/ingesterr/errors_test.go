package ingesterr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransientRPCErrorUnwrapsAndFormats(t *testing.T) {
	inner := errors.New("connection reset")
	err := &TransientRPCError{Op: "eth_getBlockByNumber", Err: inner}

	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "eth_getBlockByNumber")
	require.Contains(t, err.Error(), "connection reset")
}

func TestRPCMethodUnsupportedErrorFormats(t *testing.T) {
	err := &RPCMethodUnsupportedError{Method: "eth_getBlockReceipts"}
	require.Contains(t, err.Error(), "eth_getBlockReceipts")
}

func TestDecodeFailureErrorFormats(t *testing.T) {
	err := &DecodeFailureError{Kind: "erc20_transfer", Reason: "data too short"}
	require.Contains(t, err.Error(), "erc20_transfer")
	require.Contains(t, err.Error(), "data too short")
}

func TestStoreFailureErrorUnwrapsAndFormats(t *testing.T) {
	inner := errors.New("constraint violation")
	err := &StoreFailureError{Op: "commitBlock", Err: inner}

	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "commitBlock")
}

func TestFatalConfigErrorFormats(t *testing.T) {
	err := &FatalConfigError{Reason: "RPC_URL is required"}
	require.Contains(t, err.Error(), "RPC_URL is required")
}

func TestErrorsAsDistinguishesKinds(t *testing.T) {
	var err error = &StoreFailureError{Op: "commitBlock", Err: errors.New("boom")}

	var store *StoreFailureError
	require.True(t, errors.As(err, &store))

	var transient *TransientRPCError
	require.False(t, errors.As(err, &transient))
}
