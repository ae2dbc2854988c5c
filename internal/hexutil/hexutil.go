// Copyright 2024 The Erigon Authors
// (original work)
// Copyright 2026 The Base Indexer Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package hexutil parses the hex-quantity and hex-address forms used by
// JSON-RPC responses into Go-native values, preserving full 256-bit
// precision where the quantity may exceed uint64.
package hexutil

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// ParseUint64 parses s (a "0x..."-prefixed hex string, or a bare decimal
// string) as an unsigned 64-bit integer. The empty string parses as zero.
func ParseUint64(s string) (uint64, bool) {
	if s == "" {
		return 0, true
	}
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return v, err == nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// EncodeUint64 renders n as a "0x"-prefixed hex quantity, the form
// JSON-RPC parameters expect for block numbers and similar inputs.
func EncodeUint64(n uint64) string {
	return "0x" + strconv.FormatUint(n, 16)
}

// MustParseUint64 parses s and panics if it is not a valid quantity. Used
// only for literal constants, never for RPC-supplied input.
func MustParseUint64(s string) uint64 {
	v, ok := ParseUint64(s)
	if !ok {
		panic("invalid hex or decimal quantity: " + s)
	}
	return v
}

// ParseBig256 parses a hex quantity string into a 256-bit integer,
// preserving precision beyond uint64 (gas, amounts, base fee). Returns
// false if s is not a well-formed hex quantity.
func ParseBig256(s string) (*uint256.Int, bool) {
	if s == "" {
		return uint256.NewInt(0), true
	}
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return uint256.NewInt(0), true
	}
	z, err := uint256.FromHex("0x" + trimmed)
	if err != nil {
		return nil, false
	}
	return z, true
}

// DecimalString renders a 256-bit integer as a base-10 string, the form
// persisted for all amount/gas/fee columns (see store schema).
func DecimalString(z *uint256.Int) string {
	if z == nil {
		return "0"
	}
	return z.Dec()
}

// ParseDecimal256 parses a base-10 decimal string (as persisted in the
// store) back into a 256-bit integer.
func ParseDecimal256(s string) (*uint256.Int, error) {
	if s == "" {
		return uint256.NewInt(0), nil
	}
	z, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("hexutil: invalid decimal256 %q: %w", s, err)
	}
	return z, nil
}

// ParseAddress lower-cases and validates a 20-byte hex address, returning
// it in canonical "0x"-prefixed lower-case form. All addresses are stored
// lower-cased (per the store's column convention).
func ParseAddress(s string) (string, bool) {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) != 40 {
		return "", false
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return "", false
		}
	}
	return "0x" + strings.ToLower(trimmed), true
}

// ParseHash lower-cases and validates a 32-byte hex hash.
func ParseHash(s string) (string, bool) {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) != 64 {
		return "", false
	}
	return "0x" + strings.ToLower(trimmed), true
}

// BigToUint256 converts a big.Int (used for signed two's-complement
// decoding, see internal/decode) into an unsigned uint256, truncating
// at 256 bits. Callers are responsible for sign interpretation.
func BigToUint256(b *big.Int) *uint256.Int {
	z, _ := uint256.FromBig(b)
	return z
}
