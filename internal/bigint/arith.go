// Copyright 2021 The go-ethereum Authors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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

// Package bigint holds the 256-bit arithmetic helpers used by the block
// enricher to accumulate gas and fee aggregates without losing precision.
// SumOverflow reports overflow; Add256, which the enricher uses, wraps.
package bigint

import "github.com/holiman/uint256"

// SumOverflow adds all values in xs, returning false if any partial sum
// overflows 256 bits, for accumulations where an overflow indicates
// malformed upstream data rather than a value to clamp.
func SumOverflow(xs ...*uint256.Int) (*uint256.Int, bool) {
	sum := uint256.NewInt(0)
	for _, x := range xs {
		if x == nil {
			continue
		}
		var overflow bool
		_, overflow = sum.AddOverflow(sum, x)
		if overflow {
			return nil, false
		}
	}
	return sum, true
}

// AvgFloor computes floor(sum/count) using integer division, matching the
// "average gas/tx (integer division)" requirement for block metrics.
// Returns zero if count is zero.
func AvgFloor(sum *uint256.Int, count uint64) *uint256.Int {
	if count == 0 || sum == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Div(sum, uint256.NewInt(count))
}

// Add256 adds two 256-bit values into a new value, treating nil as zero.
// The sum wraps modulo 2^256 on overflow; use SumOverflow where overflow
// must be detected.
func Add256(a, b *uint256.Int) *uint256.Int {
	if a == nil {
		a = uint256.NewInt(0)
	}
	if b == nil {
		b = uint256.NewInt(0)
	}
	out := new(uint256.Int)
	out.Add(a, b)
	return out
}

// IsZero reports whether z is nil or the zero value.
func IsZero(z *uint256.Int) bool {
	return z == nil || z.IsZero()
}
