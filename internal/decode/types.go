// Package decode extracts semantic fields from (topics, data) for each
// decodable event kind (SPEC_FULL.md §4.3, §4.3a). Every decoder bounds-
// checks its input and returns (zero, false) rather than panicking on
// malformed or short data; a DecodeFailure drops the enriched row but
// never escapes the block pipeline (SPEC_FULL.md §7).
package decode

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Log is the decoder's input shape: up to four topics (topic0 plus three
// indexed arguments) and the ABI-encoded, non-indexed data blob. Nil
// topic slots correspond to a log that carries fewer than four topics.
type Log struct {
	Topics [4]*[32]byte
	Data   []byte
}

// TopicCount returns the number of non-nil topic slots.
func (l Log) TopicCount() int {
	n := 0
	for _, t := range l.Topics {
		if t != nil {
			n++
		}
	}
	return n
}

func addressFromTopic(t *[32]byte) (string, bool) {
	if t == nil {
		return "", false
	}
	return "0x" + lowerHex(t[12:]), true
}

func lowerHex(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}

func uint256FromSlice(b []byte) *uint256.Int {
	return new(uint256.Int).SetBytes(b)
}

// signedFromTwosComplement interprets a big-endian, widthBytes-wide
// two's-complement encoding as a signed big.Int. Used for V3/CL swap
// amounts (int256) and Curve coin indices (int128).
func signedFromTwosComplement(b []byte, widthBytes int) *big.Int {
	v := new(big.Int).SetBytes(b)
	// top bit of the declared width set => negative.
	signBit := new(big.Int).Lsh(big.NewInt(1), uint(widthBytes*8-1))
	if v.Cmp(signBit) >= 0 {
		modulus := new(big.Int).Lsh(big.NewInt(1), uint(widthBytes*8))
		v.Sub(v, modulus)
	}
	return v
}

// requireLen reports whether data is at least n bytes long.
func requireLen(data []byte, n int) bool {
	return len(data) >= n
}
