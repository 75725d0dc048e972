// Package codec implements the small slice of the SCALE encoding used by
// Substrate block headers — compact integers and little-endian fixed-width
// primitives — plus the two hash functions the kernel relies on. No example
// in the reference corpus imports a SCALE codec library, so this is a direct,
// from-the-spec implementation.
package codec

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/kysee/grandpa-bridge/errs"
)

// DecodeCompact reads a SCALE compact-encoded unsigned integer from the
// front of b. It returns the decoded value, the number of bytes consumed,
// and an error if b is too short for the mode its first byte selects.
func DecodeCompact(b []byte) (value uint64, consumed int, err error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("%w: compact int: empty input", errs.ErrDecodeError)
	}
	switch mode := b[0] & 0b11; mode {
	case 0b00:
		return uint64(b[0] >> 2), 1, nil
	case 0b01:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("%w: compact int: two-byte mode truncated", errs.ErrDecodeError)
		}
		v := uint64(b[0])>>2 | uint64(b[1])<<6
		return v, 2, nil
	case 0b10:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("%w: compact int: four-byte mode truncated", errs.ErrDecodeError)
		}
		v := uint64(b[0])>>2 | uint64(b[1])<<6 | uint64(b[2])<<14 | uint64(b[3])<<22
		return v, 4, nil
	default: // 0b11: big-integer mode
		n := int(b[0]>>2) + 4
		if n > 8 {
			return 0, 0, fmt.Errorf("%w: compact int: big-integer mode width %d exceeds 8 bytes", errs.ErrDecodeError, n)
		}
		if len(b) < 1+n {
			return 0, 0, fmt.Errorf("%w: compact int: big-integer mode truncated", errs.ErrDecodeError)
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[1+i])
		}
		return v, 1 + n, nil
	}
}

// EncodeCompact writes value using the shortest applicable SCALE
// compact-int mode. Used by tests and fixture generation to exercise the
// round-trip property against DecodeCompact.
func EncodeCompact(value uint64) []byte {
	switch {
	case value < 1<<6:
		return []byte{byte(value << 2)}
	case value < 1<<14:
		return []byte{byte(value<<2) | 0b01, byte(value >> 6)}
	case value < 1<<30:
		return []byte{
			byte(value<<2) | 0b10,
			byte(value >> 6),
			byte(value >> 14),
			byte(value >> 22),
		}
	default:
		var buf [8]byte
		n := 0
		for v := value; v != 0; v >>= 8 {
			buf[n] = byte(v)
			n++
		}
		if n == 0 {
			n = 1
		}
		out := make([]byte, 1+n)
		out[0] = byte((n-4)<<2) | 0b11
		copy(out[1:], buf[:n])
		return out
	}
}

// DecodeU32LE reads a little-endian uint32 from the front of b.
func DecodeU32LE(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: u32: need 4 bytes, got %d", errs.ErrDecodeError, len(b))
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// DecodeU64LE reads a little-endian uint64 from the front of b.
func DecodeU64LE(b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("%w: u64: need 8 bytes, got %d", errs.ErrDecodeError, len(b))
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// EncodeU32LE writes a little-endian uint32.
func EncodeU32LE(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// EncodeU64LE writes a little-endian uint64.
func EncodeU64LE(v uint64) []byte {
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// Sha256 is the SHA-256 digest of b, used throughout the Merkle and
// authority-set commitment schemes.
func Sha256(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// Blake2b256 is the BLAKE2b-256 digest of b, used for the canonical block
// hash of a Substrate header.
func Blake2b256(b []byte) [32]byte {
	return blake2b.Sum256(b)
}
