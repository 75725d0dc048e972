package types

import "fmt"

// HeaderRangePublicValuesLen is the fixed wire length of a header-range
// PublicValues: 4+32+4+32+32+32+32+32 bytes.
const HeaderRangePublicValuesLen = 4 + 32 + 4 + 32 + 32 + 32 + 32 + 32

// RotatePublicValuesLen is the fixed wire length of a rotate PublicValues:
// 8+32+32+32 bytes.
const RotatePublicValuesLen = 8 + 32 + 32 + 32

// PublicValues is the data a circuit invocation emits for consumption by the
// proof-sealing harness and, eventually, the destination contract. Exactly
// one of HeaderRange or Rotate is populated, matching which circuit produced it.
type PublicValues struct {
	HeaderRange *HeaderRangePublicValues
	Rotate      *RotatePublicValues
}

type HeaderRangePublicValues struct {
	TrustedBlock     uint32
	TrustedHash      Hash
	TargetBlock      uint32
	TargetHash       Hash
	DataCommitment   Hash
	StateCommitment  Hash
	CurrentSetHash   Hash
	NextSetHash      Hash // zero if no rotation occurred within the range
}

type RotatePublicValues struct {
	CurrentSetID   uint64
	CurrentSetHash Hash
	NewSetHash     Hash
	EpochEndHash   Hash
}

func putU32BE(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}

func getU32BE(src []byte) uint32 {
	return uint32(src[0])<<24 | uint32(src[1])<<16 | uint32(src[2])<<8 | uint32(src[3])
}

func putU64BE(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[7-i] = byte(v >> (8 * i))
	}
}

func getU64BE(src []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(src[i])
	}
	return v
}

// Encode renders the header-range public values using the fixed big-endian
// layout consumed by the destination contract:
// trusted_block(4) || trusted_hash(32) || target_block(4) || target_hash(32)
// || data_commitment(32) || state_commitment(32) || current_set_hash(32) || next_set_hash(32).
func (h *HeaderRangePublicValues) Encode() []byte {
	out := make([]byte, HeaderRangePublicValuesLen)
	off := 0
	putU32BE(out[off:], h.TrustedBlock)
	off += 4
	copy(out[off:], h.TrustedHash[:])
	off += 32
	putU32BE(out[off:], h.TargetBlock)
	off += 4
	copy(out[off:], h.TargetHash[:])
	off += 32
	copy(out[off:], h.DataCommitment[:])
	off += 32
	copy(out[off:], h.StateCommitment[:])
	off += 32
	copy(out[off:], h.CurrentSetHash[:])
	off += 32
	copy(out[off:], h.NextSetHash[:])
	return out
}

// DecodeHeaderRangePublicValues parses the fixed layout Encode produces.
func DecodeHeaderRangePublicValues(b []byte) (*HeaderRangePublicValues, error) {
	if len(b) != HeaderRangePublicValuesLen {
		return nil, fmt.Errorf("header-range public values: want %d bytes, got %d", HeaderRangePublicValuesLen, len(b))
	}
	h := &HeaderRangePublicValues{}
	off := 0
	h.TrustedBlock = getU32BE(b[off:])
	off += 4
	copy(h.TrustedHash[:], b[off:off+32])
	off += 32
	h.TargetBlock = getU32BE(b[off:])
	off += 4
	copy(h.TargetHash[:], b[off:off+32])
	off += 32
	copy(h.DataCommitment[:], b[off:off+32])
	off += 32
	copy(h.StateCommitment[:], b[off:off+32])
	off += 32
	copy(h.CurrentSetHash[:], b[off:off+32])
	off += 32
	copy(h.NextSetHash[:], b[off:off+32])
	return h, nil
}

// Encode renders the rotate public values using the fixed big-endian layout:
// current_set_id(8) || current_set_hash(32) || new_set_hash(32) || epoch_end_hash(32).
func (r *RotatePublicValues) Encode() []byte {
	out := make([]byte, RotatePublicValuesLen)
	off := 0
	putU64BE(out[off:], r.CurrentSetID)
	off += 8
	copy(out[off:], r.CurrentSetHash[:])
	off += 32
	copy(out[off:], r.NewSetHash[:])
	off += 32
	copy(out[off:], r.EpochEndHash[:])
	return out
}

// DecodeRotatePublicValues parses the fixed layout Encode produces.
func DecodeRotatePublicValues(b []byte) (*RotatePublicValues, error) {
	if len(b) != RotatePublicValuesLen {
		return nil, fmt.Errorf("rotate public values: want %d bytes, got %d", RotatePublicValuesLen, len(b))
	}
	r := &RotatePublicValues{}
	off := 0
	r.CurrentSetID = getU64BE(b[off:])
	off += 8
	copy(r.CurrentSetHash[:], b[off:off+32])
	off += 32
	copy(r.NewSetHash[:], b[off:off+32])
	off += 32
	copy(r.EpochEndHash[:], b[off:off+32])
	return r, nil
}

// Encode dispatches to whichever variant is populated.
func (p *PublicValues) Encode() ([]byte, error) {
	switch {
	case p.HeaderRange != nil:
		return p.HeaderRange.Encode(), nil
	case p.Rotate != nil:
		return p.Rotate.Encode(), nil
	default:
		return nil, fmt.Errorf("public values: neither header-range nor rotate populated")
	}
}
