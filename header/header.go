// Package header decodes a SCALE-encoded Substrate block header and walks
// its digest log generically by discriminant byte, as described in
// original_source's primitives crate — never by a fixed offset, since the
// digest log's length varies with however many log items a header carries.
package header

import (
	"bytes"
	"fmt"

	"github.com/kysee/grandpa-bridge/codec"
	"github.com/kysee/grandpa-bridge/errs"
	"github.com/kysee/grandpa-bridge/types"
)

// Header is the decoded form of a Substrate block header:
// parent_hash(32) || compact(number) || state_root(32) || extrinsics_root(32) || digest_log.
type Header struct {
	ParentHash     types.Hash
	Number         uint64
	StateRoot      types.Hash
	ExtrinsicsRoot types.Hash
	Digest         []DigestItem
	Encoded        types.EncodedHeader
}

// DigestItem discriminants, matching sp-runtime::DigestItem's SCALE tags.
const (
	DigestOther                     byte = 0
	DigestConsensus                 byte = 4
	DigestSeal                      byte = 5
	DigestPreRuntime                byte = 6
	DigestRuntimeEnvironmentUpdated byte = 8
)

// DigestItem is one entry of a header's digest log. EngineID is populated
// for Consensus, Seal and PreRuntime variants; Payload holds the variant's
// opaque data (empty for RuntimeEnvironmentUpdated).
type DigestItem struct {
	Kind     byte
	EngineID [4]byte
	Payload  []byte
}

// FrnkEngineID is the GRANDPA scheduled-change consensus engine id.
var FrnkEngineID = [4]byte{'F', 'R', 'N', 'K'}

// DataRootEngineID is the engine id under which the per-header data root is
// carried as a PreRuntime digest item. The wire layout of the data root
// field is left open by the justification-verification design this kernel
// follows; modeling it as a PreRuntime digest item keeps it discoverable by
// the same generic digest walk used for the GRANDPA scheduled-change log,
// rather than a fixed header offset.
var DataRootEngineID = [4]byte{'D', 'A', 'T', 'A'}

// Decode splits a raw encoded header into its fixed fields and digest log.
func Decode(encoded types.EncodedHeader) (*Header, error) {
	b := []byte(encoded)
	if len(b) < 32+32+32 {
		return nil, fmt.Errorf("%w: header: truncated before digest log", errs.ErrDecodeError)
	}
	h := &Header{Encoded: encoded}
	copy(h.ParentHash[:], b[0:32])
	off := 32

	number, n, err := codec.DecodeCompact(b[off:])
	if err != nil {
		return nil, fmt.Errorf("header: number: %w", err)
	}
	h.Number = number
	off += n

	if len(b)-off < 64 {
		return nil, fmt.Errorf("%w: header: truncated before digest log", errs.ErrDecodeError)
	}
	copy(h.StateRoot[:], b[off:off+32])
	off += 32
	copy(h.ExtrinsicsRoot[:], b[off:off+32])
	off += 32

	items, err := WalkDigest(b[off:])
	if err != nil {
		return nil, err
	}
	h.Digest = items
	return h, nil
}

// WalkDigest parses a SCALE Vec<DigestItem> — a leading compact item count,
// followed by each item's discriminant byte and variant-specific payload —
// generically, so callers can locate any log entry (GRANDPA scheduled
// changes, data roots, or otherwise) without assuming a fixed layout.
func WalkDigest(b []byte) ([]DigestItem, error) {
	count, n, err := codec.DecodeCompact(b)
	if err != nil {
		return nil, fmt.Errorf("digest log: count: %w", err)
	}
	off := n
	items := make([]DigestItem, 0, count)
	for i := uint64(0); i < count; i++ {
		if off >= len(b) {
			return nil, fmt.Errorf("%w: digest log: truncated at item %d", errs.ErrDecodeError, i)
		}
		kind := b[off]
		off++
		item := DigestItem{Kind: kind}
		switch kind {
		case DigestConsensus, DigestSeal, DigestPreRuntime:
			if len(b)-off < 4 {
				return nil, fmt.Errorf("%w: digest log: truncated engine id at item %d", errs.ErrDecodeError, i)
			}
			copy(item.EngineID[:], b[off:off+4])
			off += 4
			payloadLen, ln, err := codec.DecodeCompact(b[off:])
			if err != nil {
				return nil, fmt.Errorf("digest log: item %d payload length: %w", i, err)
			}
			off += ln
			if uint64(len(b)-off) < payloadLen {
				return nil, fmt.Errorf("%w: digest log: truncated payload at item %d", errs.ErrDecodeError, i)
			}
			item.Payload = append([]byte(nil), b[off:off+int(payloadLen)]...)
			off += int(payloadLen)
		case DigestOther:
			payloadLen, ln, err := codec.DecodeCompact(b[off:])
			if err != nil {
				return nil, fmt.Errorf("digest log: item %d payload length: %w", i, err)
			}
			off += ln
			if uint64(len(b)-off) < payloadLen {
				return nil, fmt.Errorf("%w: digest log: truncated payload at item %d", errs.ErrDecodeError, i)
			}
			item.Payload = append([]byte(nil), b[off:off+int(payloadLen)]...)
			off += int(payloadLen)
		case DigestRuntimeEnvironmentUpdated:
			// no payload
		default:
			return nil, fmt.Errorf("%w: digest log: unknown item kind %d", errs.ErrDecodeError, kind)
		}
		items = append(items, item)
	}
	return items, nil
}

// ContainsParent reports whether the header's raw encoding textually
// contains claimed as a contiguous byte run — the structural check used to
// confirm an ancestry entry's asserted parent hash actually appears in the
// header it is claimed to precede.
func (h *Header) ContainsParent(claimed types.Hash) bool {
	return bytes.Contains([]byte(h.Encoded), claimed[:])
}

// ScheduledChange is a decoded GRANDPA authority-set handoff from a
// Consensus digest item with engine id FRNK.
type ScheduledChange struct {
	NextAuthorities []types.PubKey
	Delay           uint32
}

// FindScheduledChange scans items for a single FRNK consensus log entry and
// decodes its validator list and delay. Its payload layout, per
// original_source's verify_encoded_validators, is:
// tag(1, must be 0) || compact(count) || count*(pubkey(32) || weight(8, LE, must be 1)) || delay(4, LE).
func FindScheduledChange(items []DigestItem) (*ScheduledChange, error) {
	var found *DigestItem
	for i := range items {
		it := &items[i]
		if it.Kind != DigestConsensus || it.EngineID != FrnkEngineID {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: more than one FRNK consensus log item", errs.ErrAmbiguousChange)
		}
		found = it
	}
	if found == nil {
		return nil, fmt.Errorf("%w", errs.ErrNoScheduledChange)
	}
	return decodeScheduledChange(found.Payload)
}

func decodeScheduledChange(payload []byte) (*ScheduledChange, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("%w: scheduled change: empty payload", errs.ErrDecodeError)
	}
	if payload[0] != 0 {
		return nil, fmt.Errorf("%w: scheduled change: unexpected tag %d", errs.ErrBadValidatorEncoding, payload[0])
	}
	off := 1
	count, n, err := codec.DecodeCompact(payload[off:])
	if err != nil {
		return nil, fmt.Errorf("scheduled change: validator count: %w", err)
	}
	off += n

	pubkeys := make([]types.PubKey, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(payload)-off < 32+8 {
			return nil, fmt.Errorf("%w: scheduled change: truncated validator %d", errs.ErrDecodeError, i)
		}
		var pk types.PubKey
		copy(pk[:], payload[off:off+32])
		off += 32
		weight, err := codec.DecodeU64LE(payload[off:])
		if err != nil {
			return nil, fmt.Errorf("scheduled change: validator %d weight: %w", i, err)
		}
		off += 8
		if weight != 1 {
			return nil, fmt.Errorf("%w: scheduled change: validator %d has weight %d, want 1", errs.ErrBadValidatorEncoding, i, weight)
		}
		pubkeys = append(pubkeys, pk)
	}

	if len(payload)-off < 4 {
		return nil, fmt.Errorf("%w: scheduled change: truncated delay", errs.ErrDecodeError)
	}
	delay, err := codec.DecodeU32LE(payload[off:])
	if err != nil {
		return nil, fmt.Errorf("scheduled change: delay: %w", err)
	}
	off += 4
	if delay != 0 {
		return nil, fmt.Errorf("%w: scheduled change: delay %d, want 0", errs.ErrBadValidatorEncoding, delay)
	}
	if off != len(payload) {
		return nil, fmt.Errorf("%w: scheduled change: trailing bytes", errs.ErrDecodeError)
	}

	return &ScheduledChange{NextAuthorities: pubkeys, Delay: delay}, nil
}

// FindDataRoot scans items for a single PreRuntime digest item with engine
// id DATA and returns its 32-byte payload.
func FindDataRoot(items []DigestItem) (types.Hash, bool, error) {
	var found *DigestItem
	for i := range items {
		it := &items[i]
		if it.Kind != DigestPreRuntime || it.EngineID != DataRootEngineID {
			continue
		}
		if found != nil {
			return types.Hash{}, false, fmt.Errorf("%w: more than one DATA pre-runtime log item", errs.ErrAmbiguousChange)
		}
		found = it
	}
	if found == nil {
		return types.Hash{}, false, nil
	}
	if len(found.Payload) != 32 {
		return types.Hash{}, false, fmt.Errorf("%w: data root: want 32 bytes, got %d", errs.ErrDecodeError, len(found.Payload))
	}
	var h types.Hash
	copy(h[:], found.Payload)
	return h, true, nil
}

// Hash returns the canonical BLAKE2b-256 hash of the header's raw encoding.
func (h *Header) Hash() types.Hash {
	return types.Hash(codec.Blake2b256(h.Encoded))
}
