// Package types holds the core data model shared by the finality-verification
// kernel: hashes, keys, signatures, encoded headers, precommits, justifications,
// authority sets and the circuit input/output structs.
package types

import "fmt"

// Hash is a 32-byte digest: a block hash, state root, extrinsics root, or
// commitment value.
type Hash [32]byte

func (h Hash) String() string {
	return HexBytes(h[:]).String()
}

func (h Hash) Bytes() []byte {
	return h[:]
}

// IsZero reports whether h is the all-zero hash, used as the "no value"
// sentinel for the next authority-set hash in a PublicValues that does not
// cross a rotation boundary.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// PubKey is an Ed25519 public key belonging to a GRANDPA authority.
type PubKey [32]byte

func (p PubKey) String() string {
	return HexBytes(p[:]).String()
}

// Signature is an Ed25519 signature over a precommit message.
type Signature [64]byte

// EncodedHeader is the raw SCALE-encoded bytes of a Substrate block header,
// as produced by the chain and consumed verbatim by the digest-log walker.
type EncodedHeader []byte

// Precommit is one GRANDPA voter's vote for finality of a target block.
type Precommit struct {
	TargetHash   Hash
	TargetNumber uint32
	Signature    Signature
	Authority    PubKey
}

// AncestryEntry pairs an encoded header with the parent hash claimed for
// it, so the verifier can cheaply confirm the header has not been swapped
// for one with a different parent before trusting it as an ancestry link.
type AncestryEntry struct {
	ParentHash Hash
	Header     EncodedHeader
}

// Justification is a GRANDPA justification: a round and set id, the commit
// it backs, the precommits cast for it, the ancestry headers needed to
// connect each precommit target to the commit, and the voting authority
// set's pubkeys and commitment as seen by whoever assembled the
// justification (verified against the caller's expectation, not trusted blindly).
type Justification struct {
	Round                   uint64
	SetID                   uint64
	CommitHash              Hash
	CommitNumber            uint32
	Precommits              []Precommit
	Ancestries              []AncestryEntry
	ValsetPubKeys           []PubKey
	CurrentValsetCommitment Hash
}

// AuthoritySet identifies an authority set by id, its commitment (§4.4),
// and its size — the core never needs the pubkeys themselves outside of a
// Justification, since a Justification carries its own ValsetPubKeys.
type AuthoritySet struct {
	SetID      uint64
	Commitment Hash
	Size       uint32
}

// HeaderRangeInput is everything the header-range circuit logic needs to
// prove finality and data/state commitments for the half-open range
// (trustedBlock, targetBlock].
type HeaderRangeInput struct {
	TrustedBlock  uint32
	TrustedHash   Hash
	TargetBlock   uint32
	Justification Justification
	Headers       []EncodedHeader // trustedBlock+1 ..= targetBlock, in order
	ActiveSet     AuthoritySet
	TreeSize      uint32
}

// RotateInput is everything the rotate circuit logic needs to prove an
// authority-set handoff at an epoch-end header.
type RotateInput struct {
	CurrentSet     AuthoritySet
	Justification  Justification
	EpochEndHeader EncodedHeader
}

func (h Hash) GoString() string {
	return fmt.Sprintf("Hash(%x)", h[:])
}
