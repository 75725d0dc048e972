// Package errs holds the kernel's sentinel error taxonomy. It has no
// dependencies so every kernel package (codec, header, merkle, authority,
// justification, circuits) can return these without creating an import
// cycle; circuits re-exports them as its public API.
package errs

import "errors"

var (
	// ErrDecodeError is returned when SCALE or fixed-width decoding fails
	// on malformed or truncated input.
	ErrDecodeError = errors.New("decode error")

	// ErrHeaderChainBroken is returned when a header in a range does not
	// chain to its predecessor via parent_hash.
	ErrHeaderChainBroken = errors.New("header chain broken")

	// ErrJustificationMismatch is returned when a justification's commit
	// target or set id does not match what the caller expected to verify.
	ErrJustificationMismatch = errors.New("justification mismatch")

	// ErrSignatureInvalid is returned when a precommit's Ed25519 signature
	// does not verify against its claimed authority and signed message.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrInsufficientSignatures is returned when fewer than a supermajority
	// of valid, distinct precommits back the justification.
	ErrInsufficientSignatures = errors.New("insufficient signatures")

	// ErrAncestryBroken is returned when a precommit's target cannot be
	// connected to the commit target via the justification's ancestry set.
	ErrAncestryBroken = errors.New("ancestry broken")

	// ErrNoScheduledChange is returned when a rotate input's epoch-end
	// header carries no GRANDPA scheduled-change digest item.
	ErrNoScheduledChange = errors.New("no scheduled change")

	// ErrAmbiguousChange is returned when more than one scheduled-change
	// digest item appears in one header or across a header range, or when
	// one header carries more than one data-root digest item.
	ErrAmbiguousChange = errors.New("ambiguous scheduled change")

	// ErrBadValidatorEncoding is returned when a scheduled-change item's
	// encoded validator list has a non-unit weight, or its trailing delay
	// is nonzero.
	ErrBadValidatorEncoding = errors.New("bad validator encoding")

	// ErrTreeOverflow is returned when more leaves are supplied to a
	// Merkle commitment than its fixed tree size can hold.
	ErrTreeOverflow = errors.New("tree overflow")
)
