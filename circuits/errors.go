// Package circuits implements the header-range and rotate operations: the
// deterministic logic that consumes fetched chain data and a justification
// and emits PublicValues, or fails with one of the sentinel errors below.
package circuits

import "github.com/kysee/grandpa-bridge/errs"

// Sentinel errors re-exported from errs as the package's public error
// taxonomy. All are fatal: the kernel never retries or partially recovers
// from one internally.
var (
	ErrDecodeError            = errs.ErrDecodeError
	ErrHeaderChainBroken      = errs.ErrHeaderChainBroken
	ErrJustificationMismatch  = errs.ErrJustificationMismatch
	ErrSignatureInvalid       = errs.ErrSignatureInvalid
	ErrInsufficientSignatures = errs.ErrInsufficientSignatures
	ErrAncestryBroken         = errs.ErrAncestryBroken
	ErrNoScheduledChange      = errs.ErrNoScheduledChange
	ErrAmbiguousChange        = errs.ErrAmbiguousChange
	ErrBadValidatorEncoding   = errs.ErrBadValidatorEncoding
	ErrTreeOverflow           = errs.ErrTreeOverflow
)
