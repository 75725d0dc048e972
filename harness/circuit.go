// Package harness seals a kernel-emitted PublicValues byte string inside
// a succinct proof. Per spec.md §1's Non-goal on proof-system internals,
// it does not reimplement the finality logic in-circuit — it wraps the
// already-verified public values in the smallest circuit that plausibly
// represents "the zkVM harness commits to these bytes": an in-circuit
// SHA-256 digest check between a private witness and a public commitment,
// the same compile -> groth16.Setup -> groth16.Prove -> MarshalSolidity
// pipeline the teacher's Eth2ScUpdateCircuit runs, pointed at a
// domain-agnostic circuit body instead.
package harness

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/kysee/grandpa-bridge/types"
)

// PublicValuesCommitment asserts that Digest is the SHA-256 hash of
// PublicValues. PublicValues is the private witness (the kernel's raw
// output bytes); Digest is the public input a destination contract
// checks against the value it already holds on-chain.
type PublicValuesCommitment struct {
	PublicValues []uints.U8 `gnark:",secret"`
	Digest       [32]uints.U8 `gnark:",public"`
}

// NewHeaderRangeCircuit returns an unassigned circuit sized for a
// header-range PublicValues (types.HeaderRangePublicValuesLen bytes).
func NewHeaderRangeCircuit() *PublicValuesCommitment {
	return &PublicValuesCommitment{PublicValues: make([]uints.U8, types.HeaderRangePublicValuesLen)}
}

// NewRotateCircuit returns an unassigned circuit sized for a rotate
// PublicValues (types.RotatePublicValuesLen bytes).
func NewRotateCircuit() *PublicValuesCommitment {
	return &PublicValuesCommitment{PublicValues: make([]uints.U8, types.RotatePublicValuesLen)}
}

func (c *PublicValuesCommitment) Define(api frontend.API) error {
	h, err := sha2.New(api)
	if err != nil {
		return err
	}
	h.Write(c.PublicValues)
	digest := h.Sum()

	for i := range digest {
		api.AssertIsEqual(digest[i].Val, c.Digest[i].Val)
	}
	return nil
}

// assignCircuit builds a witness for publicValues, sized to match c.
func assignCircuit(c *PublicValuesCommitment, publicValues, digest []byte) *PublicValuesCommitment {
	w := &PublicValuesCommitment{
		PublicValues: make([]uints.U8, len(c.PublicValues)),
	}
	for i, b := range publicValues {
		w.PublicValues[i] = uints.NewU8(b)
	}
	for i := range w.Digest {
		w.Digest[i] = uints.NewU8(digest[i])
	}
	return w
}
