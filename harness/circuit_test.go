package harness

import (
	"crypto/sha256"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	gnark_test "github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/kysee/grandpa-bridge/types"
)

func TestPublicValuesCommitment_HeaderRange_IsSolved(t *testing.T) {
	publicValues := make([]byte, types.HeaderRangePublicValuesLen)
	for i := range publicValues {
		publicValues[i] = byte(i)
	}
	digest := sha256.Sum256(publicValues)

	witness := assignCircuit(NewHeaderRangeCircuit(), publicValues, digest[:])

	err := gnark_test.IsSolved(NewHeaderRangeCircuit(), witness, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestPublicValuesCommitment_Rotate_IsSolved(t *testing.T) {
	publicValues := make([]byte, types.RotatePublicValuesLen)
	for i := range publicValues {
		publicValues[i] = byte(255 - i)
	}
	digest := sha256.Sum256(publicValues)

	witness := assignCircuit(NewRotateCircuit(), publicValues, digest[:])

	err := gnark_test.IsSolved(NewRotateCircuit(), witness, ecc.BN254.ScalarField())
	require.NoError(t, err)
}

func TestPublicValuesCommitment_WrongDigestFailsToSolve(t *testing.T) {
	publicValues := make([]byte, types.RotatePublicValuesLen)
	for i := range publicValues {
		publicValues[i] = byte(i)
	}
	wrongDigest := sha256.Sum256(append(publicValues, 0x01))

	witness := assignCircuit(NewRotateCircuit(), publicValues, wrongDigest[:])

	err := gnark_test.IsSolved(NewRotateCircuit(), witness, ecc.BN254.ScalarField())
	require.Error(t, err)
}
