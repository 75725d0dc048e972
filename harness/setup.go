package harness

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/solidity"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"

	"github.com/kysee/grandpa-bridge/types"
)

// artifact file names, relative to a root dir — mirrors the teacher's
// setup_circuit.go naming convention (<CircuitName>.ccs/.pk/.vk).
const (
	headerRangeCircuitName = "PublicValuesCommitmentHeaderRange"
	rotateCircuitName      = "PublicValuesCommitmentRotate"
)

func artifactPaths(rootDir, circuitName string) (ccs, pk, vk string) {
	dir := filepath.Join(rootDir, ".build")
	return filepath.Join(dir, circuitName+".ccs"),
		filepath.Join(dir, circuitName+".pk"),
		filepath.Join(dir, circuitName+".vk")
}

// Setup compiles both PublicValuesCommitment circuit variants (one per
// PublicValues wire length) and runs groth16.Setup, writing the
// constraint system, proving key and verifying key to rootDir/.build,
// the same compile -> setup -> write sequence as the teacher's
// SetupCircuit/CreateSolidity pair.
func Setup(rootDir string) error {
	logger.Disable()

	if err := os.MkdirAll(filepath.Join(rootDir, ".build"), 0o755); err != nil {
		return fmt.Errorf("create build dir: %w", err)
	}

	for _, variant := range []struct {
		name    string
		builder func() *PublicValuesCommitment
	}{
		{headerRangeCircuitName, NewHeaderRangeCircuit},
		{rotateCircuitName, NewRotateCircuit},
	} {
		ccsPath, pkPath, vkPath := artifactPaths(rootDir, variant.name)

		ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, variant.builder())
		if err != nil {
			return fmt.Errorf("compile %s: %w", variant.name, err)
		}
		if err := writeTo(ccsPath, ccs); err != nil {
			return fmt.Errorf("write %s ccs: %w", variant.name, err)
		}

		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return fmt.Errorf("setup %s: %w", variant.name, err)
		}
		if err := writeTo(pkPath, pk); err != nil {
			return fmt.Errorf("write %s pk: %w", variant.name, err)
		}
		if err := writeTo(vkPath, vk); err != nil {
			return fmt.Errorf("write %s vk: %w", variant.name, err)
		}
	}
	return nil
}

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = w.WriteTo(f)
	return err
}

// GenerateVerifier reads the rotate-circuit verifying key from rootDir
// and exports a Solidity verifier contract, mirroring
// verifiers/eth2/generate_verifier.go.
func GenerateVerifier(rootDir, outPath string) error {
	_, _, vkPath := artifactPaths(rootDir, rotateCircuitName)
	f, err := os.Open(vkPath)
	if err != nil {
		return fmt.Errorf("open verifying key: %w", err)
	}
	defer f.Close()

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(f); err != nil {
		return fmt.Errorf("read verifying key: %w", err)
	}

	var buf bytes.Buffer
	if err := vk.ExportSolidity(&buf, solidity.WithHashToFieldFunction(sha256.New())); err != nil {
		return fmt.Errorf("export solidity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

// Sealer loads compiled circuits and proving keys for both PublicValues
// variants and implements provers.ProofSealer by producing a groth16
// proof over whichever variant matches the witness's byte length.
type Sealer struct {
	headerRange sealVariant
	rotate      sealVariant
}

type sealVariant struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
}

// NewSealer loads the compiled constraint systems and proving keys
// produced by Setup from rootDir/.build.
func NewSealer(rootDir string) (*Sealer, error) {
	hr, err := loadVariant(rootDir, headerRangeCircuitName)
	if err != nil {
		return nil, err
	}
	rt, err := loadVariant(rootDir, rotateCircuitName)
	if err != nil {
		return nil, err
	}
	return &Sealer{headerRange: hr, rotate: rt}, nil
}

func loadVariant(rootDir, circuitName string) (sealVariant, error) {
	ccsPath, pkPath, _ := artifactPaths(rootDir, circuitName)

	fccs, err := os.Open(ccsPath)
	if err != nil {
		return sealVariant{}, fmt.Errorf("open %s ccs: %w", circuitName, err)
	}
	defer fccs.Close()
	ccs := groth16.NewCS(ecc.BN254)
	if _, err := ccs.ReadFrom(fccs); err != nil {
		return sealVariant{}, fmt.Errorf("read %s ccs: %w", circuitName, err)
	}

	fpk, err := os.Open(pkPath)
	if err != nil {
		return sealVariant{}, fmt.Errorf("open %s pk: %w", circuitName, err)
	}
	defer fpk.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(fpk); err != nil {
		return sealVariant{}, fmt.Errorf("read %s pk: %w", circuitName, err)
	}

	return sealVariant{ccs: ccs, pk: pk}, nil
}

// Prove seals publicValues (a types.HeaderRangePublicValuesLen- or
// types.RotatePublicValuesLen-byte slice) inside a groth16 proof over
// the matching circuit variant and returns its Solidity-encoded form,
// mirroring the teacher's generateProof -> MarshalSolidity conversion.
func (s *Sealer) Prove(publicValues []byte) ([]byte, error) {
	var variant sealVariant
	var circuitTemplate *PublicValuesCommitment
	switch len(publicValues) {
	case types.HeaderRangePublicValuesLen:
		variant, circuitTemplate = s.headerRange, NewHeaderRangeCircuit()
	case types.RotatePublicValuesLen:
		variant, circuitTemplate = s.rotate, NewRotateCircuit()
	default:
		return nil, fmt.Errorf("public values: unrecognized length %d", len(publicValues))
	}

	digest := sha256.Sum256(publicValues)
	witness := assignCircuit(circuitTemplate, publicValues, digest[:])

	fullWitness, err := frontend.NewWitness(witness, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("build witness: %w", err)
	}

	proof, err := groth16.Prove(variant.ccs, variant.pk, fullWitness,
		backend.WithProverHashToFieldFunction(sha256.New()))
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}

	solidityProof, ok := proof.(interface{ MarshalSolidity() []byte })
	if !ok {
		return nil, fmt.Errorf("proof does not implement MarshalSolidity")
	}
	return solidityProof.MarshalSolidity(), nil
}
