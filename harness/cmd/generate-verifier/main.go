package main

import (
	"flag"

	"github.com/kysee/grandpa-bridge/harness"
)

// generate-verifier re-exports the Solidity verifier for the rotate
// circuit variant from an already-completed Setup run, without
// recompiling or re-running groth16.Setup — the standalone
// read-vk-and-export flow the teacher's generate_verifier.go ran
// separately from setup_circuit.go so a verifier could be regenerated
// without paying the setup cost again.
func main() {
	rootDir := flag.String("root", ".", "root directory holding .build/ artifacts")
	out := flag.String("out", "harness/contracts/PublicValuesVerifier.sol", "Solidity verifier output path")
	flag.Parse()

	if err := harness.GenerateVerifier(*rootDir, *out); err != nil {
		panic(err)
	}
	println("✅ Solidity verifier generated:", *out)
}
