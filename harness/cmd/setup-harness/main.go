package main

import (
	"flag"

	"github.com/kysee/grandpa-bridge/harness"
)

func main() {
	rootDir := flag.String("root", ".", "root directory holding .build/ artifacts")
	verifierOut := flag.String("verifier-out", "harness/contracts/PublicValuesVerifier.sol", "Solidity verifier output path")
	flag.Parse()

	println("🕧 Compile and setup PublicValuesCommitment circuits...")
	if err := harness.Setup(*rootDir); err != nil {
		println("error", err.Error())
		return
	}
	println("✅ Setup complete")

	println("🕧 Exporting Solidity verifier...")
	if err := harness.GenerateVerifier(*rootDir, *verifierOut); err != nil {
		println("error", err.Error())
		return
	}
	println("✅ Solidity verifier generated:", *verifierOut)
}
