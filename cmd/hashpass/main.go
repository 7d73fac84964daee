package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kioskworks/counter-backend/pkg/config"
	"github.com/kioskworks/counter-backend/pkg/security"
)

// Generates the argon2id hash for COUNTER_STAFF_PASSCODE_HASH.
func main() {
	passcode := flag.String("passcode", "", "kitchen passcode to hash")
	flag.Parse()

	if *passcode == "" {
		fmt.Fprintln(os.Stderr, "missing -passcode")
		os.Exit(1)
	}

	hash, err := security.HashPasscode(*passcode, config.StaffConfig{
		ArgonMemoryKB:    64 * 1024,
		ArgonTime:        3,
		ArgonParallelism: 2,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash passcode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
