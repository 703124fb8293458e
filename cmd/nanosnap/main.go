// Command nanosnap inspects and maintains recorded snapshot files.
//
// Build with: go build -o bin/nanosnap ./cmd/nanosnap
package main

import (
	"fmt"
	"os"
)

func main() {
	cli := NewCLI(os.Stdout, os.Stderr)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
