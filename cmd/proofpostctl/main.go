package main

import (
	"os"

	"github.com/proofpost-systems/proofpost/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
