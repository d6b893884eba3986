// Package main provides the entry point for the sigmaindex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/sigmaindex/cmd/sigmaindex/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
