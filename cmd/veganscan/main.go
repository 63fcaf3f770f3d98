// Command veganscan runs the ingredient verdict engine from the command line.
package main

import (
	"errors"
	"os"
)

// Exit codes
const (
	exitSuccess = 0
	exitError   = 1
	exitUsage   = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			os.Exit(exitUsage)
		}
		os.Exit(exitError)
	}
	os.Exit(exitSuccess)
}
