package main

import (
	"fmt"
	"os"
)

// Version is set by build flags.
var Version = "dev"

func main() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
