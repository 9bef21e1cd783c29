// Package main provides the seed CLI that loads a document corpus into the configured store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
