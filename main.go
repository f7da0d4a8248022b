// Package main provides the entry point for isasim.
// isasim is a cycle-level simulator of a 5-stage pipeline and its caches.
//
// For the full CLI, use: go run ./cmd/isasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("isasim - 5-stage pipeline and cache hierarchy simulator")
	fmt.Println("")
	fmt.Println("Usage: isasim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --config       Path to cache hierarchy JSON file")
	fmt.Println("  --no-pipeline  Run one instruction at a time")
	fmt.Println("  --no-cache     Send every access to the backing store")
	fmt.Println("  --trace        Write a CSV trace of cache and pipeline events")
	fmt.Println("  -v             Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/isasim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/isasim' instead.")
	}
}
