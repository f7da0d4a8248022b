// Package main provides the isasim command-line interface.
//
// Usage:
//
//	isasim [flags] <program>
//
// The program is a text image with one instruction word per line. The
// simulator runs it through the pipeline and the memory hierarchy until the
// end-of-stream sentinel retires, then prints a timing report.
package main

func main() {
	Execute()
}
