// Package loader reads program images for the simulated processor.
//
// An image is a text file with one instruction word per line. Words may be
// written in decimal or with a 0x, 0o or 0b prefix. Blank lines are skipped
// and anything after '#' or ';' is a comment.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/isasim/insts"
)

// Program represents a loaded program image.
type Program struct {
	// Base is the byte address of the first word.
	Base uint32
	// Words holds the instruction words in load order, without the
	// end-of-stream sentinel.
	Words []uint32
}

// Memory is where a program is installed.
type Memory interface {
	// WriteComplete stores word at byte address addr and returns the number
	// of cycles the store waited.
	WriteComplete(word uint32, addr uint32) uint64
}

// Load reads a program image from a file.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return prog, nil
}

// Parse reads a program image.
func Parse(r io.Reader) (*Program, error) {
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if i := strings.IndexAny(line, "#;"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		word, err := strconv.ParseUint(strings.ReplaceAll(line, "_", ""), 0, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid word %q: %w", lineNo, line, err)
		}
		prog.Words = append(prog.Words, uint32(word))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return prog, nil
}

// Image returns the words followed by the end-of-stream sentinel.
func (p *Program) Image() []uint32 {
	image := make([]uint32, 0, len(p.Words)+1)
	image = append(image, p.Words...)
	return append(image, insts.Sentinel)
}

// Install writes the image, sentinel included, to consecutive words of mem
// starting at Base. It returns the total number of cycles the stores
// waited.
func (p *Program) Install(mem Memory) uint64 {
	var waited uint64
	for i, word := range p.Image() {
		waited += mem.WriteComplete(word, p.Base+uint32(i)*4)
	}
	return waited
}
