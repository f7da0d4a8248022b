package cache

import (
	"fmt"
	"log/slog"
)

// Port is the processor side of a hierarchy. It takes byte addresses,
// rejects unaligned ones and forwards word addresses either to the top
// level or, for uncached accesses, straight to the bottom level.
type Port struct {
	top       *Level
	bottom    *Level
	wordBytes uint32
	logger    *slog.Logger
}

// NewPort creates a port in front of top. A nil logger discards
// diagnostics.
func NewPort(top *Level, logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	p := &Port{
		top:       top,
		bottom:    Bottom(top),
		wordBytes: uint32(top.geometry.WordSize / 8),
		logger:    logger,
	}
	if p.wordBytes == 0 {
		p.wordBytes = 1
	}

	return p
}

// Bottom follows the chain of levels starting at top and returns the last
// one.
func Bottom(top *Level) *Level {
	level := top
	for {
		next, ok := level.next.(*Level)
		if !ok || next == nil {
			return level
		}
		level = next
	}
}

// Top returns the level closest to the processor.
func (p *Port) Top() *Level {
	return p.top
}

// Levels returns the chain of levels from top to bottom.
func (p *Port) Levels() []*Level {
	var levels []*Level
	for level := p.top; level != nil; {
		levels = append(levels, level)
		next, ok := level.next.(*Level)
		if !ok {
			break
		}
		level = next
	}
	return levels
}

// WordBytes returns the word size in bytes.
func (p *Port) WordBytes() uint32 {
	return p.wordBytes
}

func (p *Port) target(cached bool) *Level {
	if cached {
		return p.top
	}
	return p.bottom
}

func (p *Port) wordAddr(addr uint32, op string) (uint32, bool) {
	if addr%p.wordBytes != 0 {
		p.logger.Warn("unaligned memory access ignored",
			"op", op, "addr", fmt.Sprintf("0x%08X", addr))
		return 0, false
	}
	return addr / p.wordBytes, true
}

// Read polls a read of the word at byte address addr. An unaligned read
// completes at once and returns 0.
func (p *Port) Read(addr uint32, cached bool) (uint32, bool) {
	wordAddr, ok := p.wordAddr(addr, "read")
	if !ok {
		return 0, true
	}
	return p.target(cached).Read(wordAddr)
}

// Write polls a write of word to byte address addr. An unaligned write
// completes at once without storing anything.
func (p *Port) Write(word uint32, addr uint32, cached bool) bool {
	wordAddr, ok := p.wordAddr(addr, "write")
	if !ok {
		return true
	}
	return p.target(cached).Write(word, wordAddr)
}

// Abandon drops an in-flight access to byte address addr.
func (p *Port) Abandon(addr uint32, cached bool) {
	p.target(cached).Abandon(addr / p.wordBytes)
}

// Timer returns how long the access to byte address addr has waited.
func (p *Port) Timer(addr uint32, cached bool) uint64 {
	return p.target(cached).Timer(addr / p.wordBytes)
}

// Flush writes every dirty line of every level back, top first.
func (p *Port) Flush() {
	for _, level := range p.Levels() {
		level.Flush()
	}
}
