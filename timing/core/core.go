// Package core provides the processor model.
// It ties a register file, a 5-stage pipeline and a memory hierarchy
// together behind the interface a driver or console uses.
package core

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/timing/cache"
	"github.com/sarchlab/isasim/timing/pipeline"
)

// Stats holds performance statistics for the processor.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of cycles decode was held by a register hazard.
	Stalls uint64
	// Flushes is the number of changes of control flow.
	Flushes uint64
	// MemStalls is the number of cycles loads and stores waited.
	MemStalls uint64
	// FetchStalls is the number of cycles fetch waited.
	FetchStalls uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Option is a functional option for configuring the Processor.
type Option func(*Processor)

// WithLogger sets the logger used for alignment diagnostics and pipeline
// debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor is a processor state together with the pipeline that advances
// it and the memory hierarchy it is attached to.
type Processor struct {
	regFile  *emu.RegFile
	pipeline *pipeline.Pipeline
	port     *cache.Port
	logger   *slog.Logger
}

// NewProcessor creates a processor with zeroed registers and no memory.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		regFile: &emu.RegFile{},
		logger:  slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.pipeline = pipeline.NewPipeline(p.regFile, memoryPort{p},
		pipeline.WithLogger(p.logger))

	return p
}

// AttachMemory connects the processor to the top of a hierarchy.
func (p *Processor) AttachMemory(top *cache.Level) {
	p.port = cache.NewPort(top, p.logger)
}

// Memory returns the port to the attached hierarchy, or nil.
func (p *Processor) Memory() *cache.Port {
	return p.port
}

// RegFile returns the register file.
func (p *Processor) RegFile() *emu.RegFile {
	return p.regFile
}

// Pipeline returns the pipeline.
func (p *Processor) Pipeline() *pipeline.Pipeline {
	return p.pipeline
}

// AcceptHook registers a hook on the pipeline.
func (p *Processor) AcceptHook(hook sim.Hook) {
	p.pipeline.AcceptHook(hook)
}

// Read polls a cached read of the word at byte address addr. It returns
// false while the access is waiting. An unaligned address logs a warning
// and reads 0.
func (p *Processor) Read(addr uint32) (uint32, bool) {
	if p.port == nil {
		p.logger.Warn("read with no memory attached", "addr", addr)
		return 0, true
	}
	return p.port.Read(addr, true)
}

// Write polls a cached write of word to byte address addr. It returns false
// while the access is waiting. An unaligned address logs a warning and
// stores nothing.
func (p *Processor) Write(word uint32, addr uint32) bool {
	if p.port == nil {
		p.logger.Warn("write with no memory attached", "addr", addr)
		return true
	}
	return p.port.Write(word, addr, true)
}

// ReadComplete repeats Read until it completes and returns the word and
// the number of polls that waited.
func (p *Processor) ReadComplete(addr uint32) (uint32, uint64) {
	var waited uint64
	for {
		word, ok := p.Read(addr)
		if ok {
			return word, waited
		}
		waited++
	}
}

// WriteComplete repeats Write until it completes and returns the number of
// polls that waited.
func (p *Processor) WriteComplete(word uint32, addr uint32) uint64 {
	var waited uint64
	for !p.Write(word, addr) {
		waited++
	}
	return waited
}

// Step advances the processor by one cycle and reports whether the program
// is still running.
func (p *Processor) Step(usePipeline, useCache bool) bool {
	return p.pipeline.Step(usePipeline, useCache)
}

// StepWord advances one cycle with word queued as the next fetched
// instruction.
func (p *Processor) StepWord(usePipeline, useCache bool, word uint32) bool {
	return p.pipeline.StepWord(usePipeline, useCache, word)
}

// Halted returns true once the end-of-stream sentinel has retired.
func (p *Processor) Halted() bool {
	return p.pipeline.Halted()
}

// SetPC sets the program counter and restarts fetching there.
func (p *Processor) SetPC(pc uint32) {
	p.pipeline.SetPC(pc)
}

// Stats returns performance statistics for the processor.
func (p *Processor) Stats() Stats {
	s := p.pipeline.Stats()
	return Stats{
		Cycles:       s.Cycles,
		Instructions: s.Instructions,
		Stalls:       s.Stalls,
		Flushes:      s.Flushes,
		MemStalls:    s.MemStalls,
		FetchStalls:  s.FetchStalls,
	}
}

// Reset clears the registers, the flags and the pipeline. Memory contents
// are kept.
func (p *Processor) Reset() {
	p.regFile.Reset()
	p.pipeline.Reset()
}

// DisplayRegisters prints the registers, the flags and the cycle count.
func (p *Processor) DisplayRegisters(w io.Writer) {
	p.regFile.Dump(w)
	fmt.Fprintf(w, "Cycle %d\n", p.pipeline.Stats().Cycles)
}

// DisplayMemory prints count sets of the level at depth, starting at the
// set that holds byte address addr. Depth 0 is the top of the hierarchy.
func (p *Processor) DisplayMemory(w io.Writer, addr uint32, count, depth int) error {
	if p.port == nil {
		return fmt.Errorf("no memory attached")
	}

	levels := p.port.Levels()
	if depth < 0 || depth >= len(levels) {
		return fmt.Errorf("depth %d out of range, hierarchy has %d levels",
			depth, len(levels))
	}

	level := levels[depth]
	fmt.Fprintf(w, "%s\n", level.Name())
	return level.Display(w, addr/p.port.WordBytes(), count)
}

// Snapshot is a deep copy of the registers, the flags and the pipeline.
// The memory hierarchy is not part of it.
type Snapshot struct {
	regFile  emu.RegFile
	pipeline pipeline.State
}

// Snapshot captures the processor state.
func (p *Processor) Snapshot() *Snapshot {
	return &Snapshot{
		regFile:  *p.regFile,
		pipeline: p.pipeline.Save(),
	}
}

// Restore returns the processor to a captured state.
func (p *Processor) Restore(s *Snapshot) {
	*p.regFile = s.regFile
	p.pipeline.Load(s.pipeline)
}

// memoryPort lets the pipeline reach whatever hierarchy is attached at the
// time of the access.
type memoryPort struct {
	p *Processor
}

func (m memoryPort) Read(addr uint32, cached bool) (uint32, bool) {
	if m.p.port == nil {
		return 0, true
	}
	return m.p.port.Read(addr, cached)
}

func (m memoryPort) Write(word uint32, addr uint32, cached bool) bool {
	if m.p.port == nil {
		return true
	}
	return m.p.port.Write(word, addr, cached)
}

func (m memoryPort) Abandon(addr uint32, cached bool) {
	if m.p.port != nil {
		m.p.port.Abandon(addr, cached)
	}
}
