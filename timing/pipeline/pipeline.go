package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/insts"
)

// Memory is the view of the memory hierarchy the pipeline needs. Accesses
// are polled: a false return means the access is still waiting and must be
// issued again on a later cycle. Addresses are byte addresses; cached
// selects between the top of the hierarchy and the backing store.
type Memory interface {
	Read(addr uint32, cached bool) (uint32, bool)
	Write(word uint32, addr uint32, cached bool) bool
	Abandon(addr uint32, cached bool)
}

// Hook positions. The hook item is a copy of the Record concerned.
var (
	// HookPosStall marks a cycle in which decode held its instruction.
	HookPosStall = &sim.HookPos{Name: "PipelineStall"}

	// HookPosFlush marks the discarding of the fetched instruction after a
	// change of control flow. The item is the record that redirected.
	HookPosFlush = &sim.HookPos{Name: "PipelineFlush"}

	// HookPosRetire marks an instruction leaving writeback.
	HookPosRetire = &sim.HookPos{Name: "PipelineRetire"}
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired. The end-of-stream
	// sentinel is not counted.
	Instructions uint64
	// Stalls is the number of cycles decode was held by a register hazard.
	Stalls uint64
	// Bubbles is the number of cycles decode held its instruction for any
	// reason, feeding an empty slot to execute.
	Bubbles uint64
	// Flushes is the number of changes of control flow.
	Flushes uint64
	// MemStalls is the number of cycles the memory stage waited.
	MemStalls uint64
	// FetchStalls is the number of cycles fetch waited.
	FetchStalls uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger for control-flow and halt diagnostics.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// portOwner tracks which stage holds the single memory port. An access
// that has started holds the port until it completes.
type portOwner uint8

const (
	portFree portOwner = iota
	portFetch
	portMemory
)

// Pipeline implements a 5-stage pipelined CPU model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) -> Writeback (WB)
//
// Stages are evaluated back to front within a cycle, so every record moves
// at most one stage per cycle and writeback commits before decode reads.
type Pipeline struct {
	*sim.HookableBase

	// Pipeline latches
	ifid  Record
	idex  Record
	exmem Record
	memwb Record

	// Pipeline stages
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	hazardUnit *HazardUnit

	// Shared resources
	regFile *emu.RegFile
	memory  Memory
	logger  *slog.Logger

	// Memory port arbitration
	port        portOwner
	fetchAddr   uint32
	fetchCached bool
	memCached   bool

	// pending holds injected instruction words, fetched before memory.
	pending []uint32

	stats        Statistics
	fetchStopped bool
	halted       bool
}

// NewPipeline creates a new pipeline over the given register file and
// memory.
func NewPipeline(
	regFile *emu.RegFile,
	memory Memory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		HookableBase:   sim.NewHookableBase(),
		fetchStage:     NewFetchStage(memory),
		decodeStage:    NewDecodeStage(regFile),
		executeStage:   NewExecuteStage(regFile),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     NewHazardUnit(),
		regFile:        regFile,
		memory:         memory,
		logger:         slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// RegFile returns the register file.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// PC returns the address of the next fetch.
func (p *Pipeline) PC() uint32 {
	return p.regFile.PC()
}

// SetPC redirects fetch to pc. The fetched instruction and any in-flight
// fetch are discarded and a halted pipeline resumes.
func (p *Pipeline) SetPC(pc uint32) {
	p.abandonFetch()
	p.ifid.Clear()
	p.regFile.SetPC(pc)
	p.fetchStopped = false
	p.halted = false
}

// GetIFID returns the IF/ID pipeline latch.
func (p *Pipeline) GetIFID() *Record {
	return &p.ifid
}

// GetIDEX returns the ID/EX pipeline latch.
func (p *Pipeline) GetIDEX() *Record {
	return &p.idex
}

// GetEXMEM returns the EX/MEM pipeline latch.
func (p *Pipeline) GetEXMEM() *Record {
	return &p.exmem
}

// GetMEMWB returns the MEM/WB pipeline latch.
func (p *Pipeline) GetMEMWB() *Record {
	return &p.memwb
}

// Stats returns the pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Halted returns true once the end-of-stream sentinel has retired.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Drained reports whether no instruction is in any latch.
func (p *Pipeline) Drained() bool {
	return !p.ifid.Valid && !p.idex.Valid && !p.exmem.Valid && !p.memwb.Valid
}

// Step advances the pipeline by one cycle and reports whether the program
// is still running.
//
// With usePipeline false a new instruction is fetched only when every latch
// is empty, so instructions never overlap. With useCache false every access
// goes to the backing store.
func (p *Pipeline) Step(usePipeline, useCache bool) bool {
	if p.halted {
		return false
	}

	p.stats.Cycles++

	// Hazards are taken from the in-flight records before writeback changes
	// any register in this cycle.
	inFlight := p.hazardUnit.InFlight(&p.idex, &p.exmem, &p.memwb)
	redirect := p.hazardUnit.RedirectPending(&p.idex, &p.exmem, &p.memwb)

	done := p.doWriteback()
	p.doMemory(useCache)
	p.doExecute()
	p.doDecode(inFlight, redirect)
	if usePipeline || p.Drained() || p.port == portFetch {
		p.doFetch(useCache)
	}

	if done {
		p.halted = true
		p.logger.Debug("pipeline halted",
			"cycles", p.stats.Cycles, "instructions", p.stats.Instructions)
		return false
	}

	return true
}

// StepWord queues word as the next fetched instruction and advances one
// cycle. The queued word is taken in place of a memory read at the next
// fetch; the PC still advances by 4.
func (p *Pipeline) StepWord(usePipeline, useCache bool, word uint32) bool {
	p.pending = append(p.pending, word)
	return p.Step(usePipeline, useCache)
}

func (p *Pipeline) doWriteback() bool {
	if !p.memwb.Valid {
		return false
	}

	r := p.memwb
	p.memwb.Clear()

	if p.writebackStage.Writeback(&r) {
		p.redirect(&r, "writeback")
	}

	if r.Halt {
		return true
	}

	p.stats.Instructions++
	p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosRetire, Item: r})

	return false
}

func (p *Pipeline) doMemory(useCache bool) {
	if !p.exmem.Valid || p.memwb.Valid {
		return
	}

	if p.exmem.accessesMemory() {
		if p.port == portFetch {
			p.stats.MemStalls++
			return
		}

		p.port = portMemory
		p.memCached = useCache
		if !p.memoryStage.Access(&p.exmem, useCache) {
			p.stats.MemStalls++
			return
		}
		p.port = portFree
	}

	p.memwb = p.exmem
	p.exmem.Clear()
}

func (p *Pipeline) doExecute() {
	if !p.idex.Valid || p.exmem.Valid {
		return
	}

	result := p.executeStage.Execute(&p.idex)
	p.exmem = p.idex
	p.idex.Clear()

	if result.BranchTaken {
		p.regFile.SetPC(result.Target)
		p.redirect(&p.exmem, "branch")
	}
}

func (p *Pipeline) doDecode(inFlight RegisterSet, redirect bool) {
	if !p.ifid.Valid || p.idex.Valid {
		return
	}

	r := &p.ifid
	p.decodeStage.Decode(r)

	hazard := p.hazardUnit.Conflicts(&r.Inst, inFlight)
	if hazard || redirect {
		r.Decoded = false
		if hazard {
			p.stats.Stalls++
		}
		p.stats.Bubbles++
		p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosStall, Item: *r})
		return
	}

	p.decodeStage.ReadOperands(r)
	p.idex = *r
	r.Clear()
}

func (p *Pipeline) doFetch(useCache bool) {
	if p.ifid.Valid || p.fetchStopped {
		return
	}

	pc := p.regFile.PC()
	var word uint32

	if len(p.pending) > 0 {
		p.abandonFetch()
		word = p.pending[0]
		p.pending = p.pending[1:]
	} else {
		if p.port == portMemory {
			p.stats.FetchStalls++
			return
		}
		if p.port == portFetch && (p.fetchAddr != pc || p.fetchCached != useCache) {
			p.abandonFetch()
		}

		p.port = portFetch
		p.fetchAddr = pc
		p.fetchCached = useCache

		var ok bool
		word, ok = p.fetchStage.Fetch(pc, useCache)
		if !ok {
			p.stats.FetchStalls++
			return
		}
		p.port = portFree
	}

	p.regFile.SetPC(pc + 4)
	p.ifid = Record{
		Valid: true,
		PC:    pc,
		Word:  word,
		Halt:  word == insts.Sentinel,
	}

	if p.ifid.Halt {
		p.fetchStopped = true
	}
}

// redirect discards the fetched instruction and the in-flight fetch after
// the PC has been changed by r. A discarded sentinel no longer ends the
// stream, so fetching resumes.
func (p *Pipeline) redirect(r *Record, cause string) {
	p.abandonFetch()
	p.ifid.Clear()
	p.fetchStopped = false
	p.stats.Flushes++

	p.logger.Debug("pipeline flush",
		"cause", cause,
		"pc", fmt.Sprintf("0x%08X", r.PC),
		"target", fmt.Sprintf("0x%08X", p.regFile.PC()))
	p.InvokeHook(sim.HookCtx{Domain: p, Pos: HookPosFlush, Item: *r})
}

func (p *Pipeline) abandonFetch() {
	if p.port != portFetch {
		return
	}
	p.fetchStage.Abandon(p.fetchAddr, p.fetchCached)
	p.port = portFree
}

// Reset empties every latch, drops queued words and clears the statistics.
// The register file is left untouched.
func (p *Pipeline) Reset() {
	p.abandonFetch()
	if p.port == portMemory {
		p.memory.Abandon(p.exmem.Addr, p.memCached)
	}
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.pending = nil
	p.stats = Statistics{}
	p.port = portFree
	p.fetchStopped = false
	p.halted = false
}

// State is a copy of everything the pipeline holds besides the register
// file and the memory.
type State struct {
	latches      [4]Record
	pending      []uint32
	stats        Statistics
	port         portOwner
	fetchAddr    uint32
	fetchCached  bool
	memCached    bool
	fetchStopped bool
	halted       bool
}

// Save returns a deep copy of the pipeline state.
func (p *Pipeline) Save() State {
	return State{
		latches:      [4]Record{p.ifid, p.idex, p.exmem, p.memwb},
		pending:      append([]uint32(nil), p.pending...),
		stats:        p.stats,
		port:         p.port,
		fetchAddr:    p.fetchAddr,
		fetchCached:  p.fetchCached,
		memCached:    p.memCached,
		fetchStopped: p.fetchStopped,
		halted:       p.halted,
	}
}

// Load replaces the pipeline state with a copy of s.
func (p *Pipeline) Load(s State) {
	p.ifid, p.idex, p.exmem, p.memwb = s.latches[0], s.latches[1], s.latches[2], s.latches[3]
	p.pending = append([]uint32(nil), s.pending...)
	p.stats = s.stats
	p.port = s.port
	p.fetchAddr = s.fetchAddr
	p.fetchCached = s.fetchCached
	p.memCached = s.memCached
	p.fetchStopped = s.fetchStopped
	p.halted = s.halted
}
