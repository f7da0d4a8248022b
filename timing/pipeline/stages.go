package pipeline

import (
	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/insts"
)

// FetchStage handles instruction fetch from memory.
type FetchStage struct {
	memory Memory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// Fetch polls a read of the instruction at pc.
func (s *FetchStage) Fetch(pc uint32, cached bool) (uint32, bool) {
	return s.memory.Read(pc, cached)
}

// Abandon drops the in-flight fetch of pc.
func (s *FetchStage) Abandon(pc uint32, cached bool) {
	s.memory.Abandon(pc, cached)
}

// DecodeStage handles instruction decode and register read.
type DecodeStage struct {
	regFile *emu.RegFile
	decoder *insts.Decoder
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{
		regFile: regFile,
		decoder: insts.NewDecoder(),
	}
}

// Decode extracts the fields of the fetched word.
func (s *DecodeStage) Decode(r *Record) {
	r.Inst = *s.decoder.Decode(r.Word)
}

// ReadOperands snapshots the operand registers and marks the record
// decoded. Reading the PC yields the instruction address plus 8.
func (s *DecodeStage) ReadOperands(r *Record) {
	read := func(reg uint8) uint32 {
		if reg == insts.RegPC {
			return r.PC + pcAhead
		}
		return s.regFile.ReadReg(reg)
	}

	r.RdValue = read(r.Inst.Rd)
	r.RnValue = read(r.Inst.Rn)
	r.RmValue = read(r.Inst.Rm)
	r.RsValue = read(r.Inst.Rs)
	r.Decoded = true
}

// ExecuteStage handles condition evaluation, ALU operations, address
// generation and branch resolution.
type ExecuteStage struct {
	regFile *emu.RegFile
	alu     *emu.ALU
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(regFile *emu.RegFile) *ExecuteStage {
	return &ExecuteStage{
		regFile: regFile,
		alu:     emu.NewALU(regFile),
	}
}

// ExecuteResult holds the control outcome of the execute stage.
type ExecuteResult struct {
	// BranchTaken is set when a branch passed its condition.
	BranchTaken bool

	// Target is the branch target address.
	Target uint32
}

// Execute runs the record if its condition holds. ALU results, memory
// addresses and base write-back values are stored in the record; flags are
// updated in place.
func (s *ExecuteStage) Execute(r *Record) ExecuteResult {
	if !s.regFile.PSTATE.Check(r.Inst.Cond) {
		return ExecuteResult{}
	}
	r.Executed = true

	switch r.Inst.Class {
	case insts.ClassALU:
		op2, carry := s.operand2(r)
		r.Result = s.alu.Execute(r.Inst.Op, r.RnValue, op2, carry, r.Inst.SetFlags)
	case insts.ClassMemory:
		s.address(r)
	case insts.ClassBranch:
		return ExecuteResult{BranchTaken: true, Target: s.branchTarget(r)}
	}

	return ExecuteResult{}
}

// operand2 returns the flexible second operand and the shifter carry-out.
func (s *ExecuteStage) operand2(r *Record) (uint32, bool) {
	inst := &r.Inst
	carry := s.regFile.PSTATE.C

	if !inst.RegOperand {
		return emu.RotateImmediate(uint32(inst.Imm)&0xFF, inst.Rotate, carry)
	}

	amount := uint32(inst.ShiftAmount)
	if inst.ShiftByReg {
		amount = r.RsValue & 0xFF
	}
	return emu.Shift(r.RmValue, amount, inst.ShiftType, carry)
}

func (s *ExecuteStage) address(r *Record) {
	inst := &r.Inst

	offset := uint32(inst.Imm)
	if inst.RegOperand {
		offset, _ = emu.Shift(r.RmValue, uint32(inst.ShiftAmount),
			inst.ShiftType, s.regFile.PSTATE.C)
	}

	base := r.RnValue
	moved := base - offset
	if inst.AddOffset {
		moved = base + offset
	}

	r.Addr = base
	if inst.PreIndex {
		r.Addr = moved
	}
	r.BaseValue = moved
}

func (s *ExecuteStage) branchTarget(r *Record) uint32 {
	if r.Inst.RegOperand {
		return r.RmValue
	}
	return r.PC + pcAhead + uint32(r.Inst.Imm<<2)
}

// MemoryStage handles loads and stores.
type MemoryStage struct {
	memory Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// Access polls the load or store of the record. It returns false while the
// access is waiting.
func (s *MemoryStage) Access(r *Record, cached bool) bool {
	if !r.Inst.Load {
		return s.memory.Write(r.RdValue, r.Addr, cached)
	}

	word, ok := s.memory.Read(r.Addr, cached)
	if !ok {
		return false
	}
	r.LoadData = word
	return true
}

// WritebackStage commits results to the register file.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the base write-back first and the destination second,
// so a load into its own base register keeps the loaded value. It reports
// whether the PC was written.
func (s *WritebackStage) Writeback(r *Record) bool {
	if !r.Executed {
		return false
	}

	wrotePC := false
	write := func(reg uint8, value uint32) {
		s.regFile.WriteReg(reg, value)
		if reg&0xF == insts.RegPC {
			wrotePC = true
		}
	}

	inst := &r.Inst
	switch inst.Class {
	case insts.ClassALU:
		if inst.RdUsed {
			write(inst.Rd, r.Result)
		}
	case insts.ClassMemory:
		if inst.WriteBack {
			write(inst.Rn, r.BaseValue)
		}
		if inst.Load {
			write(inst.Rd, r.LoadData)
		}
	case insts.ClassBranch:
		if inst.Link {
			s.regFile.WriteReg(insts.RegLR, r.PC+4)
		}
	}

	return wrotePC
}
