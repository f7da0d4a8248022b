// Package pipeline provides the 5-stage pipeline implementation for timing simulation.
package pipeline

import "github.com/sarchlab/isasim/insts"

// pcAhead is how far past an instruction's own address the PC reads while
// that instruction executes.
const pcAhead = 8

// Record is one instruction in flight. Fetch creates it, decode and execute
// fill it in, the memory stage adds the load data and writeback commits it.
//
// The pipeline keeps one record in each of its four latches: IF/ID holds
// the fetched word, ID/EX the decoded instruction, EX/MEM the executed one
// and MEM/WB the instruction waiting for writeback.
type Record struct {
	// Valid indicates if this latch contains an instruction.
	Valid bool

	// PC is the address the instruction was fetched from.
	PC uint32

	// Word is the raw instruction word.
	Word uint32

	// Inst holds the decoded fields.
	Inst insts.Instruction

	// Decoded is set once the operands have been read from the register
	// file. A record held by the hazard unit stays in IF/ID with Decoded
	// cleared.
	Decoded bool

	// Operand values snapshotted at decode.
	RdValue uint32
	RnValue uint32
	RmValue uint32
	RsValue uint32

	// Executed reports that the condition held and execute ran.
	Executed bool

	// Result is the ALU result.
	Result uint32

	// Addr is the byte address of a load or store.
	Addr uint32

	// BaseValue is the base register after applying the offset.
	BaseValue uint32

	// LoadData is the word returned by a load.
	LoadData uint32

	// Halt marks the end-of-stream sentinel.
	Halt bool
}

// Clear resets the record to an empty latch.
func (r *Record) Clear() {
	*r = Record{}
}

// accessesMemory reports whether the memory stage has work to do.
func (r *Record) accessesMemory() bool {
	return r.Executed && r.Inst.Class == insts.ClassMemory
}

// writesPC reports whether writeback may redirect fetch. Branches are not
// included since they redirect from execute.
func (r *Record) writesPC() bool {
	inst := &r.Inst
	switch inst.Class {
	case insts.ClassALU:
		return inst.RdUsed && inst.Rd == insts.RegPC
	case insts.ClassMemory:
		return (inst.Load && inst.Rd == insts.RegPC) ||
			(inst.WriteBack && inst.Rn == insts.RegPC)
	}
	return false
}
