package pipeline

import (
	"math/bits"

	"github.com/sarchlab/isasim/insts"
)

// RegisterSet is a set of register indices.
type RegisterSet uint16

// Add returns the set with the given registers added.
func (s RegisterSet) Add(regs ...uint8) RegisterSet {
	for _, reg := range regs {
		s |= 1 << (reg & 0xF)
	}
	return s
}

// Contains reports whether reg is in the set.
func (s RegisterSet) Contains(reg uint8) bool {
	return s&(1<<(reg&0xF)) != 0
}

// Len returns the number of registers in the set.
func (s RegisterSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// HazardUnit detects data hazards between the instruction awaiting decode
// and the instructions in execute, memory and writeback.
//
// There is no forwarding. An instruction that reads or writes any register
// touched by an instruction in flight is held in decode until that
// instruction has left writeback.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// InFlight collects every register used by the valid records.
func (h *HazardUnit) InFlight(records ...*Record) RegisterSet {
	var set RegisterSet
	for _, r := range records {
		if r.Valid {
			set = set.Add(r.Inst.Registers()...)
		}
	}
	return set
}

// Conflicts reports whether inst uses a register in the in-flight set.
func (h *HazardUnit) Conflicts(inst *insts.Instruction, inFlight RegisterSet) bool {
	for _, reg := range inst.Registers() {
		if inFlight.Contains(reg) {
			return true
		}
	}
	return false
}

// RedirectPending reports whether a record in flight may write the PC from
// writeback. Decode holds while this is true so that nothing from the
// sequential path executes.
func (h *HazardUnit) RedirectPending(records ...*Record) bool {
	for _, r := range records {
		if r.Valid && r.writesPC() {
			return true
		}
	}
	return false
}
