package emu

import "github.com/sarchlab/isasim/insts"

// ALU implements the data processing operations.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// AddWithCarry returns a + b + carryIn with the carry-out and the signed
// overflow. The carry is set when the 33-bit unsigned sum does not fit in
// 32 bits, the overflow when the widened signed sum does not survive
// truncation to 32 bits.
func AddWithCarry(a, b uint32, carryIn bool) (result uint32, carry, overflow bool) {
	var c uint64
	if carryIn {
		c = 1
	}

	unsigned := uint64(a) + uint64(b) + c
	signed := int64(int32(a)) + int64(int32(b)) + int64(c)

	result = uint32(unsigned)
	carry = uint64(result) != unsigned
	overflow = int64(int32(result)) != signed

	return result, carry, overflow
}

// Execute performs op on rn and the second operand. shifterCarry is the
// carry-out of the barrel shifter that produced op2; logical operations use
// it for C. When setFlags is true the flags are updated; V is left as is by
// logical operations.
func (a *ALU) Execute(op insts.Op, rn, op2 uint32, shifterCarry, setFlags bool) uint32 {
	flags := &a.regFile.PSTATE
	carry, overflow := shifterCarry, flags.V

	var result uint32
	switch op {
	case insts.OpAND, insts.OpTST:
		result = rn & op2
	case insts.OpEOR, insts.OpTEQ:
		result = rn ^ op2
	case insts.OpORR:
		result = rn | op2
	case insts.OpMOV:
		result = op2
	case insts.OpBIC:
		result = rn &^ op2
	case insts.OpMVN:
		result = ^op2
	case insts.OpSUB, insts.OpCMP:
		result, carry, overflow = AddWithCarry(rn, ^op2, true)
	case insts.OpRSB:
		result, carry, overflow = AddWithCarry(op2, ^rn, true)
	case insts.OpADD, insts.OpCMN:
		result, carry, overflow = AddWithCarry(rn, op2, false)
	case insts.OpADC:
		result, carry, overflow = AddWithCarry(rn, op2, flags.C)
	case insts.OpSBC:
		result, carry, overflow = AddWithCarry(rn, ^op2, flags.C)
	case insts.OpRSC:
		result, carry, overflow = AddWithCarry(op2, ^rn, flags.C)
	}

	if setFlags {
		flags.N = int32(result) < 0
		flags.Z = result == 0
		flags.C = carry
		flags.V = overflow
	}

	return result
}
