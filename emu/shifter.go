package emu

import (
	"math/bits"

	"github.com/sarchlab/isasim/insts"
)

// Shift applies a barrel shifter operation and returns the result together
// with the last bit shifted out. A zero amount leaves both the value and
// carryIn unchanged. An unknown shift type returns the value unchanged.
func Shift(value, amount uint32, kind insts.ShiftType, carryIn bool) (uint32, bool) {
	if amount == 0 {
		return value, carryIn
	}

	switch kind {
	case insts.ShiftLSL:
		if amount > 32 {
			return 0, false
		}
		return value << amount, value>>(32-amount)&1 == 1

	case insts.ShiftLSR:
		if amount > 32 {
			return 0, false
		}
		return value >> amount, value>>(amount-1)&1 == 1

	case insts.ShiftASR:
		if amount >= 32 {
			sign := int32(value) < 0
			if sign {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), value>>(amount-1)&1 == 1

	case insts.ShiftROR:
		result := bits.RotateLeft32(value, -int(amount%32))
		return result, result>>31 == 1
	}

	return value, carryIn
}

// RotateImmediate expands an ALU immediate: imm8 rotated right by
// 2*rotate.
func RotateImmediate(imm8 uint32, rotate uint8, carryIn bool) (uint32, bool) {
	return Shift(imm8, 2*uint32(rotate), insts.ShiftROR, carryIn)
}
