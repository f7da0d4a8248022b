package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/insts"
)

var _ = Describe("Barrel shifter", func() {
	DescribeTable("should shift and report the carry-out",
		func(value, amount uint32, kind insts.ShiftType, want uint32, carry bool) {
			result, c := emu.Shift(value, amount, kind, false)
			Expect(result).To(Equal(want))
			Expect(c).To(Equal(carry))
		},
		Entry("LSL", uint32(0x80000001), uint32(1), insts.ShiftLSL, uint32(0x00000002), true),
		Entry("LSL by 32", uint32(0x00000001), uint32(32), insts.ShiftLSL, uint32(0), true),
		Entry("LSR", uint32(0x00000003), uint32(1), insts.ShiftLSR, uint32(0x00000001), true),
		Entry("LSR of a negative value", uint32(0x80000000), uint32(4), insts.ShiftLSR, uint32(0x08000000), false),
		Entry("ASR keeps the sign", uint32(0x80000000), uint32(4), insts.ShiftASR, uint32(0xF8000000), false),
		Entry("ASR by 40", uint32(0x80000000), uint32(40), insts.ShiftASR, uint32(0xFFFFFFFF), true),
		Entry("ROR", uint32(0x00000001), uint32(1), insts.ShiftROR, uint32(0x80000000), true),
		Entry("ROR by 8", uint32(0x000000AB), uint32(8), insts.ShiftROR, uint32(0xAB000000), true),
	)

	It("should leave value and carry unchanged for a zero amount", func() {
		result, c := emu.Shift(0x1234, 0, insts.ShiftLSR, true)
		Expect(result).To(Equal(uint32(0x1234)))
		Expect(c).To(BeTrue())
	})

	It("should return the value unchanged for an unknown shift type", func() {
		result, c := emu.Shift(0x1234, 3, insts.ShiftType(7), false)
		Expect(result).To(Equal(uint32(0x1234)))
		Expect(c).To(BeFalse())
	})

	It("should rotate an immediate right by twice the rotate field", func() {
		result, _ := emu.RotateImmediate(0xFF, 4, false)
		Expect(result).To(Equal(uint32(0xFF000000)))
	})
})
