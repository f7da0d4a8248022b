package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/insts"
)

var _ = Describe("ALU", func() {
	var (
		regFile *emu.RegFile
		alu     *emu.ALU
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		alu = emu.NewALU(regFile)
	})

	Describe("AddWithCarry", func() {
		It("should set overflow and negative for 0x7FFFFFFF + 1", func() {
			result, carry, overflow := emu.AddWithCarry(0x7FFFFFFF, 1, false)
			Expect(result).To(Equal(uint32(0x80000000)))
			Expect(carry).To(BeFalse())
			Expect(overflow).To(BeTrue())
		})

		It("should set carry for 0xFFFFFFFF + 1", func() {
			result, carry, overflow := emu.AddWithCarry(0xFFFFFFFF, 1, false)
			Expect(result).To(Equal(uint32(0)))
			Expect(carry).To(BeTrue())
			Expect(overflow).To(BeFalse())
		})

		It("should add the carry in", func() {
			result, carry, _ := emu.AddWithCarry(0xFFFFFFFE, 1, true)
			Expect(result).To(Equal(uint32(0)))
			Expect(carry).To(BeTrue())
		})
	})

	Describe("Flag arithmetic", func() {
		It("should set N and V, clear C and Z for ADDS 0x7FFFFFFF + 1", func() {
			alu.Execute(insts.OpADD, 0x7FFFFFFF, 1, false, true)
			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{N: true, V: true}))
		})

		It("should set C and Z, clear N and V for ADDS 0xFFFFFFFF + 1", func() {
			alu.Execute(insts.OpADD, 0xFFFFFFFF, 1, false, true)
			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{Z: true, C: true}))
		})

		It("should leave flags alone without the status bit", func() {
			regFile.PSTATE = emu.PSTATE{N: true, C: true}
			result := alu.Execute(insts.OpADD, 0xFFFFFFFF, 1, false, false)
			Expect(result).To(Equal(uint32(0)))
			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{N: true, C: true}))
		})

		It("should set C when a subtraction does not borrow", func() {
			result := alu.Execute(insts.OpSUB, 5, 3, false, true)
			Expect(result).To(Equal(uint32(2)))
			Expect(regFile.PSTATE.C).To(BeTrue())
			Expect(regFile.PSTATE.N).To(BeFalse())
		})

		It("should clear C and set N when a subtraction borrows", func() {
			result := alu.Execute(insts.OpSUB, 3, 5, false, true)
			Expect(result).To(Equal(uint32(0xFFFFFFFE)))
			Expect(regFile.PSTATE.C).To(BeFalse())
			Expect(regFile.PSTATE.N).To(BeTrue())
		})

		It("should detect signed overflow on subtraction", func() {
			alu.Execute(insts.OpCMP, 0x80000000, 1, false, true)
			Expect(regFile.PSTATE.V).To(BeTrue())
			Expect(regFile.PSTATE.N).To(BeFalse())
		})

		It("should set Z for CMP of equal values", func() {
			alu.Execute(insts.OpCMP, 42, 42, false, true)
			Expect(regFile.PSTATE.Z).To(BeTrue())
			Expect(regFile.PSTATE.C).To(BeTrue())
		})

		It("should take C from the shifter for logical operations", func() {
			regFile.PSTATE.V = true
			alu.Execute(insts.OpAND, 0xF0, 0x0F, true, true)
			Expect(regFile.PSTATE).To(Equal(emu.PSTATE{Z: true, C: true, V: true}))
		})
	})

	Describe("Operations", func() {
		It("should use the incoming carry for ADC, SBC and RSC", func() {
			regFile.PSTATE.C = true
			Expect(alu.Execute(insts.OpADC, 1, 2, false, false)).To(Equal(uint32(4)))
			Expect(alu.Execute(insts.OpSBC, 5, 2, false, false)).To(Equal(uint32(3)))
			Expect(alu.Execute(insts.OpRSC, 2, 5, false, false)).To(Equal(uint32(3)))

			regFile.PSTATE.C = false
			Expect(alu.Execute(insts.OpSBC, 5, 2, false, false)).To(Equal(uint32(2)))
		})

		DescribeTable("should compute the result",
			func(op insts.Op, rn, op2, want uint32) {
				Expect(alu.Execute(op, rn, op2, false, false)).To(Equal(want))
			},
			Entry("AND", insts.OpAND, uint32(0xFF00), uint32(0x0FF0), uint32(0x0F00)),
			Entry("EOR", insts.OpEOR, uint32(0xFF00), uint32(0x0FF0), uint32(0xF0F0)),
			Entry("SUB", insts.OpSUB, uint32(10), uint32(3), uint32(7)),
			Entry("RSB", insts.OpRSB, uint32(3), uint32(10), uint32(7)),
			Entry("ADD", insts.OpADD, uint32(10), uint32(3), uint32(13)),
			Entry("ORR", insts.OpORR, uint32(0xF000), uint32(0x000F), uint32(0xF00F)),
			Entry("MOV", insts.OpMOV, uint32(99), uint32(7), uint32(7)),
			Entry("BIC", insts.OpBIC, uint32(0xFF), uint32(0x0F), uint32(0xF0)),
			Entry("MVN", insts.OpMVN, uint32(99), uint32(0), uint32(0xFFFFFFFF)),
		)
	})
})
