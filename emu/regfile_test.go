package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/insts"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should alias SP, LR and PC", func() {
		regFile.WriteReg(insts.RegSP, 0x100)
		regFile.WriteReg(insts.RegLR, 0x200)
		regFile.SetPC(0x300)

		Expect(regFile.SP()).To(Equal(uint32(0x100)))
		Expect(regFile.LR()).To(Equal(uint32(0x200)))
		Expect(regFile.ReadReg(insts.RegPC)).To(Equal(uint32(0x300)))
	})

	It("should reset registers and flags", func() {
		regFile.WriteReg(3, 7)
		regFile.PSTATE.Z = true
		regFile.Reset()

		Expect(regFile.ReadReg(3)).To(BeZero())
		Expect(regFile.PSTATE).To(Equal(emu.PSTATE{}))
	})

	It("should dump registers and flags", func() {
		regFile.WriteReg(1, 0xCAFE)
		regFile.PSTATE = emu.PSTATE{N: true, V: true}

		var buf bytes.Buffer
		regFile.Dump(&buf)

		Expect(buf.String()).To(ContainSubstring("R1   0x0000CAFE"))
		Expect(buf.String()).To(ContainSubstring("PC"))
		Expect(buf.String()).To(ContainSubstring("NZCV N--V"))
	})

	Describe("Condition evaluation", func() {
		DescribeTable("should evaluate the condition table",
			func(flags emu.PSTATE, cond insts.Cond, want bool) {
				Expect(flags.Check(cond)).To(Equal(want))
			},
			Entry("EQ", emu.PSTATE{Z: true}, insts.CondEQ, true),
			Entry("NE", emu.PSTATE{Z: true}, insts.CondNE, false),
			Entry("CS", emu.PSTATE{C: true}, insts.CondCS, true),
			Entry("CC", emu.PSTATE{C: true}, insts.CondCC, false),
			Entry("MI", emu.PSTATE{N: true}, insts.CondMI, true),
			Entry("PL", emu.PSTATE{}, insts.CondPL, true),
			Entry("VS", emu.PSTATE{V: true}, insts.CondVS, true),
			Entry("VC", emu.PSTATE{V: true}, insts.CondVC, false),
			Entry("HI", emu.PSTATE{C: true}, insts.CondHI, true),
			Entry("HI with Z", emu.PSTATE{C: true, Z: true}, insts.CondHI, false),
			Entry("LS", emu.PSTATE{Z: true, C: true}, insts.CondLS, true),
			Entry("GE", emu.PSTATE{N: true, V: true}, insts.CondGE, true),
			Entry("LT", emu.PSTATE{N: true}, insts.CondLT, true),
			Entry("GT", emu.PSTATE{}, insts.CondGT, true),
			Entry("GT with Z", emu.PSTATE{Z: true}, insts.CondGT, false),
			Entry("LE", emu.PSTATE{V: true}, insts.CondLE, true),
			Entry("AL", emu.PSTATE{}, insts.CondAL, true),
			Entry("NV", emu.PSTATE{N: true, Z: true, C: true, V: true}, insts.CondNV, false),
		)
	})
})
