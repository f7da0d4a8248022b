package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/insts"
	"github.com/sarchlab/isasim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		hazardUnit *pipeline.HazardUnit
		decoder    *insts.Decoder
	)

	record := func(word uint32) *pipeline.Record {
		return &pipeline.Record{Valid: true, Word: word, Inst: *decoder.Decode(word)}
	}

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
		decoder = insts.NewDecoder()
	})

	Describe("RegisterSet", func() {
		It("should hold the added registers", func() {
			set := pipeline.RegisterSet(0).Add(1, 15, 1)

			Expect(set.Contains(1)).To(BeTrue())
			Expect(set.Contains(15)).To(BeTrue())
			Expect(set.Contains(2)).To(BeFalse())
			Expect(set.Len()).To(Equal(2))
		})
	})

	Describe("InFlight", func() {
		It("should collect the registers of valid records only", func() {
			add := record(insts.ALUReg(insts.OpADD, 1, 2, 3, insts.ShiftLSL, 0))
			str := record(insts.Store(4, 5, 0))
			empty := &pipeline.Record{}

			set := hazardUnit.InFlight(add, str, empty)

			Expect(set.Len()).To(Equal(5))
			Expect(set.Contains(0)).To(BeFalse())
		})

		It("should include LR for a branch with link", func() {
			set := hazardUnit.InFlight(record(insts.Branch(4, true)))

			Expect(set.Contains(insts.RegLR)).To(BeTrue())
			Expect(set.Contains(insts.RegPC)).To(BeTrue())
		})
	})

	Describe("Conflicts", func() {
		It("should flag a read of a register being written", func() {
			inFlight := pipeline.RegisterSet(0).Add(1)
			inst := decoder.Decode(insts.ALUImm(insts.OpADD, 2, 1, 1))

			Expect(hazardUnit.Conflicts(inst, inFlight)).To(BeTrue())
		})

		It("should flag a write of a register being read", func() {
			inFlight := pipeline.RegisterSet(0).Add(2)
			inst := decoder.Decode(insts.ALUImm(insts.OpMOV, 2, 0, 1))

			Expect(hazardUnit.Conflicts(inst, inFlight)).To(BeTrue())
		})

		It("should ignore unused register fields", func() {
			inFlight := pipeline.RegisterSet(0).Add(9)
			// MOV does not read Rn.
			inst := decoder.Decode(insts.ALUImm(insts.OpMOV, 2, 9, 1))

			Expect(hazardUnit.Conflicts(inst, inFlight)).To(BeFalse())
		})

		It("should never flag the sentinel", func() {
			inFlight := pipeline.RegisterSet(0xFFFF)
			inst := decoder.Decode(insts.Sentinel)

			Expect(hazardUnit.Conflicts(inst, inFlight)).To(BeFalse())
		})
	})

	Describe("RedirectPending", func() {
		It("should see an ALU write to the PC", func() {
			r := record(insts.ALUImm(insts.OpMOV, insts.RegPC, 0, 16))
			Expect(hazardUnit.RedirectPending(r)).To(BeTrue())
		})

		It("should see a load into the PC", func() {
			r := record(insts.Load(insts.RegPC, 1, 0))
			Expect(hazardUnit.RedirectPending(r)).To(BeTrue())
		})

		It("should leave branches to execute", func() {
			r := record(insts.Branch(1, false))
			Expect(hazardUnit.RedirectPending(r)).To(BeFalse())
		})

		It("should ignore a store of the PC", func() {
			r := record(insts.Store(insts.RegPC, 1, 0))
			Expect(hazardUnit.RedirectPending(r)).To(BeFalse())
		})
	})
})
