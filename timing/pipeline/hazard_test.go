package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/insts"
	"github.com/sarchlab/mipssim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		hu  *pipeline.HazardUnit
		ifs pipeline.IFSlot
		id  pipeline.IDSlot
		ex  pipeline.EXSlot
		mem pipeline.MEMSlot
	)

	BeforeEach(func() {
		hu = pipeline.NewHazardUnit()
		ifs = pipeline.IFSlot{}
		id = pipeline.IDSlot{}
		ex = pipeline.EXSlot{}
		mem = pipeline.MEMSlot{}
	})

	detect := func() pipeline.Hazard {
		return hu.Detect(&ifs, &id, &ex, &mem)
	}

	It("should report no hazard for an empty pipeline", func() {
		Expect(detect()).To(Equal(pipeline.HazardNone))
	})

	Describe("structural hazards", func() {
		It("should flag two memory instructions contending for the port", func() {
			mem = pipeline.MEMSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 0, 0)}
			ifs = pipeline.IFSlot{Valid: true, Inst: insts.NewMemOp(insts.OpSw, 2, 0, 4)}

			Expect(detect().Has(pipeline.HazardStructural)).To(BeTrue())
		})

		It("should flag two multiplies contending for the multiply unit", func() {
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewRType(insts.OpMul, 1, 2, 3)}
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewRType(insts.OpMul, 4, 5, 6)}

			Expect(detect().Has(pipeline.HazardStructural)).To(BeTrue())
		})

		It("should not flag a memory instruction alone in MEM", func() {
			mem = pipeline.MEMSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 0, 0)}

			Expect(detect()).To(Equal(pipeline.HazardNone))
		})
	})

	Describe("data hazards", func() {
		It("should flag an R-type result read by the decode instruction", func() {
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewRType(insts.OpAdd, 1, 2, 3)}
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewRType(insts.OpAdd, 4, 1, 5)}

			Expect(detect().Has(pipeline.HazardData)).To(BeTrue())
		})

		It("should flag a load result read by the decode instruction", func() {
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 0, 0)}
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewRType(insts.OpSub, 4, 5, 1)}

			Expect(detect().Has(pipeline.HazardData)).To(BeTrue())
		})

		It("should not flag a load destination that matches only the decode destination", func() {
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 0, 0)}
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewRType(insts.OpAdd, 1, 2, 3)}

			Expect(detect().Has(pipeline.HazardData)).To(BeFalse())
		})

		It("should not flag a load base register matching a load destination in decode", func() {
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 0, 0)}
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 2, 0)}

			Expect(detect().Has(pipeline.HazardData)).To(BeFalse())
		})

		It("should not flag a store in EX", func() {
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewMemOp(insts.OpSw, 1, 0, 0)}
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewRType(insts.OpAdd, 4, 1, 5)}

			Expect(detect().Has(pipeline.HazardData)).To(BeFalse())
		})
	})

	Describe("control hazards", func() {
		It("should flag a branch resident in decode", func() {
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewBranch(0, 1, 0, "")}

			Expect(detect().Has(pipeline.HazardControl)).To(BeTrue())
		})

		It("should flag a jump resident in decode", func() {
			id = pipeline.IDSlot{Valid: true, Inst: insts.NewJump(0, "")}

			Expect(detect().Has(pipeline.HazardControl)).To(BeTrue())
		})

		It("should not flag a branch in other stages", func() {
			ifs = pipeline.IFSlot{Valid: true, Inst: insts.NewBranch(0, 1, 0, "")}
			ex = pipeline.EXSlot{Valid: true, Inst: insts.NewBranch(0, 1, 0, "")}

			Expect(detect().Has(pipeline.HazardControl)).To(BeFalse())
		})
	})

	It("should report independent checks as a disjunction", func() {
		mem = pipeline.MEMSlot{Valid: true, Inst: insts.NewMemOp(insts.OpLw, 1, 0, 0)}
		ifs = pipeline.IFSlot{Valid: true, Inst: insts.NewMemOp(insts.OpSw, 2, 0, 4)}
		ex = pipeline.EXSlot{Valid: true, Inst: insts.NewRType(insts.OpAdd, 1, 2, 3)}
		id = pipeline.IDSlot{Valid: true, Inst: insts.NewBranch(1, 1, 0, "")}

		h := detect()
		Expect(h.Has(pipeline.HazardStructural)).To(BeTrue())
		Expect(h.Has(pipeline.HazardData)).To(BeTrue())
		Expect(h.Has(pipeline.HazardControl)).To(BeTrue())
		Expect(h.String()).To(Equal("structural|data|control"))
	})

	It("should render the empty set as none", func() {
		Expect(pipeline.HazardNone.String()).To(Equal("none"))
	})
})
