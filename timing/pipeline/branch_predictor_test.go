package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/timing/pipeline"
)

var _ = Describe("BranchPredictor", func() {
	var bp *pipeline.BranchPredictor

	BeforeEach(func() {
		bp = pipeline.NewBranchPredictor(pipeline.WeaklyNotTaken)
	})

	It("should predict not taken for unseen addresses", func() {
		Expect(bp.Predict(0x40)).To(BeFalse())
	})

	It("should initialize entries lazily on first reference", func() {
		Expect(bp.Entries()).To(BeEmpty())
		bp.Predict(0x40)
		Expect(bp.Entries()).To(HaveKeyWithValue(uint64(0x40), pipeline.WeaklyNotTaken))
	})

	It("should predict taken after one taken outcome from the initial state", func() {
		bp.Update(0x40, true)
		Expect(bp.Predict(0x40)).To(BeTrue())
	})

	It("should saturate at strongly taken", func() {
		for i := 0; i < 3; i++ {
			bp.Update(0x40, true)
		}
		Expect(bp.Predict(0x40)).To(BeTrue())
		Expect(bp.Entries()[0x40]).To(Equal(pipeline.StronglyTaken))

		bp.Update(0x40, true)
		Expect(bp.Entries()[0x40]).To(Equal(pipeline.StronglyTaken))
		Expect(bp.Predict(0x40)).To(BeTrue())
	})

	It("should saturate at strongly not taken", func() {
		for i := 0; i < 5; i++ {
			bp.Update(0x40, false)
		}
		Expect(bp.Entries()[0x40]).To(Equal(pipeline.StronglyNotTaken))
		Expect(bp.Predict(0x40)).To(BeFalse())
	})

	It("should require two opposite outcomes to flip a saturated entry", func() {
		for i := 0; i < 3; i++ {
			bp.Update(0x40, true)
		}

		bp.Update(0x40, false)
		Expect(bp.Predict(0x40)).To(BeTrue())

		bp.Update(0x40, false)
		Expect(bp.Predict(0x40)).To(BeFalse())
	})

	It("should track addresses independently", func() {
		bp.Update(0x40, true)
		Expect(bp.Predict(0x40)).To(BeTrue())
		Expect(bp.Predict(0x80)).To(BeFalse())
	})

	It("should judge correctness against the pre-update state", func() {
		bp.Update(0x40, true) // predicted not taken, was taken
		bp.Update(0x40, true) // predicted taken, was taken

		stats := bp.Stats()
		Expect(stats.Predictions).To(Equal(uint64(2)))
		Expect(stats.Mispredictions).To(Equal(uint64(1)))
		Expect(stats.Correct).To(Equal(uint64(1)))
		Expect(stats.Accuracy()).To(BeNumerically("==", 50))
	})

	It("should clear the table and statistics on reset", func() {
		bp.Update(0x40, true)
		bp.Reset()
		Expect(bp.Entries()).To(BeEmpty())
		Expect(bp.Stats().Predictions).To(Equal(uint64(0)))
		Expect(bp.Predict(0x40)).To(BeFalse())
	})

	It("should honor a taken-biased reset state", func() {
		bp = pipeline.NewBranchPredictor(pipeline.WeaklyTaken)
		Expect(bp.Predict(0x40)).To(BeTrue())
	})
})
