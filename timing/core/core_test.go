package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/config"
	"github.com/sarchlab/mipssim/timing/core"
	"github.com/sarchlab/mipssim/timing/pipeline"
)

var _ = Describe("Core", func() {
	var c *core.Core

	BeforeEach(func() {
		c = core.New(nil)
	})

	It("should start drained at PC 0", func() {
		Expect(c.Drained()).To(BeTrue())
		Expect(c.PC()).To(Equal(uint64(0)))
		Expect(c.Cycle()).To(Equal(uint64(0)))
		Expect(c.Program()).To(BeNil())
	})

	It("should size its memory from the configuration", func() {
		cfg := config.Default()
		cfg.MemoryWords = 16
		c = core.New(cfg)

		Expect(c.MemoryWords()).To(HaveLen(16))
		Expect(c.SetMemory(60, 1)).To(BeTrue())
		Expect(c.SetMemory(64, 1)).To(BeFalse())
	})

	Describe("LoadSource", func() {
		It("should count accepted instructions", func() {
			res := c.LoadSource(`
				add $s1, $s0, $s0
				nop
			`)

			Expect(res.Accepted).To(Equal(2))
			Expect(res.Rejected).To(BeEmpty())
			Expect(res.EmptyProgram).To(BeFalse())
			Expect(c.Program().NumInstructions()).To(Equal(2))
		})

		It("should surface rejected lines without failing the load", func() {
			res := c.LoadSource(`
				add $s1, $s0, $s0
				add $t1, $s0, $s0
			`)

			Expect(res.Accepted).To(Equal(1))
			Expect(res.Rejected).To(HaveLen(1))
			Expect(res.EmptyProgram).To(BeFalse())
		})

		It("should warn on a program with no accepted instructions", func() {
			res := c.LoadSource("# nothing here\n")

			Expect(res.Accepted).To(BeZero())
			Expect(res.EmptyProgram).To(BeTrue())
			Expect(c.Drained()).To(BeTrue())
		})

		It("should keep injected state across loads", func() {
			c.SetRegister(1, 5)
			c.SetMemory(0, 42)
			c.LoadSource("nop")

			v, _ := c.Register(1)
			Expect(v).To(Equal(int64(5)))
			m, _ := c.Memory(0)
			Expect(m).To(Equal(int64(42)))
		})
	})

	Describe("injection accessors", func() {
		It("should set and read registers by index", func() {
			Expect(c.SetRegister(3, -7)).To(BeTrue())

			v, ok := c.Register(3)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(int64(-7)))
		})

		It("should reject out-of-range register indices", func() {
			Expect(c.SetRegister(32, 1)).To(BeFalse())
			Expect(c.SetRegister(-1, 1)).To(BeFalse())

			_, ok := c.Register(32)
			Expect(ok).To(BeFalse())
		})

		It("should set registers by name", func() {
			Expect(c.SetRegisterByName("$s4", 9)).To(Succeed())

			v, _ := c.Register(4)
			Expect(v).To(Equal(int64(9)))
		})

		It("should reject malformed register names", func() {
			Expect(c.SetRegisterByName("$t1", 1)).To(HaveOccurred())
			Expect(c.SetRegisterByName("$s32", 1)).To(HaveOccurred())
			Expect(c.SetRegisterByName("s1", 1)).To(HaveOccurred())
			Expect(c.SetRegisterByName("$sx", 1)).To(HaveOccurred())
		})

		It("should reject unaligned memory writes", func() {
			Expect(c.SetMemory(2, 1)).To(BeFalse())

			_, ok := c.Memory(2)
			Expect(ok).To(BeFalse())
		})
	})

	It("should run a program end to end", func() {
		c.SetRegister(0, 7)
		c.SetMemory(0, 42)
		c.LoadSource(`
			lw $s1, 0($s0)
			add $s2, $s0, $s0
		`)

		for i := 0; i < 20 && !c.Drained(); i++ {
			c.Step()
		}

		Expect(c.Drained()).To(BeTrue())
		v, _ := c.Register(1)
		Expect(v).To(Equal(int64(42)))
		v, _ = c.Register(2)
		Expect(v).To(Equal(int64(14)))
		Expect(c.Stats().Instructions).To(Equal(uint64(2)))
	})

	It("should expose predictor history after a branch", func() {
		c.LoadSource("loop: beq $s0, $s0, loop")
		c.Step()
		c.Step()

		Expect(c.PredictorEntries()).To(HaveKey(uint64(0)))
		Expect(c.PredictorStats().Predictions).To(Equal(uint64(1)))
		Expect(c.PredictorStats().Mispredictions).To(Equal(uint64(1)))
	})

	It("should report snapshots without advancing", func() {
		c.LoadSource("add $s1, $s0, $s0")
		c.Step()

		snap := c.Snapshot()
		Expect(snap.Cycle).To(Equal(uint64(1)))
		Expect(snap.IF.Valid).To(BeTrue())
		Expect(c.Cycle()).To(Equal(uint64(1)))
	})

	Describe("Reset", func() {
		It("should clear architectural and transient state", func() {
			c.SetRegister(1, 5)
			c.SetMemory(0, 42)
			c.LoadSource("loop: beq $s0, $s0, loop")
			c.Step()
			c.Step()

			c.Reset()

			Expect(c.Registers()).To(Equal([32]int64{}))
			m, _ := c.Memory(0)
			Expect(m).To(BeZero())
			Expect(c.PC()).To(Equal(uint64(0)))
			Expect(c.Cycle()).To(Equal(uint64(0)))
			Expect(c.Stalled()).To(BeFalse())
			Expect(c.Stats()).To(Equal(pipeline.Statistics{}))
			Expect(c.PredictorEntries()).To(BeEmpty())
			Expect(c.Program()).To(BeNil())
			Expect(c.Drained()).To(BeTrue())
		})

		It("should be idempotent", func() {
			c.LoadSource("nop")
			c.Step()

			c.Reset()
			c.Reset()

			Expect(c.Drained()).To(BeTrue())
			Expect(c.Cycle()).To(Equal(uint64(0)))
		})
	})
})
