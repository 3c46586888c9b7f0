// Package core provides the engine facade the outside world drives: program
// loading, single-cycle stepping, initial-state injection, inspection and
// reset.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/mipssim/asm"
	"github.com/sarchlab/mipssim/config"
	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/timing/pipeline"
)

// LoadResult reports the outcome of loading a program.
type LoadResult struct {
	// Accepted is the number of instructions stored.
	Accepted int
	// Rejected lists the source lines that failed to parse.
	Rejected []asm.RejectedLine
	// EmptyProgram is the whole-load warning: no instruction was accepted.
	EmptyProgram bool
}

// Core owns one simulated machine: register file, data memory, instruction
// store and the pipeline engine. All mutation funnels through LoadSource,
// Step, the injection accessors and Reset; calls must be serialized by the
// caller.
type Core struct {
	pipeline *pipeline.Pipeline
	regFile  *emu.RegFile
	memory   *emu.Memory
	program  *asm.Program
}

// New creates a Core from the given machine configuration. A nil cfg uses
// the defaults.
func New(cfg *config.Machine) *Core {
	if cfg == nil {
		cfg = config.Default()
	}

	regFile := &emu.RegFile{}
	memory := emu.NewMemory(cfg.MemoryWords)

	return &Core{
		pipeline: pipeline.NewPipeline(
			regFile,
			memory,
			pipeline.WithPredictorResetState(cfg.PredictorResetState),
		),
		regFile: regFile,
		memory:  memory,
	}
}

// LoadSource assembles the program text and replaces the instruction store.
// The PC, stage slots and cycle count reset to the start of execution;
// registers, memory and the predictor are left as they are.
func (c *Core) LoadSource(source string) LoadResult {
	prog := asm.Assemble(source)
	c.program = prog
	c.pipeline.LoadProgram(prog)

	return LoadResult{
		Accepted:     prog.NumInstructions(),
		Rejected:     prog.Rejected(),
		EmptyProgram: prog.Empty(),
	}
}

// Program returns the current instruction store, or nil before any load.
func (c *Core) Program() *asm.Program {
	return c.program
}

// Step advances exactly one cycle and returns the new snapshot.
func (c *Core) Step() pipeline.Snapshot {
	return c.pipeline.Step()
}

// Snapshot returns the current snapshot without advancing.
func (c *Core) Snapshot() pipeline.Snapshot {
	return c.pipeline.Snapshot()
}

// PC returns the byte address of the next instruction to fetch.
func (c *Core) PC() uint64 {
	return c.pipeline.PC()
}

// Cycle returns the number of completed stage-steps.
func (c *Core) Cycle() uint64 {
	return c.pipeline.Cycle()
}

// Stalled reports whether fetch was gated in the last step.
func (c *Core) Stalled() bool {
	return c.pipeline.Stalled()
}

// Drained reports whether the pipeline has run out of work.
func (c *Core) Drained() bool {
	return c.pipeline.Drained()
}

// Stats returns the pipeline statistics.
func (c *Core) Stats() pipeline.Statistics {
	return c.pipeline.Stats()
}

// PredictorStats returns the branch predictor statistics.
func (c *Core) PredictorStats() pipeline.BranchPredictorStats {
	return c.pipeline.Predictor().Stats()
}

// PredictorEntries returns the predictor table, mapping branch byte
// addresses to 2-bit counter states.
func (c *Core) PredictorEntries() map[uint64]uint8 {
	return c.pipeline.Predictor().Entries()
}

// Register returns the value of a register. Out-of-range indices report
// ok=false.
func (c *Core) Register(index int) (int64, bool) {
	if index < 0 || index >= emu.NumRegs {
		return 0, false
	}
	return c.regFile.Read(uint8(index)), true
}

// SetRegister sets a register. Out-of-range indices are ignored and
// reported with ok=false.
func (c *Core) SetRegister(index int, value int64) bool {
	if index < 0 || index >= emu.NumRegs {
		return false
	}
	c.regFile.Write(uint8(index), value)
	return true
}

// SetRegisterByName sets a register named by its `$sN` token.
func (c *Core) SetRegisterByName(name string, value int64) error {
	if !strings.HasPrefix(name, "$s") {
		return fmt.Errorf("invalid register token %q", name)
	}
	n, err := strconv.Atoi(name[2:])
	if err != nil || n < 0 || n >= emu.NumRegs {
		return fmt.Errorf("invalid register token %q", name)
	}
	c.regFile.Write(uint8(n), value)
	return nil
}

// Registers returns a copy of the full register file.
func (c *Core) Registers() [emu.NumRegs]int64 {
	return c.regFile.S
}

// Memory returns the word at the given byte address. Unaligned or
// out-of-range addresses report ok=false.
func (c *Core) Memory(addr int64) (int64, bool) {
	return c.memory.Read(addr)
}

// SetMemory stores a word at the given byte address. Unaligned or
// out-of-range addresses are ignored and reported with ok=false.
func (c *Core) SetMemory(addr int64, value int64) bool {
	return c.memory.Write(addr, value)
}

// MemoryWords returns a copy of the full data memory, indexed by word.
func (c *Core) MemoryWords() []int64 {
	return c.memory.Words()
}

// Reset returns the machine to its initial-construction state: registers,
// memory, stage slots, PC, predictor table, instruction store, cycle count
// and stall flag all cleared. Reset is idempotent.
func (c *Core) Reset() {
	c.regFile.Reset()
	c.memory.Reset()
	c.pipeline.Reset()
	c.program = nil
}
