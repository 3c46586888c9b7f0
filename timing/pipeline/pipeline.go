package pipeline

import (
	"github.com/sarchlab/mipssim/asm"
	"github.com/sarchlab/mipssim/emu"
	"github.com/sarchlab/mipssim/insts"
	"github.com/sarchlab/mipssim/log"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of completed stage-steps.
	Cycles uint64
	// Instructions is the number of non-NOP instructions that reached
	// writeback.
	Instructions uint64
	// Stalls is the number of cycles fetch was gated by the hazard unit.
	Stalls uint64
	// Squashes is the number of in-flight instructions replaced by a NOP
	// (mispredicted branches and every jump).
	Squashes uint64
	// Forwards is the number of cycles at least one operand was forwarded.
	Forwards uint64
	// StructuralHazards, DataHazards and ControlHazards count cycles each
	// hazard class was detected.
	StructuralHazards uint64
	DataHazards       uint64
	ControlHazards    uint64
}

// CPI returns the cycles per retired instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithPredictorResetState sets the 2-bit counter state new branch-predictor
// entries start from.
func WithPredictorResetState(state uint8) Option {
	return func(p *Pipeline) {
		p.predictor = NewBranchPredictor(state)
	}
}

// Pipeline is the 5-stage pipeline engine.
//
// It owns the five stage slots, the branch predictor and the program
// counter, and mutates the architectural state (registers in writeback,
// memory in the memory stage) it was constructed with. One Step call
// advances exactly one cycle; callers must serialize Step calls.
//
// Control flow is resolved in decode with predict-and-verify: the predictor
// is consulted and trained at the branch's own address, a taken beq
// redirects the PC to offset*4 and a jump to target*4, and a misprediction
// (or any jump) squashes the in-flight slot content to the canonical NOP.
type Pipeline struct {
	ifs IFSlot
	id  IDSlot
	ex  EXSlot
	mem MEMSlot
	wb  WBSlot

	hazardUnit  *HazardUnit
	forwardUnit *ForwardingUnit
	predictor   *BranchPredictor

	regFile *emu.RegFile
	memory  *emu.Memory
	program *asm.Program

	pc      uint64
	cycle   uint64
	stalled bool
	hazard  Hazard

	stats Statistics
}

// NewPipeline creates a pipeline over the given architectural state.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...Option) *Pipeline {
	p := &Pipeline{
		hazardUnit:  NewHazardUnit(),
		forwardUnit: NewForwardingUnit(),
		predictor:   NewBranchPredictor(WeaklyNotTaken),
		regFile:     regFile,
		memory:      memory,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// LoadProgram replaces the instruction store and returns the pipeline to
// the start of execution: PC 0, all slots empty, cycle count and stall flag
// cleared. Registers, memory and the predictor are left untouched; callers
// decide whether to reset those.
func (p *Pipeline) LoadProgram(prog *asm.Program) {
	p.program = prog
	p.pc = 0
	p.clearSlots()
	p.cycle = 0
	p.stalled = false
	p.hazard = HazardNone
	p.stats = Statistics{}
}

// PC returns the byte address of the next instruction to fetch.
func (p *Pipeline) PC() uint64 {
	return p.pc
}

// SetPC sets the program counter.
func (p *Pipeline) SetPC(pc uint64) {
	p.pc = pc
}

// Cycle returns the number of completed stage-steps.
func (p *Pipeline) Cycle() uint64 {
	return p.cycle
}

// Stalled reports whether fetch was gated in the last step.
func (p *Pipeline) Stalled() bool {
	return p.stalled
}

// HazardState returns the hazard set detected in the last step.
func (p *Pipeline) HazardState() Hazard {
	return p.hazard
}

// Stats returns the pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Predictor returns the branch predictor for inspection.
func (p *Pipeline) Predictor() *BranchPredictor {
	return p.predictor
}

// GetIF returns the IF stage slot.
func (p *Pipeline) GetIF() *IFSlot { return &p.ifs }

// GetID returns the ID stage slot.
func (p *Pipeline) GetID() *IDSlot { return &p.id }

// GetEX returns the EX stage slot.
func (p *Pipeline) GetEX() *EXSlot { return &p.ex }

// GetMEM returns the MEM stage slot.
func (p *Pipeline) GetMEM() *MEMSlot { return &p.mem }

// GetWB returns the WB stage slot.
func (p *Pipeline) GetWB() *WBSlot { return &p.wb }

// Snapshot returns the current five-slot snapshot with PC, cycle count and
// hazard state.
func (p *Pipeline) Snapshot() Snapshot {
	return Snapshot{
		IF:      p.ifs,
		ID:      p.id,
		EX:      p.ex,
		MEM:     p.mem,
		WB:      p.wb,
		PC:      p.pc,
		Cycle:   p.cycle,
		Hazard:  p.hazard,
		Stalled: p.stalled,
	}
}

// Drained reports whether the pipeline has run out of work: every slot is
// empty and no instruction exists at the current PC.
func (p *Pipeline) Drained() bool {
	if p.ifs.Valid || p.id.Valid || p.ex.Valid || p.mem.Valid || p.wb.Valid {
		return false
	}
	if p.program == nil {
		return true
	}
	_, ok := p.program.At(p.pc)
	return !ok
}

// Step advances the pipeline by exactly one cycle and returns the new
// snapshot.
//
// Order within a step: the forwarding unit rewrites the decode slot's
// cached operands, the hazard unit sets the stall flag, then the stages
// advance in reverse order (WB, MEM, EX, ID, IF) so no stage consumes data
// its predecessor produced in the same cycle.
func (p *Pipeline) Step() Snapshot {
	fw := p.forwardUnit.Apply(&p.id, &p.ex, &p.mem)
	if fw.Any() {
		p.stats.Forwards++
	}

	p.hazard = p.hazardUnit.Detect(&p.ifs, &p.id, &p.ex, &p.mem)
	p.stalled = p.hazard != HazardNone
	if p.hazard.Has(HazardStructural) {
		p.stats.StructuralHazards++
	}
	if p.hazard.Has(HazardData) {
		p.stats.DataHazards++
	}
	if p.hazard.Has(HazardControl) {
		p.stats.ControlHazards++
	}
	if p.stalled {
		p.stats.Stalls++
	}

	p.advanceWriteback()
	p.advanceMemory()
	p.advanceExecute()
	p.advanceDecode()
	p.advanceFetch()

	p.cycle++
	p.stats.Cycles++

	return p.Snapshot()
}

// advanceWriteback commits the MEM slot's result to the register file and
// moves it into WB. The previous WB occupant leaves the pipeline.
func (p *Pipeline) advanceWriteback() {
	p.wb.Clear()

	if !p.mem.Valid {
		return
	}

	inst := p.mem.Inst
	switch inst.Op {
	case insts.OpAdd, insts.OpSub, insts.OpMul:
		p.regFile.Write(inst.Rd, p.mem.Result)
	case insts.OpLw:
		p.regFile.Write(inst.Rt, p.mem.Result)
	}

	p.wb = WBSlot{Valid: true, Inst: inst, Result: p.mem.Result}
	if inst.Op != insts.OpNop {
		p.stats.Instructions++
	}
	p.mem.Clear()
}

// advanceMemory performs the data memory access for the EX slot's
// instruction and moves it into MEM. Unaligned or out-of-range addresses
// have no effect.
func (p *Pipeline) advanceMemory() {
	if !p.ex.Valid {
		return
	}

	inst := p.ex.Inst
	result := p.ex.Result

	switch inst.Op {
	case insts.OpLw:
		addr := p.regFile.Read(inst.Rs) + inst.Offset
		if v, ok := p.memory.Read(addr); ok {
			result = v
		} else {
			log.Engine.Debug().Int64("addr", addr).Msg("lw ignored: invalid address")
		}
	case insts.OpSw:
		addr := p.regFile.Read(inst.Rs) + inst.Offset
		if !p.memory.Write(addr, p.regFile.Read(inst.Rt)) {
			log.Engine.Debug().Int64("addr", addr).Msg("sw ignored: invalid address")
		}
	}

	p.mem = MEMSlot{Valid: true, Inst: inst, Result: result}
	p.ex.Clear()
}

// advanceExecute computes on the (possibly forwarded) cached operand values
// and moves the ID slot into EX. The beq comparison here is informational;
// the branch was already resolved in decode.
func (p *Pipeline) advanceExecute() {
	if !p.id.Valid {
		return
	}

	inst := p.id.Inst
	next := EXSlot{Valid: true, Inst: inst}

	switch inst.Op {
	case insts.OpAdd:
		next.Result = p.id.RsValue + p.id.RtValue
	case insts.OpSub:
		next.Result = p.id.RsValue - p.id.RtValue
	case insts.OpMul:
		next.Result = p.id.RsValue * p.id.RtValue
	case insts.OpBeq:
		next.Equal = p.id.RsValue == p.id.RtValue
		if next.Equal {
			next.Result = 1
		}
	}

	p.ex = next
	p.id.Clear()
}

// advanceDecode resolves control flow for the IF slot's instruction, updates
// the PC, and moves the (possibly squashed) content into ID with its source
// operand values read from the register file.
//
// The engine PC still holds the instruction's own address here: fetch never
// advances the PC, decode does, and the fetch that delivered this
// instruction happened after the previous decode set the PC to its address.
// That makes p.pc the predictor key for branches.
func (p *Pipeline) advanceDecode() {
	if !p.ifs.Valid {
		return
	}

	orig := p.ifs.Inst
	moved := orig

	switch orig.Op {
	case insts.OpBeq:
		predicted := p.predictor.Predict(p.pc)
		actual := p.regFile.Read(orig.Rs) == p.regFile.Read(orig.Rt)
		p.predictor.Update(p.pc, actual)

		if predicted != actual {
			moved = insts.Nop
			p.stats.Squashes++
			log.Engine.Debug().
				Uint64("pc", p.pc).
				Bool("taken", actual).
				Msg("branch mispredicted, squashing")
		}
		if actual {
			p.pc = uint64(orig.Offset) * 4
		} else {
			p.pc += 4
		}

	case insts.OpJ:
		moved = insts.Nop
		p.stats.Squashes++
		p.pc = orig.Target * 4

	default:
		p.pc += 4
	}

	next := IDSlot{Valid: true, Inst: moved}
	switch moved.Format {
	case insts.FormatR, insts.FormatI:
		next.RsValue = p.regFile.Read(moved.Rs)
		next.RtValue = p.regFile.Read(moved.Rt)
	}

	p.id = next
	p.ifs.Clear()
}

// advanceFetch fetches the instruction at the PC unless the stall flag is
// set. Holes in the instruction store leave the slot empty; that is not a
// fault.
func (p *Pipeline) advanceFetch() {
	if p.stalled || p.program == nil {
		return
	}

	inst, ok := p.program.At(p.pc)
	if !ok {
		return
	}
	p.ifs = IFSlot{Valid: true, Inst: inst}
}

// clearSlots empties all five stage slots.
func (p *Pipeline) clearSlots() {
	p.ifs.Clear()
	p.id.Clear()
	p.ex.Clear()
	p.mem.Clear()
	p.wb.Clear()
}

// Reset returns the pipeline to its initial-construction state: slots, PC,
// cycle count, stall flag, statistics, predictor table and instruction
// store all cleared. The register file and memory are owned by the caller
// and are not touched here.
func (p *Pipeline) Reset() {
	p.clearSlots()
	p.pc = 0
	p.cycle = 0
	p.stalled = false
	p.hazard = HazardNone
	p.stats = Statistics{}
	p.predictor.Reset()
	p.program = nil
}
