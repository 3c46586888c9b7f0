// Package pipeline provides the 5-stage pipeline model: stage slots, hazard
// detection, operand forwarding, branch prediction and the per-cycle engine.
package pipeline

import "github.com/sarchlab/mipssim/insts"

// IFSlot holds the raw fetched instruction.
type IFSlot struct {
	// Valid indicates the slot holds an instruction.
	Valid bool

	// Inst is the fetched instruction.
	Inst *insts.Instruction
}

// Clear resets the IF slot to empty.
func (s *IFSlot) Clear() {
	s.Valid = false
	s.Inst = nil
}

// IDSlot holds the decoded instruction with its cached source operand
// values. The cached values are the forwarding target: the forwarding unit
// rewrites them before the execute stage consumes the slot.
type IDSlot struct {
	Valid bool
	Inst  *insts.Instruction

	// RsValue and RtValue are the resolved source operand values. Operands
	// the instruction does not have default to 0.
	RsValue int64
	RtValue int64
}

// Clear resets the ID slot to empty.
func (s *IDSlot) Clear() {
	s.Valid = false
	s.Inst = nil
	s.RsValue = 0
	s.RtValue = 0
}

// EXSlot holds the instruction with its computed result.
type EXSlot struct {
	Valid bool
	Inst  *insts.Instruction

	// Result is the ALU result for R-type instructions. For beq it mirrors
	// Equal as 0/1.
	Result int64

	// Equal is the beq comparison outcome, kept for display. The branch
	// itself was already resolved in decode.
	Equal bool
}

// Clear resets the EX slot to empty.
func (s *EXSlot) Clear() {
	s.Valid = false
	s.Inst = nil
	s.Result = 0
	s.Equal = false
}

// MEMSlot holds the instruction with its result, possibly replaced by a
// loaded memory word.
type MEMSlot struct {
	Valid  bool
	Inst   *insts.Instruction
	Result int64
}

// Clear resets the MEM slot to empty.
func (s *MEMSlot) Clear() {
	s.Valid = false
	s.Inst = nil
	s.Result = 0
}

// WBSlot holds the instruction with the result actually committed.
type WBSlot struct {
	Valid  bool
	Inst   *insts.Instruction
	Result int64
}

// Clear resets the WB slot to empty.
func (s *WBSlot) Clear() {
	s.Valid = false
	s.Inst = nil
	s.Result = 0
}

// Snapshot is the immutable per-cycle view published by Step for rendering.
// Slot payloads are copies; the instructions they reference are shared and
// read-only.
type Snapshot struct {
	IF  IFSlot
	ID  IDSlot
	EX  EXSlot
	MEM MEMSlot
	WB  WBSlot

	// PC is the byte address of the next instruction to fetch.
	PC uint64

	// Cycle is the number of completed stage-steps.
	Cycle uint64

	// Hazard is the hazard set detected this cycle.
	Hazard Hazard

	// Stalled indicates fetch was gated this cycle.
	Stalled bool
}
