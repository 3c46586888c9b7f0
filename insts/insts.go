// Package insts provides the instruction model for the simulated machine.
//
// The machine executes a small MIPS-style subset: register arithmetic
// (ADD, SUB, MUL), word load/store (LW, SW), conditional branch (BEQ),
// unconditional jump (J) and NOP. Instructions are built once by the
// assembler and are shared read-only by every pipeline stage they pass
// through.
//
// Usage:
//
//	inst := insts.NewRType(insts.OpAdd, 1, 2, 3) // add $s1, $s2, $s3
//	fmt.Println(inst.String())
package insts

import "fmt"

// Format identifies the shape of an instruction.
type Format uint8

const (
	// FormatNop is the empty instruction (pipeline bubble).
	FormatNop Format = iota
	// FormatR is register arithmetic: op rd, rs, rt.
	FormatR
	// FormatI is immediate/offset form: lw, sw, beq.
	FormatI
	// FormatJ is the unconditional jump.
	FormatJ
)

// Op identifies the operation an instruction performs.
type Op uint8

const (
	// OpNop does nothing.
	OpNop Op = iota
	// OpAdd computes rd = rs + rt.
	OpAdd
	// OpSub computes rd = rs - rt.
	OpSub
	// OpMul computes rd = rs * rt.
	OpMul
	// OpLw loads a memory word into rt.
	OpLw
	// OpSw stores rt to a memory word.
	OpSw
	// OpBeq branches when rs == rt.
	OpBeq
	// OpJ jumps unconditionally.
	OpJ
)

// String returns the assembly mnemonic for the operation.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpLw:
		return "lw"
	case OpSw:
		return "sw"
	case OpBeq:
		return "beq"
	case OpJ:
		return "j"
	case OpNop:
		return "nop"
	default:
		return "unknown"
	}
}

// Instruction is an immutable description of one decoded operation.
//
// Field usage depends on Format:
//   - FormatR: Op, Rs, Rt, Rd
//   - FormatI (lw/sw): Op, Rs (base), Rt, Offset (byte displacement)
//   - FormatI (beq): Op, Rs, Rt, Offset (absolute instruction index)
//   - FormatJ: Target (absolute instruction index)
//   - FormatNop: nothing
//
// Label preserves the original label operand of beq/j for display only; it
// has no behavioral effect.
type Instruction struct {
	Format Format
	Op     Op

	Rs uint8
	Rt uint8
	Rd uint8

	// Offset is a byte displacement for lw/sw and a resolved absolute
	// instruction index for beq.
	Offset int64

	// Target is the resolved absolute instruction index for j.
	Target uint64

	// Label is the original label token, if the operand was a label.
	Label string
}

// Nop is the canonical NOP. Every pipeline bubble reuses this one value
// instead of allocating ad-hoc empties.
var Nop = &Instruction{Format: FormatNop, Op: OpNop}

// NewRType builds a register-arithmetic instruction.
func NewRType(op Op, rd, rs, rt uint8) *Instruction {
	return &Instruction{Format: FormatR, Op: op, Rd: rd, Rs: rs, Rt: rt}
}

// NewMemOp builds a load or store instruction with a byte displacement.
func NewMemOp(op Op, rt, rs uint8, offset int64) *Instruction {
	return &Instruction{Format: FormatI, Op: op, Rt: rt, Rs: rs, Offset: offset}
}

// NewBranch builds a beq instruction. The offset is an absolute instruction
// index; label may be empty.
func NewBranch(rs, rt uint8, offset int64, label string) *Instruction {
	return &Instruction{
		Format: FormatI,
		Op:     OpBeq,
		Rs:     rs,
		Rt:     rt,
		Offset: offset,
		Label:  label,
	}
}

// NewJump builds a j instruction. The target is an absolute instruction
// index; label may be empty.
func NewJump(target uint64, label string) *Instruction {
	return &Instruction{Format: FormatJ, Op: OpJ, Target: target, Label: label}
}

// IsMemOp reports whether the instruction accesses data memory.
func (i *Instruction) IsMemOp() bool {
	return i.Op == OpLw || i.Op == OpSw
}

// IsControl reports whether the instruction redirects control flow.
func (i *Instruction) IsControl() bool {
	return i.Op == OpBeq || i.Op == OpJ
}

// DestReg returns the register the instruction writes at writeback, if any.
// R-type instructions write rd; lw writes rt.
func (i *Instruction) DestReg() (uint8, bool) {
	switch i.Op {
	case OpAdd, OpSub, OpMul:
		return i.Rd, true
	case OpLw:
		return i.Rt, true
	default:
		return 0, false
	}
}

// ReadsReg reports whether the instruction reads register r as a source
// operand. lw reads only its base register; its rt is a destination.
func (i *Instruction) ReadsReg(r uint8) bool {
	switch i.Op {
	case OpAdd, OpSub, OpMul, OpBeq, OpSw:
		return i.Rs == r || i.Rt == r
	case OpLw:
		return i.Rs == r
	default:
		return false
	}
}

// String renders the canonical textual form of the instruction.
func (i *Instruction) String() string {
	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%s $s%d, $s%d, $s%d", i.Op, i.Rd, i.Rs, i.Rt)
	case FormatI:
		if i.Op == OpBeq {
			if i.Label != "" {
				return fmt.Sprintf("beq $s%d, $s%d, %d(%s)", i.Rs, i.Rt, i.Offset, i.Label)
			}
			return fmt.Sprintf("beq $s%d, $s%d, %d", i.Rs, i.Rt, i.Offset)
		}
		return fmt.Sprintf("%s $s%d, %d($s%d)", i.Op, i.Rt, i.Offset, i.Rs)
	case FormatJ:
		if i.Label != "" {
			return fmt.Sprintf("j %d(%s)", i.Target, i.Label)
		}
		return fmt.Sprintf("j %d", i.Target)
	default:
		return "nop"
	}
}
