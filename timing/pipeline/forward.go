package pipeline

import "github.com/sarchlab/mipssim/insts"

// ForwardSource indicates where a forwarded operand value comes from.
type ForwardSource int

const (
	// ForwardNone means the cached register-file value is used unchanged.
	ForwardNone ForwardSource = iota
	// ForwardFromEX means the value comes from the execute-stage result.
	ForwardFromEX
	// ForwardFromMEM means the value comes from the memory-stage result.
	ForwardFromMEM
)

// ForwardingResult records the forwarding decision for both source operands
// of the decode-stage instruction.
type ForwardingResult struct {
	Rs ForwardSource
	Rt ForwardSource
}

// Any reports whether at least one operand was forwarded.
func (r ForwardingResult) Any() bool {
	return r.Rs != ForwardNone || r.Rt != ForwardNone
}

// ForwardingUnit rewrites the decode slot's cached operand values with
// results held by later stages. It runs once per cycle before hazard
// detection and stage advancement, so the current cycle's execute sees the
// forwarded values.
//
// Only R-type producers forward; a load's value is not available until
// after the memory stage and is not bypassed in this model. When both the
// EX and MEM slots could supply the same register, EX wins: it holds the
// younger instruction's result.
type ForwardingUnit struct{}

// NewForwardingUnit creates a forwarding unit.
func NewForwardingUnit() *ForwardingUnit {
	return &ForwardingUnit{}
}

// Apply rewrites the ID slot's cached rs/rt values in place and returns the
// decision that was applied.
func (f *ForwardingUnit) Apply(id *IDSlot, ex *EXSlot, mem *MEMSlot) ForwardingResult {
	result := ForwardingResult{Rs: ForwardNone, Rt: ForwardNone}

	if !id.Valid {
		return result
	}

	if usesRs(id.Inst) {
		if src, value := f.lookup(id.Inst.Rs, ex, mem); src != ForwardNone {
			id.RsValue = value
			result.Rs = src
		}
	}
	if usesRt(id.Inst) {
		if src, value := f.lookup(id.Inst.Rt, ex, mem); src != ForwardNone {
			id.RtValue = value
			result.Rt = src
		}
	}

	return result
}

// lookup finds the youngest in-flight R-type result for the given register.
// EX has precedence over MEM.
func (f *ForwardingUnit) lookup(reg uint8, ex *EXSlot, mem *MEMSlot) (ForwardSource, int64) {
	if ex.Valid && ex.Inst.Format == insts.FormatR && ex.Inst.Rd == reg {
		return ForwardFromEX, ex.Result
	}
	if mem.Valid && mem.Inst.Format == insts.FormatR && mem.Inst.Rd == reg {
		return ForwardFromMEM, mem.Result
	}
	return ForwardNone, 0
}

// usesRs reports whether the instruction reads its rs field.
func usesRs(i *insts.Instruction) bool {
	switch i.Op {
	case insts.OpAdd, insts.OpSub, insts.OpMul, insts.OpLw, insts.OpSw, insts.OpBeq:
		return true
	default:
		return false
	}
}

// usesRt reports whether the instruction reads its rt field. For lw the rt
// field is the destination, not a source.
func usesRt(i *insts.Instruction) bool {
	switch i.Op {
	case insts.OpAdd, insts.OpSub, insts.OpMul, insts.OpSw, insts.OpBeq:
		return true
	default:
		return false
	}
}
