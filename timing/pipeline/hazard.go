package pipeline

import (
	"strings"

	"github.com/sarchlab/mipssim/insts"
)

// Hazard is a set of hazard conditions detected in one cycle.
type Hazard uint8

const (
	// HazardStructural marks a resource conflict: two memory-accessing
	// instructions contending for the memory port, or two multiplies
	// contending for the single multiply unit.
	HazardStructural Hazard = 1 << iota
	// HazardData marks a read-after-write dependency between the decode
	// and execute stages.
	HazardData
	// HazardControl marks a branch or jump resident in decode.
	HazardControl
)

// HazardNone is the empty hazard set.
const HazardNone Hazard = 0

// Has reports whether the set contains the given condition.
func (h Hazard) Has(flag Hazard) bool {
	return h&flag != 0
}

// String renders the hazard set, e.g. "data|control" or "none".
func (h Hazard) String() string {
	if h == HazardNone {
		return "none"
	}
	var parts []string
	if h.Has(HazardStructural) {
		parts = append(parts, "structural")
	}
	if h.Has(HazardData) {
		parts = append(parts, "data")
	}
	if h.Has(HazardControl) {
		parts = append(parts, "control")
	}
	return strings.Join(parts, "|")
}

// HazardUnit detects hazards from the current stage slots. It is a pure
// function of the snapshot: it never mutates state.
//
// The unit is advisory only. The engine turns a nonzero result into the
// stall flag gating fetch; it does not insert bubbles for data or
// structural hazards. This is a documented limitation of the model, kept so
// observable cycle counts stay stable.
type HazardUnit struct{}

// NewHazardUnit creates a hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// Detect evaluates all three hazard checks against the current slots and
// returns their disjunction.
func (h *HazardUnit) Detect(ifs *IFSlot, id *IDSlot, ex *EXSlot, mem *MEMSlot) Hazard {
	result := HazardNone

	if h.detectStructural(ifs, id, ex, mem) {
		result |= HazardStructural
	}
	if h.detectData(id, ex) {
		result |= HazardData
	}
	if h.detectControl(id) {
		result |= HazardControl
	}

	return result
}

// detectStructural checks for memory-port and multiply-unit conflicts.
func (h *HazardUnit) detectStructural(ifs *IFSlot, id *IDSlot, ex *EXSlot, mem *MEMSlot) bool {
	if mem.Valid && mem.Inst.IsMemOp() && ifs.Valid && ifs.Inst.IsMemOp() {
		return true
	}
	if ex.Valid && ex.Inst.Op == insts.OpMul && id.Valid && id.Inst.Op == insts.OpMul {
		return true
	}
	return false
}

// detectData checks whether the decode-stage instruction reads the register
// the execute-stage instruction will write (R-type rd, or the rt of a load).
func (h *HazardUnit) detectData(id *IDSlot, ex *EXSlot) bool {
	if !ex.Valid || !id.Valid {
		return false
	}

	dest, ok := ex.Inst.DestReg()
	if !ok {
		return false
	}
	return id.Inst.ReadsReg(dest)
}

// detectControl treats every branch or jump in decode as hazardous,
// independent of the prediction outcome.
func (h *HazardUnit) detectControl(id *IDSlot) bool {
	return id.Valid && id.Inst.IsControl()
}
