// Package asm translates the textual assembly format into an
// address-indexed instruction store.
//
// The format is line oriented: one instruction per line, `#` starts a
// comment, and a `label:` prefix binds the label to the address of the
// instruction that follows it. Registers are written `$sN` with N in 0..31.
// Branch and jump operands may be a known label or a literal absolute
// instruction index.
//
// Assembly is two-pass because branch targets may forward-reference labels.
// Malformed lines are never fatal: they are recorded as rejected and leave a
// hole at their address, and addresses keep advancing as if a NOP had been
// consumed.
package asm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/mipssim/insts"
	"github.com/sarchlab/mipssim/log"
)

var (
	labelRe      = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	registerRe   = regexp.MustCompile(`^\$s([0-9]{1,2})$`)
	memOperandRe = regexp.MustCompile(`^(-?[0-9]+)\((\$s[0-9]{1,2})\)$`)
)

// RejectedLine records a source line that failed to parse.
type RejectedLine struct {
	// Line is the 1-based source line number.
	Line int
	// Text is the instruction text after comment/label stripping.
	Text string
	// Reason describes why the line was rejected.
	Reason string
}

// Program is an immutable instruction store produced by Assemble.
type Program struct {
	store    map[uint64]*insts.Instruction
	labels   map[string]uint64
	end      uint64
	accepted int
	rejected []RejectedLine
}

// At returns the instruction at the given byte address. Holes (rejected
// lines, addresses past the program) report ok=false.
func (p *Program) At(addr uint64) (*insts.Instruction, bool) {
	inst, ok := p.store[addr]
	return inst, ok
}

// End returns the byte address just past the last consumed instruction slot.
func (p *Program) End() uint64 {
	return p.end
}

// NumInstructions returns the number of accepted instructions.
func (p *Program) NumInstructions() int {
	return p.accepted
}

// Empty reports whether no instruction was accepted. Callers surface this
// as a warning; it is not an error.
func (p *Program) Empty() bool {
	return p.accepted == 0
}

// Labels returns a copy of the label table, mapping label names to absolute
// instruction indices.
func (p *Program) Labels() map[string]uint64 {
	out := make(map[string]uint64, len(p.labels))
	for k, v := range p.labels {
		out[k] = v
	}
	return out
}

// Rejected returns the lines that failed to parse.
func (p *Program) Rejected() []RejectedLine {
	return p.rejected
}

// Assemble translates source text into a Program. It never fails: malformed
// lines are rejected individually and an entirely malformed source yields an
// empty program.
func Assemble(source string) *Program {
	lines := strings.Split(source, "\n")

	p := &Program{
		store:  make(map[uint64]*insts.Instruction),
		labels: make(map[string]uint64),
	}

	// Pass 1: bind labels to instruction indices.
	addr := uint64(0)
	for _, raw := range lines {
		text := stripLine(raw)
		for {
			m := labelRe.FindStringSubmatch(text)
			if m == nil {
				break
			}
			p.labels[m[1]] = addr / 4
			text = strings.TrimSpace(m[2])
		}
		if text != "" {
			addr += 4
		}
	}

	// Pass 2: parse instructions with the label table available.
	addr = 0
	for lineNo, raw := range lines {
		text := stripLine(raw)
		for {
			m := labelRe.FindStringSubmatch(text)
			if m == nil {
				break
			}
			text = strings.TrimSpace(m[2])
		}
		if text == "" {
			continue
		}

		inst, err := parseInstruction(text, p.labels)
		if err != nil {
			p.rejected = append(p.rejected, RejectedLine{
				Line:   lineNo + 1,
				Text:   text,
				Reason: err.Error(),
			})
			log.Loader.Debug().
				Int("line", lineNo+1).
				Str("text", text).
				Err(err).
				Msg("rejected instruction")
		} else {
			p.store[addr] = inst
			p.accepted++
		}
		addr += 4
	}
	p.end = addr

	if p.Empty() {
		log.Loader.Warn().Msg("program contains no valid instructions")
	}
	return p
}

// stripLine removes the comment and surrounding whitespace from a raw line.
func stripLine(raw string) string {
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// parseInstruction parses one instruction text with the label table
// available for beq/j operands.
func parseInstruction(text string, labels map[string]uint64) (*insts.Instruction, error) {
	fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
	op := strings.ToLower(fields[0])

	switch op {
	case "add", "sub", "mul":
		return parseRType(op, fields)
	case "lw", "sw":
		return parseMemOp(op, fields)
	case "beq":
		return parseBranch(fields, labels)
	case "j":
		return parseJump(fields, labels)
	case "nop":
		if len(fields) != 1 {
			return nil, fmt.Errorf("nop takes no operands")
		}
		return insts.Nop, nil
	default:
		return nil, fmt.Errorf("unknown mnemonic %q", fields[0])
	}
}

func parseRType(op string, fields []string) (*insts.Instruction, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("%s expects 3 operands, got %d", op, len(fields)-1)
	}
	rd, err := parseRegister(fields[1])
	if err != nil {
		return nil, err
	}
	rs, err := parseRegister(fields[2])
	if err != nil {
		return nil, err
	}
	rt, err := parseRegister(fields[3])
	if err != nil {
		return nil, err
	}

	var o insts.Op
	switch op {
	case "add":
		o = insts.OpAdd
	case "sub":
		o = insts.OpSub
	case "mul":
		o = insts.OpMul
	}
	return insts.NewRType(o, rd, rs, rt), nil
}

func parseMemOp(op string, fields []string) (*insts.Instruction, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("%s expects 2 operands, got %d", op, len(fields)-1)
	}
	rt, err := parseRegister(fields[1])
	if err != nil {
		return nil, err
	}

	m := memOperandRe.FindStringSubmatch(fields[2])
	if m == nil {
		return nil, fmt.Errorf("malformed memory operand %q", fields[2])
	}
	offset, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed offset %q", m[1])
	}
	rs, err := parseRegister(m[2])
	if err != nil {
		return nil, err
	}

	o := insts.OpLw
	if op == "sw" {
		o = insts.OpSw
	}
	return insts.NewMemOp(o, rt, rs, offset), nil
}

func parseBranch(fields []string, labels map[string]uint64) (*insts.Instruction, error) {
	if len(fields) != 4 {
		return nil, fmt.Errorf("beq expects 3 operands, got %d", len(fields)-1)
	}
	rs, err := parseRegister(fields[1])
	if err != nil {
		return nil, err
	}
	rt, err := parseRegister(fields[2])
	if err != nil {
		return nil, err
	}

	if index, ok := labels[fields[3]]; ok {
		return insts.NewBranch(rs, rt, int64(index), fields[3]), nil
	}
	offset, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unknown branch target %q", fields[3])
	}
	return insts.NewBranch(rs, rt, offset, ""), nil
}

func parseJump(fields []string, labels map[string]uint64) (*insts.Instruction, error) {
	if len(fields) != 2 {
		return nil, fmt.Errorf("j expects 1 operand, got %d", len(fields)-1)
	}

	if index, ok := labels[fields[1]]; ok {
		return insts.NewJump(index, fields[1]), nil
	}
	target, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || target < 0 {
		return nil, fmt.Errorf("unknown jump target %q", fields[1])
	}
	return insts.NewJump(uint64(target), ""), nil
}

// parseRegister parses a `$sN` token with N in 0..31.
func parseRegister(tok string) (uint8, error) {
	m := registerRe.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("invalid register token %q", tok)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 31 {
		return 0, fmt.Errorf("register index out of range in %q", tok)
	}
	return uint8(n), nil
}
