// Package emu provides the architectural state of the simulated machine:
// the register file and the data memory.
package emu

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// RegFile represents the register file: 32 signed integer registers
// $s0-$s31. Register 0 is an ordinary slot; this machine has no hardwired
// zero register.
type RegFile struct {
	// S holds the registers, indexed 0..31.
	S [NumRegs]int64
}

// Read returns the value of a register. Out-of-range indices read as 0.
func (r *RegFile) Read(reg uint8) int64 {
	if reg >= NumRegs {
		return 0
	}
	return r.S[reg]
}

// Write sets the value of a register. Out-of-range indices are ignored.
func (r *RegFile) Write(reg uint8, value int64) {
	if reg >= NumRegs {
		return
	}
	r.S[reg] = value
}

// Reset clears every register to 0.
func (r *RegFile) Reset() {
	r.S = [NumRegs]int64{}
}
