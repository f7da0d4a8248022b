// Package emu provides the architectural state and combinational datapath
// of the simulated processor: the register file, the condition flags, the
// barrel shifter and the ALU.
package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/isasim/insts"
)

// NumRegs is the number of general registers.
const NumRegs = 16

// RegFile represents the register file.
// R[13] is the stack pointer, R[14] the link register and R[15] the program
// counter.
type RegFile struct {
	// R holds the general registers R0-R15.
	R [NumRegs]uint32

	// PSTATE holds the processor state flags.
	PSTATE PSTATE
}

// PSTATE represents the processor state flags.
type PSTATE struct {
	// N is the negative flag.
	N bool
	// Z is the zero flag.
	Z bool
	// C is the carry flag.
	C bool
	// V is the overflow flag.
	V bool
}

// ReadReg reads a register value. Only the low four bits of reg are used.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&0xF]
}

// WriteReg writes a value to a register.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg&0xF] = value
}

// PC returns the program counter.
func (r *RegFile) PC() uint32 {
	return r.R[insts.RegPC]
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(pc uint32) {
	r.R[insts.RegPC] = pc
}

// SP returns the stack pointer.
func (r *RegFile) SP() uint32 {
	return r.R[insts.RegSP]
}

// LR returns the link register.
func (r *RegFile) LR() uint32 {
	return r.R[insts.RegLR]
}

// Reset clears every register and flag.
func (r *RegFile) Reset() {
	*r = RegFile{}
}

// Dump writes the registers and flags in a fixed four-column layout.
func (r *RegFile) Dump(w io.Writer) {
	for i := 0; i < NumRegs; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Fprintf(w, "%-4s 0x%08X  ", regName(j), r.R[j])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "NZCV %v\n", r.PSTATE)
}

func regName(i int) string {
	switch uint8(i) {
	case insts.RegSP:
		return "SP"
	case insts.RegLR:
		return "LR"
	case insts.RegPC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", i)
	}
}

func (p PSTATE) String() string {
	b := []byte("----")
	if p.N {
		b[0] = 'N'
	}
	if p.Z {
		b[1] = 'Z'
	}
	if p.C {
		b[2] = 'C'
	}
	if p.V {
		b[3] = 'V'
	}
	return string(b)
}
