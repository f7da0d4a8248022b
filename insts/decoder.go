package insts

import "fmt"

// Class is the instruction class held in bits [27:26].
type Class uint8

// Instruction classes.
const (
	ClassALU    Class = 0
	ClassMemory Class = 1
	ClassBranch Class = 2
	ClassNoOp   Class = 3
)

func (c Class) String() string {
	switch c {
	case ClassALU:
		return "ALU"
	case ClassMemory:
		return "MEM"
	case ClassBranch:
		return "BR"
	case ClassNoOp:
		return "NOP"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// Op is an ALU opcode, bits [24:21] of an ALU instruction.
type Op uint8

// ALU opcodes.
const (
	OpAND Op = iota // Rd = Rn & Op2
	OpEOR           // Rd = Rn ^ Op2
	OpSUB           // Rd = Rn - Op2
	OpRSB           // Rd = Op2 - Rn
	OpADD           // Rd = Rn + Op2
	OpADC           // Rd = Rn + Op2 + C
	OpSBC           // Rd = Rn - Op2 + C - 1
	OpRSC           // Rd = Op2 - Rn + C - 1
	OpTST           // flags of Rn & Op2
	OpTEQ           // flags of Rn ^ Op2
	OpCMP           // flags of Rn - Op2
	OpCMN           // flags of Rn + Op2
	OpORR           // Rd = Rn | Op2
	OpMOV           // Rd = Op2
	OpBIC           // Rd = Rn &^ Op2
	OpMVN           // Rd = ^Op2
)

var opNames = [...]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// IsCompare reports whether the opcode only updates flags (TST..CMN).
func (o Op) IsCompare() bool {
	return o >= OpTST && o <= OpCMN
}

// IsArithmetic reports whether the opcode goes through the adder, so that
// C and V come from the sum rather than from the shifter.
func (o Op) IsArithmetic() bool {
	switch o {
	case OpSUB, OpRSB, OpADD, OpADC, OpSBC, OpRSC, OpCMP, OpCMN:
		return true
	default:
		return false
	}
}

// Cond represents a condition code.
type Cond uint8

// Condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set (C == 1)
	CondCC Cond = 0b0011 // Carry Clear (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always
	CondNV Cond = 0b1111 // Never
)

var condNames = [...]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL", "NV",
}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return fmt.Sprintf("Cond(%d)", uint8(c))
}

// ShiftType represents a barrel shifter operation.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right
)

// Register aliases.
const (
	RegSP uint8 = 13
	RegLR uint8 = 14
	RegPC uint8 = 15
)

// Sentinel is the all-ones word that marks the end of an instruction stream.
const Sentinel uint32 = 0xFFFFFFFF

// Instruction represents a decoded instruction word.
type Instruction struct {
	Word  uint32
	Cond  Cond
	Class Class
	Op    Op // ALU only

	// Register operands and whether the instruction uses them.
	Rd     uint8 // destination (ALU, load), store source, PC for branches
	Rn     uint8 // first operand, memory base
	Rm     uint8 // second operand, register offset, branch target
	Rs     uint8 // shift amount register
	RdUsed bool
	RnUsed bool
	RmUsed bool
	RsUsed bool

	// Imm is the ALU imm8 (zero-extended), the memory offset (sign-extended
	// 12 bits) or the branch word offset (sign-extended 24 bits).
	Imm    int32
	Rotate uint8 // ALU immediate rotation, applied as ROR 2*Rotate

	ShiftType   ShiftType
	ShiftAmount uint8

	RegOperand bool // bit 25: register operand / register offset / register target
	ShiftByReg bool // ALU register form shifted by Rs

	SetFlags  bool
	PreIndex  bool
	AddOffset bool
	WriteBack bool
	Load      bool
	Link      bool
}

// Registers returns every register index the instruction reads or writes.
func (i *Instruction) Registers() []uint8 {
	regs := make([]uint8, 0, 5)
	if i.RdUsed {
		regs = append(regs, i.Rd)
	}
	if i.RnUsed {
		regs = append(regs, i.Rn)
	}
	if i.RmUsed {
		regs = append(regs, i.Rm)
	}
	if i.RsUsed {
		regs = append(regs, i.Rs)
	}
	if i.Link {
		regs = append(regs, RegLR)
	}
	return regs
}

func (i *Instruction) String() string {
	switch i.Class {
	case ClassALU:
		if i.RegOperand {
			return fmt.Sprintf("%v R%d, R%d, R%d", i.Op, i.Rd, i.Rn, i.Rm)
		}
		return fmt.Sprintf("%v R%d, R%d, #%d", i.Op, i.Rd, i.Rn, i.Imm)
	case ClassMemory:
		name := "STR"
		if i.Load {
			name = "LDR"
		}
		return fmt.Sprintf("%s R%d, [R%d, #%d]", name, i.Rd, i.Rn, i.Imm)
	case ClassBranch:
		name := "B"
		if i.Link {
			name = "BL"
		}
		if i.RegOperand {
			return fmt.Sprintf("%sX R%d", name, i.Rm)
		}
		return fmt.Sprintf("%s %+d", name, i.Imm)
	default:
		return "NOP"
	}
}

// Decoder decodes instruction words.
type Decoder struct{}

// NewDecoder creates a new instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word. The class field is two bits
// wide, so every word decodes to one of the four classes.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Word:  word,
		Cond:  Cond(FieldCond.Get(word)),
		Class: Class(FieldClass.Get(word)),
	}

	switch inst.Class {
	case ClassALU:
		d.decodeALU(word, inst)
	case ClassMemory:
		d.decodeMemory(word, inst)
	case ClassBranch:
		d.decodeBranch(word, inst)
	}

	return inst
}

// decodeALU decodes data processing instructions.
// Format: cond | 00 | I | opcode | S | Rd | Rn | operand2
func (d *Decoder) decodeALU(word uint32, inst *Instruction) {
	inst.Op = Op(aluOpcode.Get(word))
	inst.SetFlags = aluSetFlags.Flag(word)
	inst.Rd = uint8(aluRd.Get(word))
	inst.Rn = uint8(aluRn.Get(word))
	inst.RdUsed = !inst.Op.IsCompare()
	inst.RnUsed = inst.Op != OpMOV && inst.Op != OpMVN
	inst.RegOperand = aluRegOperand.Flag(word)

	if !inst.RegOperand {
		inst.Imm = aluImm8.GetSigned(word)
		inst.Rotate = uint8(aluRotate.Get(word))
		return
	}

	inst.Rm = uint8(aluRm.Get(word))
	inst.RmUsed = true
	inst.ShiftType = ShiftType(aluShiftType.Get(word))
	inst.ShiftByReg = aluShiftByReg.Flag(word)
	if inst.ShiftByReg {
		inst.Rs = uint8(aluRs.Get(word))
		inst.RsUsed = true
	} else {
		inst.ShiftAmount = uint8(aluShiftImm.Get(word))
	}
}

// decodeMemory decodes load/store instructions.
// Format: cond | 01 | I | P | U | W | L | Rn | Rd | offset
func (d *Decoder) decodeMemory(word uint32, inst *Instruction) {
	inst.PreIndex = memPreIndex.Flag(word)
	inst.AddOffset = memAddOffset.Flag(word)
	inst.WriteBack = memWriteBack.Flag(word)
	inst.Load = memLoad.Flag(word)
	inst.Rn = uint8(memRn.Get(word))
	inst.Rd = uint8(memRd.Get(word))
	inst.RnUsed = true
	inst.RdUsed = true
	inst.RegOperand = memRegOffset.Flag(word)

	if !inst.RegOperand {
		inst.Imm = memOffset.GetSigned(word)
		return
	}

	inst.Rm = uint8(memRm.Get(word))
	inst.RmUsed = true
	inst.ShiftType = ShiftType(memShiftType.Get(word))
	inst.ShiftAmount = uint8(memShiftAmount.Get(word))
}

// decodeBranch decodes branch instructions. The destination is always PC.
// Format: cond | 10 | I | L | offset24 (or Rm)
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	inst.Link = brLink.Flag(word)
	inst.RegOperand = brRegTarget.Flag(word)
	inst.Rd = RegPC
	inst.RdUsed = true
	inst.WriteBack = true

	if inst.RegOperand {
		inst.Rm = uint8(brRm.Get(word))
		inst.RmUsed = true
		return
	}

	inst.Imm = brOffset.GetSigned(word)
}
