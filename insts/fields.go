package insts

// Field describes one bit field of an instruction word.
type Field struct {
	Name   string
	Offset uint8 // position of the least significant bit
	Width  uint8
	Signed bool // sign-extend on extraction
}

func (f Field) mask() uint32 {
	return (uint32(1) << f.Width) - 1
}

// Get returns the raw, zero-extended field value.
func (f Field) Get(word uint32) uint32 {
	return (word >> f.Offset) & f.mask()
}

// GetSigned returns the field value, sign-extended when the field is signed.
func (f Field) GetSigned(word uint32) int32 {
	v := f.Get(word)
	if !f.Signed {
		return int32(v)
	}
	shift := 32 - f.Width
	return int32(v<<shift) >> shift
}

// Flag reports whether a single-bit field is set.
func (f Field) Flag(word uint32) bool {
	return f.Get(word) != 0
}

// Set stores value into the field and returns the new word. Bits of value
// beyond the field width are dropped.
func (f Field) Set(word, value uint32) uint32 {
	word &^= f.mask() << f.Offset
	return word | (value&f.mask())<<f.Offset
}

// SetFlag stores a single-bit field.
func (f Field) SetFlag(word uint32, on bool) uint32 {
	if on {
		return f.Set(word, 1)
	}
	return f.Set(word, 0)
}

// Fields common to every class.
var (
	FieldCond  = Field{Name: "cond", Offset: 28, Width: 4}
	FieldClass = Field{Name: "class", Offset: 26, Width: 2}
)

// ALU fields.
var (
	aluRegOperand = Field{Name: "I", Offset: 25, Width: 1}
	aluOpcode     = Field{Name: "opcode", Offset: 21, Width: 4}
	aluSetFlags   = Field{Name: "S", Offset: 20, Width: 1}
	aluRd         = Field{Name: "rd", Offset: 16, Width: 4}
	aluRn         = Field{Name: "rn", Offset: 12, Width: 4}
	aluRs         = Field{Name: "rs", Offset: 8, Width: 4}
	aluShiftImm   = Field{Name: "shift_imm", Offset: 7, Width: 5}
	aluShiftType  = Field{Name: "shift_type", Offset: 5, Width: 2}
	aluShiftByReg = Field{Name: "T", Offset: 4, Width: 1}
	aluRm         = Field{Name: "rm", Offset: 0, Width: 4}
	aluRotate     = Field{Name: "rotate", Offset: 8, Width: 4}
	aluImm8       = Field{Name: "imm8", Offset: 0, Width: 8}
)

// Memory fields.
var (
	memRegOffset   = Field{Name: "I", Offset: 25, Width: 1}
	memPreIndex    = Field{Name: "P", Offset: 24, Width: 1}
	memAddOffset   = Field{Name: "U", Offset: 23, Width: 1}
	memWriteBack   = Field{Name: "W", Offset: 22, Width: 1}
	memLoad        = Field{Name: "L", Offset: 21, Width: 1}
	memRn          = Field{Name: "rn", Offset: 17, Width: 4}
	memRd          = Field{Name: "rd", Offset: 13, Width: 4}
	memShiftAmount = Field{Name: "shift_amount", Offset: 8, Width: 5}
	memShiftType   = Field{Name: "shift_type", Offset: 6, Width: 2}
	memRm          = Field{Name: "rm", Offset: 0, Width: 4}
	memOffset      = Field{Name: "offset", Offset: 0, Width: 12, Signed: true}
)

// Branch fields.
var (
	brRegTarget = Field{Name: "I", Offset: 25, Width: 1}
	brLink      = Field{Name: "L", Offset: 24, Width: 1}
	brOffset    = Field{Name: "offset", Offset: 0, Width: 24, Signed: true}
	brRm        = Field{Name: "rm", Offset: 0, Width: 4}
)

// Layouts lists the fields of each instruction class. Alternative encodings
// of the same bits (immediate vs. register operand) are both listed.
var Layouts = map[Class][]Field{
	ClassALU: {
		FieldCond, FieldClass, aluRegOperand, aluOpcode, aluSetFlags,
		aluRd, aluRn, aluRs, aluShiftImm, aluShiftType, aluShiftByReg,
		aluRm, aluRotate, aluImm8,
	},
	ClassMemory: {
		FieldCond, FieldClass, memRegOffset, memPreIndex, memAddOffset,
		memWriteBack, memLoad, memRn, memRd, memShiftAmount, memShiftType,
		memRm, memOffset,
	},
	ClassBranch: {
		FieldCond, FieldClass, brRegTarget, brLink, brOffset, brRm,
	},
	ClassNoOp: {FieldCond, FieldClass},
}
