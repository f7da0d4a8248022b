package insts

// Encode packs a decoded instruction back into its word. It is the inverse
// of Decoder.Decode for every field the decoder extracts.
func Encode(inst *Instruction) uint32 {
	word := FieldCond.Set(0, uint32(inst.Cond))
	word = FieldClass.Set(word, uint32(inst.Class))

	switch inst.Class {
	case ClassALU:
		word = aluOpcode.Set(word, uint32(inst.Op))
		word = aluSetFlags.SetFlag(word, inst.SetFlags)
		word = aluRd.Set(word, uint32(inst.Rd))
		word = aluRn.Set(word, uint32(inst.Rn))
		word = aluRegOperand.SetFlag(word, inst.RegOperand)
		if !inst.RegOperand {
			word = aluImm8.Set(word, uint32(inst.Imm))
			word = aluRotate.Set(word, uint32(inst.Rotate))
			break
		}
		word = aluRm.Set(word, uint32(inst.Rm))
		word = aluShiftType.Set(word, uint32(inst.ShiftType))
		word = aluShiftByReg.SetFlag(word, inst.ShiftByReg)
		if inst.ShiftByReg {
			word = aluRs.Set(word, uint32(inst.Rs))
		} else {
			word = aluShiftImm.Set(word, uint32(inst.ShiftAmount))
		}

	case ClassMemory:
		word = memPreIndex.SetFlag(word, inst.PreIndex)
		word = memAddOffset.SetFlag(word, inst.AddOffset)
		word = memWriteBack.SetFlag(word, inst.WriteBack)
		word = memLoad.SetFlag(word, inst.Load)
		word = memRn.Set(word, uint32(inst.Rn))
		word = memRd.Set(word, uint32(inst.Rd))
		word = memRegOffset.SetFlag(word, inst.RegOperand)
		if !inst.RegOperand {
			word = memOffset.Set(word, uint32(inst.Imm))
			break
		}
		word = memRm.Set(word, uint32(inst.Rm))
		word = memShiftType.Set(word, uint32(inst.ShiftType))
		word = memShiftAmount.Set(word, uint32(inst.ShiftAmount))

	case ClassBranch:
		word = brLink.SetFlag(word, inst.Link)
		word = brRegTarget.SetFlag(word, inst.RegOperand)
		if inst.RegOperand {
			word = brRm.Set(word, uint32(inst.Rm))
		} else {
			word = brOffset.Set(word, uint32(inst.Imm))
		}
	}

	return word
}

// ALUImm encodes an unconditional ALU instruction with an 8-bit immediate.
func ALUImm(op Op, rd, rn uint8, imm uint8) uint32 {
	return Encode(&Instruction{
		Cond: CondAL, Class: ClassALU, Op: op,
		Rd: rd, Rn: rn, Imm: int32(imm),
	})
}

// ALUImmS is ALUImm with the status-update bit set.
func ALUImmS(op Op, rd, rn uint8, imm uint8) uint32 {
	return aluSetFlags.SetFlag(ALUImm(op, rd, rn, imm), true)
}

// ALUReg encodes an unconditional ALU instruction with a register operand
// shifted by an immediate amount.
func ALUReg(op Op, rd, rn, rm uint8, shift ShiftType, amount uint8) uint32 {
	return Encode(&Instruction{
		Cond: CondAL, Class: ClassALU, Op: op, RegOperand: true,
		Rd: rd, Rn: rn, Rm: rm, ShiftType: shift, ShiftAmount: amount,
	})
}

// ALURegS is ALUReg with the status-update bit set.
func ALURegS(op Op, rd, rn, rm uint8, shift ShiftType, amount uint8) uint32 {
	return aluSetFlags.SetFlag(ALUReg(op, rd, rn, rm, shift, amount), true)
}

// Load encodes LDR rd, [rn, #offset] with pre-indexing and no write-back.
func Load(rd, rn uint8, offset int32) uint32 {
	return memImm(true, rd, rn, offset)
}

// Store encodes STR rd, [rn, #offset] with pre-indexing and no write-back.
func Store(rd, rn uint8, offset int32) uint32 {
	return memImm(false, rd, rn, offset)
}

func memImm(load bool, rd, rn uint8, offset int32) uint32 {
	add := offset >= 0
	if !add {
		offset = -offset
	}
	return Encode(&Instruction{
		Cond: CondAL, Class: ClassMemory, Load: load,
		PreIndex: true, AddOffset: add,
		Rd: rd, Rn: rn, Imm: offset,
	})
}

// Branch encodes an unconditional PC-relative branch of offset words.
func Branch(offset int32, link bool) uint32 {
	return Encode(&Instruction{
		Cond: CondAL, Class: ClassBranch, Link: link, Imm: offset,
	})
}

// BranchReg encodes an unconditional branch to the address held in rm.
func BranchReg(rm uint8, link bool) uint32 {
	return Encode(&Instruction{
		Cond: CondAL, Class: ClassBranch, Link: link,
		RegOperand: true, Rm: rm,
	})
}

// NoOp encodes a no-op.
func NoOp() uint32 {
	return Encode(&Instruction{Cond: CondAL, Class: ClassNoOp})
}

// WithCond replaces the condition code of an encoded word.
func WithCond(word uint32, cond Cond) uint32 {
	return FieldCond.Set(word, uint32(cond))
}
