// Package insts provides instruction definitions, decoding and encoding for
// the simulated 32-bit RISC ISA.
//
// Every instruction word carries a condition code in bits [31:28] and an
// instruction class in bits [27:26]. The class selects how the remaining
// bits are interpreted:
//   - ALU: AND, EOR, SUB, RSB, ADD, ADC, SBC, RSC, TST, TEQ, CMP, CMN, ORR,
//     MOV, BIC, MVN with an immediate or (shifted) register operand
//   - Memory: LDR/STR with pre/post indexing and base write-back
//   - Branch: PC-relative or register-indirect, with optional link
//   - No-op
//
// Bit fields are described once in a field table (see fields.go) which both
// the decoder and the encoder use.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(insts.ALUImm(insts.OpADD, 1, 2, 42)) // ADD R1, R2, #42
//	fmt.Printf("Op: %v, Rd: %d, Rn: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rn, inst.Imm)
package insts
