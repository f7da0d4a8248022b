package benchmarks

import (
	"github.com/sarchlab/isasim/insts"
	"github.com/sarchlab/isasim/timing/core"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks.
// Each benchmark targets a specific pipeline or memory characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(20),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		countdownLoop(),
		mixedOperations(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: a loop, memory traffic and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		countdownLoop(),
		memorySequential(),
		branchTaken(),
	}
}

// 1. Arithmetic Sequential - Tests ALU throughput with independent operations
func arithmeticSequential() Benchmark {
	var program []uint32
	for i := 0; i < 20; i++ {
		// Reuse of a register is 5 instructions apart, past the hazard window.
		reg := uint8(i % 5)
		program = append(program, insts.ALUImm(insts.OpADD, reg, reg, 1))
	}

	return Benchmark{
		Name:           "arithmetic_sequential",
		Description:    "20 independent ADD operations - measures ALU throughput",
		Program:        program,
		ExpectedResult: 4,
	}
}

// 2. Dependency Chain - Tests instruction latency with RAW hazards
func dependencyChain(n int) Benchmark {
	program := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		program = append(program, insts.ALUImm(insts.OpADD, 0, 0, 1))
	}

	return Benchmark{
		Name:           "dependency_chain",
		Description:    "dependent ADDs (R0 = R0 + 1) - measures hazard stalls",
		Program:        program,
		ExpectedResult: uint32(n),
	}
}

// 3. Memory Sequential - Tests load latency and the load-use hazard
func memorySequential() Benchmark {
	var program []uint32
	for i := int32(0); i < 8; i++ {
		program = append(program,
			insts.Load(2, 1, i*4),
			insts.ALUReg(insts.OpADD, 0, 0, 2, insts.ShiftLSL, 0),
		)
	}
	program = append(program, insts.Store(0, 1, 32))

	return Benchmark{
		Name:        "memory_sequential",
		Description: "8 loads from consecutive words, each used at once - measures load-use stalls",
		Setup: func(proc *core.Processor) {
			setRegs(proc.RegFile(), 0, dataBase)
			seed(proc, dataBase, 1, 2, 3, 4, 5, 6, 7, 8)
		},
		Program:        program,
		ExpectedResult: 36,
	}
}

// 4. Function Calls - Tests BL/BX overhead
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "3 calls to an increment function - measures call and return flushes",
		Program: []uint32{
			insts.ALUImm(insts.OpMOV, 0, 0, 0),  // 0x00
			insts.Branch(2, true),               // 0x04: BL inc
			insts.Branch(1, true),               // 0x08: BL inc
			insts.Branch(0, true),               // 0x0C: BL inc
			insts.Branch(1, false),              // 0x10: B done
			insts.ALUImm(insts.OpADD, 0, 0, 1),  // 0x14: inc
			insts.BranchReg(insts.RegLR, false), // 0x18: BX LR
			// 0x1C: done, the end-of-stream sentinel
		},
		ExpectedResult: 3,
	}
}

// 5. Branch Taken - Tests taken-branch flushes
func branchTaken() Benchmark {
	program := []uint32{insts.ALUImm(insts.OpMOV, 0, 0, 0)}
	for i := 0; i < 5; i++ {
		program = append(program,
			insts.Branch(0, false), // skip the next instruction
			insts.ALUImm(insts.OpADD, 0, 0, 100),
			insts.ALUImm(insts.OpADD, 0, 0, 1),
		)
	}

	return Benchmark{
		Name:           "branch_taken",
		Description:    "5 forward branches over a wrong-path ADD - measures flush cost",
		Program:        program,
		ExpectedResult: 5,
	}
}

// 6. Countdown Loop - Tests flag setting and a conditional back edge
func countdownLoop() Benchmark {
	return Benchmark{
		Name:        "countdown_loop",
		Description: "10 iterations of a SUBS/BNE loop - measures loop overhead",
		Program: []uint32{
			insts.ALUImm(insts.OpMOV, 1, 0, 10),                   // 0x00
			insts.ALUImm(insts.OpMOV, 0, 0, 0),                    // 0x04
			insts.ALUImm(insts.OpADD, 0, 0, 2),                    // 0x08: loop
			insts.ALUImmS(insts.OpSUB, 1, 1, 1),                   // 0x0C
			insts.WithCond(insts.Branch(-4, false), insts.CondNE), // 0x10: BNE loop
		},
		ExpectedResult: 20,
	}
}

// 7. Mixed Operations - Shifted operands, a store and a dependent load
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "shifts, arithmetic and a store-load round trip",
		Program: []uint32{
			insts.ALUImm(insts.OpMOV, 1, 0, 3),
			insts.ALUImm(insts.OpMOV, 4, 0, dataBase>>4),
			insts.ALUReg(insts.OpMOV, 2, 0, 1, insts.ShiftLSL, 2), // 12
			insts.ALUReg(insts.OpMOV, 4, 0, 4, insts.ShiftLSL, 4), // dataBase
			insts.ALUReg(insts.OpADD, 3, 1, 2, insts.ShiftLSL, 0), // 15
			insts.Store(3, 4, 0),
			insts.Load(5, 4, 0),
			insts.ALUReg(insts.OpSUB, 0, 5, 1, insts.ShiftLSL, 0), // 12
		},
		ExpectedResult: 12,
	}
}
