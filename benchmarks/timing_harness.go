// Package benchmarks provides timing benchmark infrastructure for isasim.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/loader"
	"github.com/sarchlab/isasim/timing/cache"
	"github.com/sarchlab/isasim/timing/core"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles decode was held by a hazard
	StallCycles uint64 `json:"stall_cycles"`

	// MemStalls is the number of cycles loads and stores waited
	MemStalls uint64 `json:"mem_stalls"`

	// FetchStalls is the number of cycles fetch waited
	FetchStalls uint64 `json:"fetch_stalls"`

	// PipelineFlushes is the number of pipeline flushes
	PipelineFlushes uint64 `json:"pipeline_flushes"`

	// CacheHits/Misses of the top level (if caches are used)
	CacheHits   uint64 `json:"cache_hits,omitempty"`
	CacheMisses uint64 `json:"cache_misses,omitempty"`

	// Result is the value left in R0
	Result uint32 `json:"result"`

	// Halted is false when the cycle limit was reached first
	Halted bool `json:"halted"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the processor state (registers, data memory)
	Setup func(proc *core.Processor)

	// Program is the instruction words, loaded at address 0
	Program []uint32

	// ExpectedResult is the expected value of R0 (for validation)
	ExpectedResult uint32
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// UsePipeline overlaps instructions; otherwise one is in flight at a time
	UsePipeline bool

	// UseCache routes accesses through the hierarchy; otherwise they go
	// straight to the backing store
	UseCache bool

	// Hierarchy describes the memory levels (default: cache.DefaultHierarchy)
	Hierarchy *cache.HierarchyConfig

	// MaxCycles bounds each run
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives diagnostics (default: discarded)
	Logger *slog.Logger

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		UsePipeline: true,
		UseCache:    true,
		MaxCycles:   1_000_000,
		Output:      os.Stdout,
	}
}

// Harness runs benchmarks and collects timing results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Hierarchy == nil {
		config.Hierarchy = cache.DefaultHierarchy()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() ([]BenchmarkResult, error) {
	if err := h.config.Hierarchy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache hierarchy: %w", err)
	}

	results := make([]BenchmarkResult, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "Running %s...\n", bench.Name)
		}
		results = append(results, h.runBenchmark(bench))
	}

	return results, nil
}

// runBenchmark executes a single benchmark on a fresh processor and
// hierarchy.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	levels := h.config.Hierarchy.Build(cache.WithLogger(h.config.Logger))
	proc := core.NewProcessor(core.WithLogger(h.config.Logger))
	proc.AttachMemory(levels[0])

	prog := &loader.Program{Words: bench.Program}
	prog.Install(proc)

	if bench.Setup != nil {
		bench.Setup(proc)
	}

	// Setup and installation are not part of the measured run.
	proc.Memory().Flush()
	for _, l := range levels {
		l.ResetStats()
	}
	proc.SetPC(prog.Base)

	start := time.Now()
	for proc.Step(h.config.UsePipeline, h.config.UseCache) {
		if h.config.MaxCycles > 0 && proc.Stats().Cycles >= h.config.MaxCycles {
			break
		}
	}
	wallTime := time.Since(start)

	stats := proc.Stats()
	result := BenchmarkResult{
		Name:                bench.Name,
		Description:         bench.Description,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		StallCycles:         stats.Stalls,
		MemStalls:           stats.MemStalls,
		FetchStalls:         stats.FetchStalls,
		PipelineFlushes:     stats.Flushes,
		Result:              proc.RegFile().ReadReg(0),
		Halted:              proc.Halted(),
		WallTime:            wallTime,
	}

	if h.config.UseCache && len(levels) > 1 {
		top := levels[0].Stats()
		result.CacheHits = top.Hits
		result.CacheMisses = top.Misses
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "========================================")
	_, _ = fmt.Fprintln(h.config.Output, "Benchmark Results")
	_, _ = fmt.Fprintln(h.config.Output, "========================================")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Result (R0): %d\n", r.Result)
		if !r.Halted {
			_, _ = fmt.Fprintf(h.config.Output, "  Did not halt\n")
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Mem Stalls:           %d\n", r.MemStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Fetch Stalls:         %d\n", r.FetchStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		if r.CacheHits+r.CacheMisses > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Cache:\n")
			_, _ = fmt.Fprintf(h.config.Output, "    Hits:   %d\n", r.CacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "    Misses: %d\n", r.CacheMisses)
		}
		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "----------------------------------------")
	}
}

// PrintCSV outputs benchmark results in CSV format.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,mem_stalls,fetch_stalls,flushes,cache_hits,cache_misses,result")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name, r.SimulatedCycles, r.InstructionsRetired, r.CPI,
			r.StallCycles, r.MemStalls, r.FetchStalls, r.PipelineFlushes,
			r.CacheHits, r.CacheMisses, r.Result)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Config describes the benchmark configuration
	Config BenchmarkConfig `json:"config"`
}

// BenchmarkConfig describes the harness configuration used.
type BenchmarkConfig struct {
	Pipelined bool                   `json:"pipelined"`
	Cached    bool                   `json:"cached"`
	Hierarchy *cache.HierarchyConfig `json:"hierarchy"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalInstructions is the sum of all instructions retired
	TotalInstructions uint64 `json:"total_instructions"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Config: BenchmarkConfig{
				Pipelined: h.config.UsePipeline,
				Cached:    h.config.UseCache,
				Hierarchy: h.config.Hierarchy,
			},
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// dataBase is where benchmarks keep their data, clear of the program.
const dataBase = 0x400

// seed stores words at consecutive addresses starting at addr.
func seed(proc *core.Processor, addr uint32, words ...uint32) {
	for i, w := range words {
		proc.WriteComplete(w, addr+uint32(i)*4)
	}
}

// setRegs writes values to R0, R1, ... in order.
func setRegs(regFile *emu.RegFile, values ...uint32) {
	for i, v := range values {
		regFile.WriteReg(uint8(i), v)
	}
}
