package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/isasim/loader"
	"github.com/sarchlab/isasim/timing/cache"
	"github.com/sarchlab/isasim/timing/core"
	"github.com/sarchlab/isasim/timing/tracing"
)

// options selects what simulate runs and how.
type options struct {
	program     string
	config      string
	trace       string
	usePipeline bool
	useCache    bool
	maxCycles   uint64
	freqGHz     float64
	verbose     bool
}

// levelReport is the summary of one cache level.
type levelReport struct {
	name     string
	geometry cache.Geometry
	stats    cache.Statistics
}

// report is the outcome of one simulation.
type report struct {
	program   string
	stats     core.Stats
	levels    []levelReport
	freq      sim.Freq
	traceFile string
	verbose   bool
}

// simulate builds the hierarchy and the processor, installs the program and
// runs it until the sentinel retires.
func simulate(opts options, logger *slog.Logger) (*report, error) {
	hierarchy := cache.DefaultHierarchy()
	if opts.config != "" {
		var err error
		hierarchy, err = cache.LoadConfig(opts.config)
		if err != nil {
			return nil, err
		}
	}

	if err := hierarchy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache hierarchy: %w", err)
	}

	levels := hierarchy.Build(cache.WithLogger(logger))

	proc := core.NewProcessor(core.WithLogger(logger))
	proc.AttachMemory(levels[0])

	prog, err := loader.Load(opts.program)
	if err != nil {
		return nil, err
	}

	waited := prog.Install(proc)
	logger.Debug("program installed",
		"words", len(prog.Words), "base", prog.Base, "waited", waited)

	// The image must reach the backing store for uncached fetches, and
	// installing it is not part of the measured run.
	proc.Memory().Flush()
	for _, l := range levels {
		l.ResetStats()
	}
	proc.SetPC(prog.Base)

	r := &report{
		program: opts.program,
		freq:    sim.Freq(opts.freqGHz) * sim.GHz,
		verbose: opts.verbose,
	}

	logHook := tracing.NewLogHook(logger, slog.LevelDebug)
	attach(proc, levels, logHook)

	if opts.trace != "" {
		clock := func() uint64 { return proc.Stats().Cycles }
		writer := tracing.NewCSVWriter(opts.trace, clock)
		if err := writer.Init(); err != nil {
			return nil, err
		}
		defer writer.Close()

		attach(proc, levels, writer)
		r.traceFile = writer.Filename()
	}

	if err := run(proc, opts); err != nil {
		return nil, err
	}

	r.stats = proc.Stats()
	for _, l := range levels {
		r.levels = append(r.levels, levelReport{
			name:     l.Name(),
			geometry: l.Geometry(),
			stats:    l.Stats(),
		})
	}

	return r, nil
}

func attach(proc *core.Processor, levels []*cache.Level, hook sim.Hook) {
	proc.AcceptHook(hook)
	for _, l := range levels {
		l.AcceptHook(hook)
	}
}

// run steps the processor until it halts or the cycle limit is reached.
func run(proc *core.Processor, opts options) error {
	for proc.Step(opts.usePipeline, opts.useCache) {
		if opts.maxCycles > 0 && proc.Stats().Cycles >= opts.maxCycles {
			return fmt.Errorf("program did not halt within %d cycles",
				opts.maxCycles)
		}
	}
	return nil
}

func (r *report) print(w io.Writer) {
	s := r.stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Program: %s\n", r.program)
	fmt.Fprintf(w, "Total Instructions: %d\n", s.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", s.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", s.CPI())
	if r.freq > 0 {
		elapsed := sim.VTimeInSec(s.Cycles) * r.freq.Period()
		fmt.Fprintf(w, "Simulated Time: %.3f us\n", float64(elapsed)*1e6)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Breakdown:\n")
	fmt.Fprintf(w, "  Hazard stalls: %6d cycles (%5.1f%%)\n",
		s.Stalls, percent(s.Stalls, s.Cycles))
	fmt.Fprintf(w, "  Memory stalls: %6d cycles (%5.1f%%)\n",
		s.MemStalls, percent(s.MemStalls, s.Cycles))
	fmt.Fprintf(w, "  Fetch stalls:  %6d cycles (%5.1f%%)\n",
		s.FetchStalls, percent(s.FetchStalls, s.Cycles))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Pipeline Events:\n")
	fmt.Fprintf(w, "  Stalls:  %d\n", s.Stalls)
	fmt.Fprintf(w, "  Flushes: %d\n", s.Flushes)

	if len(r.levels) > 0 {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Memory Hierarchy:\n")
		for _, l := range r.levels {
			fmt.Fprintf(w, "  %-6s reads %6d  writes %6d  hit rate %5.1f%%  evictions %d\n",
				l.name, l.stats.Reads, l.stats.Writes,
				l.stats.HitRate()*100, l.stats.Evictions)
			if r.verbose {
				g := l.geometry
				fmt.Fprintf(w, "         %d lines, %d sets x %d ways, %d words per line\n",
					g.Lines, g.Sets, g.Ways, g.WordsPerLine)
				fmt.Fprintf(w, "         tag %d bits, index %d bits, offset %d bits\n",
					g.TagBits, g.IndexBits, g.OffsetBits)
			}
		}
	}

	if r.traceFile != "" {
		fmt.Fprintf(w, "\nTrace: %s\n", r.traceFile)
	}
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
