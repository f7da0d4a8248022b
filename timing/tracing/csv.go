package tracing

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/isasim/timing/cache"
	"github.com/sarchlab/isasim/timing/pipeline"
)

// Event is one row of a trace.
type Event struct {
	Cycle  uint64
	Where  string
	What   string
	Addr   uint32
	Detail string
}

// CSVWriter is a hook that stores events into a CSV file.
type CSVWriter struct {
	path  string
	file  *os.File
	clock func() uint64

	events     []Event
	bufferSize int
}

// NewCSVWriter creates a writer for path.csv. An empty path picks a unique
// name. clock supplies the cycle stamped on each event.
func NewCSVWriter(path string, clock func() uint64) *CSVWriter {
	return &CSVWriter{
		path:       path,
		clock:      clock,
		bufferSize: 1000,
	}
}

// Init creates the trace file. An existing file is not overwritten. The
// buffered events are flushed and the file closed at exit.
func (t *CSVWriter) Init() error {
	if t.path == "" {
		t.path = "isasim_trace_" + xid.New().String()
	}

	filename := t.path + ".csv"
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	t.file = file

	fmt.Fprintf(file, "Cycle, Where, What, Addr, Detail\n")

	atexit.Register(func() {
		_ = t.Close()
	})

	return nil
}

// Filename returns the name of the trace file.
func (t *CSVWriter) Filename() string {
	return t.path + ".csv"
}

// Func records the event carried by ctx.
func (t *CSVWriter) Func(ctx sim.HookCtx) {
	var cycle uint64
	if t.clock != nil {
		cycle = t.clock()
	}

	switch item := ctx.Item.(type) {
	case cache.AccessEvent:
		detail := "miss"
		if item.Hit {
			detail = "hit"
		}
		what := "read"
		if item.Write {
			what = "write"
		}
		t.Write(Event{cycle, item.Level, what, item.Addr, detail})
	case cache.EvictEvent:
		detail := "clean"
		if item.Dirty {
			detail = "dirty"
		}
		t.Write(Event{cycle, item.Level, "evict", item.Addr, detail})
	case cache.FillEvent:
		t.Write(Event{cycle, item.Level, "fill", item.Addr, ""})
	case pipeline.Record:
		t.Write(Event{cycle, "pipeline", eventName(ctx.Pos), item.PC,
			fmt.Sprintf("%08X", item.Word)})
	}
}

// Write buffers an event.
func (t *CSVWriter) Write(e Event) {
	t.events = append(t.events, e)
	if len(t.events) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered events to the file.
func (t *CSVWriter) Flush() {
	if t.file == nil {
		return
	}

	for _, e := range t.events {
		fmt.Fprintf(t.file, "%d, %s, %s, 0x%08X, %s\n",
			e.Cycle, e.Where, e.What, e.Addr, e.Detail)
	}

	t.events = nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (t *CSVWriter) Close() error {
	if t.file == nil {
		return nil
	}

	t.Flush()
	err := t.file.Close()
	t.file = nil

	return err
}
