package tracing_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/emu"
	"github.com/sarchlab/isasim/insts"
	"github.com/sarchlab/isasim/timing/cache"
	"github.com/sarchlab/isasim/timing/pipeline"
	"github.com/sarchlab/isasim/timing/tracing"
)

func hierarchy() (*cache.Level, *cache.Level) {
	ram := cache.New(cache.Config{
		Name: "RAM", Ways: 1, Size: 1024, LineLength: 8, WordSize: 32, Terminal: true,
	})
	l1 := cache.New(cache.Config{
		Name: "L1", Ways: 1, Size: 16, LineLength: 8, WordSize: 32,
	})
	l1.AttachMemory(ram)
	return l1, ram
}

var _ = Describe("LogHook", func() {
	var (
		buf bytes.Buffer
		l1  *cache.Level
	)

	BeforeEach(func() {
		buf.Reset()
		l1, _ = hierarchy()
	})

	It("should log cache accesses, fills and evictions", func() {
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		l1.AcceptHook(tracing.NewLogHook(logger, slog.LevelDebug))

		l1.Write(1, 0)
		l1.Read(4) // same set, evicts the dirty line

		out := buf.String()
		Expect(out).To(ContainSubstring("cache fill"))
		Expect(out).To(ContainSubstring("cache evict"))
		Expect(out).To(ContainSubstring("dirty=true"))
		Expect(out).To(ContainSubstring("level=L1"))
		Expect(out).To(ContainSubstring("hit=false"))
	})

	It("should stay quiet below the logger level", func() {
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		l1.AcceptHook(tracing.NewLogHook(logger, slog.LevelDebug))

		l1.Read(0)

		Expect(buf.String()).To(BeEmpty())
	})

	It("should log pipeline retirements", func() {
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		_, ram := hierarchy()
		for i, word := range []uint32{insts.ALUImm(insts.OpMOV, 1, 0, 1), insts.Sentinel} {
			ram.Write(word, uint32(i))
		}
		pipe := pipeline.NewPipeline(&emu.RegFile{}, cache.NewPort(ram, nil))
		pipe.AcceptHook(tracing.NewLogHook(logger, slog.LevelInfo))

		for pipe.Step(true, true) {
		}

		Expect(buf.String()).To(ContainSubstring("pipeline retire"))
		Expect(buf.String()).To(ContainSubstring("pc=0x00000000"))
	})
})

var _ = Describe("CSVWriter", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should write a header and one row per event", func() {
		cycle := uint64(0)
		writer := tracing.NewCSVWriter(filepath.Join(dir, "trace"), func() uint64 {
			return cycle
		})
		Expect(writer.Init()).To(Succeed())

		l1, _ := hierarchy()
		l1.AcceptHook(writer)
		cycle = 7
		l1.Read(0)
		Expect(writer.Close()).To(Succeed())

		data, err := os.ReadFile(writer.Filename())
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")

		Expect(lines[0]).To(Equal("Cycle, Where, What, Addr, Detail"))
		Expect(lines).To(ContainElement("7, L1, fill, 0x00000000, "))
		Expect(lines).To(ContainElement("7, L1, read, 0x00000000, miss"))
	})

	It("should refuse to overwrite an existing trace", func() {
		path := filepath.Join(dir, "old")
		Expect(os.WriteFile(path+".csv", nil, 0644)).To(Succeed())

		Expect(tracing.NewCSVWriter(path, nil).Init()).NotTo(Succeed())
	})

	It("should pick a unique name when none is given", func() {
		writer := tracing.NewCSVWriter("", nil)
		Expect(writer.Filename()).To(Equal(".csv"))

		DeferCleanup(func() {
			_ = writer.Close()
			_ = os.Remove(writer.Filename())
		})
		Expect(writer.Init()).To(Succeed())
		Expect(writer.Filename()).To(HavePrefix("isasim_trace_"))
	})
})
