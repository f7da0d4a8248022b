package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/insts"
	"github.com/sarchlab/isasim/loader"
)

type recordingMemory struct {
	words map[uint32]uint32
}

func (m *recordingMemory) WriteComplete(word uint32, addr uint32) uint64 {
	m.words[addr] = word
	return 2
}

var _ = Describe("Loader", func() {
	Describe("Parse", func() {
		It("should read words in every supported base", func() {
			prog, err := loader.Parse(strings.NewReader(
				"0xE3A01005\n" +
					"\n" +
					"  42  # answer\n" +
					"0b1010 ; ten\n" +
					"0xFFFF_0000\n"))

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Words).To(Equal([]uint32{0xE3A01005, 42, 10, 0xFFFF0000}))
		})

		It("should report the line of a bad word", func() {
			_, err := loader.Parse(strings.NewReader("1\nnope\n"))

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("line 2"))
		})

		It("should reject words wider than 32 bits", func() {
			_, err := loader.Parse(strings.NewReader("0x100000000\n"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Load", func() {
		It("should read a file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "prog.txt")
			Expect(os.WriteFile(path, []byte("1\n2\n"), 0644)).To(Succeed())

			prog, err := loader.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Words).To(HaveLen(2))
		})

		It("should wrap a missing file", func() {
			_, err := loader.Load(filepath.Join(GinkgoT().TempDir(), "missing"))

			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("Install", func() {
		It("should append the sentinel and place words at the base", func() {
			prog := &loader.Program{Base: 0x100, Words: []uint32{7, 8}}
			mem := &recordingMemory{words: map[uint32]uint32{}}

			waited := prog.Install(mem)

			Expect(waited).To(Equal(uint64(6)))
			Expect(mem.words).To(Equal(map[uint32]uint32{
				0x100: 7,
				0x104: 8,
				0x108: insts.Sentinel,
			}))
		})
	})
})
