package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/timing/cache"
)

var _ = Describe("Geometry", func() {
	It("should derive the field widths of an 8-way 8000-byte level", func() {
		g := cache.NewGeometry(8, 8000, 64, 32)

		Expect(g.Lines).To(Equal(125))
		Expect(g.Sets).To(Equal(16))
		Expect(g.WordsPerLine).To(Equal(16))
		Expect(g.IndexBits).To(Equal(uint(4)))
		Expect(g.OffsetBits).To(Equal(uint(4)))
		Expect(g.TagBits).To(Equal(uint(24)))
	})

	It("should round the index width up for a non-power-of-two set count", func() {
		g := cache.NewGeometry(1, 32000, 64, 32)

		Expect(g.Sets).To(Equal(500))
		Expect(g.IndexBits).To(Equal(uint(9)))
		Expect(g.TagBits).To(Equal(uint(19)))
		Expect(g.IndexBits + g.OffsetBits + g.TagBits).To(Equal(uint(32)))
	})

	It("should decompose a word address", func() {
		g := cache.NewGeometry(2, 32, 8, 32) // 2 sets, 2 words per line

		tag, index, offset := g.Decompose(0b1011)
		Expect(tag).To(Equal(uint32(0b10)))
		Expect(index).To(Equal(uint32(1)))
		Expect(offset).To(Equal(uint32(1)))
		Expect(g.BlockBase(0b1011)).To(Equal(uint32(0b1010)))
	})

	It("should round-trip every field value within its width", func() {
		g := cache.NewGeometry(8, 8000, 64, 32)
		tags := []uint32{0, 1, 0xABCDE, 0xFFFFFF}

		for _, tag := range tags {
			for index := uint32(0); index < 1<<g.IndexBits; index++ {
				for offset := uint32(0); offset < 1<<g.OffsetBits; offset++ {
					addr := g.Encode(tag, index, offset)
					t, i, o := g.Decompose(addr)
					Expect([]uint32{t, i, o}).To(Equal([]uint32{tag, index, offset}))
				}
			}
		}
	})

	It("should round-trip a full-width address", func() {
		g := cache.NewGeometry(4, 1024, 32, 32)
		addr := uint32(0xDEADBEEF)
		Expect(g.Encode(g.Decompose(addr))).To(Equal(addr))
	})
})
