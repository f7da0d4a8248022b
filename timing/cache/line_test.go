package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/timing/cache"
)

var _ = Describe("Line", func() {
	It("should only hit when occupied and tagged", func() {
		line := cache.NewLine(4)
		Expect(line.IsHit(0)).To(BeFalse())

		line.Install(7, []uint32{1, 2, 3, 4})
		Expect(line.IsHit(7)).To(BeTrue())
		Expect(line.IsHit(8)).To(BeFalse())
		Expect(line.Dirty()).To(BeFalse())
		Expect(line.Read(2)).To(Equal(uint32(3)))
	})

	It("should mark the line occupied on write", func() {
		line := cache.NewLine(2)
		line.Write(0x42, 1)

		Expect(line.Occupied()).To(BeTrue())
		Expect(line.ReadBlock()).To(Equal([]uint32{0, 0x42}))
	})

	It("should return the block and empty the line on evict", func() {
		line := cache.NewLine(2)
		line.Install(3, []uint32{5, 6})

		Expect(line.Evict()).To(Equal([]uint32{5, 6}))
		Expect(line.Occupied()).To(BeFalse())
		Expect(line.Age()).To(BeZero())
		Expect(line.IsHit(3)).To(BeFalse())
	})
})

var _ = Describe("Set", func() {
	var set *cache.Set

	fill := func() {
		for i, line := range set.Lines() {
			line.Install(uint32(i), make([]uint32, 2))
		}
	}

	BeforeEach(func() {
		set = cache.NewSet(4, 2)
	})

	It("should find a hit by tag", func() {
		fill()
		Expect(set.Lookup(2)).To(BeIdenticalTo(set.Lines()[2]))
		Expect(set.Lookup(9)).To(BeNil())
	})

	It("should prefer the first empty line", func() {
		Expect(set.FindLRU()).To(BeIdenticalTo(set.Lines()[0]))

		set.Lines()[0].Install(1, make([]uint32, 2))
		set.Touch(set.Lines()[0])
		Expect(set.FindLRU()).To(BeIdenticalTo(set.Lines()[1]))
	})

	It("should age every other line on touch", func() {
		fill()
		lines := set.Lines()
		for _, line := range lines {
			set.Touch(line)
		}

		Expect([]uint64{lines[0].Age(), lines[1].Age(), lines[2].Age(), lines[3].Age()}).
			To(Equal([]uint64{3, 2, 1, 0}))
	})

	It("should pick the line with the greatest age", func() {
		fill()
		lines := set.Lines()
		for _, line := range lines {
			set.Touch(line)
		}
		Expect(set.FindLRU()).To(BeIdenticalTo(lines[0]))

		set.Touch(lines[0])
		Expect(set.FindLRU()).To(BeIdenticalTo(lines[1]))
	})

	It("should break ties by way order", func() {
		fill()
		lines := set.Lines()
		Expect(set.FindLRU()).To(BeIdenticalTo(lines[0]))

		set.Touch(lines[2]) // ages 1, 1, 0, 1
		Expect(set.FindLRU()).To(BeIdenticalTo(lines[0]))

		set.Touch(lines[0]) // ages 0, 2, 1, 2
		Expect(set.FindLRU()).To(BeIdenticalTo(lines[1]))
	})

	It("should reuse an evicted line first", func() {
		fill()
		lines := set.Lines()
		for _, line := range lines {
			set.Touch(line)
		}

		lines[2].Evict()
		Expect(set.FindLRU()).To(BeIdenticalTo(lines[2]))
	})
})
