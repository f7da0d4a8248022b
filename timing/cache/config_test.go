package cache_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/isasim/timing/cache"
)

var _ = Describe("Config", func() {
	It("should accept the default hierarchy", func() {
		config := cache.DefaultHierarchy()
		Expect(config.Validate()).To(Succeed())
		Expect(config.Levels).To(HaveLen(2))
		Expect(config.Levels[1].Terminal).To(BeTrue())
	})

	It("should build the levels deepest first and chain them", func() {
		levels := cache.DefaultHierarchy().Build()

		Expect(levels).To(HaveLen(2))
		Expect(levels[0].Name()).To(Equal("L1"))
		Expect(levels[0].Next()).To(BeIdenticalTo(levels[1]))
		Expect(levels[1].Next()).To(BeNil())
		Expect(levels[1].IsTerminal()).To(BeTrue())
		Expect(levels[0].Latency()).To(Equal(uint64(5)))
	})

	DescribeTable("should reject inconsistent geometry",
		func(level cache.Config) {
			Expect(level.Validate()).NotTo(Succeed())
		},
		Entry("zero ways", cache.Config{Ways: 0, Size: 64, LineLength: 8, WordSize: 32}),
		Entry("partial line", cache.Config{Ways: 1, Size: 60, LineLength: 8, WordSize: 32}),
		Entry("odd word size", cache.Config{Ways: 1, Size: 64, LineLength: 8, WordSize: 12}),
		Entry("three sets", cache.Config{Ways: 2, Size: 48, LineLength: 8, WordSize: 32}),
		Entry("three words per line", cache.Config{Ways: 1, Size: 48, LineLength: 12, WordSize: 32}),
	)

	It("should accept a non-power-of-two backing store", func() {
		level := cache.Config{Ways: 1, Size: 48, LineLength: 8, WordSize: 32, Terminal: true}
		Expect(level.Validate()).To(Succeed())
	})

	It("should require a terminal last level", func() {
		config := cache.DefaultHierarchy()
		config.Levels = config.Levels[:1]
		Expect(config.Validate()).To(MatchError(cache.ErrNoBackingStore))
	})

	It("should reject a terminal level above another level", func() {
		config := cache.DefaultHierarchy()
		config.Levels = append([]cache.Config{config.Levels[1]}, config.Levels...)
		Expect(config.Validate()).To(MatchError(ContainSubstring("only the last level")))
	})

	It("should wrap level errors with the level position", func() {
		config := cache.DefaultHierarchy()
		config.Levels[0].Ways = 3
		Expect(config.Validate()).To(MatchError(ContainSubstring("level 0")))
	})

	It("should save and load a hierarchy", func() {
		path := filepath.Join(GinkgoT().TempDir(), "hierarchy.json")
		config := cache.DefaultHierarchy()
		config.Levels[0].Latency = 3

		Expect(config.SaveConfig(path)).To(Succeed())
		loaded, err := cache.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config))
	})

	It("should fail to load a missing file", func() {
		_, err := cache.LoadConfig(filepath.Join(GinkgoT().TempDir(), "none.json"))
		Expect(err).To(MatchError(ContainSubstring("failed to read")))
	})

	It("should clone deeply", func() {
		config := cache.DefaultHierarchy()
		clone := config.Clone()
		clone.Levels[0].Ways = 2

		Expect(config.Levels[0].Ways).To(Equal(8))
	})
})
