package cache

import "math/bits"

// Geometry describes how a level splits an address into tag, index and
// offset. Addresses handed to a level are word addresses.
type Geometry struct {
	Lines        int // total number of lines
	Sets         int // ceil(Lines / ways)
	Ways         int
	WordsPerLine int
	WordSize     int // bits

	IndexBits  uint
	OffsetBits uint
	TagBits    uint
}

// NewGeometry derives the geometry of a level from its size in bytes, its
// line length in bytes and its word size in bits.
func NewGeometry(ways, size, lineLength, wordSize int) Geometry {
	g := Geometry{
		Lines:        size / lineLength,
		Ways:         ways,
		WordsPerLine: lineLength * 8 / wordSize,
		WordSize:     wordSize,
	}
	g.Sets = (g.Lines + ways - 1) / ways
	g.IndexBits = ceilLog2(g.Sets)
	g.OffsetBits = ceilLog2(g.WordsPerLine)
	g.TagBits = uint(wordSize) - g.IndexBits - g.OffsetBits

	return g
}

func ceilLog2(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}

func mask(width uint) uint32 {
	return uint32(uint64(1)<<width - 1)
}

// Index returns the set index of addr.
func (g Geometry) Index(addr uint32) uint32 {
	return (addr >> g.OffsetBits) & mask(g.IndexBits)
}

// Tag returns the tag of addr.
func (g Geometry) Tag(addr uint32) uint32 {
	return (addr >> (g.OffsetBits + g.IndexBits)) & mask(g.TagBits)
}

// Offset returns the word offset of addr within its line.
func (g Geometry) Offset(addr uint32) uint32 {
	return addr & mask(g.OffsetBits)
}

// Decompose splits addr into tag, index and offset.
func (g Geometry) Decompose(addr uint32) (tag, index, offset uint32) {
	return g.Tag(addr), g.Index(addr), g.Offset(addr)
}

// Encode is the inverse of Decompose.
func (g Geometry) Encode(tag, index, offset uint32) uint32 {
	addr := tag<<g.IndexBits | index
	return addr<<g.OffsetBits | offset
}

// BlockBase clears the offset field of addr.
func (g Geometry) BlockBase(addr uint32) uint32 {
	return addr &^ mask(g.OffsetBits)
}
