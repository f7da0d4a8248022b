package cache

// Line is one storage block of a level.
type Line struct {
	words    []uint32
	tag      uint32
	dirty    bool
	occupied bool
	age      uint64
}

// NewLine creates an empty line of the given number of words.
func NewLine(words int) *Line {
	return &Line{words: make([]uint32, words)}
}

// IsHit reports whether the line is occupied and holds tag.
func (l *Line) IsHit(tag uint32) bool {
	return l.occupied && l.tag == tag
}

// Read returns the word at offset.
func (l *Line) Read(offset uint32) uint32 {
	return l.words[offset]
}

// ReadBlock returns a copy of the block.
func (l *Line) ReadBlock() []uint32 {
	block := make([]uint32, len(l.words))
	copy(block, l.words)
	return block
}

// Write stores word at offset and marks the line occupied.
func (l *Line) Write(word uint32, offset uint32) {
	l.words[offset] = word
	l.occupied = true
}

// WriteBlock replaces the block and marks the line occupied.
func (l *Line) WriteBlock(block []uint32) {
	copy(l.words, block)
	l.occupied = true
}

// Evict returns the block and leaves the line empty, clean and with age 0.
func (l *Line) Evict() []uint32 {
	block := l.ReadBlock()
	l.occupied = false
	l.dirty = false
	l.age = 0
	return block
}

// Install fills the line with block under tag and clears the dirty flag.
func (l *Line) Install(tag uint32, block []uint32) {
	l.WriteBlock(block)
	l.tag = tag
	l.dirty = false
}

// Tag returns the tag of the block held by the line.
func (l *Line) Tag() uint32 { return l.tag }

// Dirty reports whether the line differs from the next level.
func (l *Line) Dirty() bool { return l.dirty }

// Occupied reports whether the line holds a block.
func (l *Line) Occupied() bool { return l.occupied }

// Age returns the number of accesses to other lines of the set since the
// line was last touched.
func (l *Line) Age() uint64 { return l.age }

// Set is a group of lines sharing an index.
type Set struct {
	lines []*Line
}

// NewSet creates a set of empty lines.
func NewSet(ways, words int) *Set {
	s := &Set{lines: make([]*Line, ways)}
	for i := range s.lines {
		s.lines[i] = NewLine(words)
	}
	return s
}

// Lines returns the lines of the set in way order.
func (s *Set) Lines() []*Line {
	return s.lines
}

// Lookup returns the line holding tag, or nil.
func (s *Set) Lookup(tag uint32) *Line {
	for _, line := range s.lines {
		if line.IsHit(tag) {
			return line
		}
	}
	return nil
}

// Touch marks line as the most recently used: its age becomes 0 and every
// other line of the set ages by one.
func (s *Set) Touch(line *Line) {
	for _, l := range s.lines {
		if l == line {
			l.age = 0
		} else {
			l.age++
		}
	}
}

// FindLRU returns the victim for a new block: the first empty line in way
// order, otherwise the first line with the greatest age.
func (s *Set) FindLRU() *Line {
	var victim *Line
	for _, line := range s.lines {
		if !line.occupied {
			return line
		}
		if victim == nil || line.age > victim.age {
			victim = line
		}
	}
	return victim
}
