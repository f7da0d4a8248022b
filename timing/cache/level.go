// Package cache models a chained hierarchy of set-associative memory levels
// with LRU replacement and write-back eviction.
//
// Levels address words. A level is either a cache, which holds a bounded
// number of lines and fetches missing blocks from the next level, or a
// terminal backing store in which every block is resident and
// zero-filled on first touch.
package cache

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/isasim/timing/latency"
)

// Backing is the interface a level uses to reach the next level. Span
// operations complete synchronously: the callee waits out its own latency
// and reports the cycles it waited, including those of the levels below it.
type Backing interface {
	// FetchSpan returns n consecutive words starting at addr.
	FetchSpan(addr uint32, n int) ([]uint32, uint64)
	// StoreSpan stores words starting at addr.
	StoreSpan(addr uint32, words []uint32) uint64
}

// Statistics holds level performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
	// WaitCycles counts polls answered with "waiting", miss penalties
	// included, plus the cycles span requests waited.
	WaitCycles uint64
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Option configures a Level.
type Option func(*Level)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Level) {
		l.logger = logger
	}
}

// Level is one level of the memory hierarchy.
type Level struct {
	*sim.HookableBase

	name     string
	geometry Geometry
	terminal bool

	// gate times accesses polled by the processor, spanGate the span
	// requests of the level above.
	gate     *latency.Gate
	spanGate *latency.Gate

	// pending holds performed accesses still paying for next-level traffic.
	pending map[pendingKey]*pendingAccess

	sets  []*Set
	store map[uint32]*Line // terminal only, keyed by block base

	next   Backing
	stats  Statistics
	logger *slog.Logger
}

// New creates a level from its configuration. The geometry is not
// validated; see Config.Validate.
func New(config Config, opts ...Option) *Level {
	l := &Level{
		HookableBase: sim.NewHookableBase(),
		name:         config.Name,
		geometry: NewGeometry(
			config.Ways, config.Size, config.LineLength, config.WordSize),
		terminal: config.Terminal,
		gate:     latency.NewGate(config.Latency),
		spanGate: latency.NewGate(config.Latency),
		pending:  make(map[pendingKey]*pendingAccess),
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.terminal {
		l.store = make(map[uint32]*Line)
		return l
	}

	// Every index value the geometry can produce gets a set.
	l.sets = make([]*Set, 1<<l.geometry.IndexBits)
	for i := range l.sets {
		l.sets[i] = NewSet(l.geometry.Ways, l.geometry.WordsPerLine)
	}

	return l
}

// Name returns the level name.
func (l *Level) Name() string {
	return l.name
}

// Geometry returns the address geometry of the level.
func (l *Level) Geometry() Geometry {
	return l.geometry
}

// Latency returns the access latency in cycles.
func (l *Level) Latency() uint64 {
	return l.gate.Latency()
}

// IsTerminal reports whether the level is a backing store.
func (l *Level) IsTerminal() bool {
	return l.terminal
}

// AttachMemory sets the next, slower level.
func (l *Level) AttachMemory(next Backing) {
	l.next = next
}

// Next returns the next level, or nil.
func (l *Level) Next() Backing {
	return l.next
}

// Stats returns level statistics.
func (l *Level) Stats() Statistics {
	return l.stats
}

// ResetStats clears level statistics.
func (l *Level) ResetStats() {
	l.stats = Statistics{}
}

// Timer returns how many cycles the access to addr has waited.
func (l *Level) Timer(addr uint32) uint64 {
	return l.gate.Timer(addr)
}

// Abandon drops the in-flight access to addr, including one that is
// still paying its miss penalty.
func (l *Level) Abandon(addr uint32) {
	l.gate.Reset(addr)
	for kind := kindRead; kind <= kindWriteBlock; kind++ {
		delete(l.pending, pendingKey{addr, kind})
	}
}

// Read polls a read of the word at addr. It returns false while the access
// is waiting. A miss keeps the access waiting for as many further polls as
// the levels below spent serving it.
func (l *Level) Read(addr uint32) (uint32, bool) {
	key := pendingKey{addr, kindRead}
	if p, waiting := l.settle(key); waiting {
		return 0, false
	} else if p != nil {
		return p.word, true
	}

	if !l.poll(addr) {
		return 0, false
	}

	l.stats.Reads++
	line, offset, penalty := l.resolve(addr, false, true)
	word := line.Read(offset)
	if l.hold(key, penalty, pendingAccess{word: word}) {
		return 0, false
	}
	return word, true
}

// Write polls a write of word to addr. It returns false while the access is
// waiting. The word is stored on the poll that resolves the line; a miss
// then keeps the access waiting like Read does.
func (l *Level) Write(word uint32, addr uint32) bool {
	key := pendingKey{addr, kindWrite}
	if p, waiting := l.settle(key); waiting {
		return false
	} else if p != nil {
		return true
	}

	if !l.poll(addr) {
		return false
	}

	l.stats.Writes++
	line, offset, penalty := l.resolve(addr, true, true)
	line.Write(word, offset)
	l.markDirty(line)
	return !l.hold(key, penalty, pendingAccess{})
}

// ReadBlock polls a read of the whole line holding addr.
func (l *Level) ReadBlock(addr uint32) ([]uint32, bool) {
	key := pendingKey{addr, kindReadBlock}
	if p, waiting := l.settle(key); waiting {
		return nil, false
	} else if p != nil {
		return p.block, true
	}

	if !l.poll(addr) {
		return nil, false
	}

	l.stats.Reads++
	line, _, penalty := l.resolve(addr, false, true)
	block := line.ReadBlock()
	if l.hold(key, penalty, pendingAccess{block: block}) {
		return nil, false
	}
	return block, true
}

// WriteBlock polls a write of a whole line to the block holding addr. The
// block is not fetched from the next level first.
func (l *Level) WriteBlock(block []uint32, addr uint32) bool {
	key := pendingKey{addr, kindWriteBlock}
	if p, waiting := l.settle(key); waiting {
		return false
	} else if p != nil {
		return true
	}

	if !l.poll(addr) {
		return false
	}

	l.stats.Writes++
	line, _, penalty := l.resolve(addr, true, false)
	line.WriteBlock(block)
	l.markDirty(line)
	return !l.hold(key, penalty, pendingAccess{})
}

// FetchSpan implements Backing.
func (l *Level) FetchSpan(addr uint32, n int) ([]uint32, uint64) {
	waited := l.spanGate.Wait(addr)
	l.stats.WaitCycles += waited
	l.stats.Reads++

	words := make([]uint32, 0, n)
	for len(words) < n {
		a := addr + uint32(len(words))
		line, offset, penalty := l.resolve(a, false, true)
		waited += penalty
		end := min(int(offset)+n-len(words), len(line.words))
		words = append(words, line.words[offset:end]...)
	}

	return words, waited
}

// StoreSpan implements Backing. Lines fully covered by the span are not
// fetched from the next level before being overwritten.
func (l *Level) StoreSpan(addr uint32, words []uint32) uint64 {
	waited := l.spanGate.Wait(addr)
	l.stats.WaitCycles += waited
	l.stats.Writes++

	for done := 0; done < len(words); {
		a := addr + uint32(done)
		offset := l.geometry.Offset(a)
		if l.terminal {
			offset = a - l.blockBase(a)
		}
		whole := offset == 0 && len(words)-done >= l.geometry.WordsPerLine

		line, offset, penalty := l.resolve(a, true, !whole)
		waited += penalty
		n := copy(line.words[offset:], words[done:])
		line.occupied = true
		l.markDirty(line)
		done += n
	}

	return waited
}

func (l *Level) poll(addr uint32) bool {
	if l.gate.Poll(addr) {
		return true
	}
	l.stats.WaitCycles++
	return false
}

// accessKind tells apart the polled operations that may share an address.
type accessKind uint8

const (
	kindRead accessKind = iota
	kindWrite
	kindReadBlock
	kindWriteBlock
)

type pendingKey struct {
	addr uint32
	kind accessKind
}

// pendingAccess is an access that has been performed and is waiting out
// the cycles the next level spent on it.
type pendingAccess struct {
	remaining uint64
	word      uint32
	block     []uint32
}

// settle advances a pending access. It returns waiting while penalty polls
// remain, and the access itself on the poll that completes it.
func (l *Level) settle(key pendingKey) (*pendingAccess, bool) {
	p, ok := l.pending[key]
	if !ok {
		return nil, false
	}

	if p.remaining > 0 {
		p.remaining--
		l.stats.WaitCycles++
		return nil, true
	}

	delete(l.pending, key)
	return p, false
}

// hold parks a performed access for penalty polls, the current poll being
// the first. It returns false when there is nothing to wait for.
func (l *Level) hold(key pendingKey, penalty uint64, p pendingAccess) bool {
	if penalty == 0 {
		return false
	}

	p.remaining = penalty - 1
	l.pending[key] = &p
	l.stats.WaitCycles++
	return true
}

func (l *Level) markDirty(line *Line) {
	if !l.terminal {
		line.dirty = true
	}
}

// resolve returns the line holding addr and the word offset within it,
// replacing a victim on a miss. fill selects whether the missing block is
// fetched from the next level. The third result is the number of cycles
// the next level waited for the write-back and the fill.
func (l *Level) resolve(addr uint32, write, fill bool) (*Line, uint32, uint64) {
	if l.terminal {
		return l.resolveTerminal(addr, write)
	}

	tag, index, offset := l.geometry.Decompose(addr)
	set := l.sets[index]

	var penalty uint64
	line := set.Lookup(tag)
	hit := line != nil
	if hit {
		l.stats.Hits++
	} else {
		l.stats.Misses++
		line, penalty = l.replace(set, tag, index, fill)
	}
	set.Touch(line)

	l.InvokeHook(sim.HookCtx{
		Domain: l,
		Pos:    HookPosAccess,
		Item:   AccessEvent{Level: l.name, Addr: addr, Write: write, Hit: hit},
	})

	return line, offset, penalty
}

func (l *Level) resolveTerminal(addr uint32, write bool) (*Line, uint32, uint64) {
	base := l.blockBase(addr)
	line, ok := l.store[base]
	if !ok {
		line = NewLine(l.geometry.WordsPerLine)
		line.tag = base
		line.occupied = true
		l.store[base] = line
	}
	l.stats.Hits++

	l.InvokeHook(sim.HookCtx{
		Domain: l,
		Pos:    HookPosAccess,
		Item:   AccessEvent{Level: l.name, Addr: addr, Write: write, Hit: true},
	})

	return line, addr - base, 0
}

func (l *Level) blockBase(addr uint32) uint32 {
	return addr - addr%uint32(l.geometry.WordsPerLine)
}

// replace evicts the LRU line of set, writing it back when dirty, and
// installs the block of tag in its place. It returns the line and the
// cycles the next level waited.
func (l *Level) replace(set *Set, tag, index uint32, fill bool) (*Line, uint64) {
	var waited uint64
	victim := set.FindLRU()

	if victim.occupied {
		victimAddr := l.geometry.Encode(victim.tag, index, 0)
		dirty := victim.dirty
		block := victim.Evict()
		l.stats.Evictions++

		l.InvokeHook(sim.HookCtx{
			Domain: l,
			Pos:    HookPosEvict,
			Item:   EvictEvent{Level: l.name, Addr: victimAddr, Dirty: dirty},
		})

		if dirty {
			waited += l.writeBack(victimAddr, block)
		}
	}

	base := l.geometry.Encode(tag, index, 0)
	block := make([]uint32, l.geometry.WordsPerLine)
	if fill && l.next != nil {
		words, fillWait := l.next.FetchSpan(base, l.geometry.WordsPerLine)
		copy(block, words)
		waited += fillWait
	}
	victim.Install(tag, block)

	l.InvokeHook(sim.HookCtx{
		Domain: l,
		Pos:    HookPosFill,
		Item:   FillEvent{Level: l.name, Addr: base},
	})

	return victim, waited
}

func (l *Level) writeBack(addr uint32, block []uint32) uint64 {
	l.stats.Writebacks++
	if l.next == nil {
		l.logger.Warn("dirty line dropped, no next level",
			"level", l.name, "addr", fmt.Sprintf("0x%X", addr))
		return 0
	}
	return l.next.StoreSpan(addr, block)
}

// Flush writes every dirty line back to the next level and leaves it clean.
func (l *Level) Flush() {
	for index, set := range l.sets {
		for _, line := range set.lines {
			if !line.occupied || !line.dirty {
				continue
			}
			addr := l.geometry.Encode(line.tag, uint32(index), 0)
			l.writeBack(addr, line.ReadBlock())
			line.dirty = false
		}
	}
}

// Invalidate empties the level without writing anything back.
func (l *Level) Invalidate() {
	l.gate.ResetAll()
	l.spanGate.ResetAll()
	clear(l.pending)

	if l.terminal {
		clear(l.store)
		return
	}
	for _, set := range l.sets {
		for _, line := range set.lines {
			line.Evict()
		}
	}
}

// Display prints count sets starting at the set of addr. A terminal level
// prints count blocks starting at the block of addr.
func (l *Level) Display(w io.Writer, addr uint32, count int) error {
	if l.terminal {
		return l.displayTerminal(w, addr, count)
	}

	index := int(l.geometry.Index(addr))
	if index+count > len(l.sets) {
		return fmt.Errorf("%s: sets %d..%d out of range (%d sets)",
			l.name, index, index+count-1, len(l.sets))
	}

	for i := index; i < index+count; i++ {
		fmt.Fprintf(w, "Set 0x%X\n", i)
		for way, line := range l.sets[i].lines {
			fmt.Fprintf(w, "  way %d tag 0x%X age %d dirty %t valid %t |",
				way, line.tag, line.age, line.dirty, line.occupied)
			writeWords(w, line.words)
		}
	}
	return nil
}

func (l *Level) displayTerminal(w io.Writer, addr uint32, count int) error {
	first := l.blockBase(addr)
	step := uint32(l.geometry.WordsPerLine)
	if count < 0 || int(first/step)+count > l.geometry.Lines {
		return fmt.Errorf("%s: blocks out of range (%d blocks)",
			l.name, l.geometry.Lines)
	}

	for i := 0; i < count; i++ {
		base := first + uint32(i)*step
		fmt.Fprintf(w, "0x%08X |", base)
		if line, ok := l.store[base]; ok {
			writeWords(w, line.words)
		} else {
			writeWords(w, make([]uint32, step))
		}
	}
	return nil
}

// Resident returns the block base addresses materialized in a terminal
// level, in ascending order.
func (l *Level) Resident() []uint32 {
	bases := make([]uint32, 0, len(l.store))
	for base := range l.store {
		bases = append(bases, base)
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })
	return bases
}

func writeWords(w io.Writer, words []uint32) {
	for _, word := range words {
		fmt.Fprintf(w, " %08X", word)
	}
	fmt.Fprintln(w)
}
