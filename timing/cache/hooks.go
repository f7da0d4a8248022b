package cache

import "github.com/sarchlab/akita/v4/sim"

// Hook positions invoked by a Level.
var (
	// HookPosAccess is invoked when a read or write completes. The item is
	// an AccessEvent.
	HookPosAccess = &sim.HookPos{Name: "CacheAccess"}

	// HookPosEvict is invoked when an occupied line is replaced. The item
	// is an EvictEvent.
	HookPosEvict = &sim.HookPos{Name: "CacheEvict"}

	// HookPosFill is invoked when a block is installed after a miss. The
	// item is a FillEvent.
	HookPosFill = &sim.HookPos{Name: "CacheFill"}
)

// AccessEvent describes one completed access.
type AccessEvent struct {
	Level string
	Addr  uint32
	Write bool
	Hit   bool
}

// EvictEvent describes one replaced line. Addr is the block base address
// rebuilt from the victim's tag.
type EvictEvent struct {
	Level string
	Addr  uint32
	Dirty bool
}

// FillEvent describes one block installed from the next level.
type FillEvent struct {
	Level string
	Addr  uint32
}
