// Package latency models fixed access latency for memory levels.
//
// A Gate keeps one timer per in-flight address. Polling an address whose
// timer is below the latency increments the timer and reports that the
// access is still waiting. Polling once the timer has reached the latency
// completes the access and resets the timer to zero.
package latency

// Gate gates accesses behind a fixed latency, one timer per address.
type Gate struct {
	latency uint64
	timers  map[uint32]uint64
}

// NewGate creates a gate with the given latency in cycles.
func NewGate(latency uint64) *Gate {
	return &Gate{
		latency: latency,
		timers:  make(map[uint32]uint64),
	}
}

// Latency returns the configured latency.
func (g *Gate) Latency() uint64 {
	return g.latency
}

// Poll advances the access to addr by one cycle. It returns true when the
// access completes on this poll.
func (g *Gate) Poll(addr uint32) bool {
	t := g.timers[addr]
	if t < g.latency {
		g.timers[addr] = t + 1
		return false
	}

	delete(g.timers, addr)
	return true
}

// Wait polls addr until the access completes and returns the number of
// polls that reported waiting.
func (g *Gate) Wait(addr uint32) uint64 {
	var waited uint64
	for !g.Poll(addr) {
		waited++
	}
	return waited
}

// Timer returns the number of cycles the access to addr has waited.
func (g *Gate) Timer(addr uint32) uint64 {
	return g.timers[addr]
}

// Reset abandons the access to addr.
func (g *Gate) Reset(addr uint32) {
	delete(g.timers, addr)
}

// ResetAll abandons every in-flight access.
func (g *Gate) ResetAll() {
	clear(g.timers)
}

// Pending returns the number of addresses with an access in flight.
func (g *Gate) Pending() int {
	return len(g.timers)
}

// Clone returns a deep copy of the gate.
func (g *Gate) Clone() *Gate {
	c := NewGate(g.latency)
	for addr, t := range g.timers {
		c.timers[addr] = t
	}
	return c
}
