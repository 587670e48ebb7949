package coherence

import "github.com/ehrlich-b/go-mesi/internal/protocol"

// evictIfOccupied implements spec.md §4.4. If the slot for newAddr already
// holds a different valid address, it is evicted: a fire-and-forget
// EVICT_SHARED or EVICT_MODIFIED notice is sent to the resident's home, and
// the slot is reset to Invalid before the caller installs the new line.
func (e *Engine) evictIfOccupied(newAddr protocol.Addr) {
	slot := newAddr.Slot()
	line := &e.cache[slot]
	if line.State == protocol.Invalid || line.Address == newAddr {
		return
	}

	home := line.Address.Home()
	switch line.State {
	case protocol.Modified:
		e.send(home, protocol.NewEvictModified(e.id, line.Address, line.Value))
	case protocol.Exclusive, protocol.Shared:
		e.send(home, protocol.NewEvictShared(e.id, line.Address, 0))
	}

	e.observeTransition(line.State, protocol.Invalid)
	e.observeEviction()
	*line = protocol.InvalidLine
}
