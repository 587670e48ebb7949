package coherence

import (
	"github.com/ehrlich-b/go-mesi/internal/bitvector"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// handleReadRequest implements spec.md §4.2 "On READ_REQUEST from R".
// Precondition: e.id == addr.Home().
func (e *Engine) handleReadRequest(msg protocol.ReadRequest) {
	addr := msg.Address()
	offset := addr.Offset()
	r := msg.Sender()
	dir := &e.directory[offset]

	switch dir.State {
	case protocol.U:
		e.send(r, protocol.NewReplyRD(e.id, addr, e.memory[offset], protocol.EM))
		dir.State = protocol.EM
		dir.Sharers = bitvector.Of(int(r))
	case protocol.S:
		e.send(r, protocol.NewReplyRD(e.id, addr, e.memory[offset], protocol.S))
		dir.Sharers = dir.Sharers.Set(int(r))
	case protocol.EM:
		owner := protocol.NodeID(dir.Sharers.Lowest())
		e.send(owner, protocol.NewWritebackInt(e.id, addr, r))
		// Directory state is not updated here; it is updated when the
		// owner's FLUSH arrives.
	}
}

// handleWriteRequest implements spec.md §4.2 "On WRITE_REQUEST from R".
// Precondition: e.id == addr.Home().
func (e *Engine) handleWriteRequest(msg protocol.WriteRequest) {
	addr := msg.Address()
	offset := addr.Offset()
	r := msg.Sender()
	dir := &e.directory[offset]

	switch dir.State {
	case protocol.U:
		e.send(r, protocol.NewReplyWR(e.id, addr))
	case protocol.S:
		e.send(r, protocol.NewReplyID(e.id, addr, dir.Sharers.Clear(int(r))))
	case protocol.EM:
		owner := protocol.NodeID(dir.Sharers.Lowest())
		e.send(owner, protocol.NewWritebackInv(e.id, addr, msg.Value, r))
	}

	// Directory optimistically reflects the post-transaction owner in all
	// three branches (spec.md §9 Open Questions: this is deliberate).
	dir.State = protocol.EM
	dir.Sharers = bitvector.Of(int(r))
}

// handleUpgrade implements spec.md §4.2 "On UPGRADE from R".
// Precondition: e.id == addr.Home().
func (e *Engine) handleUpgrade(msg protocol.Upgrade) {
	addr := msg.Address()
	offset := addr.Offset()
	r := msg.Sender()
	dir := &e.directory[offset]

	e.send(r, protocol.NewReplyID(e.id, addr, dir.Sharers.Clear(int(r))))
	dir.State = protocol.EM
	dir.Sharers = bitvector.Of(int(r))
}

// handleEvictSharedAsHome implements the home-side branch of spec.md §4.2
// "On EVICT_SHARED from E". Precondition: e.id == addr.Home().
func (e *Engine) handleEvictSharedAsHome(msg protocol.EvictShared) {
	addr := msg.Address()
	offset := addr.Offset()
	evictor := msg.Sender()
	dir := &e.directory[offset]

	dir.Sharers = dir.Sharers.Clear(int(evictor))
	switch dir.Sharers.Popcount() {
	case 0:
		dir.State = protocol.U
	case 1:
		dir.State = protocol.EM
		l := protocol.NodeID(dir.Sharers.Lowest())
		if l != e.id {
			e.send(l, protocol.NewEvictShared(e.id, addr, e.memory[offset]))
		} else {
			e.promoteLocalToExclusive(addr, e.memory[offset])
		}
	}
}

// handleEvictModified implements spec.md §4.2 "On EVICT_MODIFIED from E".
// Precondition: e.id == addr.Home().
func (e *Engine) handleEvictModified(msg protocol.EvictModified) {
	offset := msg.Address().Offset()
	dir := &e.directory[offset]

	e.memory[offset] = msg.Value
	dir.Sharers = bitvector.Vector(0)
	dir.State = protocol.U
}

// handleFlushAsHome implements the home-side branch of spec.md §4.3
// "On FLUSH at a node X". Precondition: e.id == addr.Home().
func (e *Engine) handleFlushAsHome(msg protocol.Flush) {
	offset := msg.Address().Offset()
	dir := &e.directory[offset]

	dir.State = protocol.S
	dir.Sharers = dir.Sharers.Set(int(msg.Requester))
	e.memory[offset] = msg.Value
}

// handleFlushInvAckAsHome implements the home-side branch of spec.md §4.3
// "On FLUSH_INVACK at a node X". Precondition: e.id == addr.Home().
func (e *Engine) handleFlushInvAckAsHome(msg protocol.FlushInvAck) {
	offset := msg.Address().Offset()
	dir := &e.directory[offset]

	dir.Sharers = bitvector.Of(int(msg.Requester))
	e.memory[offset] = msg.Value
}

// promoteLocalToExclusive sets this node's cached line for addr to
// Exclusive with value, if the slot still holds addr; otherwise it does
// nothing. It runs when the home is also the sole remaining sharer, and on
// a sharer receiving the home's EVICT_SHARED promotion notice (spec.md §4.2).
func (e *Engine) promoteLocalToExclusive(addr protocol.Addr, value byte) {
	slot := addr.Slot()
	line := &e.cache[slot]
	if line.Address == addr {
		from := line.State
		line.Value = value
		line.State = protocol.Exclusive
		e.observeTransition(from, protocol.Exclusive)
	}
}
