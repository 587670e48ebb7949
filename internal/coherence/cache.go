package coherence

import "github.com/ehrlich-b/go-mesi/internal/protocol"

// Issue implements spec.md §4.3 "On instruction issue". It is called by the
// node event loop only when awaitingResponse is false.
func (e *Engine) Issue(instr protocol.Instruction) {
	addr := instr.Address
	slot := addr.Slot()
	line := &e.cache[slot]

	switch instr.Kind {
	case protocol.Read:
		if line.Address == addr && line.State != protocol.Invalid {
			e.observeCacheAccess(true)
			return
		}
		e.observeCacheAccess(false)
		e.awaitingResponse = true
		e.send(addr.Home(), protocol.NewReadRequest(e.id, addr))

	case protocol.Write:
		if line.Address == addr && (line.State == protocol.Modified || line.State == protocol.Exclusive) {
			e.observeCacheAccess(true)
			from := line.State
			line.Value = instr.Value
			line.State = protocol.Modified
			e.observeTransition(from, protocol.Modified)
			return
		}
		if line.Address == addr && line.State == protocol.Shared {
			e.observeCacheAccess(true)
			e.pendingValue = instr.Value
			e.awaitingResponse = true
			e.send(addr.Home(), protocol.NewUpgrade(e.id, addr))
			return
		}
		e.observeCacheAccess(false)
		e.pendingValue = instr.Value
		e.awaitingResponse = true
		e.send(addr.Home(), protocol.NewWriteRequest(e.id, addr, instr.Value))
	}
}

// installLine evicts the slot's current occupant if it differs from addr,
// then installs {addr, value, state}, recording the MESI transition.
func (e *Engine) installLine(addr protocol.Addr, value byte, state protocol.MESIState) {
	slot := addr.Slot()
	line := &e.cache[slot]
	if line.Address != addr {
		e.evictIfOccupied(addr)
	}
	from := line.State
	*line = protocol.CacheLine{Address: addr, Value: value, State: state}
	e.observeTransition(from, state)
}

// unblock clears the outstanding-transaction flag (spec.md §4.5).
func (e *Engine) unblock() {
	e.awaitingResponse = false
}

// handleReplyRD implements spec.md §4.3 "On REPLY_RD to requester R".
func (e *Engine) handleReplyRD(msg protocol.ReplyRD) {
	state := protocol.Shared
	if msg.Hint == protocol.EM {
		state = protocol.Exclusive
	}
	e.installLine(msg.Address(), msg.Value, state)
	e.unblock()
}

// handleReplyWR implements spec.md §4.3 "On REPLY_WR to requester R".
func (e *Engine) handleReplyWR(msg protocol.ReplyWR) {
	e.installLine(msg.Address(), e.pendingValue, protocol.Modified)
	e.unblock()
}

// handleReplyID implements spec.md §4.3 "On REPLY_ID to requester R".
func (e *Engine) handleReplyID(msg protocol.ReplyID) {
	addr := msg.Address()
	for _, id := range msg.Sharers.Members() {
		e.send(protocol.NodeID(id), protocol.NewInv(e.id, addr))
	}
	e.installLine(addr, e.pendingValue, protocol.Modified)
	e.unblock()
}

// handleInv implements spec.md §4.3 "On INV".
func (e *Engine) handleInv(msg protocol.Inv) {
	addr := msg.Address()
	slot := addr.Slot()
	line := &e.cache[slot]
	if line.Address == addr {
		from := line.State
		line.State = protocol.Invalid
		e.observeTransition(from, protocol.Invalid)
	}
}

// handleWritebackInt implements spec.md §4.3 "On WRITEBACK_INT (owner O...)".
func (e *Engine) handleWritebackInt(msg protocol.WritebackInt) {
	addr := msg.Address()
	slot := addr.Slot()
	line := &e.cache[slot]
	value := line.Value
	home := addr.Home()
	requester := msg.Requester

	e.send(home, protocol.NewFlush(e.id, addr, value, requester))
	if home != requester {
		e.send(requester, protocol.NewFlush(e.id, addr, value, requester))
	}

	from := line.State
	line.State = protocol.Shared
	e.observeTransition(from, protocol.Shared)
}

// handleWritebackInv implements spec.md §4.3 "On WRITEBACK_INV (owner O...)".
func (e *Engine) handleWritebackInv(msg protocol.WritebackInv) {
	addr := msg.Address()
	slot := addr.Slot()
	line := &e.cache[slot]
	value := line.Value
	home := addr.Home()
	requester := msg.Requester

	e.send(home, protocol.NewFlushInvAck(e.id, addr, value, requester))
	if home != requester {
		e.send(requester, protocol.NewFlushInvAck(e.id, addr, value, requester))
	}

	from := line.State
	line.State = protocol.Invalid
	e.observeTransition(from, protocol.Invalid)
}

// handleFlushAsRequester implements the requester branch of spec.md §4.3
// "On FLUSH at a node X", where X == msg.Requester.
func (e *Engine) handleFlushAsRequester(msg protocol.Flush) {
	e.installLine(msg.Address(), msg.Value, protocol.Shared)
	e.unblock()
}

// handleFlushInvAckAsRequester implements the requester branch of spec.md
// §4.3 "On FLUSH_INVACK at a node X", where X == msg.Requester.
func (e *Engine) handleFlushInvAckAsRequester(msg protocol.FlushInvAck) {
	e.installLine(msg.Address(), e.pendingValue, protocol.Modified)
	e.unblock()
}
