package coherence

import "github.com/ehrlich-b/go-mesi/internal/protocol"

// Dispatch handles one inbound message, routing it to the directory-engine
// or cache-engine handler(s) appropriate for this node's role with respect
// to the message (spec.md §4.2-§4.4). A node may play more than one role
// for the same message — e.g. FLUSH's home and requester branches both run
// when home == requester — so dispatch is driven by address/requester
// comparisons rather than solely by message kind.
func (e *Engine) Dispatch(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.ReadRequest:
		e.handleReadRequest(m)
	case protocol.WriteRequest:
		e.handleWriteRequest(m)
	case protocol.Upgrade:
		e.handleUpgrade(m)
	case protocol.EvictModified:
		e.handleEvictModified(m)

	case protocol.EvictShared:
		if e.id == m.Address().Home() {
			e.handleEvictSharedAsHome(m)
		} else {
			e.promoteLocalToExclusive(m.Address(), m.Value)
		}

	case protocol.ReplyRD:
		e.handleReplyRD(m)
	case protocol.ReplyWR:
		e.handleReplyWR(m)
	case protocol.ReplyID:
		e.handleReplyID(m)
	case protocol.Inv:
		e.handleInv(m)
	case protocol.WritebackInt:
		e.handleWritebackInt(m)
	case protocol.WritebackInv:
		e.handleWritebackInv(m)

	case protocol.Flush:
		if e.id == m.Address().Home() {
			e.handleFlushAsHome(m)
		}
		if e.id == m.Requester {
			e.handleFlushAsRequester(m)
		}

	case protocol.FlushInvAck:
		if e.id == m.Address().Home() {
			e.handleFlushInvAckAsHome(m)
		}
		if e.id == m.Requester {
			e.handleFlushInvAckAsRequester(m)
		}
	}
}
