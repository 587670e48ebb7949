// Package mailbox implements the per-node bounded inbox and the
// process-wide transport that routes messages between them (spec.md §4.5,
// §4.6). It is the only piece of cross-goroutine shared state in the
// simulator: every other datum belongs exclusively to one node.
package mailbox

import (
	"sync"

	"github.com/ehrlich-b/go-mesi/internal/constants"
	"github.com/ehrlich-b/go-mesi/internal/interfaces"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// Inbox is a bounded circular FIFO buffer for one node's incoming messages,
// protected by a single mutex shared between enqueue (Send, called by any
// node) and dequeue (Recv, called only by the owning node).
type Inbox struct {
	mu       sync.Mutex
	buf      []protocol.Message
	head     int
	tail     int
	count    int
	capacity int
}

// NewInbox allocates an Inbox with room for capacity messages.
func NewInbox(capacity int) *Inbox {
	return &Inbox{buf: make([]protocol.Message, capacity), capacity: capacity}
}

// enqueue writes msg at tail if room remains. Returns false if the inbox
// was full and the message was dropped.
func (b *Inbox) enqueue(msg protocol.Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count >= b.capacity {
		return false
	}
	b.buf[b.tail] = msg
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	return true
}

// Len reports the number of messages currently queued.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// dequeue pops the oldest message, if any. Called only by the owning node.
func (b *Inbox) dequeue() (protocol.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil, false
	}
	msg := b.buf[b.head]
	b.buf[b.head] = nil
	b.head = (b.head + 1) % b.capacity
	b.count--
	return msg, true
}

// Config configures a Switch's inboxes and overflow behavior.
type Config struct {
	NumNodes      int
	Capacity      int // per-inbox capacity; defaults to constants.MsgBufferSize
	DebugInvariants bool // hard error instead of silent drop on overflow
	Observer      interfaces.Observer
}

// Switch owns one Inbox per node and implements interfaces.Transport by
// routing a Send to the destination's Inbox.
type Switch struct {
	inboxes         []*Inbox
	debugInvariants bool
	observer        interfaces.Observer
}

// New builds a Switch with one inbox per node.
func New(config Config) *Switch {
	cap := config.Capacity
	if cap <= 0 {
		cap = constants.MsgBufferSize
	}
	inboxes := make([]*Inbox, config.NumNodes)
	for i := range inboxes {
		inboxes[i] = NewInbox(cap)
	}
	obs := config.Observer
	if obs == nil {
		obs = noopObserver{}
	}
	return &Switch{inboxes: inboxes, debugInvariants: config.DebugInvariants, observer: obs}
}

// Send enqueues msg into the destination node's inbox. On overflow it
// either returns a structured overflow error (DebugInvariants mode) or
// silently drops the message (spec.md §4.1) while still recording the drop
// with the observer.
func (s *Switch) Send(to protocol.NodeID, msg protocol.Message) error {
	ok := s.inboxes[to].enqueue(msg)
	s.observer.ObserveSend(msg.Kind(), !ok)
	if !ok && s.debugInvariants {
		return overflowError{node: to, addr: msg.Address()}
	}
	return nil
}

// Recv dequeues the next message for node id, if any. Called only by that
// node's own event-loop goroutine.
func (s *Switch) Recv(id protocol.NodeID) (protocol.Message, bool) {
	return s.inboxes[id].dequeue()
}

// Len reports how many messages are queued for node id.
func (s *Switch) Len(id protocol.NodeID) int {
	return s.inboxes[id].Len()
}

// overflowError is returned by Send in debug-invariants mode. The
// coherence engine's send path turns it into a fatal panic with
// diagnostics (spec.md §7); callers outside that path that build their
// own Transport can use Node/Address to construct a *mesi.Error via
// mesi.NewOverflowError without importing this package's error type.
type overflowError struct {
	node protocol.NodeID
	addr protocol.Addr
}

func (e overflowError) Error() string { return "mailbox: destination inbox full" }

// Node returns the destination node whose inbox overflowed.
func (e overflowError) Node() protocol.NodeID { return e.node }

// Address returns the address of the message that was dropped.
func (e overflowError) Address() protocol.Addr { return e.addr }

type noopObserver struct{}

func (noopObserver) ObserveSend(protocol.TxType, bool)                        {}
func (noopObserver) ObserveCacheAccess(bool)                                  {}
func (noopObserver) ObserveTransition(protocol.MESIState, protocol.MESIState) {}
func (noopObserver) ObserveEviction()                                         {}

var _ interfaces.Transport = (*Switch)(nil)
