// Package coherence implements the directory engine (home-side) and cache
// engine (requester/owner-side) state machines from spec.md §4.2-§4.4. Both
// engines live together in a single Engine per node because a real node is
// simultaneously a cache for every address and a directory home for the
// addresses in its own slice — exactly as the reference implementation
// structures it.
package coherence

import (
	"fmt"

	"github.com/ehrlich-b/go-mesi/internal/constants"
	"github.com/ehrlich-b/go-mesi/internal/interfaces"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// Engine owns one node's private state: its slice of home memory, the
// directory entries for that slice, and its local cache. None of this is
// touched by any other goroutine; only Transport.Send crosses goroutines.
type Engine struct {
	id protocol.NodeID

	memory    [constants.MemSize]byte
	directory [constants.MemSize]protocol.DirectoryEntry
	cache     [constants.CacheSize]protocol.CacheLine

	// awaitingResponse tracks the single outstanding transaction a node
	// may have at once (spec.md §4.5). pendingValue carries the write
	// value for a still-in-flight write; the resident line for that
	// address stays live in the cache until install time, so no separate
	// pending-address field is needed.
	awaitingResponse bool
	pendingValue     byte

	transport       interfaces.Transport
	logger          interfaces.Logger
	observer        interfaces.Observer
	debugInvariants bool
}

// Config configures a new Engine.
type Config struct {
	ID              protocol.NodeID
	Transport       interfaces.Transport
	Logger          interfaces.Logger
	Observer        interfaces.Observer
	DebugInvariants bool
}

// New constructs an Engine with all cache lines and directory entries reset
// to their initial values (spec.md §3).
func New(config Config) *Engine {
	e := &Engine{
		id:              config.ID,
		transport:       config.Transport,
		logger:          config.Logger,
		observer:        config.Observer,
		debugInvariants: config.DebugInvariants,
	}
	for i := range e.cache {
		e.cache[i] = protocol.InvalidLine
	}
	for i := range e.directory {
		e.directory[i] = protocol.DirectoryEntry{State: protocol.U}
	}
	// Reference memory seeding (original_source/assignment.c): each home
	// node's slice is pre-populated so tests have deterministic values to
	// read before any write occurs.
	for i := range e.memory {
		e.memory[i] = byte(20*int(e.id) + i)
	}
	return e
}

// ID returns the node this engine belongs to.
func (e *Engine) ID() protocol.NodeID { return e.id }

// AwaitingResponse reports whether the node has an outstanding transaction
// and must not advance its instruction pointer (spec.md §4.5 step 2).
func (e *Engine) AwaitingResponse() bool { return e.awaitingResponse }

// Memory returns the current memory slice, for the final state dump.
func (e *Engine) Memory() [constants.MemSize]byte { return e.memory }

// Directory returns the current directory entries, for the final state dump.
func (e *Engine) Directory() [constants.MemSize]protocol.DirectoryEntry { return e.directory }

// Cache returns the current cache lines, for the final state dump.
func (e *Engine) Cache() [constants.CacheSize]protocol.CacheLine { return e.cache }

// send hands msg to the transport. Under DebugInvariants, a transport
// error means the destination's mailbox overflowed despite
// MsgBufferSize — a protocol invariant violation per spec.md §7, fatal
// with diagnostics identifying the node, address, and offending message
// rather than a silent drop.
func (e *Engine) send(to protocol.NodeID, msg protocol.Message) {
	err := e.transport.Send(to, msg)
	if err == nil {
		return
	}
	if e.debugInvariants {
		panic(fmt.Sprintf("mesi: node %d: mailbox overflow delivering %v to node %d for address 0x%02X: %v",
			e.id, msg.Kind(), to, byte(msg.Address()), err))
	}
	if e.logger != nil {
		e.logger.Printf("node %d: send %v to %d failed: %v", e.id, msg.Kind(), to, err)
	}
}

func (e *Engine) observeTransition(from, to protocol.MESIState) {
	if e.observer != nil {
		e.observer.ObserveTransition(from, to)
	}
}

func (e *Engine) observeCacheAccess(hit bool) {
	if e.observer != nil {
		e.observer.ObserveCacheAccess(hit)
	}
}

func (e *Engine) observeEviction() {
	if e.observer != nil {
		e.observer.ObserveEviction()
	}
}
