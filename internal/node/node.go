// Package node implements the per-node event loop of spec.md §4.5: drain
// the inbox to completion, then advance the instruction pointer while no
// transaction is outstanding, and finally dump state once and idle.
package node

import (
	"context"
	"sync"
	"time"

	"github.com/ehrlich-b/go-mesi/internal/coherence"
	"github.com/ehrlich-b/go-mesi/internal/constants"
	"github.com/ehrlich-b/go-mesi/internal/interfaces"
	"github.com/ehrlich-b/go-mesi/internal/mailbox"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
	"github.com/ehrlich-b/go-mesi/internal/reporter"
)

// Config configures a Node.
type Config struct {
	ID              protocol.NodeID
	Switch          *mailbox.Switch
	Instructions    []protocol.Instruction
	Logger          interfaces.Logger
	Observer        interfaces.Observer
	DebugInvariants bool
}

// Node owns one processor's event loop: an instruction cursor, the engine
// implementing its cache and (for owned addresses) its directory, and a
// one-shot "needs final dump" flag.
type Node struct {
	id           protocol.NodeID
	sw           *mailbox.Switch
	engine       *coherence.Engine
	instructions []protocol.Instruction
	logger       interfaces.Logger

	ip     int
	dumped bool
	done   chan struct{}

	// lastState is written exactly once, before done is closed, and read
	// only after done is closed — the channel close happens-before
	// guarantee makes this safe without an additional mutex.
	lastState reporter.NodeState

	// liveMu guards live, a best-effort snapshot refreshed on every loop
	// iteration so an external watcher (internal/tui) can poll node state
	// while the simulation is still running, without racing the event
	// loop's unsynchronized engine access.
	liveMu sync.RWMutex
	live   reporter.NodeState
}

// New constructs a Node ready to Run.
func New(config Config) *Node {
	engine := coherence.New(coherence.Config{
		ID:              config.ID,
		Transport:       config.Switch,
		Logger:          config.Logger,
		Observer:        config.Observer,
		DebugInvariants: config.DebugInvariants,
	})
	return &Node{
		id:           config.ID,
		sw:           config.Switch,
		engine:       engine,
		instructions: config.Instructions,
		logger:       config.Logger,
		ip:           -1,
		done:         make(chan struct{}),
	}
}

// Done returns a channel closed once this node has emitted its final state
// dump (spec.md §4.5 step 4). The node keeps running after that point,
// still draining its inbox, until ctx is cancelled.
func (n *Node) Done() <-chan struct{} { return n.done }

// State returns the most recent state dump snapshot. Valid only after Done
// has been closed.
func (n *Node) State() reporter.NodeState { return n.lastState }

// LiveSnapshot returns the most recently refreshed state snapshot, safe to
// call from any goroutine at any point in the node's lifetime. Unlike
// State, it may observe a mid-transaction snapshot while the simulation is
// still running; it exists for the optional --watch dashboard, which only
// presents state and never feeds it back into protocol decisions.
func (n *Node) LiveSnapshot() reporter.NodeState {
	n.liveMu.RLock()
	defer n.liveMu.RUnlock()
	return n.live
}

// Run executes the event loop until ctx is cancelled. It is meant to run in
// its own goroutine, one per node, started only after every node has
// finished initialization (spec.md §5 "Startup barrier").
func (n *Node) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n.drainInbox()
		n.refreshLive()

		if n.engine.AwaitingResponse() {
			sleep(ctx, constants.IdleBackoff)
			continue
		}

		if n.ip < len(n.instructions)-1 {
			n.ip++
			n.engine.Issue(n.instructions[n.ip])
			continue
		}

		if !n.dumped {
			n.dumped = true
			n.lastState = n.snapshot()
			close(n.done)
			if n.logger != nil {
				n.logger.Printf("node %d: instruction stream complete, final state dumped", n.id)
			}
		}
		sleep(ctx, constants.IdleBackoff)
	}
}

func (n *Node) drainInbox() {
	for {
		msg, ok := n.sw.Recv(n.id)
		if !ok {
			return
		}
		n.engine.Dispatch(msg)
	}
}

func (n *Node) snapshot() reporter.NodeState {
	return reporter.NodeState{
		ID:        n.id,
		Memory:    n.engine.Memory(),
		Directory: n.engine.Directory(),
		Cache:     n.engine.Cache(),
	}
}

func (n *Node) refreshLive() {
	snap := n.snapshot()
	n.liveMu.Lock()
	n.live = snap
	n.liveMu.Unlock()
}

// sleep backs off briefly, respecting context cancellation so shutdown is
// not delayed by a full idle tick.
func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
