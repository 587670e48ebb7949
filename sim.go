// Package mesi implements a directory-based MESI cache-coherence
// simulator: a fixed set of processor nodes, each with a private
// direct-mapped cache and a home directory slice, executing independent
// instruction streams while exchanging coherence messages over bounded
// per-node inboxes (spec.md §1-§5).
package mesi

import (
	"context"
	"sync"
	"time"

	"github.com/ehrlich-b/go-mesi/internal/constants"
	"github.com/ehrlich-b/go-mesi/internal/interfaces"
	"github.com/ehrlich-b/go-mesi/internal/logging"
	"github.com/ehrlich-b/go-mesi/internal/mailbox"
	"github.com/ehrlich-b/go-mesi/internal/node"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
	"github.com/ehrlich-b/go-mesi/internal/reporter"
	"github.com/ehrlich-b/go-mesi/internal/workload"
)

// Params configures a Simulation.
type Params struct {
	NumNodes        int              // defaults to NumProcs
	Source          workload.Source  // required: per-node instruction streams
	OutputDir       string           // if set, each node writes core_<k>_output.txt here
	Logger          *logging.Logger  // defaults to logging.Default()
	Observer        Observer         // defaults to NoOpObserver
	DebugInvariants bool             // hard-error on mailbox overflow and invariant violations
}

// Simulation owns one mailbox.Switch and one node.Node per processor,
// wiring them exactly as spec.md §2's data-flow diagram describes: node
// event loop -> cache engine -> send to home -> directory engine ->
// reply/forward -> cache engine at requester -> resumes event loop.
type Simulation struct {
	params Params
	sw     *mailbox.Switch
	nodes  []*node.Node
}

// New builds a Simulation, loading every node's instruction stream from
// params.Source. It returns a *Error wrapping a config/parse failure.
func New(params Params) (*Simulation, error) {
	if params.NumNodes <= 0 {
		params.NumNodes = NumProcs
	}
	if params.Source == nil {
		return nil, NewConfigError("mesi.New", "Params.Source is required")
	}
	logger := params.Logger
	if logger == nil {
		logger = logging.Default()
	}
	observer := params.Observer
	if observer == nil {
		observer = NoOpObserver{}
	}

	sw := mailbox.New(mailbox.Config{
		NumNodes:        params.NumNodes,
		DebugInvariants: params.DebugInvariants,
		Observer:        observerAdapter{observer},
	})

	s := &Simulation{params: params, sw: sw}
	for i := 0; i < params.NumNodes; i++ {
		id := protocol.NodeID(i)
		instrs, err := params.Source.Load(id)
		if err != nil {
			return nil, NewParseError("mesi.New", "failed to load instructions", err)
		}
		logger.Infof("Processor %d initialized", i)
		s.nodes = append(s.nodes, node.New(node.Config{
			ID:              id,
			Switch:          sw,
			Instructions:    instrs,
			Logger:          loggerAdapter{logger},
			Observer:        observerAdapter{observer},
			DebugInvariants: params.DebugInvariants,
		}))
	}
	return s, nil
}

// Run starts every node's event loop, writes each node's output file as
// soon as it finishes its instruction stream (if OutputDir is set), and
// blocks until the whole simulation reaches quiescence: every node has
// dumped its final state and every inbox has stayed empty across
// QuiescenceConfirmations consecutive polls.
func (s *Simulation) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, n := range s.nodes {
		wg.Add(1)
		go func(n *node.Node) {
			defer wg.Done()
			n.Run(ctx)
		}(n)
	}

	var writeErr error
	var writeMu sync.Mutex
	var writeWg sync.WaitGroup
	for _, n := range s.nodes {
		writeWg.Add(1)
		go func(n *node.Node) {
			defer writeWg.Done()
			select {
			case <-n.Done():
			case <-ctx.Done():
				return
			}
			if s.params.OutputDir == "" {
				return
			}
			if err := reporter.WriteFile(s.params.OutputDir, n.State()); err != nil {
				writeMu.Lock()
				if writeErr == nil {
					writeErr = NewIOError("WriteReport", err)
				}
				writeMu.Unlock()
			}
		}(n)
	}

	s.waitForQuiescence(ctx)
	writeWg.Wait()
	cancel()
	wg.Wait()

	writeMu.Lock()
	defer writeMu.Unlock()
	return writeErr
}

// waitForQuiescence polls every node's Done state and every inbox's length
// until both have held steady (all done, all empty) for
// QuiescenceConfirmations consecutive polls (spec.md §4.5's "external
// driver decides all nodes have reached the quiescent state").
func (s *Simulation) waitForQuiescence(ctx context.Context) {
	confirmations := 0
	ticker := time.NewTicker(constants.QuiescencePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.quiescent() {
			confirmations++
			if confirmations >= constants.QuiescenceConfirmations {
				return
			}
			continue
		}
		confirmations = 0
	}
}

func (s *Simulation) quiescent() bool {
	for i, n := range s.nodes {
		select {
		case <-n.Done():
		default:
			return false
		}
		if s.sw.Len(protocol.NodeID(i)) > 0 {
			return false
		}
	}
	return true
}

// States returns every node's final dumped state, valid only after Run
// returns.
func (s *Simulation) States() []reporter.NodeState {
	states := make([]reporter.NodeState, len(s.nodes))
	for i, n := range s.nodes {
		states[i] = n.State()
	}
	return states
}

// LiveStates returns every node's most recently refreshed snapshot, safe
// to poll while Run is still executing. It backs the optional --watch
// dashboard (internal/tui); it has no effect on protocol decisions.
func (s *Simulation) LiveStates() []reporter.NodeState {
	states := make([]reporter.NodeState, len(s.nodes))
	for i, n := range s.nodes {
		states[i] = n.LiveSnapshot()
	}
	return states
}

// NumNodes returns how many processor nodes this Simulation wires.
func (s *Simulation) NumNodes() int { return len(s.nodes) }

// loggerAdapter narrows *logging.Logger to interfaces.Logger without the
// internal engine packages importing logrus.
type loggerAdapter struct{ l *logging.Logger }

func (a loggerAdapter) Printf(format string, args ...interface{}) { a.l.Infof(format, args...) }
func (a loggerAdapter) Debugf(format string, args ...interface{}) { a.l.Debugf(format, args...) }

// observerAdapter narrows the root Observer interface to
// interfaces.Observer so internal packages don't import the root package
// (which would create an import cycle).
type observerAdapter struct{ o Observer }

func (a observerAdapter) ObserveSend(kind protocol.TxType, dropped bool) {
	a.o.ObserveSend(kind, dropped)
}
func (a observerAdapter) ObserveCacheAccess(hit bool) { a.o.ObserveCacheAccess(hit) }
func (a observerAdapter) ObserveTransition(from, to protocol.MESIState) {
	a.o.ObserveTransition(from, to)
}
func (a observerAdapter) ObserveEviction() { a.o.ObserveEviction() }

var _ interfaces.Logger = loggerAdapter{}
var _ interfaces.Observer = observerAdapter{}
