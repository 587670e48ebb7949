// Package workload loads per-node instruction streams (spec.md §6). The
// core simulator treats instruction loading as an external collaborator
// behind the Source interface, so the coherence engine never touches a
// filesystem.
package workload

import "github.com/ehrlich-b/go-mesi/internal/protocol"

// Source supplies one node's instruction stream.
type Source interface {
	// Load returns the instructions for node id, truncated to MaxInstr.
	Load(id protocol.NodeID) ([]protocol.Instruction, error)
}

// StaticSource is a Source backed by a fixed in-memory program per node,
// useful for tests.
type StaticSource struct {
	Programs map[protocol.NodeID][]protocol.Instruction
}

// Load returns the node's static program, or an empty stream if none was
// configured.
func (s StaticSource) Load(id protocol.NodeID) ([]protocol.Instruction, error) {
	return s.Programs[id], nil
}

var _ Source = StaticSource{}
