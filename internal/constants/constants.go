// Package constants holds the compile-time parameters of the simulator.
package constants

import "time"

// Fixed simulation parameters. internal/config can read override values
// for them from a TOML file, but of those only num_procs is applied (by
// cmd/meshsim, as the node count); memory, cache, mailbox, and
// instruction-count sizes always use the values below.
const (
	// NumProcs is the number of processor nodes.
	NumProcs = 4

	// MemSize is the number of bytes of memory each node's home slice holds.
	MemSize = 16

	// CacheSize is the number of direct-mapped lines in each node's cache.
	CacheSize = 4

	// MsgBufferSize is the capacity of each node's inbound mailbox.
	MsgBufferSize = 256

	// MaxInstr is the maximum number of instructions loaded per node.
	MaxInstr = 32

	// InvalidAddress is the sentinel address of an empty cache line.
	InvalidAddress = 0xFF
)

// Idle/poll timing. None of this feeds protocol decisions (spec.md's
// no-timing-simulation non-goal is about the coherence protocol, not about
// how hard an idle node spins); it only bounds how aggressively a node
// re-checks its mailbox when it cannot issue an instruction.
const (
	// IdleBackoff is how long a node sleeps between mailbox checks while it
	// waits on an outstanding transaction, and once it has dumped its final
	// state and has no instructions left to issue.
	IdleBackoff = 200 * time.Microsecond

	// QuiescenceConfirmations is how many consecutive all-nodes-idle polls
	// the driver requires before declaring the simulation finished, to
	// reduce the chance of stopping while a message is still in flight.
	QuiescenceConfirmations = 3

	// QuiescencePollInterval is the driver's polling period while waiting
	// for every node to reach the dumped+idle+empty-mailbox state.
	QuiescencePollInterval = 500 * time.Microsecond
)
