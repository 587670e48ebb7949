// Package protocol defines the wire types of the coherence simulator:
// addresses, cache lines, directory entries, instructions, and the tagged
// message union exchanged between nodes. It is pure data — no engine
// logic lives here — so both the node/coherence packages and the root
// package can depend on it without a cycle.
package protocol

import "github.com/ehrlich-b/go-mesi/internal/constants"

// NodeID identifies a processor node, 0..NumProcs-1.
type NodeID int

// Addr is an 8-bit physical address: upper nibble is the home node id,
// lower nibble is the offset within that node's memory slice.
type Addr byte

// Home returns the node id that owns addr's memory slice.
func (a Addr) Home() NodeID {
	return NodeID(a >> 4)
}

// Offset returns the memory offset within the home node's slice.
func (a Addr) Offset() int {
	return int(a & 0x0F)
}

// Slot returns the direct-mapped cache index this address occupies.
func (a Addr) Slot() int {
	return a.Offset() % constants.CacheSize
}

// MakeAddr builds an Addr from a home node id and an offset.
func MakeAddr(home NodeID, offset int) Addr {
	return Addr(byte(home)<<4 | byte(offset&0x0F))
}
