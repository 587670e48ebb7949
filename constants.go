package mesi

import "github.com/ehrlich-b/go-mesi/internal/constants"

// Re-export fixed compile-time parameters for public API (spec.md §2).
const (
	NumProcs      = constants.NumProcs
	MemSize       = constants.MemSize
	CacheSize     = constants.CacheSize
	MsgBufferSize = constants.MsgBufferSize
	MaxInstr      = constants.MaxInstr
)
