// Package interfaces provides internal interface definitions for go-mesi.
// These are separate from the root package to avoid circular imports
// between the root package and the internal engines that need them.
package interfaces

import "github.com/ehrlich-b/go-mesi/internal/protocol"

// Transport delivers a coherence message to the node identified by to.
// Implementations (internal/mailbox) must be safe
// for concurrent use by every node goroutine.
type Transport interface {
	Send(to protocol.NodeID, msg protocol.Message) error
}

// Logger interface for optional structured logging, satisfied by
// *internal/logging.Logger without internal/coherence and internal/node
// importing logrus directly.
type Logger interface {
	Printf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Observer interface for metrics collection. Implementations must be
// thread-safe: methods are called concurrently from every node's event loop.
type Observer interface {
	ObserveSend(kind protocol.TxType, dropped bool)
	ObserveCacheAccess(hit bool)
	ObserveTransition(from, to protocol.MESIState)
	ObserveEviction()
}
