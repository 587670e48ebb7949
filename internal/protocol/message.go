package protocol

import "github.com/ehrlich-b/go-mesi/internal/bitvector"

// TxType enumerates the coherence message taxonomy from spec.md §3.
type TxType int

const (
	ReadRequestType TxType = iota
	WriteRequestType
	ReplyRDType
	ReplyWRType
	ReplyIDType
	InvType
	UpgradeType
	WritebackInvType
	WritebackIntType
	FlushType
	FlushInvAckType
	EvictSharedType
	EvictModifiedType
)

var txTypeNames = [...]string{
	"READ_REQUEST", "WRITE_REQUEST", "REPLY_RD", "REPLY_WR", "REPLY_ID",
	"INV", "UPGRADE", "WRITEBACK_INV", "WRITEBACK_INT", "FLUSH",
	"FLUSH_INVACK", "EVICT_SHARED", "EVICT_MODIFIED",
}

func (t TxType) String() string {
	if int(t) < 0 || int(t) >= len(txTypeNames) {
		return "UNKNOWN"
	}
	return txTypeNames[t]
}

// Message is the tagged-union interface implemented by one concrete struct
// per TxType below. Each struct carries only the fields its transaction
// actually uses, so a handler can never observe a field meant for a
// different message kind (spec.md §9 Design Notes).
type Message interface {
	Kind() TxType
	Sender() NodeID
	Address() Addr
}

// Base embeds the fields every message carries; concrete types embed it.
type Base struct {
	From NodeID
	Addr Addr
}

func (b Base) Sender() NodeID { return b.From }
func (b Base) Address() Addr  { return b.Addr }

// ReadRequest: requester R asks the home for a read copy of Addr.
type ReadRequest struct {
	Base
}

func (ReadRequest) Kind() TxType { return ReadRequestType }

// NewReadRequest builds a ReadRequest from sender from for address addr.
func NewReadRequest(from NodeID, addr Addr) ReadRequest {
	return ReadRequest{Base{From: from, Addr: addr}}
}

// WriteRequest: requester R asks the home for exclusive ownership of Addr
// to install Value.
type WriteRequest struct {
	Base
	Value byte
}

func (WriteRequest) Kind() TxType { return WriteRequestType }

// NewWriteRequest builds a WriteRequest.
func NewWriteRequest(from NodeID, addr Addr, value byte) WriteRequest {
	return WriteRequest{Base{From: from, Addr: addr}, value}
}

// ReplyRD: the home's answer to a ReadRequest, carrying the current value
// and whether R should install it as Shared or Exclusive.
type ReplyRD struct {
	Base
	Value byte
	Hint  DirState // S or EM
}

func (ReplyRD) Kind() TxType { return ReplyRDType }

// NewReplyRD builds a ReplyRD.
func NewReplyRD(from NodeID, addr Addr, value byte, hint DirState) ReplyRD {
	return ReplyRD{Base{From: from, Addr: addr}, value, hint}
}

// ReplyWR: the home's answer to a WriteRequest when the block was Unowned.
type ReplyWR struct {
	Base
}

func (ReplyWR) Kind() TxType { return ReplyWRType }

// NewReplyWR builds a ReplyWR.
func NewReplyWR(from NodeID, addr Addr) ReplyWR {
	return ReplyWR{Base{From: from, Addr: addr}}
}

// ReplyID: the home tells R which other nodes it must invalidate before
// taking ownership (used for both UPGRADE and WRITE_REQUEST-on-S).
type ReplyID struct {
	Base
	Sharers bitvector.Vector
}

func (ReplyID) Kind() TxType { return ReplyIDType }

// NewReplyID builds a ReplyID.
func NewReplyID(from NodeID, addr Addr, sharers bitvector.Vector) ReplyID {
	return ReplyID{Base{From: from, Addr: addr}, sharers}
}

// Inv: invalidate the receiver's copy of Addr, if any.
type Inv struct {
	Base
}

func (Inv) Kind() TxType { return InvType }

// NewInv builds an Inv.
func NewInv(from NodeID, addr Addr) Inv {
	return Inv{Base{From: from, Addr: addr}}
}

// Upgrade: requester R, already holding Addr Shared, asks the home for
// write permission.
type Upgrade struct {
	Base
}

func (Upgrade) Kind() TxType { return UpgradeType }

// NewUpgrade builds an Upgrade.
func NewUpgrade(from NodeID, addr Addr) Upgrade {
	return Upgrade{Base{From: from, Addr: addr}}
}

// WritebackInv: the home redirects R's WriteRequest to the current owner O,
// asking O to flush and invalidate so R can take Modified ownership.
type WritebackInv struct {
	Base
	Value     byte // R's incoming write value, see spec.md §9 Open Questions
	Requester NodeID
}

func (WritebackInv) Kind() TxType { return WritebackInvType }

// NewWritebackInv builds a WritebackInv.
func NewWritebackInv(from NodeID, addr Addr, value byte, requester NodeID) WritebackInv {
	return WritebackInv{Base{From: from, Addr: addr}, value, requester}
}

// WritebackInt: the home redirects R's ReadRequest to the current owner O,
// asking O to flush its value (downgrading to Shared, not invalidating).
type WritebackInt struct {
	Base
	Requester NodeID
}

func (WritebackInt) Kind() TxType { return WritebackIntType }

// NewWritebackInt builds a WritebackInt.
func NewWritebackInt(from NodeID, addr Addr, requester NodeID) WritebackInt {
	return WritebackInt{Base{From: from, Addr: addr}, requester}
}

// Flush: the former owner's response to a WritebackInt, delivering its
// value to the home and to the requester.
type Flush struct {
	Base
	Value     byte
	Requester NodeID
}

func (Flush) Kind() TxType { return FlushType }

// NewFlush builds a Flush.
func NewFlush(from NodeID, addr Addr, value byte, requester NodeID) Flush {
	return Flush{Base{From: from, Addr: addr}, value, requester}
}

// FlushInvAck: the former owner's response to a WritebackInv, delivering
// its value and confirming it has invalidated.
type FlushInvAck struct {
	Base
	Value     byte
	Requester NodeID
}

func (FlushInvAck) Kind() TxType { return FlushInvAckType }

// NewFlushInvAck builds a FlushInvAck.
func NewFlushInvAck(from NodeID, addr Addr, value byte, requester NodeID) FlushInvAck {
	return FlushInvAck{Base{From: from, Addr: addr}, value, requester}
}

// EvictShared serves two roles, distinguished by whether the receiver is
// the address's home (spec.md §4.2):
//   - evictor -> home: voluntary eviction notice, Value unused.
//   - home -> sole remaining sharer: promotion notice, Value carries the
//     current memory value so the sharer can become Exclusive.
type EvictShared struct {
	Base
	Value byte
}

func (EvictShared) Kind() TxType { return EvictSharedType }

// NewEvictShared builds an EvictShared.
func NewEvictShared(from NodeID, addr Addr, value byte) EvictShared {
	return EvictShared{Base{From: from, Addr: addr}, value}
}

// EvictModified: the evictor writes back a dirty line to its home.
type EvictModified struct {
	Base
	Value byte
}

func (EvictModified) Kind() TxType { return EvictModifiedType }

// NewEvictModified builds an EvictModified.
func NewEvictModified(from NodeID, addr Addr, value byte) EvictModified {
	return EvictModified{Base{From: from, Addr: addr}, value}
}
