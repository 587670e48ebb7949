package mailbox

import (
	"testing"

	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

func TestInboxEnqueueDequeueOrder(t *testing.T) {
	b := NewInbox(4)
	for i := 0; i < 3; i++ {
		if !b.enqueue(protocol.NewReadRequest(protocol.NodeID(0), protocol.Addr(i))) {
			t.Fatalf("enqueue %d should have succeeded", i)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", b.Len())
	}
	for i := 0; i < 3; i++ {
		msg, ok := b.dequeue()
		if !ok {
			t.Fatalf("dequeue %d should have succeeded", i)
		}
		if int(msg.Address()) != i {
			t.Errorf("dequeue order broken: got addr %v, want %d", msg.Address(), i)
		}
	}
	if _, ok := b.dequeue(); ok {
		t.Error("dequeue on empty inbox should fail")
	}
}

func TestInboxOverflowDrops(t *testing.T) {
	b := NewInbox(2)
	b.enqueue(protocol.NewReadRequest(0, 0))
	b.enqueue(protocol.NewReadRequest(0, 1))
	if b.enqueue(protocol.NewReadRequest(0, 2)) {
		t.Error("enqueue into full inbox should report failure")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after dropped enqueue", b.Len())
	}
}

func TestSwitchSendRecv(t *testing.T) {
	sw := New(Config{NumNodes: 4, Capacity: 8})
	if err := sw.Send(protocol.NodeID(2), protocol.NewInv(0, 0x10)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg, ok := sw.Recv(protocol.NodeID(2))
	if !ok {
		t.Fatal("Recv should have returned the sent message")
	}
	if msg.Kind() != protocol.InvType {
		t.Errorf("Kind() = %v, want InvType", msg.Kind())
	}
	if _, ok := sw.Recv(protocol.NodeID(1)); ok {
		t.Error("Recv on empty node-1 inbox should fail")
	}
}

func TestSwitchDebugInvariantsOverflow(t *testing.T) {
	sw := New(Config{NumNodes: 1, Capacity: 1, DebugInvariants: true})
	if err := sw.Send(protocol.NodeID(0), protocol.NewInv(0, 0)); err != nil {
		t.Fatalf("first send should succeed: %v", err)
	}
	if err := sw.Send(protocol.NodeID(0), protocol.NewInv(0, 1)); err == nil {
		t.Error("second send into full inbox should error in debug-invariants mode")
	}
}

func TestSwitchSilentDropWithoutDebugInvariants(t *testing.T) {
	sw := New(Config{NumNodes: 1, Capacity: 1})
	sw.Send(protocol.NodeID(0), protocol.NewInv(0, 0))
	if err := sw.Send(protocol.NodeID(0), protocol.NewInv(0, 1)); err != nil {
		t.Errorf("overflow without DebugInvariants should not error, got %v", err)
	}
}
