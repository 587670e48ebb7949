package node

import (
	"context"
	"testing"
	"time"

	"github.com/ehrlich-b/go-mesi/internal/mailbox"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

func TestNodeRunCompletesAndDumps(t *testing.T) {
	sw := mailbox.New(mailbox.Config{NumNodes: 4, Capacity: 64})
	n := New(Config{
		ID:     protocol.NodeID(0),
		Switch: sw,
		Instructions: []protocol.Instruction{
			{Kind: protocol.Read, Address: 0x00},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	select {
	case <-n.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("node did not complete its instruction stream in time")
	}

	state := n.State()
	if state.Cache[0].Address != 0x00 || state.Cache[0].State != protocol.Exclusive {
		t.Fatalf("final cache state = %+v, want {0x00, _, Exclusive}", state.Cache[0])
	}
}

func TestNodeRunStopsOnCancel(t *testing.T) {
	sw := mailbox.New(mailbox.Config{NumNodes: 1, Capacity: 8})
	n := New(Config{ID: protocol.NodeID(0), Switch: sw})

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(finished)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
