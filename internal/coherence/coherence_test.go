package coherence

import (
	"testing"

	"github.com/ehrlich-b/go-mesi/internal/mailbox"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// harness wires N engines to a shared mailbox.Switch and drives them
// synchronously to quiescence, for deterministic single-goroutine testing
// of the concurrent protocol described in spec.md §4.
type harness struct {
	sw      *mailbox.Switch
	engines []*Engine
}

func newHarness(n int) *harness {
	sw := mailbox.New(mailbox.Config{NumNodes: n, Capacity: 64, DebugInvariants: true})
	h := &harness{sw: sw}
	for i := 0; i < n; i++ {
		h.engines = append(h.engines, New(Config{ID: protocol.NodeID(i), Transport: sw, DebugInvariants: true}))
	}
	return h
}

// settle drains every node's inbox in round-robin order until all are empty.
func (h *harness) settle() {
	progress := true
	for progress {
		progress = false
		for i, e := range h.engines {
			for h.sw.Len(protocol.NodeID(i)) > 0 {
				msg, ok := h.sw.Recv(protocol.NodeID(i))
				if !ok {
					break
				}
				e.Dispatch(msg)
				progress = true
			}
		}
	}
}

func (h *harness) exec(node int, instr protocol.Instruction) {
	h.engines[node].Issue(instr)
	h.settle()
}

func TestScenario1LocalReadMiss(t *testing.T) {
	h := newHarness(4)
	h.exec(0, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x00)})

	dir := h.engines[0].Directory()
	if dir[0].State != protocol.EM {
		t.Fatalf("dir[0][0].State = %v, want EM", dir[0].State)
	}
	if dir[0].Sharers.Members()[0] != 0 {
		t.Fatalf("sharers = %v, want {0}", dir[0].Sharers.Members())
	}
	cache := h.engines[0].Cache()
	line := cache[protocol.Addr(0x00).Slot()]
	if line.Address != 0x00 || line.Value != 0 || line.State != protocol.Exclusive {
		t.Fatalf("cache line = %+v, want {0x00, 0, Exclusive}", line)
	}
}

func TestScenario2RemoteReadMiss(t *testing.T) {
	h := newHarness(4)
	h.exec(1, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x05)})

	dir := h.engines[0].Directory()
	if dir[5].State != protocol.EM || dir[5].Sharers.Members()[0] != 1 {
		t.Fatalf("node0 dir[5] = %+v, want EM sharers={1}", dir[5])
	}
	line := h.engines[1].Cache()[protocol.Addr(0x05).Slot()]
	if line.Address != 0x05 || line.Value != 5 || line.State != protocol.Exclusive {
		t.Fatalf("node1 cache line = %+v, want {0x05, 5, Exclusive}", line)
	}
}

func TestScenario3SharedReadThenSharedRead(t *testing.T) {
	h := newHarness(4)
	h.exec(0, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x10)})
	h.exec(2, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x10)})

	dir := h.engines[1].Directory()
	if dir[0].State != protocol.S {
		t.Fatalf("dir[1][0].State = %v, want S", dir[0].State)
	}
	members := dir[0].Sharers.Members()
	if len(members) != 2 || members[0] != 0 || members[1] != 2 {
		t.Fatalf("sharers = %v, want {0,2}", members)
	}
	for _, n := range []int{0, 2} {
		line := h.engines[n].Cache()[protocol.Addr(0x10).Slot()]
		if line.State != protocol.Shared {
			t.Errorf("node%d cache line state = %v, want Shared", n, line.State)
		}
	}
}

func TestScenario4Upgrade(t *testing.T) {
	h := newHarness(4)
	h.exec(0, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x10)})
	h.exec(2, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x10)})
	h.exec(0, protocol.Instruction{Kind: protocol.Write, Address: protocol.Addr(0x10), Value: 99})

	line0 := h.engines[0].Cache()[protocol.Addr(0x10).Slot()]
	if line0.Value != 99 || line0.State != protocol.Modified {
		t.Fatalf("node0 cache line = %+v, want {0x10, 99, Modified}", line0)
	}
	line2 := h.engines[2].Cache()[protocol.Addr(0x10).Slot()]
	if line2.State != protocol.Invalid {
		t.Fatalf("node2 cache line state = %v, want Invalid", line2.State)
	}
	dir := h.engines[1].Directory()
	if dir[0].State != protocol.EM || dir[0].Sharers.Members()[0] != 0 {
		t.Fatalf("dir[1][0] = %+v, want EM sharers={0}", dir[0])
	}
}

func TestScenario5ThirdPartyIntervention(t *testing.T) {
	h := newHarness(4)
	h.exec(0, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x10)})
	h.exec(2, protocol.Instruction{Kind: protocol.Read, Address: protocol.Addr(0x10)})
	h.exec(0, protocol.Instruction{Kind: protocol.Write, Address: protocol.Addr(0x10), Value: 99})
	h.exec(3, protocol.Instruction{Kind: protocol.Write, Address: protocol.Addr(0x10), Value: 42})

	line3 := h.engines[3].Cache()[protocol.Addr(0x10).Slot()]
	if line3.Value != 42 || line3.State != protocol.Modified {
		t.Fatalf("node3 cache line = %+v, want {0x10, 42, Modified}", line3)
	}
	line0 := h.engines[0].Cache()[protocol.Addr(0x10).Slot()]
	if line0.State != protocol.Invalid {
		t.Fatalf("node0 cache line state = %v, want Invalid", line0.State)
	}
	dir := h.engines[1].Directory()
	if dir[0].State != protocol.EM || dir[0].Sharers.Members()[0] != 3 {
		t.Fatalf("dir[1][0] = %+v, want EM sharers={3}", dir[0])
	}
	if h.engines[1].Memory()[0] != 99 {
		t.Fatalf("node1 memory[0] = %d, want 99", h.engines[1].Memory()[0])
	}
}

func TestScenario6EvictionChain(t *testing.T) {
	h := newHarness(5)
	for _, addr := range []protocol.Addr{0x00, 0x10, 0x20, 0x30, 0x40} {
		h.exec(0, protocol.Instruction{Kind: protocol.Read, Address: addr})
	}

	line := h.engines[0].Cache()[protocol.Addr(0x40).Slot()]
	if line.Address != 0x40 || line.State != protocol.Exclusive {
		t.Fatalf("node0 final cache line = %+v, want {0x40, _, Exclusive}", line)
	}
	dir4 := h.engines[4].Directory()
	if dir4[0].State != protocol.EM || dir4[0].Sharers.Members()[0] != 0 {
		t.Fatalf("dir[4][0] = %+v, want EM sharers={0}", dir4[0])
	}
	for _, home := range []int{0, 1, 2, 3} {
		dir := h.engines[home].Directory()
		if dir[0].State != protocol.U {
			t.Errorf("dir[%d][0].State = %v, want U after eviction", home, dir[0].State)
		}
	}
}
