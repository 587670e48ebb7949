package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ehrlich-b/go-mesi/internal/bitvector"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

func TestWriteContainsExpectedSections(t *testing.T) {
	state := NodeState{ID: 1}
	state.Memory[0] = 20
	state.Directory[0] = protocol.DirectoryEntry{State: protocol.EM, Sharers: bitvector.Of(0)}
	state.Cache[0] = protocol.CacheLine{Address: 0x10, Value: 20, State: protocol.Exclusive}

	var buf bytes.Buffer
	if err := Write(&buf, state); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Processor Node: 1",
		"Memory State",
		"Directory State",
		"Cache State",
		"0x10",
		"EXCLUSIVE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	state := NodeState{ID: 2}
	if err := WriteFile(dir, state); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
