package workload

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ehrlich-b/go-mesi/internal/constants"
	"github.com/ehrlich-b/go-mesi/internal/interfaces"
	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// FileSource loads instruction streams from <Dir>/core_<k>.txt, in the
// on-disk format described in spec.md §6. Dir is used as given; no
// tests/ prefix is added to it.
type FileSource struct {
	Dir    string
	Logger interfaces.Logger
}

// Load reads and parses <Dir>/core_<id>.txt, skipping malformed lines
// and truncating to constants.MaxInstr (spec.md §6).
func (s FileSource) Load(id protocol.NodeID) ([]protocol.Instruction, error) {
	path := filepath.Join(s.Dir, fmt.Sprintf("core_%d.txt", int(id)))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var instrs []protocol.Instruction
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() && len(instrs) < constants.MaxInstr {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		instr, ok := parseLine(line)
		if !ok {
			if s.Logger != nil {
				s.Logger.Printf("workload: %s:%d: skipping malformed line %q", path, lineNo, line)
			}
			continue
		}
		instrs = append(instrs, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return instrs, nil
}

// parseLine parses one RD/WR line per spec.md §6.
func parseLine(line string) (protocol.Instruction, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return protocol.Instruction{}, false
	}

	addr64, err := strconv.ParseUint(fields[1], 16, 8)
	if err != nil {
		return protocol.Instruction{}, false
	}
	addr := protocol.Addr(addr64)

	switch strings.ToUpper(fields[0]) {
	case "RD":
		return protocol.Instruction{Kind: protocol.Read, Address: addr}, true
	case "WR":
		if len(fields) < 3 {
			return protocol.Instruction{}, false
		}
		value64, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			return protocol.Instruction{}, false
		}
		return protocol.Instruction{Kind: protocol.Write, Address: addr, Value: byte(value64)}, true
	default:
		return protocol.Instruction{}, false
	}
}

var _ Source = FileSource{}
