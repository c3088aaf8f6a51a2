// Package symbols holds the address-to-name table consulted when
// annotating listings and scoring query results. The table is plain
// data owned by the caller; there is no process-wide instance.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Table maps addresses to human-readable names. The THUMB bit is
// stripped from every address on the way in and out, so a call target
// value and the plain code address resolve to the same name.
type Table struct {
	names map[uint32]string
}

// New returns an empty table.
func New() *Table {
	return &Table{names: make(map[uint32]string)}
}

// Add inserts or replaces a name. Names that look mangled are run
// through the demangler for display.
func (t *Table) Add(addr uint32, name string) {
	if strings.HasPrefix(name, "_Z") {
		name = demangle.Filter(name, demangle.NoClones)
	}
	t.names[addr&^1] = name
}

// Name resolves an address to a name.
func (t *Table) Name(addr uint32) (string, bool) {
	name, ok := t.names[addr&^1]
	return name, ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.names) }

// Addresses returns all known addresses in ascending order.
func (t *Table) Addresses() []uint32 {
	addrs := make([]uint32, 0, len(t.names))
	for a := range t.names {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Read parses a symbol config. Each line is either
//
//	0x080196b8 CopyStageState
//	thumb_func 0x080196b8 CopyStageState
//	arm_func 0x08000204 IntrMain
//
// with '#' starting a comment. The leading token form matches the
// configs used by the gbadisasm family of tools, so existing files
// load unchanged.
func Read(r io.Reader) (*Table, error) {
	t := New()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "thumb_func", "arm_func":
			fields = fields[1:]
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("parse symbols: line %d: want \"0xADDR name\"", lineNo)
		}
		addr, err := parseAddr(fields[0])
		if err != nil {
			return nil, fmt.Errorf("parse symbols: line %d: %w", lineNo, err)
		}
		t.Add(addr, fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse symbols: %w", err)
	}
	return t, nil
}

// LoadFile reads a symbol config from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return uint32(v), nil
}
