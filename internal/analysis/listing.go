package analysis

import (
	"fmt"
	"strings"

	"romscope/internal/rom"
	"romscope/internal/symbols"
	"romscope/internal/thumb"
)

// AnnotatedInst is one listing line: a decoded instruction plus the
// comments derived for it (resolved pool constants, branch target
// names). A long-branch pair is one line.
type AnnotatedInst struct {
	Inst        thumb.Inst
	Annotations []string
}

// String formats the line with the mnemonic at a fixed column and
// annotations behind a ';' so the output colorizes and diffs cleanly.
func (a AnnotatedInst) String() string {
	mnemonic, operands := splitInst(a.Inst.String())
	raw := fmt.Sprintf("%04x", a.Inst.Raw())
	if lb, isPair := a.Inst.(*thumb.LongBranch); isPair {
		raw = fmt.Sprintf("%04x %04x", lb.Raw(), lb.RawLo)
	}
	line := fmt.Sprintf("%08x  %-9s  %-6s %-24s", a.Inst.Addr(), raw, mnemonic, operands)
	if len(a.Annotations) > 0 {
		return fmt.Sprintf("%s ; %s", line, strings.Join(a.Annotations, ", "))
	}
	return strings.TrimRight(line, " ")
}

func splitInst(text string) (mnemonic, operands string) {
	parts := strings.SplitN(text, " ", 2)
	mnemonic = parts[0]
	if len(parts) > 1 {
		operands = parts[1]
	}
	return mnemonic, operands
}

// DisassembleRange decodes every instruction in [start, start+length)
// and annotates pool loads with their resolved constants and branch
// targets with names from syms. syms may be nil. Decoding stops early
// only when the image ends.
func DisassembleRange(r *rom.Rom, start, length uint32, syms *symbols.Table) []AnnotatedInst {
	var lines []AnnotatedInst
	end := start + length
	for addr := rom.MaskThumb(start); addr < end && r.Contains(addr); {
		inst := thumb.Decode(r, addr)
		lines = append(lines, AnnotatedInst{
			Inst:        inst,
			Annotations: annotate(r, inst, syms),
		})
		addr += uint32(inst.Size())
	}
	return lines
}

// Listing renders lines as one text block, one instruction per line.
func Listing(lines []AnnotatedInst) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// annotate derives the comment column for one instruction.
func annotate(r *rom.Rom, inst thumb.Inst, syms *symbols.Table) []string {
	var notes []string
	name := func(addr uint32) (string, bool) {
		if syms == nil {
			return "", false
		}
		return syms.Name(addr)
	}
	switch n := inst.(type) {
	case *thumb.PCRelLoad:
		entry, ok := ResolvePool(r, n)
		if !ok {
			notes = append(notes, "pool out of range")
			break
		}
		note := fmt.Sprintf("=0x%08x", entry.Value)
		if entry.Region != rom.RegionUnknown {
			note += " " + entry.Region.String()
		}
		notes = append(notes, note)
		if sym, ok := name(entry.Value); ok {
			notes = append(notes, "<"+sym+">")
		}
	case *thumb.LongBranch:
		if sym, ok := name(n.Target()); ok {
			notes = append(notes, "<"+sym+">")
		}
	case *thumb.Branch:
		if sym, ok := name(n.Target()); ok {
			notes = append(notes, "<"+sym+">")
		}
	case *thumb.CondBranch:
		if sym, ok := name(n.Target()); ok {
			notes = append(notes, "<"+sym+">")
		}
	}
	return notes
}
