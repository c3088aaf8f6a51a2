package analysis

import (
	"romscope/internal/rom"
	"romscope/internal/thumb"
)

// FuncInfo summarizes one recovered function for predicate matching:
// its range, the distinct pool constants it loads, and the distinct
// targets it calls.
type FuncInfo struct {
	Range    FuncRange
	Literals []uint32
	Calls    []uint32
}

// RefersTo reports whether the function loads the constant v from a
// pool.
func (f *FuncInfo) RefersTo(v uint32) bool {
	for _, l := range f.Literals {
		if l == v {
			return true
		}
	}
	return false
}

// CallsTarget reports whether the function calls target.
func (f *FuncInfo) CallsTarget(target uint32) bool {
	target = rom.MaskThumb(target)
	for _, c := range f.Calls {
		if c == target {
			return true
		}
	}
	return false
}

// Predicate selects functions during a FindFunctions sweep.
type Predicate func(*FuncInfo) bool

// ByLiteralValue matches functions whose body loads v from a literal
// pool.
func ByLiteralValue(v uint32) Predicate {
	return func(f *FuncInfo) bool { return f.RefersTo(v) }
}

// ByCallTarget matches functions that call target.
func ByCallTarget(target uint32) Predicate {
	return func(f *FuncInfo) bool { return f.CallsTarget(target) }
}

// BySizeRange matches functions whose byte size is in [min, max].
// max = 0 means unbounded.
func BySizeRange(min, max uint32) Predicate {
	return func(f *FuncInfo) bool {
		size := f.Range.ByteSize()
		return size >= min && (max == 0 || size <= max)
	}
}

// All combines predicates conjunctively.
func All(preds ...Predicate) Predicate {
	return func(f *FuncInfo) bool {
		for _, p := range preds {
			if !p(f) {
				return false
			}
		}
		return true
	}
}

// Any combines predicates disjunctively.
func Any(preds ...Predicate) Predicate {
	return func(f *FuncInfo) bool {
		for _, p := range preds {
			if p(f) {
				return true
			}
		}
		return false
	}
}

// FindFunctions sweeps the image for prologue-delimited functions and
// returns those matching pred. A function whose entry appears as a
// call target in idx gets its confidence raised, since two
// independent signals agree; idx may be nil. This one query replaces
// the usual pile of single-purpose "find the function referencing
// constants A and B" scripts.
func FindFunctions(r *rom.Rom, idx *Index, pred Predicate) []FuncInfo {
	var out []FuncInfo
	for addr := uint32(rom.ROMStart); r.Contains(addr); {
		inst := thumb.Decode(r, addr)
		push, isPush := inst.(*thumb.PushPop)
		if !isPush || !push.IsPrologue() {
			addr += uint32(inst.Size())
			continue
		}
		end, ok := FindEnd(r, addr, MaxFunctionBytes)
		if !ok {
			addr += uint32(inst.Size())
			continue
		}
		info := summarize(r, FuncRange{Start: addr, End: end, Confidence: confDirect})
		if idx != nil && len(idx.CallersOf(addr)) > 0 {
			info.Range.Confidence = 0.95
		}
		if pred == nil || pred(&info) {
			out = append(out, info)
		}
		addr = end
	}
	return out
}

// summarize decodes a function body collecting its distinct literal
// values and call targets in first-reference order.
func summarize(r *rom.Rom, rng FuncRange) FuncInfo {
	info := FuncInfo{Range: rng}
	seenLit := make(map[uint32]bool)
	seenCall := make(map[uint32]bool)
	for addr := rng.Start; addr < rng.End; {
		inst := thumb.Decode(r, addr)
		switch n := inst.(type) {
		case *thumb.PCRelLoad:
			if entry, ok := ResolvePool(r, n); ok && !seenLit[entry.Value] {
				seenLit[entry.Value] = true
				info.Literals = append(info.Literals, entry.Value)
			}
		case *thumb.LongBranch:
			t := rom.MaskThumb(n.Target())
			if !seenCall[t] {
				seenCall[t] = true
				info.Calls = append(info.Calls, t)
			}
		}
		addr += uint32(inst.Size())
	}
	return info
}
