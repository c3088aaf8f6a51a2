package analysis

import (
	"romscope/internal/rom"
	"romscope/internal/thumb"
)

// FuncRange is an approximate [Start, End) byte range of a function.
// The boundaries come from prologue/epilogue pattern matching and can
// be wrong where adjacent functions share an epilogue or a tail call
// replaces the return; Confidence reflects how the range was found,
// not a guarantee.
type FuncRange struct {
	Start      uint32
	End        uint32 // exclusive
	Confidence float64
}

// ByteSize returns the range length in bytes.
func (f FuncRange) ByteSize() uint32 { return f.End - f.Start }

const (
	confDirect    = 0.9 // prologue found directly on the backward scan
	confRestarted = 0.6 // start inferred from the preceding epilogue
)

// FindStart searches backward from addr for the nearest prologue
// (a push that saves lr) and returns its address. The scan never
// looks more than maxBack bytes back and reports ok=false instead of
// running off the image. Crossing an epilogue of a preceding function
// ends the search: the function containing addr begins just past it,
// prologue or not, so two adjacent functions are never merged and
// leaf functions without a push still get a start.
func FindStart(r *rom.Rom, addr, maxBack uint32) (uint32, bool) {
	start, _, ok := findStart(r, addr, maxBack)
	return start, ok
}

func findStart(r *rom.Rom, addr, maxBack uint32) (uint32, float64, bool) {
	a := rom.MaskThumb(addr)
	for b := a; a-b <= maxBack && b >= rom.ROMStart; b -= 2 {
		if !r.Contains(b) {
			return 0, 0, false
		}
		inst := thumb.Decode(r, b)
		if push, isPush := inst.(*thumb.PushPop); isPush && push.IsPrologue() {
			return b, confDirect, true
		}
		// The query address itself may be our own epilogue; only an
		// epilogue strictly before it marks foreign territory.
		if b < a && isEpilogue(inst) {
			return b + uint32(inst.Size()), confRestarted, true
		}
	}
	return 0, 0, false
}

// FindEnd searches forward from addr for an epilogue (a pop that
// restores pc, or bx lr) and returns the exclusive end address. The
// scan is capped at maxFwd bytes and reports ok=false when the image
// ends first.
func FindEnd(r *rom.Rom, addr, maxFwd uint32) (uint32, bool) {
	a := rom.MaskThumb(addr)
	for b := a; b-a <= maxFwd; {
		if !r.Contains(b) {
			return 0, false
		}
		inst := thumb.Decode(r, b)
		end := b + uint32(inst.Size())
		if end-a > maxFwd {
			return 0, false
		}
		if isEpilogue(inst) {
			return end, true
		}
		b = end
	}
	return 0, false
}

// FunctionAt recovers the range of the function containing addr.
func FunctionAt(r *rom.Rom, addr uint32) (FuncRange, bool) {
	start, conf, ok := findStart(r, addr, DefaultMaxBack)
	if !ok {
		return FuncRange{}, false
	}
	end, ok := FindEnd(r, addr, DefaultMaxFwd)
	if !ok || end <= start {
		return FuncRange{}, false
	}
	return FuncRange{Start: start, End: end, Confidence: conf}, true
}

// isEpilogue matches the two return idioms: pop {.., pc} and bx lr.
func isEpilogue(inst thumb.Inst) bool {
	switch n := inst.(type) {
	case *thumb.PushPop:
		return n.IsEpilogue()
	case *thumb.HiReg:
		return n.IsReturn()
	default:
		return false
	}
}
