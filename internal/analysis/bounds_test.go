package analysis

import (
	"testing"

	"romscope/internal/rom"
)

// Two adjacent functions:
//
//	08000000  push {lr}
//	08000002  mov r0, #0
//	08000004  pop {pc}
//	08000006  push {r4, lr}
//	08000008  mov r0, #1
//	0800000a  pop {r4, pc}
func twoFuncs() *rom.Rom {
	return image(0xB500, 0x2000, 0xBD00, 0xB510, 0x2001, 0xBD10)
}

func TestFindStart(t *testing.T) {
	r := twoFuncs()
	tests := []struct {
		name string
		addr uint32
		want uint32
	}{
		{"inside first", rom.ROMStart + 2, rom.ROMStart},
		{"at first prologue", rom.ROMStart, rom.ROMStart},
		{"inside second", rom.ROMStart + 8, rom.ROMStart + 6},
		{"at second epilogue", rom.ROMStart + 10, rom.ROMStart + 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindStart(r, tt.addr, DefaultMaxBack)
			if !ok || got != tt.want {
				t.Errorf("FindStart(0x%08x) = 0x%08x, %v, want 0x%08x", tt.addr, got, ok, tt.want)
			}
		})
	}
}

func TestFindStartStopsAtEpilogue(t *testing.T) {
	// A leaf function with no push sits after the first function's
	// epilogue. The backward scan must not run through the epilogue
	// and claim the first function's prologue.
	//
	//	08000000  push {lr}
	//	08000002  pop {pc}
	//	08000004  mov r0, #0    <- leaf entry
	//	08000006  bx lr
	r := image(0xB500, 0xBD00, 0x2000, 0x4770)
	got, ok := FindStart(r, rom.ROMStart+6, DefaultMaxBack)
	if !ok || got != rom.ROMStart+4 {
		t.Errorf("FindStart = 0x%08x, %v, want 0x%08x", got, ok, rom.ROMStart+4)
	}
}

func TestFindStartBounded(t *testing.T) {
	// No prologue anywhere within reach.
	halfwords := make([]uint16, 64)
	for i := range halfwords {
		halfwords[i] = 0x2000
	}
	r := image(halfwords...)
	if start, ok := FindStart(r, rom.ROMStart+120, 16); ok {
		t.Errorf("FindStart succeeded at 0x%08x with no prologue in range", start)
	}
}

func TestFindEnd(t *testing.T) {
	r := twoFuncs()
	end, ok := FindEnd(r, rom.ROMStart, DefaultMaxFwd)
	if !ok || end != rom.ROMStart+6 {
		t.Errorf("FindEnd(first) = 0x%08x, %v, want 0x%08x", end, ok, rom.ROMStart+6)
	}
	end, ok = FindEnd(r, rom.ROMStart+6, DefaultMaxFwd)
	if !ok || end != rom.ROMStart+12 {
		t.Errorf("FindEnd(second) = 0x%08x, %v, want 0x%08x", end, ok, rom.ROMStart+12)
	}
}

func TestFindEndBXReturn(t *testing.T) {
	r := image(0x2000, 0x4770)
	end, ok := FindEnd(r, rom.ROMStart, DefaultMaxFwd)
	if !ok || end != rom.ROMStart+4 {
		t.Errorf("FindEnd = 0x%08x, %v, want 0x%08x", end, ok, rom.ROMStart+4)
	}
}

func TestFindEndBounded(t *testing.T) {
	halfwords := make([]uint16, 64)
	for i := range halfwords {
		halfwords[i] = 0x2000
	}
	r := image(halfwords...)
	if end, ok := FindEnd(r, rom.ROMStart, 16); ok {
		t.Errorf("FindEnd succeeded at 0x%08x with no epilogue in range", end)
	}
}

func TestFunctionAt(t *testing.T) {
	r := twoFuncs()
	f, ok := FunctionAt(r, rom.ROMStart+8)
	if !ok {
		t.Fatal("FunctionAt failed")
	}
	if f.Start != rom.ROMStart+6 || f.End != rom.ROMStart+12 {
		t.Errorf("range = [0x%08x, 0x%08x)", f.Start, f.End)
	}
	if f.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", f.Confidence)
	}
	if f.ByteSize() != 6 {
		t.Errorf("ByteSize = %d, want 6", f.ByteSize())
	}
}

func TestFunctionAtLeaf(t *testing.T) {
	// The leaf has no prologue; its start is inferred from the
	// preceding epilogue and scored lower.
	r := image(0xB500, 0xBD00, 0x2000, 0x4770)
	f, ok := FunctionAt(r, rom.ROMStart+4)
	if !ok {
		t.Fatal("FunctionAt failed")
	}
	if f.Start != rom.ROMStart+4 || f.End != rom.ROMStart+8 {
		t.Errorf("range = [0x%08x, 0x%08x)", f.Start, f.End)
	}
	if f.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6", f.Confidence)
	}
}
