package analysis

import (
	"testing"
)

func TestFindFunctions(t *testing.T) {
	r := callerCallee()
	idx := BuildIndex(r)

	funcs := FindFunctions(r, idx, nil)
	if len(funcs) != 2 {
		t.Fatalf("found %d functions, want 2", len(funcs))
	}

	caller := funcs[0]
	if caller.Range.Start != 0x08000000 || caller.Range.End != 0x0800000A {
		t.Errorf("caller range = [0x%08x, 0x%08x)", caller.Range.Start, caller.Range.End)
	}
	if len(caller.Literals) != 1 || caller.Literals[0] != 0x02021770 {
		t.Errorf("caller literals = %#x", caller.Literals)
	}
	if len(caller.Calls) != 1 || caller.Calls[0] != 0x08000010 {
		t.Errorf("caller calls = %#x", caller.Calls)
	}
	if caller.Range.Confidence != 0.9 {
		t.Errorf("caller confidence = %v, want 0.9", caller.Range.Confidence)
	}

	callee := funcs[1]
	if callee.Range.Start != 0x08000010 || callee.Range.End != 0x08000014 {
		t.Errorf("callee range = [0x%08x, 0x%08x)", callee.Range.Start, callee.Range.End)
	}
	// The callee is independently a bl target, which raises its score.
	if callee.Range.Confidence != 0.95 {
		t.Errorf("callee confidence = %v, want 0.95", callee.Range.Confidence)
	}
}

func TestFindFunctionsPredicates(t *testing.T) {
	r := callerCallee()
	idx := BuildIndex(r)

	tests := []struct {
		name string
		pred Predicate
		want []uint32 // expected start addresses
	}{
		{"by literal", ByLiteralValue(0x02021770), []uint32{0x08000000}},
		{"by missing literal", ByLiteralValue(0x04000130), nil},
		{"by call target", ByCallTarget(0x08000010), []uint32{0x08000000}},
		{"by call target thumb bit", ByCallTarget(0x08000011), []uint32{0x08000000}},
		{"by size", BySizeRange(0, 4), []uint32{0x08000010}},
		{"by size unbounded", BySizeRange(5, 0), []uint32{0x08000000}},
		{"all", All(ByLiteralValue(0x02021770), ByCallTarget(0x08000010)), []uint32{0x08000000}},
		{"all conflicting", All(ByLiteralValue(0x02021770), BySizeRange(0, 4)), nil},
		{"any", Any(ByLiteralValue(0xDEADBEEF), BySizeRange(0, 4)), []uint32{0x08000010}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			funcs := FindFunctions(r, idx, tt.pred)
			if len(funcs) != len(tt.want) {
				t.Fatalf("found %d functions, want %d", len(funcs), len(tt.want))
			}
			for i, want := range tt.want {
				if funcs[i].Range.Start != want {
					t.Errorf("funcs[%d].Start = 0x%08x, want 0x%08x", i, funcs[i].Range.Start, want)
				}
			}
		})
	}
}

func TestFindFunctionsNilIndex(t *testing.T) {
	funcs := FindFunctions(callerCallee(), nil, nil)
	if len(funcs) != 2 {
		t.Fatalf("found %d functions, want 2", len(funcs))
	}
	// Without an index there is no call-target corroboration.
	if funcs[1].Range.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", funcs[1].Range.Confidence)
	}
}

func TestSummarizeDedupes(t *testing.T) {
	// Two loads of the same constant and two calls to the same target
	// collapse to one entry each.
	//
	//	08000000  push {lr}
	//	08000002  ldr r0, [pc, #12]
	//	08000004  ldr r1, [pc, #8]
	//	08000006  bl 0x08000018
	//	0800000a  bl 0x08000018
	//	0800000e  pop {pc}
	//	08000010  .word 0x03001234
	r := image(
		0xB500,
		0x4803,
		0x4902,
		0xF000, 0xF807,
		0xF000, 0xF805,
		0xBD00,
		0x1234, 0x0300,
		0x0000, 0x0000,
		0xB500, 0xBD00,
	)
	funcs := FindFunctions(r, nil, nil)
	if len(funcs) != 2 {
		t.Fatalf("found %d functions, want 2", len(funcs))
	}
	f := funcs[0]
	if len(f.Literals) != 1 || f.Literals[0] != 0x03001234 {
		t.Errorf("Literals = %#x, want one 0x03001234", f.Literals)
	}
	if len(f.Calls) != 1 || f.Calls[0] != 0x08000018 {
		t.Errorf("Calls = %#x, want one 0x08000018", f.Calls)
	}
	if !f.RefersTo(0x03001234) || f.RefersTo(0x12345678) {
		t.Error("RefersTo misreported")
	}
	if !f.CallsTarget(0x08000019) {
		t.Error("CallsTarget ignored thumb-bit form")
	}
}
