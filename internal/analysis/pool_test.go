package analysis

import (
	"testing"

	"romscope/internal/rom"
	"romscope/internal/thumb"
)

// image lays the given halfwords down little-endian at the ROM base.
func image(halfwords ...uint16) *rom.Rom {
	buf := make([]byte, 0, len(halfwords)*2)
	for _, h := range halfwords {
		buf = append(buf, byte(h), byte(h>>8))
	}
	return rom.New(buf)
}

func TestResolvePool(t *testing.T) {
	// ldr r0, [pc, #4] at the base: slot at ((0+4) &^ 3) + 4 = +8.
	r := image(0x4801, 0x0000, 0x0000, 0x0000, 0x1770, 0x0202)
	inst := thumb.Decode(r, rom.ROMStart)
	entry, ok := ResolvePool(r, inst)
	if !ok {
		t.Fatal("ResolvePool failed")
	}
	if entry.InstAddr != rom.ROMStart {
		t.Errorf("InstAddr = 0x%08x", entry.InstAddr)
	}
	if entry.PoolAddr != rom.ROMStart+8 {
		t.Errorf("PoolAddr = 0x%08x, want 0x%08x", entry.PoolAddr, rom.ROMStart+8)
	}
	if entry.Value != 0x02021770 {
		t.Errorf("Value = 0x%08x", entry.Value)
	}
	if entry.Region != rom.RegionEWRAM {
		t.Errorf("Region = %v, want EWRAM", entry.Region)
	}
}

func TestResolvePoolMisalignedLoad(t *testing.T) {
	// The load sits at a mod-4 = 2 address; pc+4 must be rounded down
	// before the offset is applied or the slot is off by two.
	r := image(0x0000, 0x4800, 0x1234, 0x0400) // ldr r0, [pc, #0] at +2
	inst := thumb.Decode(r, rom.ROMStart+2)
	entry, ok := ResolvePool(r, inst)
	if !ok {
		t.Fatal("ResolvePool failed")
	}
	if entry.PoolAddr != rom.ROMStart+4 {
		t.Errorf("PoolAddr = 0x%08x, want 0x%08x", entry.PoolAddr, rom.ROMStart+4)
	}
	if entry.Value != 0x04001234 {
		t.Errorf("Value = 0x%08x", entry.Value)
	}
	if entry.Region != rom.RegionIO {
		t.Errorf("Region = %v, want IO", entry.Region)
	}
}

func TestResolvePoolTruncated(t *testing.T) {
	// Slot falls past the end of the image.
	r := image(0x48FF)
	inst := thumb.Decode(r, rom.ROMStart)
	if _, ok := ResolvePool(r, inst); ok {
		t.Error("ResolvePool resolved a slot outside the image")
	}
}

func TestResolvePoolNotALoad(t *testing.T) {
	r := image(0xB500)
	inst := thumb.Decode(r, rom.ROMStart)
	if _, ok := ResolvePool(r, inst); ok {
		t.Error("ResolvePool accepted a push")
	}
}
