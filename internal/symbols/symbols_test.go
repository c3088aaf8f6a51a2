package symbols

import (
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	cfg := `
# stage handling
thumb_func 0x080196b8 CopyStageState
arm_func 0x08000204 IntrMain
0x08003188 PlaySound

0x08001001 OddEntry
`
	tbl, err := Read(strings.NewReader(cfg))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tbl.Len() != 4 {
		t.Fatalf("Len = %d, want 4", tbl.Len())
	}

	tests := []struct {
		addr uint32
		want string
	}{
		{0x080196b8, "CopyStageState"},
		{0x08000204, "IntrMain"},
		{0x08003188, "PlaySound"},
		{0x08001000, "OddEntry"}, // thumb bit stripped on insert
	}
	for _, tt := range tests {
		got, ok := tbl.Name(tt.addr)
		if !ok || got != tt.want {
			t.Errorf("Name(0x%08x) = %q, %v, want %q", tt.addr, got, ok, tt.want)
		}
	}

	// Lookups strip the thumb bit too.
	if got, ok := tbl.Name(0x080196b9); !ok || got != "CopyStageState" {
		t.Errorf("Name with thumb bit = %q, %v", got, ok)
	}
	if _, ok := tbl.Name(0x08999999); ok {
		t.Error("Name resolved an unknown address")
	}
}

func TestReadBadLine(t *testing.T) {
	for _, cfg := range []string{
		"0x08000100",
		"thumb_func 0x08000100",
		"0xZZZ name",
	} {
		if _, err := Read(strings.NewReader(cfg)); err == nil {
			t.Errorf("Read(%q) did not fail", cfg)
		}
	}
}

func TestAddDemangles(t *testing.T) {
	tbl := New()
	tbl.Add(0x08000100, "_Z8DmaCopy3i")
	got, ok := tbl.Name(0x08000100)
	if !ok {
		t.Fatal("Name failed")
	}
	if got != "DmaCopy3(int)" {
		t.Errorf("demangled name = %q", got)
	}

	tbl.Add(0x08000200, "plain_name")
	if got, _ := tbl.Name(0x08000200); got != "plain_name" {
		t.Errorf("plain name = %q", got)
	}
}

func TestAddresses(t *testing.T) {
	tbl := New()
	tbl.Add(0x08000300, "c")
	tbl.Add(0x08000100, "a")
	tbl.Add(0x08000200, "b")
	addrs := tbl.Addresses()
	want := []uint32{0x08000100, 0x08000200, 0x08000300}
	if len(addrs) != len(want) {
		t.Fatalf("len = %d", len(addrs))
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Errorf("addrs[%d] = 0x%08x, want 0x%08x", i, addrs[i], want[i])
		}
	}
}
