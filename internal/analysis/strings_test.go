package analysis

import (
	"testing"

	"romscope/internal/rom"
)

func TestFindStrings(t *testing.T) {
	data := append([]byte{0xFF, 0x00}, []byte("SOUND_TEST\x00")...)
	data = append(data, 0x01, 0x02)
	data = append(data, []byte("ok\x00")...) // below min length
	data = append(data, []byte("Press Start")...)
	r := rom.New(data)

	got := FindStrings(r, 6)
	if len(got) != 2 {
		t.Fatalf("found %d strings, want 2: %+v", len(got), got)
	}
	if got[0].Value != "SOUND_TEST" || got[0].Addr != rom.ROMStart+2 || got[0].Len != 10 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Value != "Press Start" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestFindStringsClampsMin(t *testing.T) {
	r := rom.New([]byte("ab\x00cd\x00efgh\x00"))
	got := FindStrings(r, 0)
	if len(got) != 1 || got[0].Value != "efgh" {
		t.Errorf("got %+v, want just efgh", got)
	}
}

func TestReadCString(t *testing.T) {
	r := rom.New([]byte("hello\x00world"))
	s, n, ok := ReadCString(r, rom.ROMStart, 32)
	if !ok || s != "hello" || n != 5 {
		t.Errorf("ReadCString = %q, %d, %v", s, n, ok)
	}

	// Unterminated read stops at maxLen.
	s, n, ok = ReadCString(r, rom.ROMStart+6, 3)
	if !ok || s != "wor" || n != 3 {
		t.Errorf("ReadCString = %q, %d, %v", s, n, ok)
	}

	if _, _, ok := ReadCString(r, 0x02000000, 8); ok {
		t.Error("ReadCString resolved an address outside the image")
	}
}

func TestEscapeUnprintable(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("plain"), "plain"},
		{[]byte{'a', 0x07, 'b'}, "a\\u0007b"},
		{[]byte{0xFE, 'x'}, "\\xFEx"},
	}
	for _, tt := range tests {
		if got := EscapeUnprintable(tt.in); got != tt.want {
			t.Errorf("EscapeUnprintable(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
