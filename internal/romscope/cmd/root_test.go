package cmd

import "testing"

func TestParseAddr(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"0x08000000", 0x08000000, false},
		{"08000000", 0x08000000, false},
		{"0x4000130", 0x04000130, false},
		{"dead", 0xDEAD, false},
		{"", 0, true},
		{"0x", 0, true},
		{"hello!", 0, true},
		{"0x1ffffffff", 0, true}, // does not fit 32 bits
	}
	for _, tt := range tests {
		got, err := parseAddr(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAddr(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseAddr(%q) = 0x%08x, want 0x%08x", tt.in, got, tt.want)
		}
	}
}

func TestHexList(t *testing.T) {
	if got := hexList(nil); got != "" {
		t.Errorf("hexList(nil) = %q", got)
	}
	if got := hexList([]uint32{0x08000010, 0x02021770}); got != "0x08000010 0x02021770" {
		t.Errorf("hexList = %q", got)
	}
}
