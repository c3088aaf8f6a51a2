package colorize

import (
	"strings"
	"testing"
)

func TestInstructionLineNoColor(t *testing.T) {
	t.Setenv("ROMSCOPE_NO_COLOR", "1")
	line := "08000004  f000 f804  bl     0x08000010 ; <PlaySound>"
	if got := InstructionLine(line); got != line {
		t.Errorf("line changed with colors disabled: %q", got)
	}
}

func TestInstructionLineKeepsContent(t *testing.T) {
	t.Setenv("ROMSCOPE_NO_COLOR", "")
	line := "08000000  b500       push   {lr}"
	got := InstructionLine(line)
	if VisibleLen(got) != len(line) {
		t.Errorf("visible length changed: %d != %d\n%q", VisibleLen(got), len(line), got)
	}
	for _, frag := range []string{"08000000", "push", "lr"} {
		if !strings.Contains(got, frag) {
			t.Errorf("colorized line lost %q: %q", frag, got)
		}
	}
}

func TestIsHex(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"08000000", true},
		{"deadBEEF", true},
		{"", false},
		{"0x080000", false},
		{"push", false},
	}
	for _, tt := range tests {
		if got := isHex(tt.in); got != tt.want {
			t.Errorf("isHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVisibleLen(t *testing.T) {
	if got := VisibleLen("plain"); got != 5 {
		t.Errorf("VisibleLen(plain) = %d", got)
	}
	if got := VisibleLen("\033[38;2;79;79;79mabc\033[0m"); got != 3 {
		t.Errorf("VisibleLen(colored abc) = %d", got)
	}
}
