package analysis

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"romscope/internal/rom"
)

// StringResult represents a recovered string with metadata
type StringResult struct {
	Addr  uint32 // bus address of the first byte
	Value string // escaped string content
	Len   int    // original byte length
}

// EscapeUnprintable returns a string where printable Unicode runes are preserved.
// Control and unprintable runes are escaped as \uXXXX. Invalid UTF-8 is escaped as \xXX.
func EscapeUnprintable(b []byte) string {
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			// Invalid UTF-8 sequence, escape the byte
			sb.WriteString(fmt.Sprintf("\\x%02X", b[0]))
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteString(fmt.Sprintf("\\u%04X", r))
		}
		b = b[size:]
	}
	return sb.String()
}

// isTextByte reports whether b can appear inside an ASCII string run.
func isTextByte(b byte) bool {
	return (b >= 0x20 && b < 0x7f) || b == '\t' || b == '\n' || b == '\r'
}

// FindStrings scans the image for runs of printable ASCII at least
// minLen bytes long. A run ends at the first non-text byte; runs that
// end in a NUL terminator are the most reliable hits, but unterminated
// runs are reported too since packed text tables rarely pad. minLen < 4
// is clamped to 4 to keep the noise down.
func FindStrings(r *rom.Rom, minLen int) []StringResult {
	if minLen < 4 {
		minLen = 4
	}
	data := r.Bytes()
	var out []StringResult
	for i := 0; i < len(data); {
		if !isTextByte(data[i]) {
			i++
			continue
		}
		j := i
		for j < len(data) && isTextByte(data[j]) {
			j++
		}
		if j-i >= minLen {
			out = append(out, StringResult{
				Addr:  rom.ROMStart + uint32(i),
				Value: EscapeUnprintable(data[i:j]),
				Len:   j - i,
			})
		}
		i = j + 1
	}
	return out
}

// ReadCString reads a NUL-terminated string at the given bus address,
// up to maxLen bytes. Returns the escaped string, the original byte
// length, and whether the address was readable.
func ReadCString(r *rom.Rom, addr uint32, maxLen int) (string, int, bool) {
	o, ok := r.Offset(addr)
	if !ok {
		return "", 0, false
	}
	off := int(o)
	data := r.Bytes()
	end := off + maxLen
	if end > len(data) {
		end = len(data)
	}
	raw := data[off:end]
	for i, b := range raw {
		if b == 0 {
			raw = raw[:i]
			break
		}
	}
	return EscapeUnprintable(raw), len(raw), true
}
