// Package colorize applies terminal syntax highlighting to assembly
// listings via chroma. Colors are disabled with ROMSCOPE_NO_COLOR.
package colorize

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// getAssemblyLexer returns an assembly lexer, preferring the ARM one
// since the listing is THUMB in GAS syntax.
func getAssemblyLexer() chroma.Lexer {
	candidates := []string{"armasm", "gas", "nasm"}
	for _, name := range candidates {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getDisasmStyle() *chroma.Style {
	candidates := []string{"disasm-dark", "dracula", "monokai"}
	for _, name := range candidates {
		if style := styles.Get(name); style != nil {
			return style
		}
	}
	return styles.Fallback
}

func getTerminalFormatter() chroma.Formatter {
	candidates := []string{"terminal16m", "terminal256"}
	for _, name := range candidates {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

func colorsDisabled() bool {
	return os.Getenv("ROMSCOPE_NO_COLOR") != ""
}

// Listing colorizes a whole listing block at once.
func Listing(code string) (string, error) {
	if colorsDisabled() {
		return code, nil
	}
	lexer := getAssemblyLexer()
	if lexer == nil {
		return code, nil
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code, err
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return code, err
	}
	return buf.String(), nil
}

// InstructionLine colorizes one listing line, keeping the leading
// address column gray so it does not compete with the mnemonic.
// The line layout is "address  raw  mnemonic operands ; comment".
func InstructionLine(line string) string {
	if colorsDisabled() {
		return line
	}

	parts := strings.SplitN(line, " ", 2)
	if len(parts) < 2 || !isHex(parts[0]) {
		return colorizeFragment(line)
	}
	addr := fmt.Sprintf("\033[38;2;79;79;79m%s\033[0m", parts[0])
	return addr + " " + colorizeFragment(parts[1])
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9', ch >= 'a' && ch <= 'f', ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

func colorizeFragment(s string) string {
	lexer := getAssemblyLexer()
	if lexer == nil {
		return s
	}
	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, getDisasmStyle(), iterator); err != nil {
		return s
	}
	return strings.TrimRight(buf.String(), "\n")
}

// VisibleLen counts characters excluding ANSI escape sequences, for
// column alignment of already-colorized text.
func VisibleLen(s string) int {
	visible := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			visible++
		}
	}
	return visible
}
