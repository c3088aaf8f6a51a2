package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"romscope/internal/analysis"
	"romscope/internal/ui/colorize"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm [rom.gba]",
	Short: "Print an annotated THUMB listing for an address range",
	Example: `
# 64 bytes starting at the given address
romscope disasm game.gba --addr 0x08000200 --len 64

# Whole function containing an address, with symbol annotations
romscope disasm game.gba --addr 0x080031f0 --func --syms symbols.cfg
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, syms, err := loadInputs(cmd, args[0])
		if err != nil {
			return err
		}

		addrStr, _ := cmd.Flags().GetString("addr")
		addr, err := parseAddr(addrStr)
		if err != nil {
			return err
		}
		length, _ := cmd.Flags().GetUint32("len")

		if wholeFunc, _ := cmd.Flags().GetBool("func"); wholeFunc {
			rng, ok := analysis.FunctionAt(image, addr)
			if !ok {
				return fmt.Errorf("no function boundaries found around 0x%08x", addr)
			}
			addr, length = rng.Start, rng.ByteSize()
		}

		lines := analysis.DisassembleRange(image, addr, length, syms)
		colored := term.IsTerminal(os.Stdout.Fd())
		for _, l := range lines {
			text := l.String()
			if colored {
				text = colorize.InstructionLine(text)
			}
			fmt.Println(text)
		}
		return nil
	},
}

func init() {
	disasmCmd.Flags().String("addr", "", "Start address (hex)")
	disasmCmd.Flags().Uint32("len", 64, "Number of bytes to decode")
	disasmCmd.Flags().Bool("func", false, "Disassemble the whole function containing --addr")
	_ = disasmCmd.MarkFlagRequired("addr")
	rootCmd.AddCommand(disasmCmd)
}
