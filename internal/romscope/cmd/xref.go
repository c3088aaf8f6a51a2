package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"romscope/internal/analysis"
	"romscope/internal/rom"
)

var xrefCmd = &cobra.Command{
	Use:   "xref [rom.gba]",
	Short: "Cross-reference a pool constant or call target",
	Long: `Xref builds the whole-image reverse index once and answers either
query against it: which pool slots hold a given 32-bit value, or
which call sites branch to a given address.`,
	Example: `
# Every pool slot holding an EWRAM pointer
romscope xref game.gba --value 0x02021770

# Every bl/blx call site targeting a function
romscope xref game.gba --callers 0x08003188
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, syms, err := loadInputs(cmd, args[0])
		if err != nil {
			return err
		}

		valueStr, _ := cmd.Flags().GetString("value")
		callersStr, _ := cmd.Flags().GetString("callers")
		if (valueStr == "") == (callersStr == "") {
			return fmt.Errorf("exactly one of --value or --callers is required")
		}

		workers, _ := cmd.Flags().GetInt("workers")
		slog.Debug("Building index", "bytes", image.Len(), "workers", workers)
		var idx *analysis.Index
		if workers > 1 {
			idx = analysis.BuildIndexParallel(image, workers)
		} else {
			idx = analysis.BuildIndex(image)
		}

		if valueStr != "" {
			value, err := parseAddr(valueStr)
			if err != nil {
				return err
			}
			entries := idx.RefEntries(value)
			if len(entries) == 0 {
				fmt.Printf("no pool references to 0x%08x\n", value)
				return nil
			}
			for _, e := range entries {
				fmt.Printf("0x%08x  pool 0x%08x  value 0x%08x %s\n",
					e.InstAddr, e.PoolAddr, e.Value, e.Region)
			}
			return nil
		}

		target, err := parseAddr(callersStr)
		if err != nil {
			return err
		}
		sites := idx.CallersOf(target)
		if len(sites) == 0 {
			fmt.Printf("no callers of 0x%08x\n", target)
			return nil
		}
		for _, site := range sites {
			line := fmt.Sprintf("0x%08x  bl 0x%08x", site, rom.MaskThumb(target))
			if name, ok := syms.Name(target); ok {
				line += fmt.Sprintf("  ; <%s>", name)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	xrefCmd.Flags().String("value", "", "32-bit constant to find in literal pools (hex)")
	xrefCmd.Flags().String("callers", "", "Call target address to find callers of (hex)")
	xrefCmd.Flags().Int("workers", 0, "Index scan workers (default sequential)")
	rootCmd.AddCommand(xrefCmd)
}
