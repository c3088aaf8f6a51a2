package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"romscope/internal/analysis"
)

var findCmd = &cobra.Command{
	Use:   "find [rom.gba]",
	Short: "Find functions matching reference criteria",
	Long: `Find sweeps the image for prologue-delimited functions and keeps
those matching every given criterion: constants they load from
literal pools, addresses they call, and a byte-size range. It is the
generic form of the usual "which function touches this variable"
question.`,
	Example: `
# Functions referencing both an EWRAM variable and an IO register
romscope find game.gba --ref 0x02021770 --ref 0x04000130

# Small helpers calling a known function
romscope find game.gba --calls 0x08003188 --max-size 64
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, syms, err := loadInputs(cmd, args[0])
		if err != nil {
			return err
		}

		refs, _ := cmd.Flags().GetStringSlice("ref")
		calls, _ := cmd.Flags().GetStringSlice("calls")
		minSize, _ := cmd.Flags().GetUint32("min-size")
		maxSize, _ := cmd.Flags().GetUint32("max-size")

		var preds []analysis.Predicate
		for _, s := range refs {
			v, err := parseAddr(s)
			if err != nil {
				return err
			}
			preds = append(preds, analysis.ByLiteralValue(v))
		}
		for _, s := range calls {
			t, err := parseAddr(s)
			if err != nil {
				return err
			}
			preds = append(preds, analysis.ByCallTarget(t))
		}
		if minSize > 0 || maxSize > 0 {
			preds = append(preds, analysis.BySizeRange(minSize, maxSize))
		}
		if len(preds) == 0 {
			return fmt.Errorf("at least one of --ref, --calls, --min-size, --max-size is required")
		}

		idx := analysis.BuildIndex(image)
		matches := analysis.FindFunctions(image, idx, analysis.All(preds...))
		if len(matches) == 0 {
			fmt.Println("no matching functions")
			return nil
		}
		for _, f := range matches {
			name := fmt.Sprintf("sub_%08X", f.Range.Start)
			if sym, ok := syms.Name(f.Range.Start); ok {
				name = sym
			}
			fmt.Printf("0x%08x  %-32s %4d bytes  conf %.2f  refs [%s]  calls [%s]\n",
				f.Range.Start, name, f.Range.ByteSize(), f.Range.Confidence,
				hexList(f.Literals), hexList(f.Calls))
		}
		return nil
	},
}

func hexList(vals []uint32) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("0x%08x", v)
	}
	return strings.Join(parts, " ")
}

func init() {
	findCmd.Flags().StringSlice("ref", nil, "Literal pool value the function must reference (repeatable)")
	findCmd.Flags().StringSlice("calls", nil, "Address the function must call (repeatable)")
	findCmd.Flags().Uint32("min-size", 0, "Minimum function size in bytes")
	findCmd.Flags().Uint32("max-size", 0, "Maximum function size in bytes")
	rootCmd.AddCommand(findCmd)
}
