package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"romscope/internal/analysis"
)

var stringsCmd = &cobra.Command{
	Use:   "strings [rom.gba]",
	Short: "Scan the image for printable text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, _, err := loadInputs(cmd, args[0])
		if err != nil {
			return err
		}
		minLen, _ := cmd.Flags().GetInt("min")
		for _, s := range analysis.FindStrings(image, minLen) {
			fmt.Printf("0x%08x  %s\n", s.Addr, s.Value)
		}
		return nil
	},
}

func init() {
	stringsCmd.Flags().Int("min", 6, "Minimum string length in bytes")
	rootCmd.AddCommand(stringsCmd)
}
