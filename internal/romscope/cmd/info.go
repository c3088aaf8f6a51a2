package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"romscope/internal/rom"
)

var infoCmd = &cobra.Command{
	Use:   "info [rom.gba]",
	Short: "Print cartridge header information",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image, err := rom.Load(args[0])
		if err != nil {
			return err
		}
		header, err := image.Header()
		if err != nil {
			return err
		}

		fmt.Printf("file:      %s (%d bytes)\n", args[0], image.Len())
		fmt.Printf("title:     %s\n", header.Title)
		fmt.Printf("game code: %s\n", header.GameCode)
		fmt.Printf("maker:     %s\n", header.MakerCode)
		check := "ok"
		if !header.ChecksumOK {
			check = "BAD"
		}
		fmt.Printf("checksum:  0x%02x (%s)\n", header.Checksum, check)
		if header.Entry != 0 {
			fmt.Printf("entry:     0x%08x\n", header.Entry)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
