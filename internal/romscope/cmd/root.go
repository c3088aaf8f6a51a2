// Package cmd implements the romscope command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"romscope/internal/rom"
	"romscope/internal/romscope/log"
	"romscope/internal/symbols"
)

var rootCmd = &cobra.Command{
	Use:   "romscope [rom.gba]",
	Short: "Static analysis browser for GBA ROM images",
	Long: `Romscope is a terminal tool for reverse engineering GBA ROM images.
It decodes the THUMB instruction stream, resolves literal pool
constants, recovers function boundaries, and cross-references every
constant and call target in the image.`,
	Example: `
# Browse a ROM interactively
romscope game.gba

# With known symbols loaded
romscope --syms symbols.cfg game.gba
  `,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debugLog, _ := cmd.Flags().GetBool("debug")
		log.Setup("", debugLog)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		image, syms, err := loadInputs(cmd, args[0])
		if err != nil {
			return err
		}

		program := tea.NewProgram(
			newModel(image, syms),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

// loadInputs loads the ROM image and the optional symbol config named
// by --syms.
func loadInputs(cmd *cobra.Command, path string) (*rom.Rom, *symbols.Table, error) {
	image, err := rom.Load(path)
	if err != nil {
		return nil, nil, err
	}
	syms := symbols.New()
	if symsPath, _ := cmd.Flags().GetString("syms"); symsPath != "" {
		syms, err = symbols.LoadFile(symsPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("Loaded symbols", "count", syms.Len(), "file", symsPath)
	}
	return image, syms, nil
}

// parseAddr accepts 0x-prefixed or bare hex.
func parseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", s)
	}
	return uint32(v), nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("syms", "", "Symbol config file (0xADDR name lines)")
	rootCmd.PersistentFlags().String("cpuprofile", "", "Write CPU profile to file")
}

// Execute runs the CLI. Fang handles styled help and errors when
// attached to a terminal; plain cobra output is used when piped so
// listings stay machine-readable.
func Execute() {
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
