package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	reflection "github.com/wippyai/swift-reflection"
	"github.com/wippyai/swift-reflection/image"
)

var rootCmd = &cobra.Command{
	Use:   "swift-reflection-dump",
	Short: "Inspect Swift reflection metadata",
	Long: `Reads the swift5_* reflection sections of ELF and Mach-O images and
prints the types, fields, associated types and builtin layouts they describe.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func main() {
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(typeCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(browseCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log registry scans and skipped records to stderr")
	rootCmd.PersistentFlags().String("config", "", "path to "+configFileName+" (default: search upwards from the working directory)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and installs the logger and color mode
// shared by every command.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	active = cfg

	if cfg.Verbose {
		zc := zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stderr"}
		logger, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		reflection.SetLogger(logger)
		image.SetLogger(logger)
	}

	switch cfg.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown color mode %q (auto|on|off)", cfg.Color)
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
