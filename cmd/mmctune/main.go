package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soypat/mmctune"
	"github.com/soypat/mmctune/internal/boardcfg"
)

const levelTrace = slog.LevelDebug - 1

var (
	flagVerbose int
	flagConfig  string
	flagImage   string
	logger      *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mmctune",
		Short: "MMC/SD sample delay calibration against an emulated card",
		Long: `mmctune runs the sample delay tuning flow against an emulated card backed by
a disk image file, and inspects calibration records and tuning patterns.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelInfo
			switch {
			case flagVerbose == 1:
				level = slog.LevelDebug
			case flagVerbose > 1:
				level = levelTrace
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "Increase log verbosity. Repeat for trace output.")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Board configuration file (.toml, .yaml or .yml).")
	rootCmd.PersistentFlags().StringVarP(&flagImage, "image", "i", "card.img", "Disk image backing the emulated card.")

	rootCmd.AddCommand(tuneCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(patternCmd())
	rootCmd.AddCommand(configCmd())
	return rootCmd
}

// loadConfig returns the board configuration selected by --config, or defaults.
func loadConfig() (mmctune.Config, error) {
	if flagConfig == "" {
		return mmctune.DefaultConfig(), nil
	}
	return boardcfg.Load(flagConfig)
}

func configCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective board configuration",
		Long: `Print the board configuration loaded from --config, or the defaults when none is
given, as a configuration file. Useful as a starting template:

  mmctune config --format yaml > board.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := boardcfg.FormatOf("board." + format)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			file := boardcfg.FromConfig(cfg)
			data, err := boardcfg.Marshal(&file, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format: toml or yaml.")
	return cmd
}
