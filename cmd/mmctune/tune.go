package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/soypat/mmctune"
	"github.com/soypat/mmctune/internal/emu"
	"github.com/soypat/mmctune/sdly"
)

func tuneCmd() *cobra.Command {
	var (
		mqttAddr  string
		topic     string
		clientID  string
		force     bool
		strobeOff bool
	)
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Calibrate an emulated card",
		Long: `Run the boot calibration flow against an emulated card backed by --image.
A stored calibration is reused unless --force is given.

Examples:
  # Tune with the default board and publish the result
  mmctune tune -i card.img --mqtt test.mosquitto.org:1883

  # Tune a timing mode 2 board with trace output
  mmctune tune -c board.toml -vv --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Logger = logger
			fp, err := os.OpenFile(flagImage, os.O_RDWR|os.O_CREATE, 0o644)
			if err != nil {
				return err
			}
			defer fp.Close()

			ecfg := emu.DefaultConfig(fp)
			if strobeOff {
				ecfg.Strobe.Span = -1
			}
			card := emu.New(ecfg)
			tuner := mmctune.New(card)
			if err := tuner.Init(cfg); err != nil {
				return err
			}
			start := time.Now()
			var timing sdly.Timing
			if force {
				timing, err = forceTune(tuner)
			} else {
				timing, err = tuner.Calibrate()
			}
			if err != nil {
				return err
			}
			tbl := tuner.Table()
			report := tuneReport(timing, &tbl, time.Since(start))
			fmt.Fprint(cmd.OutOrStdout(), report)
			if mqttAddr == "" {
				return nil
			}
			return publish(cmd.Context(), mqttAddr, clientID, topic, []byte(report))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&mqttAddr, "mqtt", "", "MQTT broker address (host:port) to publish the calibration report to.")
	flags.StringVar(&topic, "topic", "mmctune/report", "MQTT topic for the calibration report.")
	flags.StringVar(&clientID, "client-id", "mmctune", "MQTT client identifier.")
	flags.BoolVar(&force, "force", false, "Retune even if a stored calibration exists.")
	flags.BoolVar(&strobeOff, "no-strobe", false, "Emulate a card without a working HS400 data strobe.")
	return cmd
}

// forceTune tunes the bus regardless of stored records.
func forceTune(tuner *mmctune.Tuner) (sdly.Timing, error) {
	if err := tuner.BusTuning(); err != nil {
		return tuner.Timing(), err
	}
	if err := tuner.PackAndPersist(tuner.TimingMode()); err != nil {
		return tuner.Timing(), err
	}
	mode, freq, err := tuner.SelectBestKnownPoint()
	if err != nil {
		return tuner.Timing(), err
	}
	logger.Info("tune:forced", slog.String("mode", mode.String()), slog.Uint64("freq", uint64(freq)))
	return tuner.Timing(), nil
}

func tuneReport(timing sdly.Timing, tbl *sdly.Table, took time.Duration) string {
	return fmt.Sprintf("mode=%s freq=%d sample=%#x strobe=%#x took=%s\n%s",
		timing.Mode, timing.Freq, timing.Sample, timing.Strobe, took.Round(time.Millisecond), tbl.String())
}
