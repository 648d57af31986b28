package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/soypat/mmctune"
	"github.com/soypat/mmctune/param"
	"github.com/soypat/mmctune/pattern"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Decode the calibration record stored in a disk image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fp, err := os.Open(flagImage)
			if err != nil {
				return err
			}
			defer fp.Close()
			region := make([]byte, int(cfg.Regions.RegionSize(mmctune.RegionParam))*mmctune.BlockSize)
			off := int64(cfg.Regions.RegionOffset(mmctune.RegionParam)) * mmctune.BlockSize
			n, err := fp.ReadAt(region, off)
			if err != nil && err != io.EOF {
				return err
			}
			rec, err := param.Decode(region[:n])
			if err != nil {
				return fmt.Errorf("param region at block %#x: %w", off/mmctune.BlockSize, err)
			}
			w := cmd.OutOrStdout()
			info := rec.Info
			fmt.Fprintf(w, "version=%#x length=%d sum=%#08x\n", rec.Header.Version, rec.Header.Length, rec.Header.Checksum)
			fmt.Fprintf(w, "card=%s tuned=%v ext_para0=%#08x ext_para1=%#08x\n", info.CardType, info.TuningOK(), info.ExtPara0, info.ExtPara1)
			fmt.Fprintf(w, "boot=%+v\n", info.Boot)
			tbl := param.UnpackDelays(cfg.TimingMode, info.TuneWords)
			fmt.Fprintf(w, "delays (%s):\n%s", cfg.TimingMode, tbl.String())
			return nil
		},
	}
}

func patternCmd() *cobra.Command {
	var (
		width  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Generate the tuning reference pattern",
		Long: `Generate the tuning reference pattern for a bus width. The pattern is written
raw to --output, or hex dumped to standard output when no file is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pat, err := pattern.Generate(width)
			if err != nil {
				return err
			}
			if output != "" {
				logger.Info("pattern:write", "file", output, "blocks", pattern.Blocks(pat))
				return os.WriteFile(output, pat, 0o644)
			}
			dumper := hex.Dumper(cmd.OutOrStdout())
			defer dumper.Close()
			_, err = dumper.Write(pat)
			return err
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 8, "Data bus width, 4 or 8.")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the raw pattern to this file.")
	return cmd
}
