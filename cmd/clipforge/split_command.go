package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/media"
	"clipforge/internal/segmentation"
)

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var parts int
	var outDir string

	cmd := &cobra.Command{
		Use:   "split <audio-file>",
		Short: "Split an audio file into parts at silence boundaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			engine := media.NewFFmpeg(cfg.Media, logger)
			detector := segmentation.NewDetector(segmentation.DetectorConfig{
				MinSilenceMs: cfg.Segmentation.MinSilenceMs,
				NoiseDb:      cfg.Segmentation.NoiseDb,
			}, cfg.Media.FFmpegBinary)
			svc := segmentation.NewService(detector, engine, segmentation.Options{
				MaxParts:     cfg.Segmentation.MaxParts,
				MinSegmentMs: cfg.Segmentation.MinSegmentMs,
			}, logger)

			dir := outDir
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			result, err := svc.SplitFile(cmd.Context(), args[0], parts, dir)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(result.Segments))
			for i, segment := range result.Segments {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					formatTimestamp(result.Boundaries[i]),
					formatTimestamp(result.Boundaries[i+1]),
					segment,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Part", "Start", "End", "File"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&parts, "parts", "n", 2, "Number of segments to produce")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to configured output dir)")
	return cmd
}

func formatTimestamp(ms int64) string {
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d.%03d", seconds/60, seconds%60, ms%1000)
}
