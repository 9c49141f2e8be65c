package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/alignment"
	"clipforge/internal/media"
	"clipforge/internal/overlay"
	"clipforge/internal/speech"
)

func newKaraokeCommand(ctx *commandContext) *cobra.Command {
	var scriptFlag string
	var scriptFile string
	var modeFlag string
	var outDir string

	cmd := &cobra.Command{
		Use:   "karaoke <audio-file>",
		Short: "Generate word-aligned karaoke subtitles for an audio file",
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

			script := scriptFlag
			if scriptFile != "" {
				data, readErr := os.ReadFile(scriptFile)
				if readErr != nil {
					return fmt.Errorf("read script file: %w", readErr)
				}
				script = string(data)
			}

			transcriber := speech.NewWhisperX(speech.Config{
				Model:       cfg.Speech.Model,
				CUDAEnabled: cfg.Speech.CUDAEnabled,
				VADMethod:   cfg.Speech.VADMethod,
			}, filepath.Join(cfg.Paths.StagingDir, "transcribe"))
			engine := media.NewFFmpeg(cfg.Media, logger)
			svc := alignment.NewService(transcriber, engine, alignment.OverlayOptions{
				Mode:         alignment.OverlayModeLine,
				WordsPerLine: cfg.Alignment.WordsPerLine,
				Style: overlay.Style{
					FontSize:    cfg.Alignment.FontSize,
					FontColor:   cfg.Alignment.FontColor,
					StrokeColor: cfg.Alignment.StrokeColor,
					StrokeWidth: cfg.Alignment.StrokeWidth,
					Padding:     cfg.Alignment.Padding,
				},
				AnchorY: cfg.Media.FrameHeight - 100,
			}, logger)

			dir := outDir
			if dir == "" {
				dir = cfg.Paths.OutputDir
			}
			result, err := svc.Karaoke(cmd.Context(), args[0], script,
				alignment.OverlayMode(strings.TrimSpace(modeFlag)), dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "alignment mode: %s\n", result.Mode)
			fmt.Fprintf(out, "subtitle file:  %s\n", result.SRTPath)

			rows := make([][]string, 0, len(result.Words))
			for _, word := range result.Words {
				rows = append(rows, []string{
					word.DisplayText,
					formatTimestamp(word.StartMs),
					formatTimestamp(word.EndMs),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Word", "Start", "End"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptFlag, "script", "s", "", "Script text to align against the audio")
	cmd.Flags().StringVar(&scriptFile, "script-file", "", "File containing the script text")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Overlay mode: line or word")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to configured output dir)")
	return cmd
}
