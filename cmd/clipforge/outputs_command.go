package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/outputs"
)

func newOutputsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var prune bool

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "List finished artifacts from the outputs catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			catalog, err := outputs.Open(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			defer catalog.Close()

			out := cmd.OutOrStdout()
			if prune {
				removed, pruneErr := catalog.Prune(cmd.Context())
				if pruneErr != nil {
					return pruneErr
				}
				fmt.Fprintf(out, "pruned %d stale entries\n", removed)
			}

			artifacts, err := catalog.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(artifacts) == 0 {
				fmt.Fprintln(out, "no outputs recorded")
				return nil
			}

			rows := make([][]string, 0, len(artifacts))
			for _, artifact := range artifacts {
				rows = append(rows, []string{
					strconv.FormatInt(artifact.ID, 10),
					artifact.JobID,
					artifact.Kind,
					formatTimestamp(artifact.DurationMs),
					artifact.CreatedAt.Local().Format(time.DateTime),
					artifact.Path,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Job", "Kind", "Duration", "Created", "Path"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Maximum number of artifacts to list (0 for all)")
	cmd.Flags().BoolVar(&prune, "prune", false, "Drop catalog entries whose files no longer exist")
	return cmd
}
