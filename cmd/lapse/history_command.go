package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lapse/internal/history"
	"lapse/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded print sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				output := rec.VideoPath
				if rec.Status == history.StatusFailed {
					output = rec.FramesPath
				}
				rows = append(rows, []string{
					rec.EndedAt.Local().Format("2006-01-02 15:04"),
					rec.Name,
					string(rec.Status),
					strconv.Itoa(rec.FrameCount),
					report.FormatDuration(rec.Duration),
					output,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Ended", "Print", "Status", "Frames", "Duration", "Output"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sessions to list (0 for all)")
	return cmd
}
