package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lapse/internal/daemon"
	"lapse/internal/deps"
	"lapse/internal/history"
	"lapse/internal/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state and the most recent session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			running, err := daemon.Running(cfg)
			if err != nil {
				return err
			}
			state := "stopped"
			if running {
				state = "running"
			}
			fmt.Fprintf(out, "Daemon: %s\n", state)
			fmt.Fprintf(out, "Printer: %s\n", cfg.Printer.Host)
			fmt.Fprintf(out, "Prints directory: %s\n", cfg.Paths.PrintsDir)
			fmt.Fprintf(out, "Connect uploads: %s\n", enabledLabel(cfg.ConnectEnabled()))
			fmt.Fprintf(out, "Email: %s\n", enabledLabel(cfg.EmailConfigured()))
			for _, tool := range deps.CheckBinaries(deps.Required(cfg)) {
				availability := "available"
				if !tool.Available {
					availability = tool.Detail
				}
				fmt.Fprintf(out, "%s: %s\n", tool.Name, availability)
			}
			camState := "detected"
			if err := deps.CheckCamera(cmd.Context(), cfg); err != nil {
				camState = err.Error()
			}
			fmt.Fprintf(out, "Camera: %s\n", camState)

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(context.Background(), 1)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "Last session: none recorded")
				return nil
			}
			last := records[0]
			fmt.Fprintf(out, "Last session: %s (%s, %d frames, %s, ended %s)\n",
				last.Name, last.Status, last.FrameCount,
				report.FormatDuration(last.Duration),
				last.EndedAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
