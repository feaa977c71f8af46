package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"lapse/internal/daemon"
	"lapse/internal/deps"
	"lapse/internal/history"
	"lapse/internal/logging"
	"lapse/internal/monitor"
)

// newRunCommand runs the daemon in the foreground, mainly for testing
// a setup before installing the lapsed service.
func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the timelapse daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "lapse.log")},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			for _, warning := range cfg.Warnings() {
				logger.Warn(warning)
			}

			if err := deps.Verify(cfg); err != nil {
				logger.Warn("dependency check failed, captures will not work until fixed", logging.Error(err))
			} else if err := deps.CheckCamera(cmd.Context(), cfg); err != nil {
				logger.Warn("camera not detected, captures will fail until it is connected", logging.Error(err))
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}

			mon, err := monitor.New(monitor.Options{
				Config:     cfg,
				ConfigPath: ctx.configPath,
				Logger:     logger,
				History:    store,
			})
			if err != nil {
				return fmt.Errorf("create monitor: %w", err)
			}

			d, err := daemon.New(cfg, store, logger, mon)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Monitoring printer, press Ctrl-C to stop")
			<-runCtx.Done()
			d.Stop()
			return nil
		},
	}
}
