package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lapse/internal/services/camera"
	"lapse/internal/services/connect"
)

func newTestCaptureCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var upload bool

	cmd := &cobra.Command{
		Use:   "test-capture",
		Short: "Capture a single test frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = filepath.Join(cfg.Paths.PrintsDir, "test_capture.jpg")
			}
			absolute, err := filepath.Abs(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			capturer, err := camera.New(cfg)
			if err != nil {
				return fmt.Errorf("initialize camera: %w", err)
			}
			if err := capturer.Capture(cmd.Context(), absolute); err != nil {
				return fmt.Errorf("capture test frame: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Captured test frame to %s\n", absolute)

			if upload {
				uploader := connect.New(cfg)
				if !uploader.Enabled() {
					return fmt.Errorf("connect uploads are not configured; set token and fingerprint in the config file")
				}
				if err := uploader.Upload(cmd.Context(), absolute); err != nil {
					return fmt.Errorf("upload test frame: %w", err)
				}
				fmt.Fprintln(out, "Uploaded test frame to Prusa Connect")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the captured frame")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the captured frame to Prusa Connect")
	return cmd
}
