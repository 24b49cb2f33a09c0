package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/scanner"
)

// scanCmd runs a scanning session and prints decoded values to stdout.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan barcodes from the camera and print decoded values",
	Long: `Start a scanning session against the configured camera and print each
decoded value on its own line until interrupted.

Examples:
  scanline scan
  scanline scan --once
  scanline scan --driver playback --device-path ./frames`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		once, _ := cmd.Flags().GetBool("once")

		device, err := camera.New(cfg.CameraDriver())
		if err != nil {
			return err
		}

		svcCfg := scanner.Config{
			Device:      device,
			Detect:      cfg.DetectConfig(),
			Constraints: cfg.CameraConstraints(),
		}
		svc := scanner.New(svcCfg)
		if !svc.Supported() {
			return fmt.Errorf("barcode detection is not supported with backend %q", cfg.Detector.Backend)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		results := svc.StartScanning(ctx, nil)
		sub := results.Subscribe()
		defer svc.StopScanning()

		slog.Info("scanning; press Ctrl+C to stop")
		for {
			select {
			case <-ctx.Done():
				return nil
			case value, ok := <-sub.Values():
				if !ok {
					return sub.Err()
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
				if once {
					return nil
				}
			}
		}
	},
}

func init() {
	scanCmd.Flags().Bool("once", false, "exit after the first decoded value")
	rootCmd.AddCommand(scanCmd)
}
