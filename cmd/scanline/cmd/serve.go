package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/scanner"
	"github.com/MeKo-Tech/scanline/internal/server"
)

// serveCmd starts the HTTP scanning server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server exposing the scanner",
	Long: `Start an HTTP server exposing the scanner:

  GET  /healthz     - health check
  GET  /formats     - supported symbologies
  POST /scan/start  - start a scanning session
  POST /scan/stop   - stop the current session
  GET  /scan/status - capability and session state
  GET  /scan/ws     - websocket stream of decoded values
  GET  /preview     - MJPEG preview of the live feed
  GET  /metrics     - Prometheus metrics

Examples:
  scanline serve
  scanline serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}

		device, err := camera.New(cfg.CameraDriver())
		if err != nil {
			return err
		}
		svc := scanner.New(scanner.Config{
			Device:      device,
			Detect:      cfg.DetectConfig(),
			Constraints: cfg.CameraConstraints(),
		})
		if !svc.Supported() {
			slog.Warn("barcode detection unavailable; scan endpoints will report unsupported")
		}

		srv := server.New(cfg.Server, svc)

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig.String())
			return srv.Shutdown(context.Background())
		}
	},
}

func init() {
	serveCmd.Flags().String("host", "localhost", "server bind host")
	serveCmd.Flags().Int("port", 8080, "server bind port")
	rootCmd.AddCommand(serveCmd)
}
