package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/scanline/internal/config"
	"github.com/MeKo-Tech/scanline/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scanline",
	Short: "Continuous barcode scanning from a live camera feed",
	Long: `scanline drives a camera and decodes barcodes and QR codes from the live
feed, delivering values as a stream to the terminal or to HTTP clients.

Examples:
  scanline scan
  scanline scan --driver ffmpeg --device-path /dev/video1
  scanline serve --port 8080
  scanline formats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.Flags().GetBool("version")
		if v {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "scanline version", version.Version)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Commit:", version.Commit)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Date:", version.Date)
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes, so tests can
// execute commands without calling os.Exit.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// GetConfig returns the loaded global configuration.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	return globalConfig
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/scanline, /etc/scanline)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("driver", "", "camera driver (rpicam, ffmpeg, playback)")
	rootCmd.PersistentFlags().String("device-path", "", "camera device path or playback directory")
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("camera.driver", rootCmd.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("camera.device_path", rootCmd.PersistentFlags().Lookup("device-path"))
}

// initConfig loads configuration and configures logging.
func initConfig() {
	loader := GetConfigLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	globalConfig = cfg

	level := parseLogLevel(cfg.LogLevel)
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
