// Command scout drives the Star Scout event on an attached Android device.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Not-Dhanraj/Star-Scout/internal/config"
)

var (
	configPath string
	debugMode  bool
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Star Scout automation for FC Mobile",
	Long: `scout reads the device screen over adb, recognizes which Star Scout
screen is showing and taps through reveals until a player with a rating in
the target range, or a special card, turns up.

Calibrated for a 2400x1080 landscape display. Coordinates, delays and the
target range come from the config file and SCOUT_* variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if debugMode {
			loaded.Debug = true
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		cfg = loaded
		return setupLogging(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "save diagnostic images")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(runCmd, probeCmd, checkAssetsCmd, devicesCmd, serveOCRCmd)
}

func setupLogging(c *config.Config) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(c.LogFormat) {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
