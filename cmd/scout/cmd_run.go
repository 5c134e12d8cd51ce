package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Not-Dhanraj/Star-Scout/internal/adb"
	"github.com/Not-Dhanraj/Star-Scout/internal/alert"
	"github.com/Not-Dhanraj/Star-Scout/internal/config"
	"github.com/Not-Dhanraj/Star-Scout/internal/debug"
	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
	"github.com/Not-Dhanraj/Star-Scout/internal/match"
	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/attribute"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/history"
	"github.com/Not-Dhanraj/Star-Scout/internal/remote"
	"github.com/Not-Dhanraj/Star-Scout/internal/screen"
	"github.com/Not-Dhanraj/Star-Scout/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scout loop until a target is found",
	Long: `Runs the decision loop against the connected device. The loop stops when
a revealed player's rating falls inside the target range or a special card
is matched in the check region. Ctrl-C stops it between iterations.

With monitor_addr set, status and events are also served over HTTP and
WebSocket.`,
	RunE: runScout,
}

// engine is a recognizer that holds resources.
type engine interface {
	ocr.Recognizer
	Close() error
}

func openRecognizer(c *config.Config) (engine, error) {
	if c.OCRBackend == "remote" {
		return remote.Dial(c.RemoteOCRAddr)
	}
	return ocr.NewTesseract(c.OCRLanguage)
}

func openDevice(ctx context.Context, c *config.Config) (*adb.Client, error) {
	client := adb.New(c.ADBPath, c.ADBSerial)
	devices, err := client.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, apperrors.New(apperrors.CodeUnavailable, "no adb device attached")
	}
	slog.Info("device attached", "devices", devices, "serial", c.ADBSerial)
	return client, nil
}

func runScout(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := openDevice(ctx, cfg)
	if err != nil {
		return err
	}

	rec, err := openRecognizer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rec.Close() }()

	assets, err := match.LoadAssets(cfg.TemplateDir)
	if err != nil {
		return err
	}
	defer assets.Close()
	slog.Info("templates loaded", "dir", cfg.TemplateDir, "assets", assets.Names())

	capturer := screen.NewADB(client, cfg.Delays.Capture)
	defer capturer.Close()

	matcher := match.NewMatcher(cfg.MatchThreshold)
	deps := orchestrator.Deps{
		Capturer:   capturer,
		Recognizer: rec,
		Actor:      adb.NewTapper(client, cfg.Delays.Click),
		Notifier:   alert.NewPlayer(cfg.AlertSound, cfg.AlertFrequency, cfg.AlertBeeps),
		Extractor:  attribute.NewExtractor(rec, cfg.AttributeMin, cfg.AttributeMax),
		Matcher:    matcher,
		Assets:     assets,
	}
	if cfg.Debug {
		sink := debug.New(cfg.DebugDir, true)
		matcher.WithDebugDir(sink.Dir())
		deps.Sink = sink
		slog.Info("debug images enabled", "dir", sink.Dir())
	}

	m := orchestrator.New(cfg, deps)

	g, gctx := errgroup.WithContext(ctx)
	monitorCtx, cancelMonitor := context.WithCancel(gctx)
	defer cancelMonitor()

	var result orchestrator.Result
	g.Go(func() error {
		defer cancelMonitor()
		res, err := m.Run(gctx)
		result = res
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if cfg.MonitorAddr != "" {
		g.Go(func() error {
			return server.New(m).ListenAndServe(monitorCtx, cfg.MonitorAddr)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	switch result.Outcome {
	case orchestrator.FoundTarget:
		fmt.Printf("Target found: rating %d after %d iterations (%s)\n", result.Attribute, result.Iterations, result.Elapsed.Round(time.Second))
	case orchestrator.FoundSpecial:
		fmt.Printf("Special card found: %s (%.2f) after %d iterations (%s)\n", result.Asset, result.Confidence, result.Iterations, result.Elapsed.Round(time.Second))
	default:
		fmt.Printf("Stopped after %d iterations (%s)\n", result.Iterations, result.Elapsed.Round(time.Second))
	}
	counts := m.Counts()
	fmt.Printf("Taps: %d  unknown backoffs: %d  faults: %d\n",
		counts[history.KindAction], counts[history.KindBackoff], counts[history.KindFault])
	return nil
}
