package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Not-Dhanraj/Star-Scout/internal/config"
	"github.com/Not-Dhanraj/Star-Scout/internal/debug"
	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/attribute"
	orchscreen "github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/screen"
	"github.com/Not-Dhanraj/Star-Scout/internal/screen"
)

var probeImage string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Capture one frame and show how it is read",
	Long: `Captures the device screen once (or reads --image) and prints the
recognized text, the screen it classifies as, whether an OVR label is
visible and the rating the extractor votes for.

Useful when calibrating for a new device or language pack.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&probeImage, "image", "", "read a saved screenshot instead of the device")
}

// openCapturer reads path when set, otherwise the attached device.
func openCapturer(ctx context.Context, c *config.Config, path string) (screen.Capturer, error) {
	if path != "" {
		return screen.NewFile(path), nil
	}
	client, err := openDevice(ctx, c)
	if err != nil {
		return nil, err
	}
	return screen.NewADB(client, c.Delays.Capture), nil
}

func runProbe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	capturer, err := openCapturer(ctx, cfg, probeImage)
	if err != nil {
		return err
	}
	defer capturer.Close()

	rec, err := openRecognizer(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rec.Close() }()

	frame, err := capturer.Capture(ctx)
	if err != nil {
		return err
	}

	text := ocr.ReadScreen(ctx, rec, frame.Image)
	classifier := orchscreen.NewClassifier()
	state := classifier.Classify(text)

	fmt.Printf("Frame:  %dx%d\n", frame.Bounds().Dx(), frame.Bounds().Dy())
	fmt.Printf("State:  %s\n", state)
	if state == orchscreen.StateUnknown {
		if phrase, d, ok := classifier.Nearest(text); ok {
			fmt.Printf("Nearest phrase: %q (distance %d)\n", phrase, d)
		}
	}

	marker := orchscreen.HasAttributeMarker(text)
	fmt.Printf("OVR label: %v\n", marker)
	if marker {
		ext := attribute.NewExtractor(rec, cfg.AttributeMin, cfg.AttributeMax)
		if v, ok := ext.Extract(ctx, frame.Image); ok {
			fmt.Printf("Rating: %d (target %d-%d)\n", v, cfg.TargetMin, cfg.TargetMax)
		} else {
			fmt.Println("Rating: unreadable")
		}
	}

	fmt.Println("Text:")
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		fmt.Println("  " + line)
	}

	if cfg.Debug {
		w := debug.New(cfg.DebugDir, true)
		if p, err := w.SaveImage("probe.png", frame.Image); err == nil {
			fmt.Println("Saved", p)
		}
		if _, err := w.SaveText("probe.txt", text); err != nil {
			return err
		}
		if marker {
			card := attribute.PrepareCard(frame.Image)
			if _, err := w.SaveImage("probe_card.png", card); err != nil {
				return err
			}
		}
	}
	return nil
}
