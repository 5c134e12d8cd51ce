package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Not-Dhanraj/Star-Scout/internal/match"
)

var checkImage string

var checkAssetsCmd = &cobra.Command{
	Use:   "check-assets",
	Short: "Match the special card templates against one frame",
	Long: `Loads every template under template_dir and searches the check region
of one frame for them. Annotated region images are written to debug_dir so
the threshold can be tuned.`,
	RunE: runCheckAssets,
}

func init() {
	checkAssetsCmd.Flags().StringVar(&checkImage, "image", "", "read a saved screenshot instead of the device")
}

func runCheckAssets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	assets, err := match.LoadAssets(cfg.TemplateDir)
	if err != nil {
		return err
	}
	defer assets.Close()
	if len(assets) == 0 {
		return fmt.Errorf("no templates in %s", cfg.TemplateDir)
	}

	capturer, err := openCapturer(ctx, cfg, checkImage)
	if err != nil {
		return err
	}
	defer capturer.Close()

	frame, err := capturer.Capture(ctx)
	if err != nil {
		return err
	}

	region := match.Region(cfg.CheckRegion)
	if err := region.Validate(frame.Bounds()); err != nil {
		return err
	}

	matcher := match.NewMatcher(cfg.MatchThreshold).WithDebugDir(cfg.DebugDir)
	fmt.Printf("Region %s, threshold %.2f, %d templates\n", region, matcher.Threshold(), len(assets))
	for _, a := range assets {
		res := matcher.Match(frame.Image, match.Assets{a}, region)
		mark := " "
		if res.Found {
			mark = "*"
		}
		fmt.Printf("%s %-24s %.3f  scale %.2f\n", mark, a.Name, res.Confidence, res.Scale)
	}
	fmt.Println("Debug images in", cfg.DebugDir)
	return nil
}
