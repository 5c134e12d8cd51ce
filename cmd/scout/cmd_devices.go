package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Not-Dhanraj/Star-Scout/internal/adb"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices visible to adb",
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := adb.New(cfg.ADBPath, cfg.ADBSerial).Devices(cmd.Context())
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices attached")
			return nil
		}
		for _, d := range devices {
			fmt.Println(d)
		}
		return nil
	},
}
