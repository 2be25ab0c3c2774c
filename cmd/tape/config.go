package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/gekko3d/tape"
)

var showUsage bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&showUsage, "env", false, "list the environment variables instead")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if showUsage {
		return envconfig.Usagef("tape", &tape.Config{}, out, envconfig.DefaultTableFormat)
	}

	cfg, err := tape.LoadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "snap radius:          %.3f m\n", cfg.SnapRadius)
	fmt.Fprintf(out, "restart cooldown:     %v\n", cfg.RestartCooldown)
	fmt.Fprintf(out, "drag smoothing:       %.2f\n", cfg.DragSmoothing)
	fmt.Fprintf(out, "label lift:           %.3f m\n", cfg.LabelLift)
	fmt.Fprintf(out, "label text size:      %.0f\n", cfg.LabelTextSize)
	fmt.Fprintf(out, "line radius:          %.4f m\n", cfg.LineRadius)
	fmt.Fprintf(out, "focus hover distance: %.2f m\n", cfg.FocusHoverDistance)
	fmt.Fprintf(out, "basis reference:      %s\n", cfg.BasisReference)
	fmt.Fprintf(out, "debug:                %v\n", cfg.Debug)
	return nil
}
