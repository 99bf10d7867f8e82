package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/chartperf/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Check a benchmark configuration file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%s: %d warm-up, %d measured, %dx%d)\n",
				args[0], cfg.Name, cfg.Warmup, cfg.Count, cfg.Window.Width, cfg.Window.Height)
			return nil
		},
	}
}
