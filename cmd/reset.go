package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"extranet_rates/config"
	"extranet_rates/ledger"
	"extranet_rates/orchestrator"
)

func newResetCmd() *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "reset",
		Short: "Mark every ledger record pending again",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset re-applies every record on the next run; pass --yes to confirm")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			led, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			if err := led.ResetAll(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ledger %s reset: %s\n", cfg.Ledger.Path, orchestrator.FormatProgress(led.ProgressSummary()))
			return nil
		},
	}

	c.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return c
}
