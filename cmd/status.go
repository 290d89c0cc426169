package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"extranet_rates/config"
	"extranet_rates/ledger"
	"extranet_rates/orchestrator"
	"extranet_rates/storage"
)

func newStatusCmd() *cobra.Command {
	var (
		limit int
		runID string
	)

	c := &cobra.Command{
		Use:   "status",
		Short: "Show ledger progress and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			led, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "ledger %s: %s\n", cfg.Ledger.Path, orchestrator.FormatProgress(led.ProgressSummary()))

			if cfg.Journal.Disabled() {
				return nil
			}

			ctx := context.Background()
			journal, err := storage.OpenJournal(ctx, cfg.Journal)
			if err != nil {
				return err
			}
			defer journal.Close()

			if runID != "" {
				id, err := uuid.Parse(runID)
				if err != nil {
					return fmt.Errorf("invalid --run: %w", err)
				}
				events, err := journal.Events(ctx, id)
				if err != nil {
					return err
				}
				for _, e := range events {
					fmt.Fprintf(out, "%s [%s] room=%s range=%q step=%s %s\n",
						e.Timestamp.Format(time.RFC3339), e.Level, e.RoomID, e.DateRange, e.Step, e.Message)
				}
				return nil
			}

			runs, err := journal.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s %s %-9s completed=%d failed=%d skipped=%d deferred=%d",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Status, r.Completed, r.Failed, r.Skipped, r.Deferred)
				if r.Error != "" {
					fmt.Fprintf(out, " error=%q", r.Error)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	c.Flags().IntVar(&limit, "limit", 5, "number of recent runs to list")
	c.Flags().StringVar(&runID, "run", "", "show the journal events of one run")
	return c
}
