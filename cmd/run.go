package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"extranet_rates/config"
	"extranet_rates/ledger"
	"extranet_rates/logging"
	"extranet_rates/orchestrator"
	"extranet_rates/pacing"
	"extranet_rates/rooms"
	"extranet_rates/scheduler"
	"extranet_rates/session"
	"extranet_rates/storage"
	"extranet_rates/workflow"
)

const modalRetryDelay = time.Second

func newRunCmd() *cobra.Command {
	var (
		cronExpr string
		interval time.Duration
		headless bool
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "Apply pending ledger records once, or repeatedly with --cron/--interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cron") {
				cfg.Scheduler.Cron = cronExpr
			}
			if cmd.Flags().Changed("interval") {
				cfg.Scheduler.Interval = interval
			}
			if cmd.Flags().Changed("headless") {
				cfg.Session.Headless = headless
			}

			logFile, err := logging.Setup(cfg.Log.File, cfg.Log.MaxBytes, cfg.Log.Backups)
			if err != nil {
				log.Printf("Warning: could not set up file logging: %v", err)
			} else {
				defer logFile.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := scheduler.New(cfg.Scheduler, func(ctx context.Context) error {
				_, err := runOnce(ctx, cfg)
				return err
			})
			if !sched.Configured() {
				_, err := runOnce(ctx, cfg)
				return err
			}

			sched.TriggerNow(ctx)
			if err := sched.Start(ctx); err != nil {
				return err
			}
			log.Println("Scheduler running. Press Ctrl+C to stop.")
			<-ctx.Done()

			log.Println("Shutting down...")
			sched.Stop()
			return nil
		},
	}

	c.Flags().StringVar(&cronExpr, "cron", "", "cron expression for repeated runs (overrides RUN_CRON)")
	c.Flags().DurationVar(&interval, "interval", 0, "interval between runs, e.g. 30m (overrides RUN_INTERVAL)")
	c.Flags().BoolVar(&headless, "headless", false, "run the browser headless (overrides HEADLESS)")
	return c
}

// runOnce performs a single pass: bootstrap a session, then apply every
// pending record the live calendar shows.
func runOnce(ctx context.Context, cfg *config.Config) (*orchestrator.Report, error) {
	led, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}

	progress := led.ProgressSummary()
	log.Printf("Ledger %s: %s", cfg.Ledger.Path, orchestrator.FormatProgress(progress))
	if progress.Pending == 0 {
		log.Println("Nothing pending, skipping browser session")
		return &orchestrator.Report{Before: progress, Progress: progress}, nil
	}

	journal, err := storage.OpenJournal(ctx, cfg.Journal)
	if err != nil {
		log.Printf("Warning: run journal unavailable: %v", err)
		journal = storage.NopJournal{}
	}
	defer journal.Close()

	sess, err := session.Bootstrap(ctx, cfg.Session, session.ConsolePrompter{In: os.Stdin, Out: os.Stdout})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	surf := sess.Surface()
	wf := workflow.New(workflow.RunContext{
		Surface:           surf,
		Ledger:            led,
		Pacer:             pacing.New(surf, cfg.Pacing, cfg.Workflow.SettleTimeout),
		Selectors:         cfg.Selectors,
		Today:             time.Now(),
		Horizon:           cfg.HorizonFor(time.Now()),
		WaitTimeout:       cfg.Workflow.WaitTimeout,
		TypeDelay:         cfg.Workflow.TypeDelay,
		ModalOpenAttempts: cfg.Workflow.ModalOpenAttempts,
		ModalRetryDelay:   modalRetryDelay,
		CalendarURL:       cfg.Workflow.CalendarURL,
	})

	orch := orchestrator.New(led, rooms.NewEnumerator(surf, cfg.Selectors.RoomRow), wf)
	orch.SetJournal(journal)

	if cfg.Archive.Enabled() {
		archiver, err := storage.NewS3Archiver(ctx, storage.S3Config{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			log.Printf("Warning: ledger archive disabled: %v", err)
		} else {
			orch.SetArchiver(archiver)
		}
	}

	return orch.Run(ctx)
}
