package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"extranet_rates/config"
)

// RunFunc performs one pass over the ledger.
type RunFunc func(ctx context.Context) error

// Scheduler re-runs the engine so deferred records are picked up later.
// Runs never overlap: a tick that fires while a run is in progress is dropped.
type Scheduler struct {
	cfg    config.SchedulerConfig
	run    RunFunc
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once

	running sync.Mutex
}

func New(cfg config.SchedulerConfig, run RunFunc) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		run:    run,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		stopCh: make(chan struct{}),
	}
}

// Configured reports whether a cron expression or interval is set.
func (s *Scheduler) Configured() bool {
	return s.cfg.Cron != "" || s.cfg.Interval > 0
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() {
			s.TriggerNow(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.TriggerNow(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		return fmt.Errorf("no schedule configured (set RUN_CRON or RUN_INTERVAL)")
	}

	return nil
}

// TriggerNow runs immediately unless a run is already in progress, in which
// case it returns false.
func (s *Scheduler) TriggerNow(ctx context.Context) bool {
	if !s.running.TryLock() {
		log.Println("Previous run still in progress, skipping")
		return false
	}
	defer s.running.Unlock()

	if err := s.run(ctx); err != nil {
		log.Printf("Scheduled run error: %v", err)
	}
	return true
}

func (s *Scheduler) Stop() {
	s.once.Do(func() {
		<-s.cron.Stop().Done()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		close(s.stopCh)
	})
}
