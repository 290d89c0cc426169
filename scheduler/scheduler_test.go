package scheduler

import (
	"context"
	"testing"
	"time"

	"extranet_rates/config"
)

func TestStartRejectsBadCron(t *testing.T) {
	s := New(config.SchedulerConfig{Cron: "not a cron"}, func(context.Context) error { return nil })
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected invalid cron error")
	}
}

func TestStartRequiresSchedule(t *testing.T) {
	s := New(config.SchedulerConfig{}, func(context.Context) error { return nil })
	if s.Configured() {
		t.Fatalf("empty config should not count as configured")
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error without a schedule")
	}
}

func TestIntervalTriggersRuns(t *testing.T) {
	ran := make(chan struct{}, 4)
	s := New(config.SchedulerConfig{Interval: 10 * time.Millisecond}, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("interval run never fired")
	}
}

func TestTriggerNowSkipsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := New(config.SchedulerConfig{}, func(context.Context) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan bool)
	go func() { done <- s.TriggerNow(context.Background()) }()
	<-started

	if s.TriggerNow(context.Background()) {
		t.Fatalf("second trigger should be skipped while the first is running")
	}
	close(release)
	if !<-done {
		t.Fatalf("first trigger should have run")
	}
}
