package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"extranet_rates/pacing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SELECTORS_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Ledger.Path != "pricing_data.csv" {
		t.Fatalf("unexpected ledger path %q", cfg.Ledger.Path)
	}
	if cfg.Workflow.ModalOpenAttempts != 3 {
		t.Fatalf("expected 3 modal attempts, got %d", cfg.Workflow.ModalOpenAttempts)
	}
	if cfg.Workflow.SettleTimeout != 5*time.Second {
		t.Fatalf("expected 5s settle timeout, got %s", cfg.Workflow.SettleTimeout)
	}
	if cfg.Pacing[pacing.Navigate] != pacing.DefaultWindows()[pacing.Navigate] {
		t.Fatalf("unexpected navigate window %s", cfg.Pacing[pacing.Navigate])
	}
	if len(cfg.Selectors.ModalMarkers) == 0 {
		t.Fatalf("expected default modal markers")
	}
	if cfg.Journal.Disabled() {
		t.Fatalf("journal should default to runs.db")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LEDGER_PATH", "/data/rates.csv")
	t.Setenv("PACING_FIELD_MS", "10-20")
	t.Setenv("HORIZON_DATE", "2026-12-31")
	t.Setenv("RUN_INTERVAL", "2h")
	t.Setenv("JOURNAL_PATH", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Ledger.Path != "/data/rates.csv" {
		t.Fatalf("unexpected ledger path %q", cfg.Ledger.Path)
	}
	want := pacing.Window{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}
	if cfg.Pacing[pacing.Field] != want {
		t.Fatalf("expected field window %s, got %s", want, cfg.Pacing[pacing.Field])
	}
	if cfg.Scheduler.Interval != 2*time.Hour {
		t.Fatalf("expected 2h interval, got %s", cfg.Scheduler.Interval)
	}
	if !cfg.Journal.Disabled() {
		t.Fatalf("JOURNAL_PATH=off should disable the journal")
	}

	today := time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local)
	if got := cfg.HorizonFor(today).Format("2006-01-02"); got != "2026-12-31" {
		t.Fatalf("expected fixed horizon, got %s", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("PACING_SAVE_MS", "slow")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad pacing window")
	}

	t.Setenv("PACING_SAVE_MS", "")
	t.Setenv("HORIZON_DATE", "31/12/2026")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad horizon date")
	}
}

func TestHorizonDays(t *testing.T) {
	cfg := &Config{Horizon: HorizonConfig{Days: 30}}
	today := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if got := cfg.HorizonFor(today); !got.Equal(time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected horizon %s", got)
	}
}

func TestSelectorsOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selectors.yaml")
	data := "rate_plan_select:\n  - \"#plan\"\nbackground_point:\n  x: 42\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg := &Config{Selectors: DefaultSelectors()}
	if err := cfg.loadSelectors(path); err != nil {
		t.Fatalf("load selectors failed: %v", err)
	}
	if len(cfg.Selectors.RatePlanSelect) != 1 || cfg.Selectors.RatePlanSelect[0] != "#plan" {
		t.Fatalf("rate plan override not applied: %v", cfg.Selectors.RatePlanSelect)
	}
	if cfg.Selectors.BackgroundPoint.X != 42 || cfg.Selectors.BackgroundPoint.Y != 10 {
		t.Fatalf("unexpected background point %+v", cfg.Selectors.BackgroundPoint)
	}
	if len(cfg.Selectors.PriceInput) != len(DefaultSelectors().PriceInput) {
		t.Fatalf("untouched keys should keep defaults")
	}

	if err := cfg.loadSelectors(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestForRoom(t *testing.T) {
	got := ForRoom([]string{"[data-room-id='{room_id}'] button", "#static"}, "100")
	if got[0] != "[data-room-id='100'] button" || got[1] != "#static" {
		t.Fatalf("unexpected expansion %v", got)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
