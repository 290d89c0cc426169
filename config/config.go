package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"extranet_rates/pacing"
)

const DefaultSelectorsFile = "config/selectors.yaml"

type Config struct {
	Session   SessionConfig
	Ledger    LedgerConfig
	Horizon   HorizonConfig
	Workflow  WorkflowConfig
	Pacing    map[pacing.Op]pacing.Window
	Journal   JournalConfig
	Archive   ArchiveConfig
	Scheduler SchedulerConfig
	Log       LogConfig
	Selectors Selectors
}

type SessionConfig struct {
	Username string
	Password string
	LoginURL string
	Headless bool
}

type LedgerConfig struct {
	Path string
}

// HorizonConfig bounds how far ahead edits are attempted. A fixed Date wins
// over Days.
type HorizonConfig struct {
	Date time.Time
	Days int
}

type WorkflowConfig struct {
	CalendarURL       string
	ModalOpenAttempts int
	WaitTimeout       time.Duration
	SettleTimeout     time.Duration
	TypeDelay         time.Duration
}

// JournalConfig selects the run journal. DSN (Postgres) takes precedence
// over Path (SQLite); Path "off" disables the journal.
type JournalConfig struct {
	Path string
	DSN  string
}

func (j JournalConfig) Disabled() bool {
	return j.DSN == "" && (j.Path == "" || strings.EqualFold(j.Path, "off"))
}

type ArchiveConfig struct {
	Bucket   string
	Region   string
	Endpoint string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type LogConfig struct {
	File     string
	MaxBytes int64
	Backups  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Session: SessionConfig{
			Username: os.Getenv("BOOKING_USERNAME"),
			Password: os.Getenv("BOOKING_PASSWORD"),
			LoginURL: getEnv("LOGIN_URL", "https://admin.booking.com/hotel/hoteladmin/"),
			Headless: os.Getenv("HEADLESS") == "true",
		},
		Ledger: LedgerConfig{
			Path: getEnv("LEDGER_PATH", "pricing_data.csv"),
		},
		Horizon: HorizonConfig{
			Days: getEnvInt("HORIZON_DAYS", 365),
		},
		Workflow: WorkflowConfig{
			CalendarURL:       getEnv("CALENDAR_URL", "https://admin.booking.com/hotel/hoteladmin/extranet_ng/manage/calendar.html"),
			ModalOpenAttempts: getEnvInt("MODAL_OPEN_ATTEMPTS", 3),
			WaitTimeout:       time.Duration(getEnvInt("WAIT_TIMEOUT_MS", 10000)) * time.Millisecond,
			SettleTimeout:     time.Duration(getEnvInt("SETTLE_TIMEOUT_MS", 5000)) * time.Millisecond,
			TypeDelay:         time.Duration(getEnvInt("TYPE_DELAY_MS", 60)) * time.Millisecond,
		},
		Pacing: pacing.DefaultWindows(),
		Journal: JournalConfig{
			Path: getEnv("JOURNAL_PATH", "runs.db"),
			DSN:  os.Getenv("JOURNAL_DSN"),
		},
		Archive: ArchiveConfig{
			Bucket:   os.Getenv("ARCHIVE_BUCKET"),
			Region:   getEnv("ARCHIVE_REGION", "us-east-1"),
			Endpoint: os.Getenv("ARCHIVE_ENDPOINT"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("RUN_CRON"),
		},
		Log: LogConfig{
			File:     getEnv("LOG_FILE", "bot.log"),
			MaxBytes: int64(getEnvInt("LOG_MAX_BYTES", 2*1024*1024)),
			Backups:  getEnvInt("LOG_BACKUPS", 1),
		},
		Selectors: DefaultSelectors(),
	}

	if interval := os.Getenv("RUN_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if raw := os.Getenv("HORIZON_DATE"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return nil, fmt.Errorf("HORIZON_DATE: %w", err)
		}
		cfg.Horizon.Date = d
	}

	for op := range cfg.Pacing {
		key := "PACING_" + strings.ToUpper(string(op)) + "_MS"
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		w, err := pacing.ParseWindow(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		cfg.Pacing[op] = w
	}

	if err := cfg.loadSelectors(getEnv("SELECTORS_FILE", DefaultSelectorsFile)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HorizonFor returns the cutoff date relative to today.
func (c *Config) HorizonFor(today time.Time) time.Time {
	if !c.Horizon.Date.IsZero() {
		return c.Horizon.Date
	}
	return today.AddDate(0, 0, c.Horizon.Days)
}

// loadSelectors overlays the YAML file onto the defaults. Keys absent from
// the file keep their default candidates. A missing file is not an error.
func (c *Config) loadSelectors(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, &c.Selectors); err != nil {
		return fmt.Errorf("selectors %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
