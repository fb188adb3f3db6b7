package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main purku configuration.
type Config struct {
	Version  string   `yaml:"version"`
	Provider string   `yaml:"provider"`
	Accounts []string `yaml:"accounts"`
	Regions  []string `yaml:"regions"`
	Run      Run      `yaml:"run,omitempty"`
	Paths    Paths    `yaml:"paths,omitempty"`
}

// Run tunes the teardown pipeline.
type Run struct {
	// Workers bounds the scope fan-out pool. Scopes within the pool
	// run independently; phases within one scope never parallelize.
	Workers int `yaml:"workers"`
	// MaxRetries bounds convergence passes per phase.
	MaxRetries int `yaml:"max_retries"`
	// RetryDelay is the fixed inter-pass delay.
	RetryDelay time.Duration `yaml:"retry_delay"`
	// PollInterval is the async waiter's fixed poll interval.
	PollInterval time.Duration `yaml:"poll_interval"`
	// WaitBudgets overrides the built-in per-type async wait budgets,
	// keyed by resource type name.
	WaitBudgets map[string]time.Duration `yaml:"wait_budgets,omitempty"`
	// DryRun substitutes a no-op deleter but still produces a full
	// run result.
	DryRun bool `yaml:"dry_run"`
}

// Paths locates the journal and run-history store.
type Paths struct {
	JournalDir string `yaml:"journal_dir"`
	HistoryDB  string `yaml:"history_db"`
}

// Defaults applied when the file leaves run tuning unset.
const (
	DefaultWorkers      = 4
	DefaultMaxRetries   = 4
	DefaultRetryDelay   = 30 * time.Second
	DefaultPollInterval = 15 * time.Second
)

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "aws"
	}
	if c.Run.Workers <= 0 {
		c.Run.Workers = DefaultWorkers
	}
	if c.Run.MaxRetries <= 0 {
		c.Run.MaxRetries = DefaultMaxRetries
	}
	if c.Run.RetryDelay <= 0 {
		c.Run.RetryDelay = DefaultRetryDelay
	}
	if c.Run.PollInterval <= 0 {
		c.Run.PollInterval = DefaultPollInterval
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	if len(c.Regions) == 0 {
		return fmt.Errorf("at least one region is required")
	}
	return nil
}
