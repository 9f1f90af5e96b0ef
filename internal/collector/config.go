package collector

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"coinlens-api/pkg/confkit"
)

const (
	defaultLimit      = 20
	defaultTopN       = 5
	defaultWindowDays = 30
	defaultInterval   = time.Hour
)

// Config controls one collection run and the schedule it repeats on.
type Config struct {
	Limit           int    `yaml:"limit"`
	TopN            int    `yaml:"top_n"`
	WindowDays      int    `yaml:"window_days"`
	Interval        string `yaml:"interval"`
	ContinueOnError bool   `yaml:"continue_on_error"`

	IntervalDuration time.Duration `yaml:"-"`
}

// DefaultConfig mirrors the stock collection: top 20 snapshot, 30 days of
// history for the top 5, hourly, aborting on the first failure.
func DefaultConfig() Config {
	return Config{
		Limit:            defaultLimit,
		TopN:             defaultTopN,
		WindowDays:       defaultWindowDays,
		Interval:         defaultInterval.String(),
		IntervalDuration: defaultInterval,
	}
}

// LoadConfig reads a collector config file.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collector config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader parses a collector config, filling defaults for unset fields.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read collector config: %w", err)
	}
	cfg := DefaultConfig()
	cfg.Interval = ""
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal collector config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Limit == 0 {
		c.Limit = defaultLimit
	}
	if c.TopN == 0 {
		c.TopN = defaultTopN
	}
	if c.WindowDays == 0 {
		c.WindowDays = defaultWindowDays
	}
	c.IntervalDuration = defaultInterval
	if raw := strings.TrimSpace(c.Interval); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("collector config: invalid interval %q: %w", raw, err)
		}
		c.IntervalDuration = d
	}
	c.Interval = c.IntervalDuration.String()
	return c.Validate()
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.Limit < 1:
		return fmt.Errorf("collector config: limit must be >= 1, got %d", c.Limit)
	case c.TopN < 0:
		return fmt.Errorf("collector config: top_n must be >= 0, got %d", c.TopN)
	case c.WindowDays < 1:
		return fmt.Errorf("collector config: window_days must be >= 1, got %d", c.WindowDays)
	case c.IntervalDuration <= 0:
		return fmt.Errorf("collector config: interval must be positive, got %s", c.IntervalDuration)
	}
	return nil
}
