package arrivals

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// RetryPolicy bounds how many times a stop page is fetched for a single query.
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1,lte=100"`
	Delay       time.Duration `yaml:"delay" validate:"gte=0"`
}

// RetryConfig holds the policies for the two query modes.
type RetryConfig struct {
	AllRoutes   RetryPolicy `yaml:"all_routes"`
	SingleRoute RetryPolicy `yaml:"single_route"`
}

// FetchConfig controls the HTTP fetcher.
type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" validate:"gte=0"`
}

// WatchConfig controls periodic stop watches.
type WatchConfig struct {
	Schedule         string `yaml:"schedule" validate:"required"`
	MaxPerSubscriber int    `yaml:"max_per_subscriber" validate:"gte=1"`
}

// LogConfig controls the logger built by the binaries.
type LogConfig struct {
	Production bool `yaml:"production"`
}

// Config is the configuration of the arrivals service and its binaries.
type Config struct {
	StopsDB      string        `yaml:"stops_db" validate:"required"`
	Fetch        FetchConfig   `yaml:"fetch"`
	Retry        RetryConfig   `yaml:"retry"`
	QueryTimeout time.Duration `yaml:"query_timeout" validate:"gte=0"`
	Watch        WatchConfig   `yaml:"watch"`
	Log          LogConfig     `yaml:"log"`
}

// DefaultConfig returns the configuration used when no file is supplied.
// All-routes queries retry quickly since an empty widget is still an answer;
// single-route queries wait between attempts for the route to show up.
func DefaultConfig() *Config {
	return &Config{
		StopsDB: "stops.db",
		Fetch: FetchConfig{
			Timeout:      defaultFetchTimeout,
			UserAgent:    "Mozilla/5.0 (compatible; arrivals/1.0)",
			MaxBodyBytes: defaultMaxBodyBytes,
		},
		Retry: RetryConfig{
			AllRoutes: RetryPolicy{
				MaxAttempts: 10,
			},
			SingleRoute: RetryPolicy{
				MaxAttempts: 10,
				Delay:       time.Second,
			},
		},
		QueryTimeout: time.Minute,
		Watch: WatchConfig{
			Schedule:         "@every 2m",
			MaxPerSubscriber: 3,
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the field constraints and the watch schedule.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", c.Watch.Schedule, err)
	}
	return nil
}
