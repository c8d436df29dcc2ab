package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type AddrConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type LogConfig struct {
	LogLevel string `yaml:"log_level"`
}

type ServiceM8Config struct {
	BaseURL        string  `yaml:"base_url"`
	Email          string  `yaml:"email"`
	Password       string  `yaml:"password"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
}

type HighLevelConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	WebhookURL     string `yaml:"webhook_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SyncConfig struct {
	StateFile             string `yaml:"state_file"`
	LookbackMinutes       int    `yaml:"lookback_minutes"`
	ContactPollMinutes    int    `yaml:"contact_poll_minutes"`
	PaymentPollMinutes    int    `yaml:"payment_poll_minutes"`
	IntakeDebounceSeconds int    `yaml:"intake_debounce_seconds"`
	BadgeUUID             string `yaml:"badge_uuid"`
	RequireBadge          bool   `yaml:"require_badge"`
	CompletionCutoff      string `yaml:"completion_cutoff"`
	RequireCutoff         bool   `yaml:"require_cutoff"`
}

type Config struct {
	Addr      AddrConfig      `yaml:"addr"`
	Log       LogConfig       `yaml:"log"`
	ServiceM8 ServiceM8Config `yaml:"servicem8"`
	HighLevel HighLevelConfig `yaml:"highlevel"`
	Sync      SyncConfig      `yaml:"sync"`
}

// LoadConfig reads the YAML configuration file, expanding ${ENV_VAR}
// references before unmarshalling, and applies defaults.
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(file))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Addr.Host == "" {
		c.Addr.Host = "0.0.0.0"
	}
	if c.Addr.Port == 0 {
		c.Addr.Port = 8090
	}
	if c.Log.LogLevel == "" {
		c.Log.LogLevel = "INFO"
	}
	if c.ServiceM8.BaseURL == "" {
		c.ServiceM8.BaseURL = "https://api.servicem8.com/api_1.0"
	}
	if c.ServiceM8.TimeoutSeconds == 0 {
		c.ServiceM8.TimeoutSeconds = 30
	}
	if c.ServiceM8.RateLimitRPS == 0 {
		c.ServiceM8.RateLimitRPS = 3
	}
	if c.HighLevel.BaseURL == "" {
		c.HighLevel.BaseURL = "https://rest.gohighlevel.com"
	}
	if c.HighLevel.TimeoutSeconds == 0 {
		c.HighLevel.TimeoutSeconds = 30
	}
	if c.Sync.StateFile == "" {
		c.Sync.StateFile = "sync_state.json"
	}
	if c.Sync.LookbackMinutes == 0 {
		c.Sync.LookbackMinutes = 20
	}
	if c.Sync.ContactPollMinutes == 0 {
		c.Sync.ContactPollMinutes = 5
	}
	if c.Sync.PaymentPollMinutes == 0 {
		c.Sync.PaymentPollMinutes = 10
	}
	if c.Sync.IntakeDebounceSeconds == 0 {
		c.Sync.IntakeDebounceSeconds = 5
	}
}

func validate(c *Config) error {
	if c.ServiceM8.Email == "" || c.ServiceM8.Password == "" {
		return fmt.Errorf("servicem8 credentials are not configured")
	}
	if c.HighLevel.APIKey == "" {
		return fmt.Errorf("highlevel api_key is not configured")
	}
	if c.Sync.RequireBadge && c.Sync.BadgeUUID == "" {
		return fmt.Errorf("sync.require_badge is set but sync.badge_uuid is empty")
	}
	if c.Sync.RequireCutoff {
		if _, err := time.Parse("2006-01-02", c.Sync.CompletionCutoff); err != nil {
			return fmt.Errorf("sync.completion_cutoff is not a valid date: %w", err)
		}
	}
	return nil
}

// CompletionCutoffDate parses the configured cutoff. Callers must only use
// it when RequireCutoff is set; validation guarantees it parses then.
func (c *Config) CompletionCutoffDate() time.Time {
	t, _ := time.Parse("2006-01-02", c.Sync.CompletionCutoff)
	return t
}
