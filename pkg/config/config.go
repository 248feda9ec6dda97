// Package config provides configuration management.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"CampusSafe/pkg/alert"
	"CampusSafe/pkg/safety"
	"CampusSafe/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Dispatch backends.
const (
	BackendLog     = "log"
	BackendGateway = "gateway"
	BackendQueue   = "queue"
)

// DefaultPath is where Load looks first and where a fresh config is saved.
const DefaultPath = ".campussafe/config.json"

// Config holds all configuration settings
type Config struct {
	// Storage and logging
	StoragePath string `json:"storage_path" validate:"required"`
	LogLevel    string `json:"log_level" validate:"oneof=debug info warn error"`

	// What the home screen shows
	Profile  safety.Profile          `json:"profile"`
	Location safety.LocationSnapshot `json:"location"`

	// Emergency seams
	Emergency EmergencyConfig `json:"emergency"`
	Telegram  TelegramConfig  `json:"telegram"`

	// UI settings
	UI UIConfig `json:"ui"`
}

// EmergencyConfig selects and configures the dispatch backend.
type EmergencyConfig struct {
	Number             string        `json:"number" validate:"required,max=15,numeric"`
	Backend            string        `json:"backend" validate:"oneof=log gateway queue"`
	CallTimeoutSeconds int           `json:"call_timeout_seconds" validate:"gte=0,lte=300"`
	Gateway            GatewayConfig `json:"gateway"`
	Queue              QueueConfig   `json:"queue"`
	Retry              RetryConfig   `json:"retry"`
}

// GatewayConfig points at an HTTP telephony gateway.
type GatewayConfig struct {
	URL            string `json:"url" validate:"omitempty,url"`
	Token          string `json:"token,omitempty"`
	Secret         string `json:"secret,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"gte=0,lte=120"`
}

// QueueConfig points at the Redis list consumed by a dispatch worker.
type QueueConfig struct {
	RedisAddr     string `json:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db" validate:"gte=0,lte=15"`
	Key           string `json:"key"`
}

// RetryConfig is the JSON form of utils.RetryConfig.
type RetryConfig struct {
	MaxRetries     int `json:"max_retries" validate:"gte=0,lte=10"`
	InitialDelayMS int `json:"initial_delay_ms" validate:"gte=0"`
	MaxDelayMS     int `json:"max_delay_ms" validate:"gte=0"`
}

// TelegramConfig holds the bot used to alert emergency contacts.
type TelegramConfig struct {
	Enabled  bool            `json:"enabled"`
	BotToken string          `json:"bot_token"`
	Contacts []alert.Contact `json:"contacts" validate:"dive"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme        string `json:"theme" validate:"oneof=dark light"`
	ToastSeconds int    `json:"toast_seconds" validate:"gte=1,lte=60"`
	AltScreen    bool   `json:"alt_screen"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		StoragePath: ".campussafe",
		LogLevel:    "info",
		Profile:     safety.DefaultProfile(),
		Location:    safety.DefaultLocation(),
		Emergency: EmergencyConfig{
			Number:             "911",
			Backend:            BackendLog,
			CallTimeoutSeconds: 30,
			Gateway: GatewayConfig{
				TimeoutSeconds: 10,
			},
			Queue: QueueConfig{
				RedisAddr: "localhost:6379",
				Key:       "emergency_calls",
			},
			Retry: RetryConfig{
				MaxRetries:     2,
				InitialDelayMS: 500,
				MaxDelayMS:     3000,
			},
		},
		Telegram: TelegramConfig{
			Enabled: false,
		},
		UI: UIConfig{
			Theme:        "light",
			ToastSeconds: 4,
			AltScreen:    true,
		},
	}
}

// GetConfigPaths returns a prioritized list of configuration file paths
func GetConfigPaths(cliPath string) []string {
	if cliPath != "" {
		return []string{cliPath} // If explicit, only use that
	}

	paths := []string{DefaultPath, "config.json"}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".campussafe", "config.json"))
	}

	return paths
}

// EnvFile is the dotenv file read by Load. The CLI's -env flag overrides it.
var EnvFile = ".env"

// Load loads configuration from the first available path in the prioritized
// list, then applies .env and environment overrides. When no file exists the
// defaults are saved to DefaultPath.
func Load(cliPath string) (*Config, string, error) {
	if err := loadDotEnv(EnvFile); err != nil {
		return nil, "", err
	}

	for _, path := range GetConfigPaths(cliPath) {
		data, err := os.ReadFile(path)
		if err != nil {
			if cliPath != "" {
				return nil, path, fmt.Errorf("read config file %s: %w", path, err)
			}
			continue
		}

		cfg := DefaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("invalid JSON in config file %s: %w", path, err)
		}
		applyEnvOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, path, fmt.Errorf("configuration validation failed in %s: %w", path, err)
		}
		return cfg, path, nil
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, DefaultPath, fmt.Errorf("default configuration validation failed: %w", err)
	}

	return cfg, DefaultPath, cfg.Save(DefaultPath)
}

// allowedEnvVars is a whitelist of variable names that may be set from .env
var allowedEnvVars = map[string]bool{
	"CAMPUSSAFE_LOG_LEVEL":        true,
	"CAMPUSSAFE_USER_NAME":        true,
	"CAMPUSSAFE_LOCATION_NAME":    true,
	"CAMPUSSAFE_BUILDING":         true,
	"CAMPUSSAFE_LATITUDE":         true,
	"CAMPUSSAFE_LONGITUDE":        true,
	"CAMPUSSAFE_ACCURACY":         true,
	"CAMPUSSAFE_EMERGENCY_NUMBER": true,
	"CAMPUSSAFE_DISPATCH_BACKEND": true,
	"CAMPUSSAFE_GATEWAY_URL":      true,
	"CAMPUSSAFE_GATEWAY_TOKEN":    true,
	"CAMPUSSAFE_GATEWAY_SECRET":   true,
	"CAMPUSSAFE_REDIS_ADDR":       true,
	"CAMPUSSAFE_REDIS_PASSWORD":   true,
	"CAMPUSSAFE_REDIS_DB":         true,
	"TELEGRAM_BOT_TOKEN":          true,
}

// loadDotEnv reads path with godotenv and exports whitelisted keys that are
// not already set. A missing file is not an error.
func loadDotEnv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}

	for key, value := range values {
		if !allowedEnvVars[key] {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s from %s: %w", key, path, err)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString("CAMPUSSAFE_LOG_LEVEL", &cfg.LogLevel)
	setString("CAMPUSSAFE_USER_NAME", &cfg.Profile.DisplayName)
	setString("CAMPUSSAFE_LOCATION_NAME", &cfg.Location.Name)
	setString("CAMPUSSAFE_BUILDING", &cfg.Location.Building)
	setString("CAMPUSSAFE_LATITUDE", &cfg.Location.Latitude)
	setString("CAMPUSSAFE_LONGITUDE", &cfg.Location.Longitude)
	setString("CAMPUSSAFE_ACCURACY", &cfg.Location.Accuracy)
	setString("CAMPUSSAFE_EMERGENCY_NUMBER", &cfg.Emergency.Number)
	setString("CAMPUSSAFE_DISPATCH_BACKEND", &cfg.Emergency.Backend)
	setString("CAMPUSSAFE_GATEWAY_URL", &cfg.Emergency.Gateway.URL)
	setString("CAMPUSSAFE_GATEWAY_TOKEN", &cfg.Emergency.Gateway.Token)
	setString("CAMPUSSAFE_GATEWAY_SECRET", &cfg.Emergency.Gateway.Secret)
	setString("CAMPUSSAFE_REDIS_ADDR", &cfg.Emergency.Queue.RedisAddr)
	setString("CAMPUSSAFE_REDIS_PASSWORD", &cfg.Emergency.Queue.RedisPassword)

	if v := os.Getenv("CAMPUSSAFE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Emergency.Queue.RedisDB = db
		}
	}

	// Contacts only come from the config file, so a token alone leaves
	// alerts on the log backend.
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
		if len(cfg.Telegram.Contacts) > 0 {
			cfg.Telegram.Enabled = true
		}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Emergency.Backend = strings.ToLower(cfg.Emergency.Backend)
}

// CallTimeout returns the per-call seam timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.Emergency.CallTimeoutSeconds) * time.Second
}

// ToastDuration returns how long status toasts stay on screen.
func (c *Config) ToastDuration() time.Duration {
	if c.UI.ToastSeconds > 0 {
		return time.Duration(c.UI.ToastSeconds) * time.Second
	}
	return 4 * time.Second
}

// GatewayTimeout returns the HTTP timeout for one gateway request.
func (c *Config) GatewayTimeout() time.Duration {
	if c.Emergency.Gateway.TimeoutSeconds > 0 {
		return time.Duration(c.Emergency.Gateway.TimeoutSeconds) * time.Second
	}
	return 10 * time.Second
}

// RetryPolicy converts the JSON retry settings for the backends.
func (c *Config) RetryPolicy() utils.RetryConfig {
	rc := utils.DefaultRetryConfig()
	rc.MaxRetries = c.Emergency.Retry.MaxRetries
	if c.Emergency.Retry.InitialDelayMS > 0 {
		rc.InitialDelay = time.Duration(c.Emergency.Retry.InitialDelayMS) * time.Millisecond
	}
	if c.Emergency.Retry.MaxDelayMS > 0 {
		rc.MaxDelay = time.Duration(c.Emergency.Retry.MaxDelayMS) * time.Millisecond
	}
	return rc
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600) // 0600: owner read/write only (holds tokens)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	switch c.Emergency.Backend {
	case BackendGateway:
		if err := validateURL(c.Emergency.Gateway.URL); err != nil {
			return fmt.Errorf("invalid gateway URL: %w", err)
		}
	case BackendQueue:
		if c.Emergency.Queue.RedisAddr == "" {
			return fmt.Errorf("emergency.queue.redis_addr is required for the queue backend")
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if len(c.Telegram.Contacts) == 0 {
			return fmt.Errorf("telegram.contacts must list at least one contact when telegram is enabled")
		}
	}

	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// validateURL validates that a URL is properly formatted
func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL is required")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("URL must have a valid host")
	}

	return nil
}
