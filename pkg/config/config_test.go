package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CampusSafe/pkg/alert"
	"CampusSafe/pkg/safety"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Emergency.Backend != BackendLog {
		t.Errorf("default backend = %q, want %q", cfg.Emergency.Backend, BackendLog)
	}
	if cfg.Location != safety.DefaultLocation() {
		t.Errorf("default location = %+v", cfg.Location)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "LogLevel",
		},
		{
			name:    "latitude out of range",
			mutate:  func(c *Config) { c.Location.Latitude = "140.5" },
			wantErr: "Latitude",
		},
		{
			name:    "longitude not a number",
			mutate:  func(c *Config) { c.Location.Longitude = "west" },
			wantErr: "Longitude",
		},
		{
			name:    "non numeric emergency number",
			mutate:  func(c *Config) { c.Emergency.Number = "nine-one-one" },
			wantErr: "Number",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Emergency.Backend = "carrier-pigeon" },
			wantErr: "Backend",
		},
		{
			name: "gateway without url",
			mutate: func(c *Config) {
				c.Emergency.Backend = BackendGateway
			},
			wantErr: "gateway URL",
		},
		{
			name: "gateway with ftp url",
			mutate: func(c *Config) {
				c.Emergency.Backend = BackendGateway
				c.Emergency.Gateway.URL = "ftp://calls.example.edu"
			},
			wantErr: "gateway URL",
		},
		{
			name: "gateway with https url",
			mutate: func(c *Config) {
				c.Emergency.Backend = BackendGateway
				c.Emergency.Gateway.URL = "https://calls.example.edu/v1/dispatch"
			},
		},
		{
			name: "queue without redis",
			mutate: func(c *Config) {
				c.Emergency.Backend = BackendQueue
				c.Emergency.Queue.RedisAddr = ""
			},
			wantErr: "redis_addr",
		},
		{
			name: "telegram without token",
			mutate: func(c *Config) {
				c.Telegram.Enabled = true
				c.Telegram.Contacts = []alert.Contact{{Name: "Mum", ChatID: 1}}
			},
			wantErr: "bot_token",
		},
		{
			name: "telegram without contacts",
			mutate: func(c *Config) {
				c.Telegram.Enabled = true
				c.Telegram.BotToken = "123456789:abc"
			},
			wantErr: "contacts",
		},
		{
			name: "contact missing chat id",
			mutate: func(c *Config) {
				c.Telegram.Contacts = []alert.Contact{{Name: "Mum"}}
			},
			wantErr: "ChatID",
		},
		{
			name:    "toast too long",
			mutate:  func(c *Config) { c.UI.ToastSeconds = 600 },
			wantErr: "ToastSeconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != DefaultPath {
		t.Errorf("path = %q, want %q", path, DefaultPath)
	}
	if _, err := os.Stat(DefaultPath); err != nil {
		t.Errorf("default config not saved: %v", err)
	}
	if cfg.Emergency.Number != "911" {
		t.Errorf("Number = %q, want 911", cfg.Emergency.Number)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campus.json")
	content := `{
		"profile": {"display_name": "ILHAM FAKHRI BIN MOHD FADHIL"},
		"location": {"name": "North Campus", "latitude": "3.1201", "longitude": "101.6544"},
		"emergency": {"number": "999", "backend": "queue", "queue": {"redis_addr": "redis:6379", "key": "calls"}}
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if cfg.Profile.DisplayName != "ILHAM FAKHRI BIN MOHD FADHIL" {
		t.Errorf("DisplayName = %q", cfg.Profile.DisplayName)
	}
	// Unset fields keep their defaults.
	if cfg.Profile.Welcome != safety.DefaultWelcome {
		t.Errorf("Welcome = %q, want default", cfg.Profile.Welcome)
	}
	if cfg.Location.Building != safety.DefaultBuilding {
		t.Errorf("Building = %q, want default", cfg.Location.Building)
	}
	if cfg.Emergency.Backend != BackendQueue || cfg.Emergency.Queue.Key != "calls" {
		t.Errorf("Emergency = %+v", cfg.Emergency)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	chdir(t, t.TempDir())

	if _, _, err := Load("does-not-exist.json"); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	os.WriteFile(path, []byte("{not json"), 0600)
	chdir(t, dir)

	_, _, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("Load() error = %v, want invalid JSON", err)
	}
}

func TestLoad_DotEnvAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	dotenv := strings.Join([]string{
		"CAMPUSSAFE_USER_NAME=From DotEnv",
		"CAMPUSSAFE_EMERGENCY_NUMBER=112",
		"CAMPUSSAFE_REDIS_DB=3",
		"NOT_WHITELISTED=1",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0600); err != nil {
		t.Fatal(err)
	}

	// Real environment wins over .env.
	t.Setenv("CAMPUSSAFE_EMERGENCY_NUMBER", "999")
	t.Setenv("CAMPUSSAFE_LOG_LEVEL", "DEBUG")
	// Registered so t restores them after loadDotEnv sets them.
	t.Setenv("CAMPUSSAFE_USER_NAME", "")
	os.Unsetenv("CAMPUSSAFE_USER_NAME")
	t.Setenv("CAMPUSSAFE_REDIS_DB", "")
	os.Unsetenv("CAMPUSSAFE_REDIS_DB")
	t.Setenv("NOT_WHITELISTED", "")
	os.Unsetenv("NOT_WHITELISTED")

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Profile.DisplayName != "From DotEnv" {
		t.Errorf("DisplayName = %q, want value from .env", cfg.Profile.DisplayName)
	}
	if cfg.Emergency.Number != "999" {
		t.Errorf("Number = %q, want environment to win", cfg.Emergency.Number)
	}
	if cfg.Emergency.Queue.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.Emergency.Queue.RedisDB)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want lower-cased debug", cfg.LogLevel)
	}
	if _, set := os.LookupEnv("NOT_WHITELISTED"); set {
		t.Error("non-whitelisted .env key was exported")
	}
}

func TestTelegramTokenFromEnvEnablesAlerts(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456789:token")

	cfg := DefaultConfig()
	cfg.Telegram.Contacts = []alert.Contact{{Name: "Mum", ChatID: 101}}
	applyEnvOverrides(cfg)

	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken != "123456789:token" {
		t.Errorf("Telegram = %+v", cfg.Telegram)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestTelegramTokenWithoutContactsStaysOnLog(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456789:token")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Telegram.Enabled {
		t.Error("a token without contacts must not enable Telegram alerts")
	}
	if cfg.Telegram.BotToken != "123456789:token" {
		t.Errorf("BotToken = %q", cfg.Telegram.BotToken)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.CallTimeout(); got != 30*time.Second {
		t.Errorf("CallTimeout() = %v", got)
	}
	if got := cfg.ToastDuration(); got != 4*time.Second {
		t.Errorf("ToastDuration() = %v", got)
	}
	if got := cfg.GatewayTimeout(); got != 10*time.Second {
		t.Errorf("GatewayTimeout() = %v", got)
	}

	rp := cfg.RetryPolicy()
	if rp.MaxRetries != 2 || rp.InitialDelay != 500*time.Millisecond || rp.MaxDelay != 3*time.Second {
		t.Errorf("RetryPolicy() = %+v", rp)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Profile.DisplayName = "Saved User"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Profile.DisplayName != "Saved User" {
		t.Errorf("DisplayName = %q", loaded.Profile.DisplayName)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the original one during cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
