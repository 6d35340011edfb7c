package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}


func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "empty", value: "", expected: nil},
		{name: "single value", value: "10.0.0.0/8", expected: []string{"10.0.0.0/8"}},
		{name: "spaces and quotes", value: ` "a.example" , 'b.example',, c `, expected: []string{"a.example", "b.example", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLoad_RequiresPassphrase(t *testing.T) {
	t.Setenv("GIFTLIST_ADMIN_PASSPHRASE", "")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked without GIFTLIST_ADMIN_PASSPHRASE")
		}
	}()
	Load()
}

func TestLoadOffline_PassphraseOptional(t *testing.T) {
	t.Setenv("GIFTLIST_ADMIN_PASSPHRASE", "")
	t.Setenv("GIFTLIST_STORE_DRIVER", DriverMemory)

	cfg := LoadOffline()
	if cfg.AdminPassphrase != "" {
		t.Errorf("AdminPassphrase = %q, want empty", cfg.AdminPassphrase)
	}
	if cfg.StoreDriver != DriverMemory || cfg.StoreErr != nil {
		t.Errorf("store = %q, %v", cfg.StoreDriver, cfg.StoreErr)
	}

	t.Setenv("GIFTLIST_ADMIN_PASSPHRASE", "amor")
	if got := LoadOffline().AdminPassphrase; got != "amor" {
		t.Errorf("AdminPassphrase = %q, want amor", got)
	}
}

func TestLoad_UnknownDriverPanics(t *testing.T) {
	t.Setenv("GIFTLIST_ADMIN_PASSPHRASE", "amor")
	t.Setenv("GIFTLIST_STORE_DRIVER", "mongo")

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Load() should have panicked on unknown driver")
		}
	}()
	Load()
}

func TestLoad_StoreErr(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantMissing []string
	}{
		{
			name:        "postgres without settings",
			env:         map[string]string{"GIFTLIST_STORE_DRIVER": "postgres"},
			wantMissing: []string{"GIFTLIST_DATABASE_URL", "GIFTLIST_DATABASE_PASSWORD"},
		},
		{
			name: "postgres configured",
			env: map[string]string{
				"GIFTLIST_STORE_DRIVER":      "postgres",
				"GIFTLIST_DATABASE_URL":      "postgres://giftlist@localhost:5432/giftlist",
				"GIFTLIST_DATABASE_PASSWORD": "secret",
			},
		},
		{
			name:        "redis without password",
			env:         map[string]string{"GIFTLIST_STORE_DRIVER": "redis", "GIFTLIST_REDIS_ADDR": "localhost:6379"},
			wantMissing: []string{"GIFTLIST_REDIS_PASSWORD"},
		},
		{
			name: "redis password optional",
			env: map[string]string{
				"GIFTLIST_STORE_DRIVER":            "redis",
				"GIFTLIST_REDIS_ADDR":              "localhost:6379",
				"GIFTLIST_REDIS_PASSWORD_REQUIRED": "false",
			},
		},
		{
			name: "memory needs nothing",
			env:  map[string]string{"GIFTLIST_STORE_DRIVER": "memory"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GIFTLIST_ADMIN_PASSPHRASE", "amor")
			for _, k := range []string{
				"GIFTLIST_DATABASE_URL", "GIFTLIST_DATABASE_PASSWORD",
				"GIFTLIST_REDIS_ADDR", "GIFTLIST_REDIS_PASSWORD", "GIFTLIST_REDIS_PASSWORD_REQUIRED",
			} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := Load()

			if len(tt.wantMissing) == 0 {
				if cfg.StoreErr != nil {
					t.Fatalf("StoreErr = %v, want nil", cfg.StoreErr)
				}
				return
			}

			var cfgErr *domain.ConfigurationError
			if !errors.As(cfg.StoreErr, &cfgErr) {
				t.Fatalf("StoreErr = %v, want *domain.ConfigurationError", cfg.StoreErr)
			}
			if strings.Join(cfgErr.Missing, ",") != strings.Join(tt.wantMissing, ",") {
				t.Errorf("Missing = %v, want %v", cfgErr.Missing, tt.wantMissing)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GIFTLIST_ADMIN_PASSPHRASE", "amor")
	t.Setenv("GIFTLIST_STORE_DRIVER", "")

	cfg := Load()

	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if !cfg.ClaimGuard {
		t.Error("ClaimGuard should default to true")
	}
	if cfg.Locale != "pt-BR" {
		t.Errorf("Locale = %q", cfg.Locale)
	}
	if cfg.ImagesToS3() {
		t.Error("ImagesToS3() should be false without a bucket")
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{
		AdminPassphrase:  "amor",
		DatabaseURL:      "postgres://giftlist:pw@db:5432/giftlist",
		DatabasePassword: "pw",
		RedisPassword:    "rpw",
		S3SecretKey:      "s3",
	}

	r := cfg.Redacted()
	dump := strings.Join([]string{r.AdminPassphrase, r.DatabaseURL, r.DatabasePassword, r.RedisPassword, r.S3SecretKey}, " ")

	for _, secret := range []string{"amor", ":pw@", "rpw", "s3"} {
		if strings.Contains(dump, secret) {
			t.Errorf("Redacted() leaks %q: %s", secret, dump)
		}
	}
	if r.DatabaseURL != "postgres://***REDACTED***@db:5432/giftlist" {
		t.Errorf("DatabaseURL = %q", r.DatabaseURL)
	}
	if cfg.AdminPassphrase != "amor" {
		t.Error("Redacted() mutated the original")
	}
}
