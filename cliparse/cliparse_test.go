// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_TYPE", "")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("POLL_DURATION", "60")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.StoreType != StoreRedis {
		t.Errorf("expected default store redis, got %s", cfg.StoreType)
	}
	if cfg.RedisURL != "redis://cache:6379/1" {
		t.Errorf("unexpected redis URL %s", cfg.RedisURL)
	}
	if cfg.PollDuration != time.Minute {
		t.Errorf("expected 1m poll duration, got %s", cfg.PollDuration)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "")

	cfg, err := ParseFlags([]string{"-p", "8080", "-store", "sqlite", "-d", "file:test.db", "-jwt-secret", "s1", "-poll-duration", "120"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.StoreType != StoreSQLite || cfg.DatabaseURL != "file:test.db" {
		t.Errorf("unexpected store config: %+v", cfg)
	}
	if cfg.PollDuration != 2*time.Minute {
		t.Errorf("expected 2m poll duration, got %s", cfg.PollDuration)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_TYPE", "REDIS_URL", "POLL_DURATION"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected default redis URL %s", cfg.RedisURL)
	}
	if cfg.PollDuration != 2*time.Hour {
		t.Errorf("expected default 2h poll duration, got %s", cfg.PollDuration)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}, nil},
		{"bad port", map[string]string{"PORT": "abc", "JWT_SECRET": "s"}, nil},
		{"unknown store", map[string]string{"JWT_SECRET": "s"}, []string{"-store", "mongo"}},
		{"sql store without url", map[string]string{"JWT_SECRET": "s", "DATABASE_URL": ""}, []string{"-store", "postgres"}},
		{"bad poll duration", map[string]string{"JWT_SECRET": "s", "POLL_DURATION": "soon"}, nil},
		{"negative poll duration", map[string]string{"JWT_SECRET": "s"}, []string{"-poll-duration", "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "")
			t.Setenv("POLL_DURATION", "")
			t.Setenv("STORE_TYPE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("QPL_TEST_FROM_FILE=hello\nQPL_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("QPL_TEST_PRESET", "env")
	t.Cleanup(func() { os.Unsetenv("QPL_TEST_FROM_FILE") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("QPL_TEST_FROM_FILE"); got != "hello" {
		t.Errorf("expected value from file, got %q", got)
	}
	// Existing variables win over the file
	if got := os.Getenv("QPL_TEST_PRESET"); got != "env" {
		t.Errorf("expected preset env to win, got %q", got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should not error, got %v", err)
	}
}
