package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DefaultThreshold != 100 {
		t.Fatalf("expected default threshold 100, got %d", cfg.DefaultThreshold)
	}
	if cfg.DetailsLock != "never" {
		t.Fatalf("expected default details lock never, got %s", cfg.DetailsLock)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("RATE_RPS", "2.5")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("expected port 9999, got %s", cfg.Port)
	}
	if cfg.RateRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %f", cfg.RateRPS)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("RATE_BURST", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nexport DOTENV_TEST_KEY=\"from-file\"\nDOTENV_TEST_SET=ignored\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("DOTENV_TEST_SET", "from-env")
	t.Setenv("DOTENV_TEST_KEY", "")
	_ = os.Unsetenv("DOTENV_TEST_KEY")

	path, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if path != envPath {
		t.Fatalf("expected %s, got %s", envPath, path)
	}
	if got := os.Getenv("DOTENV_TEST_KEY"); got != "from-file" {
		t.Fatalf("expected from-file, got %q", got)
	}
	if got := os.Getenv("DOTENV_TEST_SET"); got != "from-env" {
		t.Fatalf("expected existing value kept, got %q", got)
	}
}
