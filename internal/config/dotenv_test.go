package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "COLORMIX_TEST_BRAND=\"#ff8800\"\nCOLORMIX_TEST_KEEP=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("COLORMIX_TEST_KEEP", "from-env")
	t.Cleanup(func() { os.Unsetenv("COLORMIX_TEST_BRAND") })

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}

	cfg := &Config{Palette: map[string]string{"brand": "${COLORMIX_TEST_BRAND}"}}
	ExpandEnvConfig(cfg)
	if cfg.Palette["brand"] != "#ff8800" {
		t.Errorf("brand = %q, want #ff8800", cfg.Palette["brand"])
	}
	if got := os.Getenv("COLORMIX_TEST_KEEP"); got != "from-env" {
		t.Errorf("existing variable overwritten: %q", got)
	}
}

func TestLoadEnvFileErrors(t *testing.T) {
	if err := LoadEnvFile(); err != nil {
		t.Errorf("no paths: unexpected error %v", err)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}
