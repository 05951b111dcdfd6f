package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.check(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}

	if cfg.PageScanLimit != 5 {
		t.Errorf("PageScanLimit: got %d, want 5", cfg.PageScanLimit)
	}
	if len(cfg.FallbackSeparators) != 6 {
		t.Errorf("FallbackSeparators: got %d entries, want 6", len(cfg.FallbackSeparators))
	}

	last := cfg.Categories[len(cfg.Categories)-1]
	if last.Name != "Other" || len(last.Keywords) != 0 {
		t.Errorf("last category rule: got %q with %d keywords, want keywordless Other",
			last.Name, len(last.Keywords))
	}
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	yaml := `
page_scan_limit: 9
categories:
  - name: Coffee
    keywords: [espresso]
  - name: Other
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PageScanLimit != 9 {
		t.Errorf("PageScanLimit: got %d, want 9", cfg.PageScanLimit)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[0].Name != "Coffee" {
		t.Errorf("categories not replaced: got %+v", cfg.Categories)
	}
	// Untouched fields keep their defaults.
	if len(cfg.FooterMarkers) == 0 {
		t.Error("FooterMarkers lost its default value")
	}
}

func TestLoadRejectsBadCatchAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	yaml := `
categories:
  - name: Groceries
    keywords: [walmart]
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for rule table without terminal catch-all")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv with empty var: %v", err)
	}
	if cfg.PageScanLimit != Default().PageScanLimit {
		t.Error("FromEnv without override should return defaults")
	}

	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("page_scan_limit: 3\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	t.Setenv(EnvVar, path)

	cfg, err = FromEnv()
	if err != nil {
		t.Fatalf("FromEnv with override: %v", err)
	}
	if cfg.PageScanLimit != 3 {
		t.Errorf("PageScanLimit: got %d, want 3", cfg.PageScanLimit)
	}
}
