package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "LEDGER_DIR", "MAIN_LEDGER", "REFRESH_SCHEDULE"} {
		unsetEnv(t, k)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port: got %q, want 8080", cfg.Port)
	}
	if cfg.Level() != logrus.InfoLevel {
		t.Errorf("level: got %v, want info", cfg.Level())
	}
	if cfg.RefreshSchedule != "@every 15m" {
		t.Errorf("schedule: got %q", cfg.RefreshSchedule)
	}
	if got := cfg.LedgerPaths()[models.LedgerMain]; got != filepath.Join("data", "main.tsv") {
		t.Errorf("main ledger: got %q", got)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	unsetEnv(t, "SPEND_LEDGER")
	t.Setenv("PORT", "9090")

	env := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(env, []byte("SPEND_LEDGER=pocket.tsv\nPORT=1111\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SpendLedger != "pocket.tsv" {
		t.Errorf("spend ledger: got %q, want pocket.tsv", cfg.SpendLedger)
	}
	if cfg.Port != "9090" {
		t.Errorf("port: got %q, environment should win over .env", cfg.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"empty port", "PORT", ""},
		{"bad log level", "LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConfig_LedgerPaths(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "sip.tsv")
	cfg := &Config{
		LedgerDir:  "ledgers",
		MainLedger: "main.tsv",
		SIPLedger:  abs,
		BudgetFile: "budget.yaml",
	}

	paths := cfg.LedgerPaths()
	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2", len(paths))
	}
	if paths[models.LedgerMain] != filepath.Join("ledgers", "main.tsv") {
		t.Errorf("main: got %q", paths[models.LedgerMain])
	}
	if paths[models.LedgerSIP] != abs {
		t.Errorf("sip: got %q, want %q", paths[models.LedgerSIP], abs)
	}
	if cfg.BudgetPath() != filepath.Join("ledgers", "budget.yaml") {
		t.Errorf("budget: got %q", cfg.BudgetPath())
	}
}

// unsetEnv removes key for the duration of the test.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}
