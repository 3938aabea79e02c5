package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/ledger-insights/internal/models"
)

// Config holds application configuration
type Config struct {
	Port            string
	LogLevel        string
	LedgerDir       string
	MainLedger      string
	SavingsLedger   string
	SpendLedger     string
	SIPLedger       string
	BudgetFile      string
	RefreshSchedule string
	StaticDir       string
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and builds the configuration from it. Missing .env
// files are ignored; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LedgerDir:       getEnv("LEDGER_DIR", "data"),
		MainLedger:      getEnv("MAIN_LEDGER", "main.tsv"),
		SavingsLedger:   getEnv("SAVINGS_LEDGER", "savings.tsv"),
		SpendLedger:     getEnv("SPEND_LEDGER", "spend.tsv"),
		SIPLedger:       getEnv("SIP_LEDGER", "sip.tsv"),
		BudgetFile:      getEnv("BUDGET_FILE", "budget.yaml"),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "@every 15m"),
		StaticDir:       getEnv("STATIC_DIR", ""),
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT is required")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// LedgerPaths maps each configured ledger to its file. Relative names are
// resolved against LedgerDir; blank names are left out.
func (c *Config) LedgerPaths() map[models.LedgerKind]string {
	paths := make(map[models.LedgerKind]string, 4)
	for kind, name := range map[models.LedgerKind]string{
		models.LedgerMain:    c.MainLedger,
		models.LedgerSavings: c.SavingsLedger,
		models.LedgerSpend:   c.SpendLedger,
		models.LedgerSIP:     c.SIPLedger,
	} {
		if name == "" {
			continue
		}
		paths[kind] = c.resolve(name)
	}
	return paths
}

// BudgetPath resolves BudgetFile the same way as the ledger files.
func (c *Config) BudgetPath() string {
	if c.BudgetFile == "" {
		return ""
	}
	return c.resolve(c.BudgetFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || c.LedgerDir == "" {
		return name
	}
	return filepath.Join(c.LedgerDir, name)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
