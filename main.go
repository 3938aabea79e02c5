package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/ledger-insights/internal/analytics"
	"github.com/insightdelivered/ledger-insights/internal/api"
	"github.com/insightdelivered/ledger-insights/internal/config"
	"github.com/insightdelivered/ledger-insights/internal/dashboard"
	"github.com/insightdelivered/ledger-insights/internal/ledger"
	"github.com/insightdelivered/ledger-insights/internal/models"
	"github.com/insightdelivered/ledger-insights/internal/normalize"
	"github.com/insightdelivered/ledger-insights/internal/source"
	"github.com/insightdelivered/ledger-insights/internal/writer"
)

const version = api.Version

func main() {
	// CLI flags
	kindFlag := flag.String("kind", "", "Ledger kind of the given files: main, savings, spend, sip (auto-detected if omitted)")
	budgetFlag := flag.String("budget", "", "Budget targets YAML file (defaults to BUDGET_FILE)")
	todayFlag := flag.String("today", "", "Reference date DD-MM-YYYY (defaults to today)")
	periodFlag := flag.String("period", "month", "Budgeting period for spend recommendations: month or week")
	exportFlag := flag.String("export", "", "Write the delta table of -kind to this CSV file")
	headerFlag := flag.Bool("header", true, "Include ledger metadata header rows in exported CSV")
	envFlag := flag.String("env", ".env", "Environment file to load")
	serveFlag := flag.Bool("serve", false, "Serve the dashboard JSON API instead of printing a report")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Ledger Insights
by Insight Delivered

Derives balance deltas, trends, outliers, budget progress and spend
forecasts from personal-finance ledger sheets (tab-delimited or PDF).

Usage:
  ledger-insights [flags] [ledger.tsv ...]

With no files, the ledgers named by MAIN_LEDGER, SAVINGS_LEDGER,
SPEND_LEDGER and SIP_LEDGER under LEDGER_DIR are read.

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Report over the configured ledgers
  ledger-insights

  # Report over explicit files, ledger kinds auto-detected
  ledger-insights main.tsv pocket.tsv

  # Export the savings delta table
  ledger-insights --kind=savings --export=savings.csv savings.tsv

  # Serve the JSON API
  ledger-insights --serve

Ledgers:
  main      - main account (Balance after spend (INR), Payment method)
  savings   - savings account (Balance after spend (INR))
  spend     - pocket-money spend ledger (Balance after transaction)
  sip       - SIP investments (Fund Name, Units Purchased, NAV (INR))
  lend      - derived from main-account Lend rows
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("ledger-insights v%s\n", version)
		os.Exit(0)
	}
	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	// Money fields render as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load(*envFlag)
	if err != nil {
		fatalf("Failed to load config: %v\n", err)
	}
	logger := newLogger(cfg, *serveFlag)

	var kind models.LedgerKind
	if *kindFlag != "" {
		if kind, err = ledger.ParseKind(*kindFlag); err != nil {
			fatalf("%v\n", err)
		}
	}
	period, err := analytics.ParsePeriod(*periodFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	provider := &source.FileProvider{Kind: kind, Logger: logger}
	if flag.NArg() > 0 {
		provider.Files = flag.Args()
	} else {
		provider.Paths = cfg.LedgerPaths()
		provider.Optional = true
	}

	budget := &config.FileBudget{Path: *budgetFlag, Optional: *budgetFlag == ""}
	if budget.Path == "" {
		budget.Path = cfg.BudgetPath()
	}

	opts, err := serviceOptions(*todayFlag, period)
	if err != nil {
		fatalf("Invalid -today: %v\n", err)
	}

	if *serveFlag {
		if err := serve(cfg, logger, provider, budget, opts); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
		return
	}

	if err := run(context.Background(), provider, budget, opts.Now(), period, kind, *exportFlag, *headerFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serviceOptions pins the reference date to -today when it is given, for the
// printed report and for every refresh of the served dashboard.
func serviceOptions(today string, period analytics.Period) (dashboard.Options, error) {
	opts := dashboard.Options{Period: period, Now: time.Now}
	if today == "" {
		return opts, nil
	}
	pinned, err := normalize.ParseLedgerDate(today)
	if err != nil {
		return dashboard.Options{}, err
	}
	opts.Now = func() time.Time { return pinned }
	return opts, nil
}

func newLogger(cfg *config.Config, serve bool) *logrus.Logger {
	logger := logrus.New()
	if serve {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(cfg.Level())
	return logger
}

func run(ctx context.Context, provider dashboard.LedgerProvider, budget dashboard.BudgetProvider, today time.Time, period analytics.Period, kind models.LedgerKind, exportPath string, includeHeader bool) error {
	rows, err := provider.Load(ctx)
	if err != nil {
		return err
	}
	targets, err := budget.Budget(ctx)
	if err != nil {
		return err
	}

	report := dashboard.Build(dashboard.Input{
		Ledgers: rows,
		Budget:  targets,
		Today:   today,
		Period:  period,
	})

	if exportPath != "" {
		if kind == "" {
			return errors.New("-export needs -kind to choose the ledger")
		}
		res, _ := report.Result(kind)
		w := &writer.CSVWriter{IncludeHeader: includeHeader}
		if err := w.WriteToFile(exportPath, res); err != nil {
			return fmt.Errorf("CSV write failed: %w", err)
		}
		fmt.Printf("Exported %d %s record(s) to %s\n", len(res.Records), kind, exportPath)
		return nil
	}

	printReport(os.Stdout, report)
	return nil
}

func serve(cfg *config.Config, logger *logrus.Logger, provider dashboard.LedgerProvider, budget dashboard.BudgetProvider, opts dashboard.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := dashboard.NewService(provider, budget, logger, opts)
	// Keep serving on a failed first build; /api/refresh or the schedule retries.
	svc.Refresh(ctx)
	if err := svc.Start(cfg.RefreshSchedule); err != nil {
		return err
	}
	defer svc.Stop()

	app := api.NewApp(&api.Handler{Dashboard: svc, StaticDir: cfg.StaticDir}, logger)

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	logger.Infof("Starting server on %s", addr)
	return app.Listen(addr)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
