package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/insightdelivered/ledger-insights/internal/analytics"
	"github.com/insightdelivered/ledger-insights/internal/config"
	"github.com/insightdelivered/ledger-insights/internal/models"
)

// ErrRefreshInProgress is returned when a refresh is requested while
// another one is still running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// ErrNotReady is returned by readers before the first successful refresh.
var ErrNotReady = errors.New("dashboard has not been built yet")

// ErrAlreadyScheduled is returned by Start while a schedule is running.
var ErrAlreadyScheduled = errors.New("refresh schedule already running")

// LedgerProvider supplies the raw rows of every available ledger.
type LedgerProvider interface {
	Load(ctx context.Context) (map[models.LedgerKind][]models.RawRow, error)
}

// BudgetProvider supplies the budget targets.
type BudgetProvider interface {
	Budget(ctx context.Context) (config.Budget, error)
}

// Options tune how the service builds reports.
type Options struct {
	Period analytics.Period
	Range  analytics.RangeOptions
	// Now returns the reference date of each build. Defaults to time.Now.
	Now func() time.Time
}

// Status describes the cache state.
type Status struct {
	Ready       bool      `json:"ready"`
	Refreshing  bool      `json:"refreshing"`
	LastRefresh time.Time `json:"lastRefresh,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
	Schedule    string    `json:"schedule,omitempty"`
	NextRefresh time.Time `json:"nextRefresh,omitempty"`
	Skipped     int       `json:"skipped"`
}

// Service handles dashboard operations
type Service struct {
	ledgers LedgerProvider
	budget  BudgetProvider
	logger  *logrus.Logger
	opts    Options

	cacheMu         sync.RWMutex
	report          *Report
	lastErr         error
	lastRefresh     time.Time
	cacheRefreshing bool

	cron     *cron.Cron
	schedule string
	entry    cron.EntryID
}

// NewService creates a new dashboard service. The cache is empty until
// the first Refresh.
func NewService(ledgers LedgerProvider, budget BudgetProvider, logger *logrus.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Service{
		ledgers: ledgers,
		budget:  budget,
		logger:  logger,
		opts:    opts,
	}
}

// Refresh reloads every ledger and the budget and swaps in a new report.
// A failed refresh keeps the previous report.
func (s *Service) Refresh(ctx context.Context) (*Report, error) {
	s.cacheMu.Lock()
	if s.cacheRefreshing {
		s.cacheMu.Unlock()
		return nil, ErrRefreshInProgress
	}
	s.cacheRefreshing = true
	s.cacheMu.Unlock()

	defer func() {
		s.cacheMu.Lock()
		s.cacheRefreshing = false
		s.cacheMu.Unlock()
	}()

	start := time.Now()
	report, err := s.build(ctx)

	s.cacheMu.Lock()
	s.lastErr = err
	if err == nil {
		s.report = report
		s.lastRefresh = report.GeneratedAt
	}
	s.cacheMu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("Dashboard refresh failed")
		return nil, err
	}

	s.logSkips(report)
	s.logger.WithFields(logrus.Fields{
		"duration": time.Since(start).String(),
		"skipped":  report.SkipCount(),
	}).Info("Dashboard refreshed")
	return report, nil
}

func (s *Service) build(ctx context.Context) (*Report, error) {
	rows, err := s.ledgers.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledgers: %w", err)
	}

	var budget config.Budget
	if s.budget != nil {
		budget, err = s.budget.Budget(ctx)
		if err != nil {
			// A missing budget only disables the progress bars.
			s.logger.WithError(err).Warn("Budget unavailable, progress shown without limits")
			budget = config.Budget{}
		}
	}

	return Build(Input{
		Ledgers: rows,
		Budget:  budget,
		Today:   s.opts.Now(),
		Period:  s.opts.Period,
		Range:   s.opts.Range,
	}), nil
}

func (s *Service) logSkips(r *Report) {
	for _, kind := range models.LedgerKinds {
		for _, d := range r.Diagnostics[kind].Details {
			s.logger.WithFields(logrus.Fields{
				"ledger": kind,
				"line":   d.Line,
			}).Warn("Skipped ledger row: " + d.Reason)
		}
	}
	for _, sk := range r.Loans.Skipped {
		s.logger.WithField("line", sk.Line()).Warn("Skipped loan row: " + sk.Reason())
	}
}

// Report returns the cached report.
func (s *Service) Report() (*Report, error) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	if s.report == nil {
		if s.lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotReady, s.lastErr)
		}
		return nil, ErrNotReady
	}
	return s.report, nil
}

// Status reports the cache and schedule state.
func (s *Service) Status() Status {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	st := Status{
		Ready:       s.report != nil,
		Refreshing:  s.cacheRefreshing,
		LastRefresh: s.lastRefresh,
		Schedule:    s.schedule,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.report != nil {
		st.Skipped = s.report.SkipCount()
	}
	if s.cron != nil {
		st.NextRefresh = s.cron.Entry(s.entry).Next
	}
	return st
}

// Start schedules periodic refreshes using a standard cron spec or a
// descriptor such as "@every 15m". An empty spec disables the schedule.
// Stop must be called before a second schedule can be started.
func (s *Service) Start(spec string) error {
	if spec == "" {
		return nil
	}

	c := cron.New()
	id, err := c.AddFunc(spec, func() {
		if _, err := s.Refresh(context.Background()); errors.Is(err, ErrRefreshInProgress) {
			s.logger.Debug("Scheduled refresh skipped, another refresh is running")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	s.cacheMu.Lock()
	if s.cron != nil {
		s.cacheMu.Unlock()
		return ErrAlreadyScheduled
	}
	s.cron, s.entry, s.schedule = c, id, spec
	s.cacheMu.Unlock()

	c.Start()
	s.logger.WithField("schedule", spec).Info("Scheduled dashboard refresh")
	return nil
}

// Stop halts the schedule and waits for a running scheduled refresh.
func (s *Service) Stop() {
	s.cacheMu.Lock()
	c := s.cron
	s.cron, s.entry, s.schedule = nil, 0, ""
	s.cacheMu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
}
