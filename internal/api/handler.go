package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/ledger-insights/internal/analytics"
	"github.com/insightdelivered/ledger-insights/internal/dashboard"
	"github.com/insightdelivered/ledger-insights/internal/ledger"
	"github.com/insightdelivered/ledger-insights/internal/models"
	"github.com/insightdelivered/ledger-insights/internal/writer"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Dashboard is the part of dashboard.Service the API reads from.
type Dashboard interface {
	Report() (*dashboard.Report, error)
	Refresh(ctx context.Context) (*dashboard.Report, error)
	Status() dashboard.Status
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// DashboardResponse is the JSON response from the /api/dashboard endpoint.
type DashboardResponse struct {
	Success bool              `json:"success"`
	Report  *dashboard.Report `json:"report"`
}

// LedgerResponse is the JSON response from the /api/ledgers/:kind endpoint.
type LedgerResponse struct {
	Success bool                   `json:"success"`
	Kind    models.LedgerKind      `json:"kind"`
	Mode    models.SeriesMode      `json:"mode"`
	Trend   models.Trend           `json:"trend"`
	Records []models.DeltaRecord   `json:"records"`
	Count   int                    `json:"count"`
	Skipped []dashboard.SkipDetail `json:"skipped"`
}

// OutlierResponse is the JSON response from the /api/outliers endpoint.
type OutlierResponse struct {
	Success bool            `json:"success"`
	Range   analytics.Range `json:"range"`
}

// RefreshResponse is the JSON response from the /api/refresh endpoint.
type RefreshResponse struct {
	Success     bool      `json:"success"`
	GeneratedAt time.Time `json:"generatedAt"`
	Skipped     int       `json:"skipped"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Dashboard Dashboard
	StaticDir string
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.handleHealth)
	api.Get("/dashboard", h.handleDashboard)
	api.Get("/ledgers/:kind", h.handleLedger)
	api.Get("/outliers", h.handleOutliers)
	api.Post("/refresh", h.handleRefresh)
	api.Get("/status", h.handleStatus)

	// Serve the built dashboard front end
	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			// For SPA: serve index.html for non-file routes
			if strings.HasPrefix(c.Path(), "/api/") {
				return fiber.ErrNotFound
			}
			if _, err := os.Stat(filepath.Join(h.StaticDir, c.Path())); os.IsNotExist(err) {
				return c.SendFile(filepath.Join(h.StaticDir, "index.html"))
			}
			return c.Next()
		})
	}
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

func (h *Handler) handleDashboard(c *fiber.Ctx) error {
	report, err := h.report()
	if err != nil {
		return err
	}
	return c.JSON(DashboardResponse{Success: true, Report: report})
}

func (h *Handler) handleLedger(c *fiber.Ctx) error {
	kind, err := ledger.ParseKind(c.Params("kind"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	report, err := h.report()
	if err != nil {
		return err
	}
	res, ok := report.Result(kind)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("ledger %q not loaded", kind))
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		var buf bytes.Buffer
		csvWriter := &writer.CSVWriter{IncludeHeader: c.QueryBool("header", true)}
		if err := csvWriter.Write(&buf, res); err != nil {
			return fmt.Errorf("CSV generation failed: %w", err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", string(kind)+".csv"))
		return c.Send(buf.Bytes())
	}

	// Ensure records and skips are never nil (nil marshals to JSON null, not [])
	records := res.Records
	if records == nil {
		records = []models.DeltaRecord{}
	}
	skipped := make([]dashboard.SkipDetail, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped = append(skipped, dashboard.SkipDetail{Row: s.Row, Reason: s.Reason()})
	}

	return c.JSON(LedgerResponse{
		Success: true,
		Kind:    kind,
		Mode:    res.Mode,
		Trend:   report.Ledgers[kind].Trend,
		Records: records,
		Count:   len(records),
		Skipped: skipped,
	})
}

func (h *Handler) handleOutliers(c *fiber.Ctx) error {
	report, err := h.report()
	if err != nil {
		return err
	}
	opts := analytics.RangeOptions{
		IncludeLend:           c.QueryBool("includeLend", false),
		IncludeSelfTransfers:  c.QueryBool("includeSelfTransfers", false),
		IncludeHomeEssentials: c.QueryBool("includeHomeEssentials", false),
	}
	return c.JSON(OutlierResponse{Success: true, Range: report.OutliersWith(opts)})
}

func (h *Handler) handleRefresh(c *fiber.Ctx) error {
	report, err := h.Dashboard.Refresh(c.UserContext())
	if errors.Is(err, dashboard.ErrRefreshInProgress) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	return c.JSON(RefreshResponse{
		Success:     true,
		GeneratedAt: report.GeneratedAt,
		Skipped:     report.SkipCount(),
	})
}

func (h *Handler) handleStatus(c *fiber.Ctx) error {
	return c.JSON(h.Dashboard.Status())
}

func (h *Handler) report() (*dashboard.Report, error) {
	report, err := h.Dashboard.Report()
	if errors.Is(err, dashboard.ErrNotReady) {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return report, err
}
