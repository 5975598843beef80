package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// ReportHandler serves the admin reports.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Overdue handles GET /v1/reports/overdue.
func (h *ReportHandler) Overdue(c echo.Context) error {
	report, err := h.service.OverdueReport(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// IssuedStats handles GET /v1/reports/issued-stats.
func (h *ReportHandler) IssuedStats(c echo.Context) error {
	stats, err := h.service.IssuedStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// IssueHistory handles GET /v1/reports/issue-history.
func (h *ReportHandler) IssueHistory(c echo.Context) error {
	events, err := h.service.IssueHistory(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

// MostIssuedMonthly handles GET /v1/reports/most-issued-monthly.
func (h *ReportHandler) MostIssuedMonthly(c echo.Context) error {
	data, err := h.service.MostIssuedMonthly(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}
