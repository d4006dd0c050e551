package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/sales_reports/internal/service"
	"github.com/Skotchmaster/sales_reports/pkg/logging"
	"github.com/labstack/echo/v4"
)

type ReportHTTP struct {
	Svc *service.ReportService
}

func (h *ReportHTTP) YearRevenue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.year_revenue")

	yearParam := c.Param("year")
	year, err := strconv.Atoi(yearParam)
	if err != nil {
		l.Warn("year_revenue_failed", "status", 400, "reason", "year is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "year is not an integer")
	}

	total, err := h.Svc.YearRevenue(ctx, year)
	if err != nil {
		return h.reportError(l, "year_revenue_failed", err)
	}

	l.Info("year_revenue_success", "year", year)
	return c.JSON(http.StatusOK, map[string]any{
		"year":          year,
		"total_revenue": total,
	})
}

func (h *ReportHTTP) MonthlyGrowth(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.monthly_growth")

	rows, err := h.Svc.MonthlyGrowth(ctx)
	if err != nil {
		return h.reportError(l, "monthly_growth_failed", err)
	}

	l.Info("monthly_growth_success", "months", len(rows))
	return c.JSON(http.StatusOK, rows)
}

func (h *ReportHTTP) CustomerSpend(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.customer_spend")

	rows, err := h.Svc.CustomerSpend(ctx)
	if err != nil {
		return h.reportError(l, "customer_spend_failed", err)
	}

	l.Info("customer_spend_success", "customers", len(rows))
	return c.JSON(http.StatusOK, rows)
}

func (h *ReportHTTP) CustomerSegments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.customer_segments")

	rows, err := h.Svc.CustomerSegments(ctx)
	if err != nil {
		return h.reportError(l, "customer_segments_failed", err)
	}

	l.Info("customer_segments_success", "customers", len(rows))
	return c.JSON(http.StatusOK, rows)
}

func (h *ReportHTTP) MarketingTargets(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.marketing_targets")

	rows, err := h.Svc.MarketingTargets(ctx)
	if err != nil {
		return h.reportError(l, "marketing_targets_failed", err)
	}

	l.Info("marketing_targets_success", "customers", len(rows))
	return c.JSON(http.StatusOK, rows)
}

func (h *ReportHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.top_products")

	rows, err := h.Svc.TopProducts(ctx)
	if err != nil {
		return h.reportError(l, "top_products_failed", err)
	}

	l.Info("top_products_success", "products", len(rows))
	return c.JSON(http.StatusOK, rows)
}

func (h *ReportHTTP) UKHighValue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.uk_high_value")

	rows, err := h.Svc.UKHighValue(ctx)
	if err != nil {
		return h.reportError(l, "uk_high_value_failed", err)
	}

	l.Info("uk_high_value_success", "contacts", len(rows))
	return c.JSON(http.StatusOK, rows)
}

func (h *ReportHTTP) DataIntegrity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reports.data_integrity")

	counts, err := h.Svc.DataIntegrity(ctx)
	if err != nil {
		return h.reportError(l, "data_integrity_failed", err)
	}

	l.Info("data_integrity_success")
	return c.JSON(http.StatusOK, counts)
}

func (h *ReportHTTP) reportError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid parameter", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		l.Error(event, "status", 503, "reason", "data source unavailable", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "data source unavailable")
	default:
		l.Error(event, "status", 500, "reason", "cannot build report", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot build report")
	}
}
