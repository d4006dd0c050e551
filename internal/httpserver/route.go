package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	ReportHandler *ReportHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	reports := e.Group("/api/reports")
	reports.GET("/revenue/:year", d.ReportHandler.YearRevenue)
	reports.GET("/monthly-growth", d.ReportHandler.MonthlyGrowth)
	reports.GET("/products/top", d.ReportHandler.TopProducts)
	reports.GET("/integrity", d.ReportHandler.DataIntegrity)

	customers := reports.Group("/customers")
	customers.GET("/spend", d.ReportHandler.CustomerSpend)
	customers.GET("/segments", d.ReportHandler.CustomerSegments)
	customers.GET("/marketing-targets", d.ReportHandler.MarketingTargets)
	customers.GET("/uk-high-value", d.ReportHandler.UKHighValue)
}
