package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/sales_reports/internal/models"
	"github.com/Skotchmaster/sales_reports/internal/repo"
	"github.com/Skotchmaster/sales_reports/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	H  *ReportHTTP
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Order{}, &models.OrderDetail{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	svc := &service.ReportService{Repo: &repo.GormRepo{DB: db}}
	return &testEnv{
		T:  t,
		E:  echo.New(),
		H:  &ReportHTTP{Svc: svc},
		DB: db,
	}
}

func (env *testEnv) doGET(path string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) seedScenario() {
	require.NoError(env.T, env.DB.Create(&models.Customer{ID: "ALFKI", CompanyName: "Alfreds Futterkiste", ContactName: "Maria Anders", Country: "Germany"}).Error)
	require.NoError(env.T, env.DB.Create(&models.Product{ID: 1, ProductName: "Chai"}).Error)

	o := models.Order{CustomerID: "ALFKI", OrderDate: time.Date(1997, time.March, 15, 0, 0, 0, 0, time.UTC)}
	require.NoError(env.T, env.DB.Create(&o).Error)
	require.NoError(env.T, env.DB.Create(&models.OrderDetail{OrderID: o.ID, ProductID: 1, UnitPrice: 10, Quantity: 5, Discount: 0.1}).Error)
}

func TestYearRevenueHandler(t *testing.T) {
	env := newTestEnv(t)
	env.seedScenario()

	rec, c := env.doGET("/api/reports/revenue/1997")
	c.SetParamNames("year")
	c.SetParamValues("1997")
	require.NoError(t, env.H.YearRevenue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Year         int     `json:"year"`
		TotalRevenue float64 `json:"total_revenue"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1997, resp.Year)
	require.InDelta(t, 45.0, resp.TotalRevenue, 1e-9)
}

func TestYearRevenueHandler_BadYearParam(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doGET("/api/reports/revenue/abc")
	c.SetParamNames("year")
	c.SetParamValues("abc")

	err := env.H.YearRevenue(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestYearRevenueHandler_ValidationMapsTo400(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doGET("/api/reports/revenue/0")
	c.SetParamNames("year")
	c.SetParamValues("0")

	err := env.H.YearRevenue(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestMonthlyGrowthHandler(t *testing.T) {
	env := newTestEnv(t)
	env.seedScenario()

	rec, c := env.doGET("/api/reports/monthly-growth")
	require.NoError(t, env.H.MonthlyGrowth(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []service.MonthGrowth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, 1997, resp[0].Year)
	require.Equal(t, 3, resp[0].Month)
	require.InDelta(t, 45.0, resp[0].Revenue, 1e-9)
	require.Nil(t, resp[0].Change)
}

func TestCustomerSegmentsHandler_EmptyDBReturnsEmptyArray(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doGET("/api/reports/customers/segments")
	require.NoError(t, env.H.CustomerSegments(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestUKHighValueHandler_EmptyResultIs200(t *testing.T) {
	env := newTestEnv(t)
	env.seedScenario() // German customer only, no UK rows

	rec, c := env.doGET("/api/reports/customers/uk-high-value")
	require.NoError(t, env.H.UKHighValue(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestDataIntegrityHandler(t *testing.T) {
	env := newTestEnv(t)
	env.seedScenario()

	rec, c := env.doGET("/api/reports/integrity")
	require.NoError(t, env.H.DataIntegrity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp repo.IntegrityCounts
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, repo.IntegrityCounts{}, resp)
}

func TestHandlers_UnavailableMapsTo503(t *testing.T) {
	env := newTestEnv(t)

	sqlDB, err := env.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, c := env.doGET("/api/reports/customers/spend")
	handlerErr := env.H.CustomerSpend(c)

	var he *echo.HTTPError
	require.ErrorAs(t, handlerErr, &he)
	require.Equal(t, http.StatusServiceUnavailable, he.Code)
}

func TestRegister_RoutesResolve(t *testing.T) {
	env := newTestEnv(t)
	env.seedScenario()

	Register(env.E, &Deps{ReportHandler: env.H})

	paths := []string{
		"/healthz",
		"/api/reports/revenue/1997",
		"/api/reports/monthly-growth",
		"/api/reports/products/top",
		"/api/reports/integrity",
		"/api/reports/customers/spend",
		"/api/reports/customers/segments",
		"/api/reports/customers/marketing-targets",
		"/api/reports/customers/uk-high-value",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		env.E.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}
