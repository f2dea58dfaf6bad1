package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjones/cstore-insights-service/internal/domain"
	"github.com/wjones/cstore-insights-service/internal/service"
)

// stubInsights records the params it was called with and serves canned reports.
type stubInsights struct {
	lastParams     service.ReportParams
	lastThresholds service.BrandThresholds
	fail           bool
}

func (s *stubInsights) TopProducts(ctx context.Context, params service.ReportParams) (*domain.TopProductsReport, error) {
	if s.fail {
		return nil, errors.New("scan failed")
	}
	s.lastParams = params
	return &domain.TopProductsReport{
		Products: []domain.ProductRank{
			{Rank: 1, Description: "Cola 2L", Category: "Packaged Beverages", TotalSales: 9.0, TotalUnits: 6},
		},
		WeeklyTrends: []domain.WeeklyPoint{},
	}, nil
}

func (s *stubInsights) BeverageBrands(ctx context.Context, params service.ReportParams, thresholds service.BrandThresholds) (*domain.BeverageBrandsReport, error) {
	if s.fail {
		return nil, errors.New("scan failed")
	}
	s.lastParams = params
	s.lastThresholds = thresholds
	return &domain.BeverageBrandsReport{}, nil
}

func (s *stubInsights) PaymentComparison(ctx context.Context, params service.ReportParams) (*domain.PaymentComparisonReport, error) {
	if s.fail {
		return nil, errors.New("scan failed")
	}
	s.lastParams = params
	return &domain.PaymentComparisonReport{}, nil
}

func (s *stubInsights) StoreList(ctx context.Context) ([]domain.StoreInfo, error) {
	return []domain.StoreInfo{{StoreID: "101", StoreName: "Rigby Main St", City: "RIGBY", State: "ID"}}, nil
}

func (s *stubInsights) DateRange(ctx context.Context) (domain.DateRange, error) {
	return domain.DateRange{}, nil
}

type stubDemographics struct{}

func (s *stubDemographics) Report(ctx context.Context, storeID, compareStoreID string) (*domain.DemographicsReport, error) {
	if storeID != "101" {
		return nil, &service.ErrStoreNotFound{StoreID: storeID}
	}
	return &domain.DemographicsReport{
		Primary: &domain.StoreDemographics{StoreID: storeID, Statistics: domain.Demographics{"Total Population": 27000}},
	}, nil
}

func newTestRouter(insights *stubInsights) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	v1 := router.Group("/v1")
	NewInsightsHandler(insights).RegisterInsightsRoutes(v1)
	NewDemographicsHandler(&stubDemographics{}).RegisterDemographicsRoutes(v1)
	NewExportHandler(insights).RegisterExportRoutes(v1)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetTopProducts(t *testing.T) {
	stub := &stubInsights{}
	router := newTestRouter(stub)

	w := doRequest(t, router, "/v1/insights/top-products?startDate=2023-06-01&endDate=2023-06-30&excludeStores=101,102&limit=5")
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.TopProductsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Products, 1)
	assert.Equal(t, "Cola 2L", report.Products[0].Description)

	assert.Equal(t, []string{"101", "102"}, stub.lastParams.ExcludeStores)
	assert.Equal(t, 5, stub.lastParams.Limit)
	assert.Equal(t, "2023-06-01", stub.lastParams.StartDate.Format("2006-01-02"))
}

func TestGetTopProductsRejectsBadParams(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/insights/top-products?startDate=06/01/2023")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, "/v1/insights/top-products?limit=many")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTopProductsServiceError(t *testing.T) {
	router := newTestRouter(&stubInsights{fail: true})

	w := doRequest(t, router, "/v1/insights/top-products")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetBeverageBrandsThresholds(t *testing.T) {
	stub := &stubInsights{}
	router := newTestRouter(stub)

	w := doRequest(t, router, "/v1/insights/beverage-brands")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500.0, stub.lastThresholds.MinSales, "default sales threshold")
	assert.Equal(t, 50, stub.lastThresholds.MinTransactions, "default transaction threshold")

	w = doRequest(t, router, "/v1/insights/beverage-brands?minSales=250.5&minTransactions=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 250.5, stub.lastThresholds.MinSales)
	assert.Equal(t, 10, stub.lastThresholds.MinTransactions)

	w = doRequest(t, router, "/v1/insights/beverage-brands?minSales=lots")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStores(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/stores")
	require.Equal(t, http.StatusOK, w.Code)

	var stores []domain.StoreInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stores))
	require.Len(t, stores, 1)
	assert.Equal(t, "101", stores[0].StoreID)
}

func TestGetDemographics(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/demographics?store=101")
	require.Equal(t, http.StatusOK, w.Code)

	var report domain.DemographicsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotNil(t, report.Primary)
	assert.Equal(t, "101", report.Primary.StoreID)
}

func TestGetDemographicsMissingStoreParam(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/demographics")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDemographicsUnknownStore(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/demographics?store=999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetExportCSV(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/export/top-products")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "top_products_")

	body := w.Body.String()
	assert.Contains(t, body, "rank,product,category,total_sales,total_units")
	assert.Contains(t, body, "1,Cola 2L,Packaged Beverages,9.00,6")
}

func TestGetExportUnknownReport(t *testing.T) {
	router := newTestRouter(&stubInsights{})

	w := doRequest(t, router, "/v1/export/nonexistent")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
