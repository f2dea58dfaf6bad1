package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/wjones/cstore-insights-service/internal/service"
)

// InsightsHandler serves the filterable dashboard reports.
type InsightsHandler struct {
	insightsService service.InsightsService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insightsService service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsService: insightsService}
}

// GetTopProducts handles GET /v1/insights/top-products
// @Summary Top products by weekly sales, excluding fuels
// @Description Ranks non-fuel products by total sales over the selected period, with weekly trend series for the ranked products
// @Tags insights
// @Produce json
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Param excludeStores query string false "Comma-separated store ids to exclude"
// @Param excludeCategories query string false "Comma-separated categories to exclude"
// @Param limit query int false "Ranking depth (default 5)"
// @Success 200 {object} domain.TopProductsReport "Top products report"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/insights/top-products [get]
func (h *InsightsHandler) GetTopProducts(c *gin.Context) {
	params, err := parseReportParams(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	report, err := h.insightsService.TopProducts(c.Request.Context(), params)
	if err != nil {
		respondInternalServerError(c, "Failed to compute top products: "+err.Error())
		return
	}

	respondOK(c, report)
}

// GetBeverageBrands handles GET /v1/insights/beverage-brands
// @Summary Packaged beverage brand performance
// @Description Ranks beverage brands and flags underperformers below the sales/transaction thresholds
// @Tags insights
// @Produce json
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Param excludeStores query string false "Comma-separated store ids to exclude"
// @Param minSales query number false "Underperformance threshold on total sales (default 500)"
// @Param minTransactions query int false "Underperformance threshold on transactions (default 50)"
// @Success 200 {object} domain.BeverageBrandsReport "Beverage brand report"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/insights/beverage-brands [get]
func (h *InsightsHandler) GetBeverageBrands(c *gin.Context) {
	params, err := parseReportParams(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	minSales, err := getQueryFloat(c, "minSales", 500)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("minSales", err.Error()))
		return
	}
	minTransactions, err := getQueryInt(c, "minTransactions", 50)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("minTransactions", err.Error()))
		return
	}

	report, err := h.insightsService.BeverageBrands(c.Request.Context(), params, service.BrandThresholds{
		MinSales:        minSales,
		MinTransactions: minTransactions,
	})
	if err != nil {
		respondInternalServerError(c, "Failed to compute beverage brands: "+err.Error())
		return
	}

	respondOK(c, report)
}

// GetPaymentComparison handles GET /v1/insights/payment-comparison
// @Summary Cash vs credit customer comparison
// @Description Compares purchase behavior across normalized CASH and CREDIT payment groups
// @Tags insights
// @Produce json
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Param excludeStores query string false "Comma-separated store ids to exclude"
// @Success 200 {object} domain.PaymentComparisonReport "Payment comparison report"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/insights/payment-comparison [get]
func (h *InsightsHandler) GetPaymentComparison(c *gin.Context) {
	params, err := parseReportParams(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	report, err := h.insightsService.PaymentComparison(c.Request.Context(), params)
	if err != nil {
		respondInternalServerError(c, "Failed to compute payment comparison: "+err.Error())
		return
	}

	respondOK(c, report)
}

// GetStores handles GET /v1/stores
// @Summary List stores
// @Description Returns the store list used by exclusion filter widgets
// @Tags stores
// @Produce json
// @Success 200 {array} domain.StoreInfo "Store list"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/stores [get]
func (h *InsightsHandler) GetStores(c *gin.Context) {
	stores, err := h.insightsService.StoreList(c.Request.Context())
	if err != nil {
		respondInternalServerError(c, "Failed to load stores: "+err.Error())
		return
	}
	respondOK(c, stores)
}

// GetDateRange handles GET /v1/insights/date-range
// @Summary Selectable date range
// @Description Returns the min/max transaction dates for date filter widgets
// @Tags insights
// @Produce json
// @Success 200 {object} domain.DateRange "Date range"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/insights/date-range [get]
func (h *InsightsHandler) GetDateRange(c *gin.Context) {
	dateRange, err := h.insightsService.DateRange(c.Request.Context())
	if err != nil {
		respondInternalServerError(c, "Failed to determine date range: "+err.Error())
		return
	}
	respondOK(c, dateRange)
}

// RegisterInsightsRoutes registers the insights API routes
func (h *InsightsHandler) RegisterInsightsRoutes(router *gin.RouterGroup) {
	router.GET("/stores", h.GetStores)

	insights := router.Group("/insights")
	{
		insights.GET("/date-range", h.GetDateRange)
		insights.GET("/top-products", h.GetTopProducts)
		insights.GET("/beverage-brands", h.GetBeverageBrands)
		insights.GET("/payment-comparison", h.GetPaymentComparison)
	}
}
