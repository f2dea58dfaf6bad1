package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wjones/cstore-insights-service/internal/export"
	"github.com/wjones/cstore-insights-service/internal/service"
)

// ExportHandler serves CSV downloads of the aggregate reports.
type ExportHandler struct {
	insightsService service.InsightsService
}

// NewExportHandler creates a new export handler
func NewExportHandler(insightsService service.InsightsService) *ExportHandler {
	return &ExportHandler{insightsService: insightsService}
}

// GetExport handles GET /v1/export/:report
// @Summary Download a report as CSV
// @Description Exports top-products, beverage-brands or payment-comparison with currency columns at two decimals and counts thousands-grouped
// @Tags export
// @Produce text/csv
// @Param report path string true "Report name" Enums(top-products, beverage-brands, payment-comparison)
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Param excludeStores query string false "Comma-separated store ids to exclude"
// @Param excludeCategories query string false "Comma-separated categories to exclude"
// @Success 200 {string} string "CSV payload"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 404 {object} model.ErrorResponse "Unknown report"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/export/{report} [get]
func (h *ExportHandler) GetExport(c *gin.Context) {
	params, err := parseReportParams(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}

	table, err := h.buildTable(c, params)
	if err != nil {
		respondInternalServerError(c, "Failed to build export: "+err.Error())
		return
	}
	if table == nil {
		respondNotFound(c, ErrResourceNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		respondInternalServerError(c, "Failed to render CSV: "+err.Error())
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", table.Name, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// buildTable runs the requested report and flattens it. A nil table with nil
// error means the report name is unknown.
func (h *ExportHandler) buildTable(c *gin.Context, params service.ReportParams) (*export.Table, error) {
	ctx := c.Request.Context()

	switch c.Param("report") {
	case "top-products":
		report, err := h.insightsService.TopProducts(ctx, params)
		if err != nil {
			return nil, err
		}
		return export.TopProductsTable(report), nil

	case "beverage-brands":
		minSales, err := getQueryFloat(c, "minSales", 500)
		if err != nil {
			return nil, err
		}
		minTransactions, err := getQueryInt(c, "minTransactions", 50)
		if err != nil {
			return nil, err
		}
		report, err := h.insightsService.BeverageBrands(ctx, params, service.BrandThresholds{
			MinSales:        minSales,
			MinTransactions: minTransactions,
		})
		if err != nil {
			return nil, err
		}
		return export.BeverageBrandsTable(report), nil

	case "payment-comparison":
		report, err := h.insightsService.PaymentComparison(ctx, params)
		if err != nil {
			return nil, err
		}
		return export.PaymentComparisonTable(report), nil

	default:
		return nil, nil
	}
}

// RegisterExportRoutes registers the export API routes
func (h *ExportHandler) RegisterExportRoutes(router *gin.RouterGroup) {
	router.GET("/export/:report", h.GetExport)
}
