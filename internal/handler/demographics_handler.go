package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/wjones/cstore-insights-service/internal/service"
)

// DemographicsHandler serves county-level demographics for store locations.
type DemographicsHandler struct {
	demographicsService service.DemographicsService
}

// NewDemographicsHandler creates a new demographics handler
func NewDemographicsHandler(demographicsService service.DemographicsService) *DemographicsHandler {
	return &DemographicsHandler{demographicsService: demographicsService}
}

// GetDemographics handles GET /v1/demographics
// @Summary Store demographics
// @Description Returns county-level census statistics for a store, optionally compared against a second store. Falls back to representative values when the census API is unavailable.
// @Tags demographics
// @Produce json
// @Param store query string true "Primary store id"
// @Param compare query string false "Store id to compare against"
// @Success 200 {object} domain.DemographicsReport "Demographics report"
// @Failure 400 {object} model.ErrorResponse "Missing store parameter"
// @Failure 404 {object} model.ErrorResponse "Unknown store"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/demographics [get]
func (h *DemographicsHandler) GetDemographics(c *gin.Context) {
	storeID := c.Query("store")
	if storeID == "" {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("store", "store is required"))
		return
	}
	compareID := c.Query("compare")

	report, err := h.demographicsService.Report(c.Request.Context(), storeID, compareID)
	if err != nil {
		var notFound *service.ErrStoreNotFound
		if errors.As(err, &notFound) {
			respondNotFound(c, notFound.Error())
			return
		}
		respondInternalServerError(c, "Failed to build demographics report: "+err.Error())
		return
	}

	respondOK(c, report)
}

// RegisterDemographicsRoutes registers the demographics API routes
func (h *DemographicsHandler) RegisterDemographicsRoutes(router *gin.RouterGroup) {
	router.GET("/demographics", h.GetDemographics)
}
