package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wjones/cstore-insights-service/internal/service"
)

// getQueryInt retrieves an integer query parameter with a default value
func getQueryInt(c *gin.Context, paramName string, defaultValue int) (int, error) {
	valueStr := c.Query(paramName)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}

	return value, nil
}

// getQueryFloat retrieves a float query parameter with a default value
func getQueryFloat(c *gin.Context, paramName string, defaultValue float64) (float64, error) {
	valueStr := c.Query(paramName)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", paramName)
	}

	return value, nil
}

// getQueryList retrieves a comma-separated query parameter as a slice,
// dropping empty entries.
func getQueryList(c *gin.Context, paramName string) []string {
	valueStr := c.Query(paramName)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// parseDate parses a date string in YYYY-MM-DD format
func parseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, nil
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD")
	}

	return date, nil
}

// parseReportParams extracts the filter parameters shared by every insights
// endpoint. A single supplied date is normalized to a zero-width range by the
// filter layer, never rejected.
func parseReportParams(c *gin.Context) (service.ReportParams, error) {
	var params service.ReportParams

	startDate, err := parseDate(c.Query("startDate"))
	if err != nil {
		return params, fmt.Errorf("startDate: %w", err)
	}
	endDate, err := parseDate(c.Query("endDate"))
	if err != nil {
		return params, fmt.Errorf("endDate: %w", err)
	}

	limit, err := getQueryInt(c, "limit", 0)
	if err != nil {
		return params, err
	}

	params.StartDate = startDate
	params.EndDate = endDate
	params.ExcludeStores = getQueryList(c, "excludeStores")
	params.ExcludeCategories = getQueryList(c, "excludeCategories")
	params.Limit = limit
	return params, nil
}
