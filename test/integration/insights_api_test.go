package integration

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore represents a store in the API
type TestStore struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	City      string `json:"city"`
	State     string `json:"state"`
}

// TestDateRange represents the selectable date bounds
type TestDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TestInsightsAPI exercises the API endpoints against a running server. Set
// API_BASE_URL to point at a deployment with the dataset loaded.
func TestInsightsAPI(t *testing.T) {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration tests as API_BASE_URL is not configured")
	}

	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	// Variables to store data between tests
	var testStoreID string

	// 1. Test listing stores
	t.Run("GetStores", func(t *testing.T) {
		url := fmt.Sprintf("%s/stores", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var stores []TestStore
		err = json.NewDecoder(resp.Body).Decode(&stores)
		require.NoError(t, err, "Failed to decode response body")

		assert.NotEmpty(t, stores, "Store list should not be empty")
		assert.NotEmpty(t, stores[0].StoreID, "Store should have an ID")
		assert.NotEmpty(t, stores[0].StoreName, "Store should have a name")

		testStoreID = stores[0].StoreID
		t.Logf("Using store ID %s for subsequent tests", testStoreID)
	})

	// 2. Test the date range
	t.Run("GetDateRange", func(t *testing.T) {
		url := fmt.Sprintf("%s/insights/date-range", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var dateRange TestDateRange
		err = json.NewDecoder(resp.Body).Decode(&dateRange)
		require.NoError(t, err, "Failed to decode response body")

		assert.NotEmpty(t, dateRange.Start, "Date range should have a start")
		assert.NotEmpty(t, dateRange.End, "Date range should have an end")
	})

	// 3. Test the top products report
	t.Run("GetTopProducts", func(t *testing.T) {
		url := fmt.Sprintf("%s/insights/top-products?limit=5", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var report map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&report)
		require.NoError(t, err, "Failed to decode response body")

		assert.Contains(t, report, "products", "Report should contain products")
		assert.Contains(t, report, "weeklyTrends", "Report should contain weeklyTrends")

		products, ok := report["products"].([]interface{})
		require.True(t, ok, "products should be an array")
		assert.LessOrEqual(t, len(products), 5, "Ranking should honor the limit")
	})

	// 4. Test the beverage brands report
	t.Run("GetBeverageBrands", func(t *testing.T) {
		url := fmt.Sprintf("%s/insights/beverage-brands?minSales=500&minTransactions=50", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var report map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&report)
		require.NoError(t, err, "Failed to decode response body")

		assert.Contains(t, report, "brands", "Report should contain brands")
		assert.Contains(t, report, "underperforming", "Report should contain underperforming")
		assert.Contains(t, report, "totalBrandSales", "Report should contain totalBrandSales")
		assert.Contains(t, report, "lostSales", "Report should contain lostSales")
	})

	// 5. Test the payment comparison report
	t.Run("GetPaymentComparison", func(t *testing.T) {
		url := fmt.Sprintf("%s/insights/payment-comparison", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var report map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&report)
		require.NoError(t, err, "Failed to decode response body")

		assert.Contains(t, report, "groups", "Report should contain groups")
		assert.Contains(t, report, "topProducts", "Report should contain topProducts")
		assert.Contains(t, report, "categoryBreakdown", "Report should contain categoryBreakdown")

		// Only the cash and credit groups may appear.
		groups, ok := report["groups"].([]interface{})
		require.True(t, ok, "groups should be an array")
		for _, g := range groups {
			group, ok := g.(map[string]interface{})
			require.True(t, ok, "group should be an object")
			assert.Contains(t, []interface{}{"CASH", "CREDIT"}, group["paymentGroup"],
				"Only CASH and CREDIT groups should appear")
		}
	})

	// 6. Test excluding a store filters the report
	t.Run("GetTopProductsWithExclusions", func(t *testing.T) {
		if testStoreID == "" {
			t.Skip("No store ID available, skipping exclusion test")
		}

		url := fmt.Sprintf("%s/insights/top-products?excludeStores=%s", baseURL, testStoreID)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")
	})

	// 7. Test the demographics report
	t.Run("GetDemographics", func(t *testing.T) {
		if testStoreID == "" {
			t.Skip("No store ID available, skipping demographics test")
		}

		url := fmt.Sprintf("%s/demographics?store=%s", baseURL, testStoreID)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var report map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&report)
		require.NoError(t, err, "Failed to decode response body")

		primary, ok := report["primary"].(map[string]interface{})
		require.True(t, ok, "Report should contain a primary store record")
		assert.Equal(t, testStoreID, primary["storeId"], "Store ID should match")
		assert.Contains(t, primary, "statistics", "Primary record should contain statistics")
	})

	// 8. Test demographics for an unknown store returns 404
	t.Run("GetDemographicsUnknownStore", func(t *testing.T) {
		url := fmt.Sprintf("%s/demographics?store=does-not-exist", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Expected status code 404")
	})

	// 9. Test the CSV export
	t.Run("GetExport", func(t *testing.T) {
		url := fmt.Sprintf("%s/export/top-products?limit=5", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv", "Export should be CSV")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment", "Export should download")

		records, err := csv.NewReader(resp.Body).ReadAll()
		require.NoError(t, err, "Failed to parse CSV body")
		require.NotEmpty(t, records, "CSV should have a header row")
		assert.Equal(t, []string{"rank", "product", "category", "total_sales", "total_units"}, records[0])
	})

	// 10. Test an unknown export report returns 404
	t.Run("GetExportUnknownReport", func(t *testing.T) {
		url := fmt.Sprintf("%s/export/nonexistent", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Expected status code 404")
	})
}
