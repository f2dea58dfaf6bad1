package census

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

const defaultCacheTTL = 1 * time.Hour

// censusNullSentinel marks suppressed values in ACS responses.
const censusNullSentinel = "-666666666"

// variables maps the ACS 5-year estimate codes to the statistic names served
// to clients. The whole set is requested in one GET.
var variables = map[string]string{
	"B01001_001E": "Total Population",
	"B01002_001E": "Median Age",
	"B19013_001E": "Median Household Income",
	"B25077_001E": "Median Home Value",
	"B23025_005E": "Unemployed",
	"B15003_022E": "Bachelor's Degree",
	"B15003_023E": "Master's Degree",
	"B02001_002E": "White Alone",
	"B02001_003E": "Black or African American",
	"B03003_003E": "Hispanic or Latino",
	"B11001_002E": "Family Households",
	"B25003_002E": "Owner Occupied Housing",
	"B25003_003E": "Renter Occupied Housing",
	"B08303_001E": "Average Commute Time",
}

// fallbackRecord is the fixed record substituted when the upstream API times
// out, returns a bad status, or sends a payload we cannot parse.
var fallbackRecord = domain.Demographics{
	"Total Population":          27000,
	"Median Age":                35.5,
	"Median Household Income":   58000,
	"Median Home Value":         245000,
	"Unemployed":                850,
	"Bachelor's Degree":         3500,
	"Master's Degree":           1200,
	"White Alone":               23500,
	"Black or African American": 150,
	"Hispanic or Latino":        2800,
	"Family Households":         6800,
	"Owner Occupied Housing":    5200,
	"Renter Occupied Housing":   3100,
	"Average Commute Time":      22.5,
}

// FallbackDemographics returns a copy of the static fallback record.
func FallbackDemographics() domain.Demographics {
	out := make(domain.Demographics, len(fallbackRecord))
	for k, v := range fallbackRecord {
		out[k] = v
	}
	return out
}

// Config holds the census client configuration.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client fetches county-level demographics from the ACS API with a per-county
// TTL cache. All failure modes are uniform: the caller receives an error and
// should substitute FallbackDemographics.
type Client struct {
	baseURL    string
	apiKey     string
	cacheTTL   time.Duration
	httpClient *http.Client
	cache      map[string]*cachedDemographics
	cacheMu    sync.RWMutex
}

type cachedDemographics struct {
	stats     domain.Demographics
	expiresAt time.Time
}

// NewClient creates a new census client.
func NewClient(cfg Config) *Client {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		cacheTTL: ttl,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: make(map[string]*cachedDemographics),
	}
}

// Lookup fetches the demographic record for a county. Results are cached per
// (state, county) pair for the cache TTL.
func (c *Client) Lookup(ctx context.Context, stateFIPS, countyFIPS string) (domain.Demographics, error) {
	cacheKey := stateFIPS + ":" + countyFIPS

	// Check cache
	c.cacheMu.RLock()
	if cached, ok := c.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		c.cacheMu.RUnlock()
		return cached.stats, nil
	}
	c.cacheMu.RUnlock()

	stats, err := c.fetch(ctx, stateFIPS, countyFIPS)
	if err != nil {
		return nil, err
	}

	// Cache the result
	c.cacheMu.Lock()
	c.cache[cacheKey] = &cachedDemographics{
		stats:     stats,
		expiresAt: time.Now().Add(c.cacheTTL),
	}
	c.cacheMu.Unlock()

	return stats, nil
}

func (c *Client) fetch(ctx context.Context, stateFIPS, countyFIPS string) (domain.Demographics, error) {
	codes := make([]string, 0, len(variables))
	for code := range variables {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	query := url.Values{}
	query.Set("get", "NAME,"+strings.Join(codes, ","))
	query.Set("for", "county:"+countyFIPS)
	query.Set("in", "state:"+stateFIPS)
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch census data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("census API returned status %d", resp.StatusCode)
	}

	// The payload is a two-row table: a header row of variable codes followed
	// by a single value row, everything string-typed.
	var payload [][]*string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode census response: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("malformed census response: expected header and value rows, got %d rows", len(payload))
	}

	headers, values := payload[0], payload[1]
	if len(values) != len(headers) {
		return nil, fmt.Errorf("malformed census response: %d headers but %d values", len(headers), len(values))
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if h != nil {
			index[*h] = i
		}
	}

	stats := make(domain.Demographics, len(variables))
	for code, name := range variables {
		i, ok := index[code]
		if !ok {
			return nil, fmt.Errorf("malformed census response: missing variable %s", code)
		}
		stats[name] = parseValue(values[i])
	}
	return stats, nil
}

// parseValue converts one cell, treating nulls and the ACS suppression
// sentinel as zero.
func parseValue(cell *string) float64 {
	if cell == nil || *cell == "" || *cell == "null" || *cell == censusNullSentinel {
		return 0
	}
	v, err := strconv.ParseFloat(*cell, 64)
	if err != nil {
		return 0
	}
	return v
}
