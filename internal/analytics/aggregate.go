package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// RowSource streams enriched rows. The production implementation is the
// dataset enrichment source; tests use in-memory slices.
type RowSource interface {
	Scan(ctx context.Context, fn func(*domain.EnrichedRow) error) error
}

// GroupKey names a grouping dimension.
type GroupKey string

const (
	ByProduct      GroupKey = "product"
	ByCategory     GroupKey = "category"
	ByBrand        GroupKey = "brand"
	ByPaymentGroup GroupKey = "payment_group"
	ByWeek         GroupKey = "week"
	ByStore        GroupKey = "store"
)

// Measure names a per-bucket aggregate.
type Measure string

const (
	MeasureTotalSales          Measure = "total_sales"
	MeasureUnits               Measure = "units"
	MeasureTransactions        Measure = "transactions"
	MeasureAvgUnitPrice        Measure = "avg_unit_price"
	MeasureSalesPerTransaction Measure = "sales_per_transaction"
)

// Query parameterizes one aggregation run: a conjunction of row filters, an
// ordered list of 1-3 grouping dimensions, the measure to rank by, and an
// optional top-N limit applied only after full aggregation.
type Query struct {
	Filters []Filter
	GroupBy []GroupKey
	SortBy  Measure
	Limit   int
}

// Bucket is one group of the aggregation output. Key holds the group values in
// GroupBy order; a null dimension value renders as the empty string.
type Bucket struct {
	Key                 []string `json:"key"`
	TotalSales          float64  `json:"totalSales"`
	UnitsSold           float64  `json:"unitsSold"`
	RowCount            int      `json:"rowCount"`
	TransactionCount    int      `json:"transactionCount"`
	AvgUnitPrice        float64  `json:"avgUnitPrice"`
	SalesPerTransaction float64  `json:"salesPerTransaction"`
}

// MeasureValue returns the bucket's value for the given measure.
func (b *Bucket) MeasureValue(m Measure) float64 {
	switch m {
	case MeasureUnits:
		return b.UnitsSold
	case MeasureTransactions:
		return float64(b.TransactionCount)
	case MeasureAvgUnitPrice:
		return b.AvgUnitPrice
	case MeasureSalesPerTransaction:
		return b.SalesPerTransaction
	default:
		return b.TotalSales
	}
}

// accumulator collects running sums for one group key.
type accumulator struct {
	key          []string
	sumSales     float64
	sumUnits     float64
	sumUnitPrice float64
	rowCount     int
	transactions map[string]struct{}
}

// keySeparator joins key parts into map keys. ASCII unit separator, which
// cannot occur in the source's text columns.
const keySeparator = "\x1f"

// Aggregate streams src through q's filters and groups the surviving rows,
// returning buckets ordered by the sort measure descending with the key tuple
// ascending as tie-break. An empty result is an empty slice, never an error.
// Only per-bucket accumulators are held in memory, so peak usage is bounded by
// the number of distinct groups, not the dataset size.
func Aggregate(ctx context.Context, src RowSource, q Query) ([]Bucket, error) {
	if len(q.GroupBy) == 0 || len(q.GroupBy) > 3 {
		return nil, fmt.Errorf("group by requires 1-3 dimensions, got %d", len(q.GroupBy))
	}
	if q.SortBy == "" {
		q.SortBy = MeasureTotalSales
	}

	groups := make(map[string]*accumulator)
	keyParts := make([]string, len(q.GroupBy))

	err := src.Scan(ctx, func(row *domain.EnrichedRow) error {
		if !keep(row, q.Filters) {
			return nil
		}

		for i, dim := range q.GroupBy {
			keyParts[i] = keyValue(row, dim)
		}
		mapKey := strings.Join(keyParts, keySeparator)

		acc, ok := groups[mapKey]
		if !ok {
			acc = &accumulator{
				key:          append([]string(nil), keyParts...),
				transactions: make(map[string]struct{}),
			}
			groups[mapKey] = acc
		}

		acc.sumSales += row.TotalSales
		acc.sumUnits += row.Quantity
		acc.sumUnitPrice += row.UnitPrice
		acc.rowCount++
		acc.transactions[row.TransactionID] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := make([]Bucket, 0, len(groups))
	for _, acc := range groups {
		b := Bucket{
			Key:              acc.key,
			TotalSales:       acc.sumSales,
			UnitsSold:        acc.sumUnits,
			RowCount:         acc.rowCount,
			TransactionCount: len(acc.transactions),
		}
		if acc.rowCount > 0 {
			b.AvgUnitPrice = acc.sumUnitPrice / float64(acc.rowCount)
		}
		if b.TransactionCount > 0 {
			b.SalesPerTransaction = b.TotalSales / float64(b.TransactionCount)
		}
		buckets = append(buckets, b)
	}

	sortBuckets(buckets, q.SortBy)

	if q.Limit > 0 && len(buckets) > q.Limit {
		buckets = buckets[:q.Limit]
	}
	return buckets, nil
}

// sortBuckets orders by measure descending, then key tuple ascending so ties
// resolve deterministically.
func sortBuckets(buckets []Bucket, measure Measure) {
	sort.Slice(buckets, func(i, j int) bool {
		vi, vj := buckets[i].MeasureValue(measure), buckets[j].MeasureValue(measure)
		if vi != vj {
			return vi > vj
		}
		return lessKey(buckets[i].Key, buckets[j].Key)
	})
}

func lessKey(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// keyValue extracts a row's value for one grouping dimension.
func keyValue(row *domain.EnrichedRow, dim GroupKey) string {
	switch dim {
	case ByProduct:
		return deref(row.Description)
	case ByCategory:
		return deref(row.Category)
	case ByBrand:
		return deref(row.Brand)
	case ByPaymentGroup:
		return string(NormalizePayment(row.PaymentType))
	case ByWeek:
		return domain.WeekLabel(row.ISOYear, row.ISOWeek)
	case ByStore:
		return deref(row.StoreName)
	default:
		return ""
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
