package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wjones/cstore-insights-service/internal/analytics"
	"github.com/wjones/cstore-insights-service/internal/dataset"
	"github.com/wjones/cstore-insights-service/internal/domain"
)

// beverageCategoryTerms is the substring set defining "packaged beverage":
// inclusion filters use category-text containment, never the non-scan flag.
var beverageCategoryTerms = []string{"BEVERAGE", "DRINK", "SODA", "WATER"}

// trendSeriesLimit caps how many ranked series the weekly trend charts carry.
const trendSeriesLimit = 10

// topProductsPerGroup is the per-payment-group product ranking depth.
const topProductsPerGroup = 10

// ReportParams carries the filter selections shared by every insights page.
// All fields are optional; zero values filter nothing.
type ReportParams struct {
	StartDate         time.Time
	EndDate           time.Time
	ExcludeStores     []string
	ExcludeCategories []string
	Limit             int
}

// BrandThresholds are the underperformance cutoffs of the beverage page.
type BrandThresholds struct {
	MinSales        float64
	MinTransactions int
}

// InsightsService computes the dashboard reports.
type InsightsService interface {
	TopProducts(ctx context.Context, params ReportParams) (*domain.TopProductsReport, error)
	BeverageBrands(ctx context.Context, params ReportParams, thresholds BrandThresholds) (*domain.BeverageBrandsReport, error)
	PaymentComparison(ctx context.Context, params ReportParams) (*domain.PaymentComparisonReport, error)
	StoreList(ctx context.Context) ([]domain.StoreInfo, error)
	DateRange(ctx context.Context) (domain.DateRange, error)
}

// InsightsServiceImpl implements InsightsService over the enriched row stream.
type InsightsServiceImpl struct {
	source      *dataset.Source
	defaultTopN int
}

// NewInsightsService creates the insights service.
func NewInsightsService(source *dataset.Source, defaultTopN int) InsightsService {
	if defaultTopN <= 0 {
		defaultTopN = 5
	}
	return &InsightsServiceImpl{source: source, defaultTopN: defaultTopN}
}

// baseFilters builds the filter conjunction shared by all pages.
func (p ReportParams) baseFilters() []analytics.Filter {
	filters := []analytics.Filter{
		analytics.ExcludeStores(p.ExcludeStores),
		analytics.ExcludeCategories(p.ExcludeCategories),
	}
	if !p.StartDate.IsZero() || !p.EndDate.IsZero() {
		lo, hi := p.StartDate, p.EndDate
		if lo.IsZero() {
			lo = hi
		}
		filters = append(filters, analytics.DateBetween(lo, hi))
	}
	return filters
}

// TopProducts answers "excluding fuels, which products lead weekly sales".
// One scan groups by (week, product, category); product totals fold from the
// weekly buckets and the ranked products keep their weekly series for trends.
func (s *InsightsServiceImpl) TopProducts(ctx context.Context, params ReportParams) (*domain.TopProductsReport, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = s.defaultTopN
	}

	filters := append(params.baseFilters(), analytics.ExcludeFuel())

	weekly, err := analytics.Aggregate(ctx, s.source, analytics.Query{
		Filters: filters,
		GroupBy: []analytics.GroupKey{analytics.ByWeek, analytics.ByProduct, analytics.ByCategory},
		SortBy:  analytics.MeasureTotalSales,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate weekly sales: %w", err)
	}

	// Fold weekly buckets into product totals. Sums of per-week sums equal the
	// per-product sums over the same filtered rows.
	type productTotal struct {
		description string
		category    string
		sales       float64
		units       float64
	}
	totals := make(map[string]*productTotal)
	for i := range weekly {
		b := &weekly[i]
		description, category := b.Key[1], b.Key[2]
		t, ok := totals[description]
		if !ok {
			t = &productTotal{description: description, category: category}
			totals[description] = t
		}
		t.sales += b.TotalSales
		t.units += b.UnitsSold
	}

	ranking := make([]productTotal, 0, len(totals))
	for _, t := range totals {
		ranking = append(ranking, *t)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].sales != ranking[j].sales {
			return ranking[i].sales > ranking[j].sales
		}
		return ranking[i].description < ranking[j].description
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}

	report := &domain.TopProductsReport{
		Products:     make([]domain.ProductRank, 0, len(ranking)),
		WeeklyTrends: []domain.WeeklyPoint{},
	}
	topSet := make(map[string]struct{}, len(ranking))
	for i, t := range ranking {
		topSet[t.description] = struct{}{}
		report.Products = append(report.Products, domain.ProductRank{
			Rank:        i + 1,
			Description: t.description,
			Category:    t.category,
			TotalSales:  t.sales,
			TotalUnits:  t.units,
		})
	}

	for i := range weekly {
		b := &weekly[i]
		if _, ok := topSet[b.Key[1]]; !ok {
			continue
		}
		year, week, err := domain.ParseWeekLabel(b.Key[0])
		if err != nil {
			return nil, err
		}
		report.WeeklyTrends = append(report.WeeklyTrends, domain.WeeklyPoint{
			Year:   year,
			Week:   week,
			Label:  b.Key[0],
			Series: b.Key[1],
			Sales:  b.TotalSales,
			Units:  b.UnitsSold,
		})
	}
	sortWeeklyPoints(report.WeeklyTrends)

	report.Empty = len(report.Products) == 0
	return report, nil
}

// BeverageBrands ranks packaged-beverage brands and flags candidates to drop.
func (s *InsightsServiceImpl) BeverageBrands(ctx context.Context, params ReportParams, thresholds BrandThresholds) (*domain.BeverageBrandsReport, error) {
	filters := append(params.baseFilters(),
		analytics.CategoryContains(beverageCategoryTerms...),
		analytics.BrandPresent(),
	)

	buckets, err := analytics.Aggregate(ctx, s.source, analytics.Query{
		Filters: filters,
		GroupBy: []analytics.GroupKey{analytics.ByBrand},
		SortBy:  analytics.MeasureTotalSales,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate brand performance: %w", err)
	}

	report := &domain.BeverageBrandsReport{
		Brands:          make([]domain.BrandPerformance, 0, len(buckets)),
		Underperforming: []domain.BrandPerformance{},
		WeeklyTrends:    []domain.WeeklyPoint{},
	}
	for i := range buckets {
		b := &buckets[i]
		perf := domain.BrandPerformance{
			Brand:               b.Key[0],
			TotalSales:          b.TotalSales,
			TotalUnits:          b.UnitsSold,
			TransactionCount:    b.TransactionCount,
			AvgUnitPrice:        b.AvgUnitPrice,
			SalesPerTransaction: b.SalesPerTransaction,
		}
		report.Brands = append(report.Brands, perf)
		report.TotalBrandSales += perf.TotalSales

		if perf.TotalSales < thresholds.MinSales || perf.TransactionCount < thresholds.MinTransactions {
			report.Underperforming = append(report.Underperforming, perf)
			report.LostSales += perf.TotalSales
		}
	}
	if len(report.Brands) > 0 {
		report.AvgBrandSales = report.TotalBrandSales / float64(len(report.Brands))
	}

	// Weekly trends for the leading brands only.
	topBrands := make([]string, 0, trendSeriesLimit)
	for i := 0; i < len(report.Brands) && i < trendSeriesLimit; i++ {
		topBrands = append(topBrands, report.Brands[i].Brand)
	}
	if len(topBrands) > 0 {
		trendFilters := append(params.baseFilters(),
			analytics.CategoryContains(beverageCategoryTerms...),
			analytics.BrandIn(topBrands),
		)
		weekly, err := analytics.Aggregate(ctx, s.source, analytics.Query{
			Filters: trendFilters,
			GroupBy: []analytics.GroupKey{analytics.ByWeek, analytics.ByBrand},
			SortBy:  analytics.MeasureTotalSales,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate brand trends: %w", err)
		}
		report.WeeklyTrends, err = weeklyPoints(weekly)
		if err != nil {
			return nil, err
		}
	}

	report.Empty = len(report.Brands) == 0
	return report, nil
}

// PaymentComparison answers "how do cash and credit customers compare". Raw
// payment types normalize to CASH/CREDIT; anything else drops before
// aggregation and never appears as a group key.
func (s *InsightsServiceImpl) PaymentComparison(ctx context.Context, params ReportParams) (*domain.PaymentComparisonReport, error) {
	filters := append(params.baseFilters(),
		analytics.PaymentGroups(analytics.GroupCash, analytics.GroupCredit),
	)

	groups, err := analytics.Aggregate(ctx, s.source, analytics.Query{
		Filters: filters,
		GroupBy: []analytics.GroupKey{analytics.ByPaymentGroup},
		SortBy:  analytics.MeasureTotalSales,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment groups: %w", err)
	}

	report := &domain.PaymentComparisonReport{
		Groups:            make([]domain.PaymentGroupStats, 0, len(groups)),
		TopProducts:       []domain.ProductByPayment{},
		CategoryBreakdown: []domain.CategoryByPayment{},
		WeeklyTrends:      []domain.WeeklyPoint{},
	}
	for i := range groups {
		b := &groups[i]
		stats := domain.PaymentGroupStats{
			PaymentGroup:        b.Key[0],
			TransactionCount:    b.TransactionCount,
			TotalSales:          b.TotalSales,
			AvgTransactionValue: b.SalesPerTransaction,
			TotalItems:          b.UnitsSold,
		}
		if b.RowCount > 0 {
			stats.AvgItemsPerLine = b.UnitsSold / float64(b.RowCount)
		}
		report.Groups = append(report.Groups, stats)
	}
	// Stable CASH-before-CREDIT ordering for the comparison layout.
	sort.Slice(report.Groups, func(i, j int) bool {
		return report.Groups[i].PaymentGroup < report.Groups[j].PaymentGroup
	})

	byProduct, err := analytics.Aggregate(ctx, s.source, analytics.Query{
		Filters: filters,
		GroupBy: []analytics.GroupKey{analytics.ByPaymentGroup, analytics.ByProduct},
		SortBy:  analytics.MeasureTransactions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate products by payment group: %w", err)
	}
	perGroup := make(map[string]int)
	for i := range byProduct {
		b := &byProduct[i]
		group := b.Key[0]
		if perGroup[group] >= topProductsPerGroup {
			continue
		}
		perGroup[group]++
		report.TopProducts = append(report.TopProducts, domain.ProductByPayment{
			PaymentGroup:  group,
			Description:   b.Key[1],
			PurchaseCount: b.TransactionCount,
			TotalSales:    b.TotalSales,
		})
	}

	byCategory, err := analytics.Aggregate(ctx, s.source, analytics.Query{
		Filters: filters,
		GroupBy: []analytics.GroupKey{analytics.ByPaymentGroup, analytics.ByCategory},
		SortBy:  analytics.MeasureTotalSales,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories by payment group: %w", err)
	}
	for i := range byCategory {
		b := &byCategory[i]
		report.CategoryBreakdown = append(report.CategoryBreakdown, domain.CategoryByPayment{
			PaymentGroup:     b.Key[0],
			Category:         b.Key[1],
			TotalSales:       b.TotalSales,
			TransactionCount: b.TransactionCount,
		})
	}

	weekly, err := analytics.Aggregate(ctx, s.source, analytics.Query{
		Filters: filters,
		GroupBy: []analytics.GroupKey{analytics.ByWeek, analytics.ByPaymentGroup},
		SortBy:  analytics.MeasureTotalSales,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate weekly payment trends: %w", err)
	}
	report.WeeklyTrends, err = weeklyPoints(weekly)
	if err != nil {
		return nil, err
	}

	report.Empty = len(report.Groups) == 0
	return report, nil
}

// StoreList returns stores for filter widgets.
func (s *InsightsServiceImpl) StoreList(ctx context.Context) ([]domain.StoreInfo, error) {
	return s.source.StoreList(ctx)
}

// DateRange returns the selectable date bounds.
func (s *InsightsServiceImpl) DateRange(ctx context.Context) (domain.DateRange, error) {
	return s.source.DateRange(ctx)
}

// weeklyPoints converts (week, series) buckets into a chronologically sorted
// trend series.
func weeklyPoints(buckets []analytics.Bucket) ([]domain.WeeklyPoint, error) {
	points := make([]domain.WeeklyPoint, 0, len(buckets))
	for i := range buckets {
		b := &buckets[i]
		year, week, err := domain.ParseWeekLabel(b.Key[0])
		if err != nil {
			return nil, err
		}
		points = append(points, domain.WeeklyPoint{
			Year:   year,
			Week:   week,
			Label:  b.Key[0],
			Series: b.Key[1],
			Sales:  b.TotalSales,
			Units:  b.UnitsSold,
		})
	}
	sortWeeklyPoints(points)
	return points, nil
}

func sortWeeklyPoints(points []domain.WeeklyPoint) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].Label != points[j].Label {
			return points[i].Label < points[j].Label
		}
		return points[i].Series < points[j].Series
	})
}
