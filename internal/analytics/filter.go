package analytics

import (
	"strings"
	"time"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// fuelNonScanCategory is the catalog flag marking fuel pumps. Exact match on
// this flag is the canonical fuel-exclusion mechanism; category-text matching
// is reserved for inclusion filters such as the beverage grouping.
const fuelNonScanCategory = "FUEL"

// Filter is a row predicate. The pipeline keeps rows for which every filter in
// the conjunction returns true.
type Filter func(*domain.EnrichedRow) bool

// DateBetween keeps rows with lo <= date <= hi, both bounds inclusive. A zero
// hi is treated as a zero-width range ending at lo, so a single date filters
// to exactly that day.
func DateBetween(lo, hi time.Time) Filter {
	if hi.IsZero() {
		hi = lo
	}
	return func(r *domain.EnrichedRow) bool {
		return !r.Date.Before(lo) && !r.Date.After(hi)
	}
}

// ExcludeStores drops rows whose store id is in ids. An empty set excludes
// nothing; this is exclude-semantics, matching the "pick stores to drop" UI.
func ExcludeStores(ids []string) Filter {
	if len(ids) == 0 {
		return nil
	}
	excluded := toSet(ids)
	return func(r *domain.EnrichedRow) bool {
		_, drop := excluded[r.StoreID]
		return !drop
	}
}

// ExcludeCategories drops rows whose category is in categories. Rows with a
// null category always pass exclusion filters.
func ExcludeCategories(categories []string) Filter {
	if len(categories) == 0 {
		return nil
	}
	excluded := toSet(categories)
	return func(r *domain.EnrichedRow) bool {
		if r.Category == nil {
			return true
		}
		_, drop := excluded[*r.Category]
		return !drop
	}
}

// CategoryContains keeps rows whose category contains any of the given
// substrings, case-insensitively. Rows with a null category never match an
// inclusion filter.
func CategoryContains(substrings ...string) Filter {
	upper := make([]string, len(substrings))
	for i, s := range substrings {
		upper[i] = strings.ToUpper(s)
	}
	return func(r *domain.EnrichedRow) bool {
		if r.Category == nil {
			return false
		}
		category := strings.ToUpper(*r.Category)
		for _, s := range upper {
			if strings.Contains(category, s) {
				return true
			}
		}
		return false
	}
}

// ExcludeFuel drops fuel-pump rows, identified by the catalog's non-scan
// category flag.
func ExcludeFuel() Filter {
	return func(r *domain.EnrichedRow) bool {
		return r.NonScanCategory == nil || *r.NonScanCategory != fuelNonScanCategory
	}
}

// PaymentGroups keeps rows whose normalized payment group is one of groups.
func PaymentGroups(groups ...PaymentGroup) Filter {
	keep := make(map[PaymentGroup]struct{}, len(groups))
	for _, g := range groups {
		keep[g] = struct{}{}
	}
	return func(r *domain.EnrichedRow) bool {
		_, ok := keep[NormalizePayment(r.PaymentType)]
		return ok
	}
}

// BrandPresent drops rows without a brand, for brand-keyed aggregations.
func BrandPresent() Filter {
	return func(r *domain.EnrichedRow) bool {
		return r.Brand != nil
	}
}

// DescriptionIn keeps rows whose product description is in descriptions, used
// to restrict trend series to an already-ranked product set.
func DescriptionIn(descriptions []string) Filter {
	include := toSet(descriptions)
	return func(r *domain.EnrichedRow) bool {
		if r.Description == nil {
			return false
		}
		_, ok := include[*r.Description]
		return ok
	}
}

// BrandIn keeps rows whose brand is in brands.
func BrandIn(brands []string) Filter {
	include := toSet(brands)
	return func(r *domain.EnrichedRow) bool {
		if r.Brand == nil {
			return false
		}
		_, ok := include[*r.Brand]
		return ok
	}
}

// keep reports whether row passes every filter. Nil filters (e.g. an empty
// exclusion set) are skipped.
func keep(row *domain.EnrichedRow, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f(row) {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
