package dataset

import (
	"context"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/wjones/cstore-insights-service/internal/domain"
	"github.com/wjones/cstore-insights-service/internal/repository"
)

// Source produces the enriched transaction stream: every line left-joined with
// the product catalog (GTIN), payment table (TRANSACTION_SET_ID) and store
// table (STORE_ID), plus derived date, ISO week and line total. Joins are
// left joins throughout: a line with no match keeps nil in the joined columns
// and is never dropped, so the enriched row count always equals the line count.
type Source struct {
	repo repository.DatasetRepository
}

// NewSource builds an enrichment source over repo. Pass a cached repository so
// the dimension tables are loaded at most once per TTL window.
func NewSource(repo repository.DatasetRepository) *Source {
	return &Source{repo: repo}
}

// dimensions holds the in-memory lookup side of the three joins.
type dimensions struct {
	catalog  map[string]domain.ProductCatalogEntry
	payments map[string]string
	stores   map[string]domain.StoreRecord
}

// Scan streams enriched rows to fn in chunk-file order. fn must not retain the
// row pointer past the call.
func (s *Source) Scan(ctx context.Context, fn func(*domain.EnrichedRow) error) error {
	dims, err := s.loadDimensions(ctx)
	if err != nil {
		return err
	}

	var row domain.EnrichedRow
	return s.repo.ScanLines(ctx, func(line domain.TransactionLine) error {
		enrich(&row, line, dims)
		return fn(&row)
	})
}

// StoreList returns the stores sorted by name, with ids normalized to the
// canonical string form used by the transaction lines.
func (s *Source) StoreList(ctx context.Context) ([]domain.StoreInfo, error) {
	stores, err := s.repo.Stores(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]domain.StoreInfo, 0, len(stores))
	for _, st := range stores {
		list = append(list, domain.StoreInfo{
			StoreID:   normalizeStoreID(st.StoreID),
			StoreName: st.StoreName,
			City:      st.City,
			State:     st.State,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].StoreName != list[j].StoreName {
			return list[i].StoreName < list[j].StoreName
		}
		return list[i].StoreID < list[j].StoreID
	})
	return list, nil
}

// DateRange returns the sampled min/max transaction dates.
func (s *Source) DateRange(ctx context.Context) (domain.DateRange, error) {
	return s.repo.DateRange(ctx)
}

func (s *Source) loadDimensions(ctx context.Context) (*dimensions, error) {
	catalog, err := s.repo.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.Payments(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := s.repo.Stores(ctx)
	if err != nil {
		return nil, err
	}

	dims := &dimensions{
		catalog:  make(map[string]domain.ProductCatalogEntry, len(catalog)),
		payments: make(map[string]string, len(payments)),
		stores:   make(map[string]domain.StoreRecord, len(stores)),
	}

	// Catalog and payment keys are unique by contract. A duplicate would
	// double-count rows in an inner join; with map lookup the first entry wins,
	// so duplicates only distort attribution. Log them so bad exports surface.
	catalogDupes := 0
	for _, entry := range catalog {
		if _, ok := dims.catalog[entry.ProductCode]; ok {
			catalogDupes++
			continue
		}
		dims.catalog[entry.ProductCode] = entry
	}
	paymentDupes := 0
	for _, p := range payments {
		if _, ok := dims.payments[p.TransactionID]; ok {
			paymentDupes++
			continue
		}
		dims.payments[p.TransactionID] = p.PaymentType
	}
	for _, st := range stores {
		dims.stores[normalizeStoreID(st.StoreID)] = st
	}

	if catalogDupes > 0 {
		log.Printf("Warning: %d duplicate GTINs in product catalog, keeping first occurrence", catalogDupes)
	}
	if paymentDupes > 0 {
		log.Printf("Warning: %d duplicate transaction ids in payment table, keeping first occurrence", paymentDupes)
	}

	return dims, nil
}

// enrich fills row from line and the dimension lookups.
func enrich(row *domain.EnrichedRow, line domain.TransactionLine, dims *dimensions) {
	*row = domain.EnrichedRow{
		LineID:        line.LineID,
		TransactionID: line.TransactionID,
		ProductCode:   line.ProductCode,
		StoreID:       line.StoreID,
		UnitPrice:     line.UnitPrice,
		Quantity:      line.Quantity,
		Timestamp:     line.Timestamp,
		TotalSales:    line.UnitPrice * line.Quantity,
	}

	y, m, d := line.Timestamp.UTC().Date()
	row.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	// ISO-8601 week numbering for both components, so a week spanning the year
	// boundary lands in a single bucket.
	row.ISOYear, row.ISOWeek = row.Date.ISOWeek()

	if entry, ok := dims.catalog[line.ProductCode]; ok {
		desc := entry.Description
		row.Description = &desc
		row.Category = copyOptional(entry.Category)
		row.Brand = copyOptional(entry.Brand)
		row.NonScanCategory = copyOptional(entry.NonScanCategory)
	}

	if paymentType, ok := dims.payments[line.TransactionID]; ok {
		pt := paymentType
		row.PaymentType = &pt
	}

	if store, ok := dims.stores[line.StoreID]; ok {
		name, city, state := store.StoreName, store.City, store.State
		row.StoreName = &name
		row.City = &city
		row.State = &state
	}
}

// normalizeStoreID converts the store table's numeric id to the decimal string
// form the transaction lines use.
func normalizeStoreID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func copyOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
