package repository

import (
	"context"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// DatasetRepository provides read-only access to the four source tables. The
// store, catalog and payment tables are small enough to materialize fully; the
// transaction lines are chunked across many files and must be streamed.
type DatasetRepository interface {
	// Stores returns all store records.
	Stores(ctx context.Context) ([]domain.StoreRecord, error)

	// Catalog returns the full product master catalog.
	Catalog(ctx context.Context) ([]domain.ProductCatalogEntry, error)

	// Payments returns all payment records.
	Payments(ctx context.Context) ([]domain.PaymentRecord, error)

	// ScanLines streams every transaction line to fn in chunk-file order.
	// A non-nil error from fn stops the scan and is returned as-is.
	ScanLines(ctx context.Context, fn func(domain.TransactionLine) error) error

	// DateRange returns the observed min/max transaction date, sampled from
	// the first chunk for cheap filter-widget bounds.
	DateRange(ctx context.Context) (domain.DateRange, error)
}
