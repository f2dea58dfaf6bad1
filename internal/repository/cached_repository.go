package repository

import (
	"context"
	"sync"
	"time"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// cached is a single memoized table with its expiry.
type cached[T any] struct {
	value     T
	expiresAt time.Time
}

func (c *cached[T]) get() (T, bool) {
	var zero T
	if c.expiresAt.IsZero() || time.Now().After(c.expiresAt) {
		return zero, false
	}
	return c.value, true
}

func (c *cached[T]) set(value T, ttl time.Duration) {
	c.value = value
	c.expiresAt = time.Now().Add(ttl)
}

// CachedRepository is a read-through cache over a DatasetRepository. The small
// tables and the date range are memoized for the configured TTL; the mutex is
// held across the load so each table is populated exactly once per window even
// under concurrent first access. Cached slices are shared read-only and must
// not be mutated by callers. Line scans always pass through: they stream.
type CachedRepository struct {
	inner DatasetRepository
	ttl   time.Duration

	mu        sync.Mutex
	stores    cached[[]domain.StoreRecord]
	catalog   cached[[]domain.ProductCatalogEntry]
	payments  cached[[]domain.PaymentRecord]
	dateRange cached[domain.DateRange]
}

// NewCachedRepository wraps inner with a TTL read-through cache.
func NewCachedRepository(inner DatasetRepository, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, ttl: ttl}
}

// Stores returns the cached store table, loading it if stale.
func (r *CachedRepository) Stores(ctx context.Context) ([]domain.StoreRecord, error) {
	return load(ctx, r, &r.stores, r.inner.Stores)
}

// Catalog returns the cached product catalog, loading it if stale.
func (r *CachedRepository) Catalog(ctx context.Context) ([]domain.ProductCatalogEntry, error) {
	return load(ctx, r, &r.catalog, r.inner.Catalog)
}

// Payments returns the cached payment table, loading it if stale.
func (r *CachedRepository) Payments(ctx context.Context) ([]domain.PaymentRecord, error) {
	return load(ctx, r, &r.payments, r.inner.Payments)
}

// DateRange returns the cached date range, loading it if stale.
func (r *CachedRepository) DateRange(ctx context.Context) (domain.DateRange, error) {
	return load(ctx, r, &r.dateRange, r.inner.DateRange)
}

// ScanLines streams directly from the underlying repository.
func (r *CachedRepository) ScanLines(ctx context.Context, fn func(domain.TransactionLine) error) error {
	return r.inner.ScanLines(ctx, fn)
}

// load serves entry from cache or refreshes it from loader under the lock.
// Load errors are not cached, so a transient failure retries on the next call.
func load[T any](ctx context.Context, r *CachedRepository, entry *cached[T], loader func(context.Context) (T, error)) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if value, ok := entry.get(); ok {
		return value, nil
	}

	value, err := loader(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	entry.set(value, r.ttl)
	return value, nil
}
