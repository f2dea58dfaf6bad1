package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// countingRepo records how often each table is loaded.
type countingRepo struct {
	storeLoads   int
	catalogLoads int
	rangeLoads   int
	failStores   bool
}

func (c *countingRepo) Stores(ctx context.Context) ([]domain.StoreRecord, error) {
	c.storeLoads++
	if c.failStores {
		return nil, errors.New("table unavailable")
	}
	return []domain.StoreRecord{{StoreID: 101, StoreName: "Rigby Main St"}}, nil
}

func (c *countingRepo) Catalog(ctx context.Context) ([]domain.ProductCatalogEntry, error) {
	c.catalogLoads++
	return []domain.ProductCatalogEntry{{ProductCode: "G1", Description: "Cola 2L"}}, nil
}

func (c *countingRepo) Payments(ctx context.Context) ([]domain.PaymentRecord, error) {
	return nil, nil
}

func (c *countingRepo) ScanLines(ctx context.Context, fn func(domain.TransactionLine) error) error {
	return fn(domain.TransactionLine{LineID: "L1"})
}

func (c *countingRepo) DateRange(ctx context.Context) (domain.DateRange, error) {
	c.rangeLoads++
	return domain.DateRange{Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func TestCachedRepositoryLoadsOncePerTTL(t *testing.T) {
	inner := &countingRepo{}
	repo := NewCachedRepository(inner, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stores, err := repo.Stores(ctx)
		require.NoError(t, err)
		require.Len(t, stores, 1)

		_, err = repo.Catalog(ctx)
		require.NoError(t, err)

		_, err = repo.DateRange(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, inner.storeLoads)
	assert.Equal(t, 1, inner.catalogLoads)
	assert.Equal(t, 1, inner.rangeLoads)
}

func TestCachedRepositoryExpires(t *testing.T) {
	inner := &countingRepo{}
	repo := NewCachedRepository(inner, time.Millisecond)
	ctx := context.Background()

	_, err := repo.Stores(ctx)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = repo.Stores(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.storeLoads)
}

func TestCachedRepositoryDoesNotCacheErrors(t *testing.T) {
	inner := &countingRepo{failStores: true}
	repo := NewCachedRepository(inner, time.Hour)
	ctx := context.Background()

	_, err := repo.Stores(ctx)
	require.Error(t, err)

	inner.failStores = false
	stores, err := repo.Stores(ctx)
	require.NoError(t, err, "a transient failure must retry on the next call")
	assert.Len(t, stores, 1)
	assert.Equal(t, 2, inner.storeLoads)
}

func TestCachedRepositoryScansPassThrough(t *testing.T) {
	repo := NewCachedRepository(&countingRepo{}, time.Hour)

	var ids []string
	err := repo.ScanLines(context.Background(), func(line domain.TransactionLine) error {
		ids = append(ids, line.LineID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1"}, ids)
}
