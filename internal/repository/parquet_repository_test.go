package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

func strptr(s string) *string { return &s }

func writeFixture[T any](t *testing.T, path string, rows []T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, parquet.WriteFile(path, rows))
}

// writeDataset lays out a full fixture data directory with two chunk files.
func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFixture(t, filepath.Join(dir, storesFile), []domain.StoreRecord{
		{StoreID: 101, StoreName: "Rigby Main St", City: "RIGBY", State: "ID"},
	})
	writeFixture(t, filepath.Join(dir, catalogFile), []domain.ProductCatalogEntry{
		{ProductCode: "G1", Description: "Cola 2L", Category: strptr("Packaged Beverages"), Brand: strptr("Cola Co")},
		{ProductCode: "G2", Description: "Unleaded", NonScanCategory: strptr("FUEL")},
	})
	writeFixture(t, filepath.Join(dir, paymentsFile), []domain.PaymentRecord{
		{TransactionID: "T1", PaymentType: "CASH"},
	})

	base := time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)
	writeFixture(t, filepath.Join(dir, linesDir, "chunk_000.parquet"), []domain.TransactionLine{
		{LineID: "L1", TransactionID: "T1", ProductCode: "G1", StoreID: "101", UnitPrice: 1.50, Quantity: 2, Timestamp: base},
		{LineID: "L2", TransactionID: "T1", ProductCode: "G2", StoreID: "101", UnitPrice: 3.00, Quantity: 10, Timestamp: base.Add(time.Hour)},
	})
	writeFixture(t, filepath.Join(dir, linesDir, "chunk_001.parquet"), []domain.TransactionLine{
		{LineID: "L3", TransactionID: "T2", ProductCode: "G1", StoreID: "101", UnitPrice: 1.50, Quantity: 1, Timestamp: base.Add(48 * time.Hour)},
	})

	return dir
}

func TestNewParquetRepositoryMissingTable(t *testing.T) {
	dir := writeDataset(t)
	require.NoError(t, os.Remove(filepath.Join(dir, paymentsFile)))

	_, err := NewParquetRepository(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), paymentsFile)
}

func TestNewParquetRepositoryEmptyChunkDir(t *testing.T) {
	dir := writeDataset(t)
	for _, name := range []string{"chunk_000.parquet", "chunk_001.parquet"} {
		require.NoError(t, os.Remove(filepath.Join(dir, linesDir, name)))
	}

	_, err := NewParquetRepository(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transaction chunk files")
}

func TestTablesRoundTrip(t *testing.T) {
	repo, err := NewParquetRepository(writeDataset(t))
	require.NoError(t, err)
	ctx := context.Background()

	stores, err := repo.Stores(ctx)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, int64(101), stores[0].StoreID)
	assert.Equal(t, "Rigby Main St", stores[0].StoreName)

	catalog, err := repo.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "Cola 2L", catalog[0].Description)
	require.NotNil(t, catalog[0].Brand)
	assert.Equal(t, "Cola Co", *catalog[0].Brand)
	assert.Nil(t, catalog[0].NonScanCategory, "optional columns survive as nil")
	require.NotNil(t, catalog[1].NonScanCategory)
	assert.Equal(t, "FUEL", *catalog[1].NonScanCategory)

	payments, err := repo.Payments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "CASH", payments[0].PaymentType)
}

func TestScanLinesStreamsChunksInOrder(t *testing.T) {
	repo, err := NewParquetRepository(writeDataset(t))
	require.NoError(t, err)

	var ids []string
	err = repo.ScanLines(context.Background(), func(line domain.TransactionLine) error {
		ids = append(ids, line.LineID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "L3"}, ids)
}

func TestScanLinesEarlyStop(t *testing.T) {
	repo, err := NewParquetRepository(writeDataset(t))
	require.NoError(t, err)

	seen := 0
	err = repo.ScanLines(context.Background(), func(line domain.TransactionLine) error {
		seen++
		return ErrScanStopped
	})
	require.NoError(t, err, "the stop sentinel is not an error")
	assert.Equal(t, 1, seen)
}

func TestScanLinesHonorsContext(t *testing.T) {
	repo, err := NewParquetRepository(writeDataset(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = repo.ScanLines(ctx, func(line domain.TransactionLine) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDateRange(t *testing.T) {
	repo, err := NewParquetRepository(writeDataset(t))
	require.NoError(t, err)

	dr, err := repo.DateRange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC), dr.Start.UTC())
	assert.Equal(t, time.Date(2023, 6, 3, 9, 0, 0, 0, time.UTC), dr.End.UTC())
}
