package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// Source file layout under the data directory. These names are part of the
// dataset contract and must match the files produced by the POS export.
const (
	storesFile   = "cstore_stores.parquet"
	catalogFile  = "cstore_master_ctin.parquet"
	paymentsFile = "cstore_payments.parquet"
	linesDir     = "transaction_items"
)

// dateRangeSampleSize bounds how many lines the DateRange probe reads.
const dateRangeSampleSize = 10000

// scanBatchSize is the row buffer size used when streaming chunk files.
const scanBatchSize = 1024

// ErrScanStopped is returned by a scan callback to end the scan early without
// surfacing an error to the caller.
var ErrScanStopped = errors.New("scan stopped")

// ParquetRepository reads the source tables from local parquet files.
type ParquetRepository struct {
	dataDir string
}

// NewParquetRepository verifies the expected file layout and returns a
// repository over it. A missing table or empty chunk directory is a startup
// error: serving partial data would silently corrupt every aggregate.
func NewParquetRepository(dataDir string) (*ParquetRepository, error) {
	for _, name := range []string{storesFile, catalogFile, paymentsFile} {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("required source table %s is not readable: %w", path, err)
		}
	}

	chunks, err := chunkFiles(dataDir)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no transaction chunk files found under %s", filepath.Join(dataDir, linesDir))
	}

	return &ParquetRepository{dataDir: dataDir}, nil
}

// Stores returns all store records.
func (r *ParquetRepository) Stores(ctx context.Context) ([]domain.StoreRecord, error) {
	return readTable[domain.StoreRecord](ctx, filepath.Join(r.dataDir, storesFile))
}

// Catalog returns the full product master catalog.
func (r *ParquetRepository) Catalog(ctx context.Context) ([]domain.ProductCatalogEntry, error) {
	return readTable[domain.ProductCatalogEntry](ctx, filepath.Join(r.dataDir, catalogFile))
}

// Payments returns all payment records.
func (r *ParquetRepository) Payments(ctx context.Context) ([]domain.PaymentRecord, error) {
	return readTable[domain.PaymentRecord](ctx, filepath.Join(r.dataDir, paymentsFile))
}

// ScanLines streams every transaction line to fn, one chunk file at a time,
// so peak memory stays bounded by the scan batch size.
func (r *ParquetRepository) ScanLines(ctx context.Context, fn func(domain.TransactionLine) error) error {
	chunks, err := chunkFiles(r.dataDir)
	if err != nil {
		return err
	}

	for _, path := range chunks {
		if err := scanChunk(ctx, path, fn); err != nil {
			if errors.Is(err, ErrScanStopped) {
				return nil
			}
			return err
		}
	}
	return nil
}

// DateRange samples the head of the transaction data for min/max dates.
func (r *ParquetRepository) DateRange(ctx context.Context) (domain.DateRange, error) {
	var dr domain.DateRange
	seen := 0

	err := r.ScanLines(ctx, func(line domain.TransactionLine) error {
		if seen == 0 {
			dr.Start, dr.End = line.Timestamp, line.Timestamp
		} else {
			if line.Timestamp.Before(dr.Start) {
				dr.Start = line.Timestamp
			}
			if line.Timestamp.After(dr.End) {
				dr.End = line.Timestamp
			}
		}
		seen++
		if seen >= dateRangeSampleSize {
			return ErrScanStopped
		}
		return nil
	})
	if err != nil {
		return domain.DateRange{}, err
	}
	if seen == 0 {
		return domain.DateRange{}, fmt.Errorf("transaction data is empty, cannot determine date range")
	}
	return dr, nil
}

// readTable fully materializes a small parquet table.
func readTable[T any](ctx context.Context, path string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// scanChunk streams a single chunk file through fn in fixed-size batches.
func scanChunk(ctx context.Context, path string, fn func(domain.TransactionLine) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open chunk %s: %w", path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[domain.TransactionLine](f)
	defer reader.Close()

	buf := make([]domain.TransactionLine, scanBatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			if err := fn(buf[i]); err != nil {
				return err
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("failed to read chunk %s: %w", path, readErr)
		}
	}
}

// chunkFiles lists the transaction chunk files in deterministic order.
func chunkFiles(dataDir string) ([]string, error) {
	pattern := filepath.Join(dataDir, linesDir, "*.parquet")
	chunks, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction chunks %s: %w", pattern, err)
	}
	sort.Strings(chunks)
	return chunks, nil
}
