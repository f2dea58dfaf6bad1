package service

import (
	"context"
	"fmt"
	"log"

	"github.com/wjones/cstore-insights-service/internal/census"
	"github.com/wjones/cstore-insights-service/internal/dataset"
	"github.com/wjones/cstore-insights-service/internal/domain"
)

// ErrStoreNotFound is returned when a demographics lookup names an unknown store.
type ErrStoreNotFound struct {
	StoreID string
}

func (e *ErrStoreNotFound) Error() string {
	return fmt.Sprintf("store %s not found", e.StoreID)
}

// DemographicsService serves county demographics for store locations.
type DemographicsService interface {
	Report(ctx context.Context, storeID, compareStoreID string) (*domain.DemographicsReport, error)
}

// DemographicsServiceImpl resolves stores to counties and queries the census
// client, substituting the static fallback on any lookup failure.
type DemographicsServiceImpl struct {
	source *dataset.Source
	client *census.Client
}

// NewDemographicsService creates the demographics service.
func NewDemographicsService(source *dataset.Source, client *census.Client) DemographicsService {
	return &DemographicsServiceImpl{source: source, client: client}
}

// Report returns demographics for one store, or a two-store comparison when
// compareStoreID is non-empty.
func (s *DemographicsServiceImpl) Report(ctx context.Context, storeID, compareStoreID string) (*domain.DemographicsReport, error) {
	stores, err := s.source.StoreList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store list: %w", err)
	}

	primary, err := s.lookup(ctx, stores, storeID)
	if err != nil {
		return nil, err
	}

	report := &domain.DemographicsReport{Primary: primary}
	if compareStoreID != "" {
		compare, err := s.lookup(ctx, stores, compareStoreID)
		if err != nil {
			return nil, err
		}
		report.Compare = compare
	}
	return report, nil
}

// lookup fetches one store's county record. Census failures are non-fatal:
// the static fallback is served with a notice instead.
func (s *DemographicsServiceImpl) lookup(ctx context.Context, stores []domain.StoreInfo, storeID string) (*domain.StoreDemographics, error) {
	var store *domain.StoreInfo
	for i := range stores {
		if stores[i].StoreID == storeID {
			store = &stores[i]
			break
		}
	}
	if store == nil {
		return nil, &ErrStoreNotFound{StoreID: storeID}
	}

	stateFIPS, countyFIPS := census.CountyForCity(store.City)
	result := &domain.StoreDemographics{
		StoreID:    store.StoreID,
		StoreName:  store.StoreName,
		City:       store.City,
		StateFIPS:  stateFIPS,
		CountyFIPS: countyFIPS,
	}

	stats, err := s.client.Lookup(ctx, stateFIPS, countyFIPS)
	if err != nil {
		log.Printf("Census lookup failed for store %s (county %s-%s), serving fallback: %v",
			store.StoreID, stateFIPS, countyFIPS, err)
		result.Statistics = census.FallbackDemographics()
		result.Fallback = true
		result.Notice = "Census data unavailable, showing representative values"
		return result, nil
	}

	result.Statistics = stats
	return result, nil
}
