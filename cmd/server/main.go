package main

import (
	"fmt"
	"log"

	"github.com/wjones/cstore-insights-service/internal/census"
	"github.com/wjones/cstore-insights-service/internal/config"
	"github.com/wjones/cstore-insights-service/internal/dataset"
	"github.com/wjones/cstore-insights-service/internal/handler"
	"github.com/wjones/cstore-insights-service/internal/repository"
	"github.com/wjones/cstore-insights-service/internal/server"
	"github.com/wjones/cstore-insights-service/internal/service"
)

func main() {
	// Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open the source tables. Missing data is fatal: every aggregate the
	// service computes depends on all four tables being present.
	log.Printf("Opening dataset at %s...", cfg.DataDir)
	parquetRepo, err := repository.NewParquetRepository(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	repo := repository.NewCachedRepository(parquetRepo, cfg.CacheTTL)
	source := dataset.NewSource(repo)

	// Initialize the census client for demographic lookups
	censusClient := census.NewClient(census.Config{
		BaseURL:  cfg.CensusBaseURL,
		APIKey:   cfg.CensusAPIKey,
		Timeout:  cfg.CensusTimeout,
		CacheTTL: cfg.CacheTTL,
	})

	// Create services
	log.Println("Creating insights services...")
	insightsService := service.NewInsightsService(source, cfg.DefaultTopN)
	demographicsService := service.NewDemographicsService(source, censusClient)

	// Create and configure server
	log.Println("Configuring server...")
	appServer := server.NewServer(cfg, server.Handlers{
		Insights:     handler.NewInsightsHandler(insightsService),
		Demographics: handler.NewDemographicsHandler(demographicsService),
		Export:       handler.NewExportHandler(insightsService),
	})

	// Start server (blocking call)
	log.Printf("Starting server on port %d...", cfg.Port)
	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server shutdown complete")
}
