package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogFormat    string
	LogLevel     string

	// Dataset configuration
	DataDir  string
	CacheTTL time.Duration

	// Census API configuration
	CensusAPIKey  string
	CensusBaseURL string
	CensusTimeout time.Duration

	// Insights configuration
	DefaultTopN int
}

// LoadConfig loads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	// Get the executable directory
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not determine executable path: %v", err)
	}

	// Determine project root directory
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(execPath)))
	envPath := filepath.Join(projectRoot, ".env")

	// Load .env file if it exists
	if err := godotenv.Load(envPath); err != nil {
		// Try loading from current directory as fallback
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading .env file. Using environment variables.")
		} else {
			log.Println("Loaded environment variables from current directory .env file")
		}
	} else {
		log.Printf("Loaded environment variables from %s", envPath)
	}

	// Create and populate config
	config := &Config{
		// Server configuration
		Port:         getEnvInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 30)) * time.Second,
		LogFormat:    getEnvString("LOG_FORMAT", "json"),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),

		// Dataset configuration
		DataDir:  getEnvString("DATA_DIR", "data/data"),
		CacheTTL: time.Duration(getEnvInt("CACHE_TTL", 3600)) * time.Second,

		// Census API configuration
		CensusAPIKey:  os.Getenv("CENSUS_API_KEY"),
		CensusBaseURL: getEnvString("CENSUS_BASE_URL", "https://api.census.gov/data/2021/acs/acs5"),
		CensusTimeout: time.Duration(getEnvInt("CENSUS_TIMEOUT", 10)) * time.Second,

		// Insights configuration
		DefaultTopN: getEnvInt("DEFAULT_TOP_N", 5),
	}

	// Validate critical configuration
	validateConfig(config)

	return config, nil
}

// validateConfig checks if critical configuration values are set and logs warnings if they're missing
func validateConfig(config *Config) {
	// A missing data directory is fatal at startup, but the repository reports it
	// with more context, so only warn here.
	if _, err := os.Stat(config.DataDir); err != nil {
		log.Printf("Warning: Data directory %q is not readable: %v", config.DataDir, err)
	}

	// Check if Census API key is provided
	if config.CensusAPIKey == "" {
		log.Println("Warning: No Census API key provided. Demographic lookups will serve the static fallback.")
	}
}

// getEnvInt gets an integer from an environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvBool gets a boolean from an environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	valueStr = strings.ToLower(valueStr)
	return valueStr == "true" || valueStr == "1" || valueStr == "yes"
}

// getEnvString gets a string from an environment variable with a default value
func getEnvString(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
