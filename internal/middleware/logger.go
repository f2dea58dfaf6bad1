package middleware

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// sensitiveHeaderParts flags headers that must never reach the logs.
var sensitiveHeaderParts = []string{
	"authorization",
	"api-key",
	"api_key",
	"token",
	"secret",
	"cookie",
	"session",
}

// LoggerConfig holds configuration for the logger middleware
type LoggerConfig struct {
	Format string // "json" or "pretty"
	Level  string // "debug", "info", "warn", "error"
}

// LogEntry represents a structured request log entry
type LogEntry struct {
	Timestamp   string              `json:"timestamp"`
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	StatusCode  int                 `json:"status_code"`
	Latency     string              `json:"latency"`
	ClientIP    string              `json:"client_ip"`
	RequestID   string              `json:"request_id,omitempty"`
	QueryParams map[string][]string `json:"query_params,omitempty"`
	Headers     map[string]string   `json:"headers,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// RequestLogger creates a middleware that logs every API request. The service
// is read-only, so request/response bodies are not captured; sensitive headers
// are redacted.
func RequestLogger(config LoggerConfig) gin.HandlerFunc {
	debug := config.Level == "debug"

	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		entry := LogEntry{
			Timestamp:   time.Now().Format(time.RFC3339),
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			StatusCode:  c.Writer.Status(),
			Latency:     time.Since(startTime).String(),
			ClientIP:    c.ClientIP(),
			RequestID:   c.GetString("request_id"),
			QueryParams: c.Request.URL.Query(),
		}
		if debug {
			entry.Headers = redactHeaders(c.Request.Header)
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.String()
		}

		if config.Format == "pretty" {
			printPrettyLog(entry)
		} else {
			printJSONLog(entry)
		}
	}
}

// redactHeaders redacts sensitive headers
func redactHeaders(headers map[string][]string) map[string]string {
	redacted := make(map[string]string, len(headers))
	for key, values := range headers {
		if isSensitiveHeader(key) {
			redacted[key] = "[REDACTED]"
		} else {
			redacted[key] = strings.Join(values, ", ")
		}
	}
	return redacted
}

// isSensitiveHeader checks if a header name is sensitive
func isSensitiveHeader(headerName string) bool {
	lower := strings.ToLower(headerName)
	for _, part := range sensitiveHeaderParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// printJSONLog outputs the log entry as JSON
func printJSONLog(entry LogEntry) {
	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		fmt.Printf(`{"error": "failed to marshal log entry: %v"}%s`, err, "\n")
		return
	}
	fmt.Println(string(jsonBytes))
}

// printPrettyLog outputs the log entry in a human-readable format
func printPrettyLog(entry LogEntry) {
	fmt.Printf("%s | %3d | %8s | %s %s", entry.Timestamp, entry.StatusCode, entry.Latency, entry.Method, entry.Path)
	if len(entry.QueryParams) > 0 {
		fmt.Printf(" %v", entry.QueryParams)
	}
	if entry.Error != "" {
		fmt.Printf(" | error: %s", entry.Error)
	}
	fmt.Println()
}
