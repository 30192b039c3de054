// Package config provides configuration management for hospdir.
package config

import (
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sofiamatics/hospdir/internal/constants"
)

// Proxy modes understood by the HTTP layer.
const (
	ProxyModeNone   = "no-proxy"
	ProxyModeSystem = "system"
	ProxyModeBasic  = "basic"
	ProxyModeNTLM   = "ntlm"
)

// Environment variables consulted by MergeWithFlags.
const (
	EnvAPIURL   = "HOSPDIR_API_URL"
	EnvAPIToken = "HOSPDIR_API_TOKEN"
)

// Config represents the hospdir configuration
type Config struct {
	// API settings
	APIBaseURL string
	APIToken   string // optional bearer token, never written to disk

	// Listing defaults
	DefaultCountryID string
	ItemsPerPage     int

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Transport behaviour
	MaxRetries            int     // retryablehttp RetryMax; 0 disables retries
	RequestTimeoutSeconds int     // 0 = no client timeout
	RateLimitPerSec       float64 // 0 = unlimited

	// DiscardStaleResponses drops hospital pages that arrive after a newer
	// fetch was started. Off by default: the last response to arrive wins.
	DiscardStaleResponses bool
}

// NewDefaultConfig returns a Config populated with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		APIBaseURL:       constants.DefaultAPIBaseURL,
		DefaultCountryID: constants.DefaultCountryID,
		ItemsPerPage:     constants.DefaultItemsPerPage,
		ProxyMode:        ProxyModeNone,
	}
}

// RequestTimeout returns the configured client timeout (0 = none).
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LoadConfigCSV loads configuration from a CSV file
// CSV format: key,value pairs
func LoadConfigCSV(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path == "" {
		return cfg, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // Return defaults if config doesn't exist
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read config CSV: %w", err)
	}

	for i, record := range records {
		if i == 0 {
			// Skip header row if it looks like a header
			if len(record) >= 2 && strings.ToLower(record[0]) == "key" {
				continue
			}
		}

		if len(record) < 2 {
			continue
		}

		key := strings.TrimSpace(strings.ToLower(record[0]))
		value := strings.TrimSpace(record[1])

		switch key {
		case "api_base_url":
			cfg.APIBaseURL = value
		case "api_token":
			// The token belongs in HOSPDIR_API_TOKEN or --api-token, not on disk
			if value != "" {
				log.Warn().Msg("api_token in config file is ignored for security - use HOSPDIR_API_TOKEN env var or --api-token flag")
			}
		case "default_country_id":
			cfg.DefaultCountryID = value
		case "items_per_page":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.ItemsPerPage = v
			}
		case "proxy_mode":
			cfg.ProxyMode = value
		case "proxy_host":
			cfg.ProxyHost = value
		case "proxy_port":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.ProxyPort = v
			}
		case "proxy_user":
			cfg.ProxyUser = value
		case "proxy_password":
			if value != "" {
				log.Warn().Msg("proxy_password in config file is ignored for security - enter it at the prompt")
			}
		case "no_proxy":
			cfg.NoProxy = value
		case "proxy_warmup":
			cfg.ProxyWarmup = parseBool(value)
		case "max_retries":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxRetries = v
			}
		case "request_timeout_seconds":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.RequestTimeoutSeconds = v
			}
		case "rate_limit_per_sec":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.RateLimitPerSec = v
			}
		case "discard_stale_responses":
			cfg.DiscardStaleResponses = parseBool(value)
		}
	}

	return cfg, nil
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

// SaveConfigCSV saves configuration to a CSV file
// CSV format: key,value pairs
func SaveConfigCSV(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"key", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// api_token and proxy_password are intentionally never saved
	records := [][]string{
		{"api_base_url", cfg.APIBaseURL},
		{"default_country_id", cfg.DefaultCountryID},
		{"items_per_page", strconv.Itoa(cfg.ItemsPerPage)},
		{"proxy_mode", cfg.ProxyMode},
		{"proxy_host", cfg.ProxyHost},
		{"proxy_port", strconv.Itoa(cfg.ProxyPort)},
		{"proxy_user", cfg.ProxyUser},
		{"no_proxy", cfg.NoProxy},
		{"proxy_warmup", strconv.FormatBool(cfg.ProxyWarmup)},
		{"max_retries", strconv.Itoa(cfg.MaxRetries)},
		{"request_timeout_seconds", strconv.Itoa(cfg.RequestTimeoutSeconds)},
		{"rate_limit_per_sec", strconv.FormatFloat(cfg.RateLimitPerSec, 'f', -1, 64)},
		{"discard_stale_responses", strconv.FormatBool(cfg.DiscardStaleResponses)},
	}

	for _, record := range records {
		// Only write non-empty values to keep file clean
		if record[1] != "" && record[1] != "0" && record[1] != "false" {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush config file: %w", err)
	}
	return nil
}

// MergeWithFlags merges config with command-line flags and environment variables
// Priority: flags > environment > config file > defaults
func (c *Config) MergeWithFlags(apiBaseURL, apiToken string) {
	if envURL := os.Getenv(EnvAPIURL); envURL != "" {
		c.APIBaseURL = envURL
	}
	if envToken := os.Getenv(EnvAPIToken); envToken != "" {
		c.APIToken = envToken
	}
	if envProxy := os.Getenv("HTTPS_PROXY"); envProxy != "" && c.ProxyHost == "" {
		c.parseProxyURL(envProxy)
	}

	if apiBaseURL != "" {
		c.APIBaseURL = apiBaseURL
	}
	if apiToken != "" {
		c.APIToken = apiToken
	}

	// Ensure a scheme; the directory API is served over HTTPS
	if c.APIBaseURL != "" && !strings.HasPrefix(c.APIBaseURL, "http") {
		c.APIBaseURL = "https://" + c.APIBaseURL
	}
	c.APIBaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
}

// parseProxyURL parses a proxy URL from environment variable
func (c *Config) parseProxyURL(proxyURL string) {
	proxyURL = strings.TrimPrefix(proxyURL, "http://")
	proxyURL = strings.TrimPrefix(proxyURL, "https://")
	proxyURL = strings.TrimSuffix(proxyURL, "/")

	parts := strings.Split(proxyURL, ":")
	if len(parts) >= 1 {
		c.ProxyHost = parts[0]
	}
	if len(parts) >= 2 {
		if port, err := strconv.Atoi(parts[1]); err == nil {
			c.ProxyPort = port
		}
	}
	if c.ProxyHost != "" && (c.ProxyMode == ProxyModeNone || c.ProxyMode == "") {
		c.ProxyMode = ProxyModeSystem
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API base URL %q is not a valid http(s) URL", c.APIBaseURL)
	}
	if c.DefaultCountryID == "" {
		return fmt.Errorf("default_country_id is required")
	}
	if !constants.IsValidItemsPerPage(c.ItemsPerPage) {
		return fmt.Errorf("items_per_page must be one of %v, got %d", constants.ItemsPerPageOptions, c.ItemsPerPage)
	}
	switch strings.ToLower(c.ProxyMode) {
	case "", ProxyModeNone, ProxyModeSystem, ProxyModeBasic, ProxyModeNTLM:
	default:
		return fmt.Errorf("unsupported proxy mode: %s", c.ProxyMode)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds must not be negative")
	}
	if c.RateLimitPerSec < 0 {
		return fmt.Errorf("rate_limit_per_sec must not be negative")
	}
	return nil
}
