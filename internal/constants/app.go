// Package constants holds application-wide defaults and limits.
package constants

import (
	"time"
)

// Directory API defaults
const (
	// DefaultAPIBaseURL is the directory API root used when no config overrides it.
	DefaultAPIBaseURL = "https://backend-dev.sofiamatics.com/api/v1"

	// HospitalsPath and CountriesPath are resolved against the API base URL.
	HospitalsPath = "/hospitals"
	CountriesPath = "/countries"

	// DefaultCountryID is the baseline country filter applied at startup.
	DefaultCountryID = "166"
)

// Listing defaults
const (
	// DefaultItemsPerPage - page size used until the user picks another
	DefaultItemsPerPage = 10

	// DefaultTotalPages - page count assumed before the first fetch and when
	// the API omits it
	DefaultTotalPages = 1

	// FetchErrorFallback - message stored when a failed fetch carries no text
	FetchErrorFallback = "An error occurred"
)

// ItemsPerPageOptions lists the page sizes the listing accepts.
var ItemsPerPageOptions = []int{10, 20, 30, 40}

// IsValidItemsPerPage reports whether n is one of ItemsPerPageOptions.
func IsValidItemsPerPage(n int) bool {
	for _, opt := range ItemsPerPageOptions {
		if opt == n {
			return true
		}
	}
	return false
}

// Event bus configuration
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for event channels (5000)
	EventBusMaxBuffer = 5000
)

// Terminal presentation
const (
	// CompactWidthThreshold - terminals narrower than this get the compact pager
	CompactWidthThreshold = 80

	// SpinnerRefreshInterval - how often the loading spinner advances
	SpinnerRefreshInterval = 100 * time.Millisecond
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (15 seconds)
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// ProxyWarmupTimeout - upper bound for the optional proxy warmup request
	ProxyWarmupTimeout = 15 * time.Second
)

// Retry configuration (only used when max_retries > 0)
const (
	// RetryWaitMin - initial delay before the first retry
	RetryWaitMin = 500 * time.Millisecond

	// RetryWaitMax - cap on the delay between retries
	RetryWaitMax = 10 * time.Second
)

// Error body excerpt
const (
	// MaxErrorBodyBytes - how much of a failed response body is kept for diagnostics
	MaxErrorBodyBytes = 4096
)
