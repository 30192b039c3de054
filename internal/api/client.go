package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sofiamatics/hospdir/internal/config"
	"github.com/sofiamatics/hospdir/internal/constants"
	"github.com/sofiamatics/hospdir/internal/http"
	"github.com/sofiamatics/hospdir/internal/logging"
	"github.com/sofiamatics/hospdir/internal/models"
	"github.com/sofiamatics/hospdir/internal/query"
	"github.com/sofiamatics/hospdir/internal/ratelimit"
)

// apiMetrics tracks API usage statistics
type apiMetrics struct {
	sync.Mutex
	totalCalls  int64
	callsByPath map[string]int64
}

// Client talks to the hospital directory REST API.
type Client struct {
	httpClient *nethttp.Client
	config     *config.Config
	baseURL    string
	token      string
	limiter    *ratelimit.RateLimiter // nil = unlimited
	logger     *logging.Logger
	metrics    *apiMetrics
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API base URL is empty - set api_base_url, %s or --api-url", config.EnvAPIURL)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	httpClient, err := http.NewRetryClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		token:      cfg.APIToken,
		limiter:    ratelimit.ForRate(cfg.RateLimitPerSec),
		logger:     logger.Component("api"),
		metrics: &apiMetrics{
			callsByPath: make(map[string]int64),
		},
	}, nil
}

// GetConfig returns the configuration used by this API client
func (c *Client) GetConfig() *config.Config {
	return c.config
}

// TotalCalls returns how many requests the client has issued.
func (c *Client) TotalCalls() int64 {
	c.metrics.Lock()
	defer c.metrics.Unlock()
	return c.metrics.totalCalls
}

// CallsByPath returns how many requests went to path.
func (c *Client) CallsByPath(path string) int64 {
	c.metrics.Lock()
	defer c.metrics.Unlock()
	return c.metrics.callsByPath[path]
}

// doRequest performs an HTTP request with the standard headers and client-side
// rate limiting. path is relative to the base URL; rawQuery includes the "?".
func (c *Client) doRequest(ctx context.Context, method, path, rawQuery string) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	c.metrics.Lock()
	c.metrics.totalCalls++
	c.metrics.callsByPath[path]++
	c.metrics.Unlock()

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path+rawQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Err(err).
			Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path+rawQuery).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Str("request_id", requestID).
		Msg("API call")

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		c.logger.Warn().Str("path", path).Msg("throttled by server")
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			c.limiter.SetCooldown(time.Duration(secs) * time.Second)
		}
	}

	return resp, nil
}

// envelope is the {data: T} wrapper every directory endpoint responds with.
// For /hospitals T is itself a page object carrying the totals.
type envelope[T any] struct {
	Data T `json:"data"`
}

// getEnvelope issues a GET and decodes the response envelope.
func getEnvelope[T any](ctx context.Context, c *Client, path, rawQuery string) (*envelope[T], error) {
	resp, err := c.doRequest(ctx, nethttp.MethodGet, path, rawQuery)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodyBytes))
		serr := newStatusError(resp, body)
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg(serr.Error())
		return nil, serr
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, path, err)
	}
	return &env, nil
}

// HospitalQuery carries the filter and pagination parameters of a listing request.
type HospitalQuery struct {
	CountryID  string
	Page       int
	PerPage    int
	State      string
	SearchTerm string
}

// Encode renders the query string in the order the directory API documents.
// Empty state and search term are omitted.
func (q HospitalQuery) Encode() string {
	return query.Build(
		query.P("countryId", q.CountryID),
		query.P("page", q.Page),
		query.P("perPage", q.PerPage),
		query.P("state", q.State),
		query.P("searchTerm", q.SearchTerm),
	)
}

// ListHospitals fetches one page of hospitals. The body is
// {"data":{"data":[...],"totalPages":n,"totalCount":n}}; missing fields
// normalize to an empty page, one page and zero hospitals.
func (c *Client) ListHospitals(ctx context.Context, q HospitalQuery) (*models.HospitalPage, error) {
	env, err := getEnvelope[models.HospitalPage](ctx, c, constants.HospitalsPath, q.Encode())
	if err != nil {
		return nil, err
	}

	page := env.Data
	page.Normalize()
	return &page, nil
}

// ListCountries fetches the country catalog.
func (c *Client) ListCountries(ctx context.Context) ([]models.Country, error) {
	env, err := getEnvelope[[]models.Country](ctx, c, constants.CountriesPath, "")
	if err != nil {
		return nil, err
	}
	if env.Data == nil {
		return []models.Country{}, nil
	}
	return env.Data, nil
}
