// Package region fetches Indonesian administrative regions (wilayah) from
// the public emsifa api-wilayah-indonesia dataset. Responses are static
// government data, so they are cached with a long TTL.
package region

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/infra/resilience"
	"github.com/albarakah/umrah-backoffice/internal/port"
)

var tracer = otel.Tracer("infra/region")

const (
	cacheName = "region"

	// emptyListTTL bounds how long an empty upstream answer is cached.
	emptyListTTL = time.Minute
)

// Client fetches region lists with retry, circuit breaker, a bulkhead
// on concurrent upstream calls, and caching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	cache      port.Cache[[]domain.Region]
	metrics    *observability.Metrics
}

var _ port.RegionFetcher = (*Client)(nil)

// NewClient creates a region client.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, cache port.Cache[[]domain.Region], metrics *observability.Metrics) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		cache:      cache,
		metrics:    metrics,
	}
}

// Provinces lists all provinces.
func (c *Client) Provinces(ctx context.Context) ([]domain.Region, error) {
	return c.fetch(ctx, "provinces", "/provinces.json")
}

// Regencies lists the regencies (kabupaten/kota) of a province.
func (c *Client) Regencies(ctx context.Context, provinceID string) ([]domain.Region, error) {
	return c.fetch(ctx, "regencies:"+provinceID, "/regencies/"+provinceID+".json")
}

// Districts lists the districts (kecamatan) of a regency.
func (c *Client) Districts(ctx context.Context, regencyID string) ([]domain.Region, error) {
	return c.fetch(ctx, "districts:"+regencyID, "/districts/"+regencyID+".json")
}

// Villages lists the villages (kelurahan/desa) of a district.
func (c *Client) Villages(ctx context.Context, districtID string) ([]domain.Region, error) {
	return c.fetch(ctx, "villages:"+districtID, "/villages/"+districtID+".json")
}

func (c *Client) fetch(ctx context.Context, cacheKey, path string) ([]domain.Region, error) {
	ctx, span := tracer.Start(ctx, "RegionClient.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("region.path", path))

	if cached, ok := c.cache.Get(cacheKey); ok {
		c.metrics.IncrCacheHit(cacheName)
		return cached, nil
	}
	c.metrics.IncrCacheMiss(cacheName)

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var regions []domain.Region

	// A 404 means the region ID does not exist upstream. That is a caller
	// mistake, not an outage: it is neither retried nor counted as a
	// breaker failure, so the stash carries it past both.
	var notFound error

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				notFound = &domain.ErrNotFound{Resource: "region", ID: path}
				return nil
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("region API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&regions)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return regions, nil
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		c.metrics.IncrExternalError(cacheName)
		return nil, &domain.ErrCircuitOpen{Service: cacheName}
	}
	if err != nil {
		c.metrics.IncrExternalError(cacheName)
		return nil, &domain.ErrExternalService{Service: cacheName, Err: err}
	}
	if notFound != nil {
		return nil, notFound
	}

	list := result.([]domain.Region)
	if len(list) == 0 {
		// An empty list for a valid ID usually means the dataset is lagging.
		// Keep it only briefly instead of pinning it for the full TTL.
		c.cache.SetWithTTL(cacheKey, list, emptyListTTL)
	} else {
		c.cache.Set(cacheKey, list)
	}
	return list, nil
}
