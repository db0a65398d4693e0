package searchd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openlistings/searchd/internal/db"
	dbRedis "github.com/openlistings/searchd/internal/db/redis"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/query"
	"github.com/openlistings/searchd/internal/domain/search/result"
	"github.com/openlistings/searchd/internal/parser"
	categoryrepo "github.com/openlistings/searchd/internal/repository/category"
	listingrepo "github.com/openlistings/searchd/internal/repository/listing"
	cataloguc "github.com/openlistings/searchd/internal/usecase/catalog"
	healthuc "github.com/openlistings/searchd/internal/usecase/health"
	searchuc "github.com/openlistings/searchd/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultPageSize         = 10
)

// Internal interfaces so tests can substitute the services.
type catalogUseCase interface {
	CreateCategory(ctx context.Context, in cataloguc.CategoryInput) (domcat.Category, error)
	GetCategory(ctx context.Context, slug string) (domcat.Category, error)
	ListCategories(ctx context.Context) ([]domcat.Category, error)
	DeleteCategory(ctx context.Context, slug string) error
	PutListing(ctx context.Context, in cataloguc.ListingInput) (domlisting.Listing, error)
	BatchPutListings(ctx context.Context, ins []cataloguc.ListingInput) ([]domlisting.Listing, error)
	GetListing(ctx context.Context, id string) (domlisting.Listing, error)
	DeleteListing(ctx context.Context, id string) error
}

type searchUseCase interface {
	Search(ctx context.Context, req query.Request) (result.Page, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the searchd SDK entry point.
//
// Query understanding inside the SDK is always the local heuristic; the
// model-backed parser stays an API-server concern.
type Client struct {
	store      db.Store
	catalogSvc catalogUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a searchd Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: "listings:",
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("searchd: database address required (use WithRedis or WithAddrs)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("searchd: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchd: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(ctx, store, cfg, obs)
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	catRepo := categoryrepo.New(store, cfg.keyPrefix)
	listRepo := listingrepo.New(store, cfg.keyPrefix)

	if err := listRepo.EnsureCatalogIndex(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchd: ensure catalog index: %w", err)
	}

	catalogSvc := cataloguc.New(catRepo, listRepo, cataloguc.Config{
		MaxBatchSize: cfg.maxBatchSize,
	})
	searchSvc := searchuc.New(listRepo, catRepo, parser.NewHeuristic(), searchuc.Config{
		FacetValueLimit: cfg.facetValueLimit,
	})
	healthSvc := healthuc.New(store, nil)

	return &Client{
		store:      store,
		catalogSvc: catalogSvc,
		searchSvc:  searchSvc,
		healthSvc:  healthSvc,
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Categories returns the category management service.
func (c *Client) Categories() *CategoryService {
	return &CategoryService{svc: c.catalogSvc, obs: c.obs}
}

// Listings returns the listing ingestion service.
func (c *Client) Listings() *ListingService {
	return &ListingService{svc: c.catalogSvc, obs: c.obs}
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component -> "ok"/"error"
}
