package cache

import (
	"container/list"
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tair/client-favorites/internal/catalog/domain"
)

const (
	// DefaultTTL is the freshness window for a resolved product
	DefaultTTL = time.Hour
	// DefaultCapacity bounds the number of distinct cached identifiers
	DefaultCapacity = 200

	listingKey = "products:all"
)

// Config holds cache tuning knobs. Zero values fall back to defaults.
type Config struct {
	TTL        time.Duration
	ListingTTL time.Duration
	Capacity   int
}

type item struct {
	id        int64
	snapshot  *domain.Snapshot // nil records a NotFound result
	expiresAt time.Time
}

// ProductCache is a TTL + LRU cache over the catalog gateway with
// per-identifier single-flight coalescing. A NotFound resolution is cached
// with the same freshness window as a hit; gateway failures are never cached.
type ProductCache struct {
	gateway    domain.Gateway
	ttl        time.Duration
	listingTTL time.Duration
	capacity   int

	mu       sync.Mutex
	entries  map[int64]*list.Element
	order    *list.List // front = most recently used
	inflight map[int64]struct{}

	group singleflight.Group

	listingMu     sync.Mutex
	listing       []domain.Snapshot
	listingExpiry time.Time
}

// NewProductCache creates a cache backed by the given gateway
func NewProductCache(gw domain.Gateway, cfg Config) *ProductCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = cfg.TTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &ProductCache{
		gateway:    gw,
		ttl:        cfg.TTL,
		listingTTL: cfg.ListingTTL,
		capacity:   cfg.Capacity,
		entries:    make(map[int64]*list.Element),
		order:      list.New(),
		inflight:   make(map[int64]struct{}),
	}
}

// Resolve returns the snapshot for id, fetching through the gateway on a
// cache miss. Concurrent misses for the same id share one upstream fetch.
// Returns domain.ErrProductNotFound for identifiers the catalog does not know.
func (c *ProductCache) Resolve(ctx context.Context, id int64) (*domain.Snapshot, error) {
	if snapshot, ok, err := c.lookup(id); ok {
		return snapshot, err
	}

	// The fetch is detached from the caller's cancellation so a completed
	// result still populates the cache for other callers.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		c.markInflight(id)
		defer c.clearInflight(id)

		snapshot, err := c.gateway.FetchProduct(fetchCtx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrProductNotFound) {
				return nil, err
			}
			snapshot = nil
		}
		c.store(id, snapshot)
		return snapshot, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		snapshot, _ := res.Val.(*domain.Snapshot)
		if snapshot == nil {
			return nil, domain.ErrProductNotFound
		}
		return snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResolveAll returns the full catalog listing from a single-slot cache with
// its own freshness window and the same coalescing discipline.
func (c *ProductCache) ResolveAll(ctx context.Context) ([]domain.Snapshot, error) {
	c.listingMu.Lock()
	if time.Now().Before(c.listingExpiry) {
		listing := c.listing
		c.listingMu.Unlock()
		return listing, nil
	}
	c.listingMu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(listingKey, func() (interface{}, error) {
		snapshots, err := c.gateway.FetchAllProducts(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.listingMu.Lock()
		c.listing = snapshots
		c.listingExpiry = time.Now().Add(c.listingTTL)
		c.listingMu.Unlock()
		return snapshots, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *ProductCache) lookup(id int64) (*domain.Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	it := elem.Value.(*item)
	if time.Now().After(it.expiresAt) {
		// stale entry stays in place until the refresh overwrites it
		return nil, false, nil
	}

	c.order.MoveToFront(elem)
	if it.snapshot == nil {
		return nil, true, domain.ErrProductNotFound
	}
	return it.snapshot, true, nil
}

func (c *ProductCache) store(id int64, snapshot *domain.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, ok := c.entries[id]; ok {
		it := elem.Value.(*item)
		it.snapshot = snapshot
		it.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	for len(c.entries) >= c.capacity && c.evictLocked() {
	}

	elem := c.order.PushFront(&item{id: id, snapshot: snapshot, expiresAt: expiresAt})
	c.entries[id] = elem
}

// evictLocked removes the least-recently-used entry whose identifier has no
// resolution in flight. Returns false when nothing is evictable.
func (c *ProductCache) evictLocked() bool {
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		it := elem.Value.(*item)
		if _, busy := c.inflight[it.id]; busy {
			continue
		}
		c.order.Remove(elem)
		delete(c.entries, it.id)
		return true
	}
	return false
}

func (c *ProductCache) markInflight(id int64) {
	c.mu.Lock()
	c.inflight[id] = struct{}{}
	c.mu.Unlock()
}

func (c *ProductCache) clearInflight(id int64) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

// Len reports the number of cached identifiers
func (c *ProductCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
