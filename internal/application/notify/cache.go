package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/restock-api/internal/domain"
)

// PendingStore is the durable backend for notification requests. The cache is
// write-through against it and treats it as the source of truth for any
// partition not resident in memory.
type PendingStore interface {
	Put(ctx context.Context, req *domain.NotificationRequest) error
	ListPendingByItem(ctx context.Context, inventoryItemID string) ([]domain.NotificationRequest, error)
	FindPending(ctx context.Context, email, productID, variantID, storeDomain string) (*domain.NotificationRequest, error)
	MarkNotified(ctx context.Context, requestID string) error
}

// DuplicateQuery identifies a signup tuple for duplicate detection.
// InventoryItemID is optional: when set, the lookup is scoped to that
// partition; when empty (variant not yet resolved), all resident partitions
// are scanned with a durable fallback.
type DuplicateQuery struct {
	Email           string
	ProductID       string
	VariantID       string
	StoreDomain     string
	InventoryItemID string
}

const (
	defaultStoreTimeout   = 5 * time.Second
	defaultPartitionLimit = 1024
)

// Cache is the in-process index of pending notification requests keyed by
// inventory-item id. Every resident entry has notified=false; entries are
// evicted the moment they are marked notified. Partitions load lazily from the
// durable store and an empty result is cached too, so a partition with no
// subscribers costs one durable query, not one per restock event.
//
// State is per process. Horizontally scaled deployments hold independent
// caches and converge through the durable store only.
type Cache struct {
	store          PendingStore
	storeTimeout   time.Duration
	partitionLimit int

	mu         sync.Mutex
	partitions map[string]*partition
}

type partition struct {
	requests []domain.NotificationRequest
	touched  time.Time
}

func NewCache(store PendingStore, storeTimeout time.Duration, partitionLimit int) *Cache {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	if partitionLimit <= 0 {
		partitionLimit = defaultPartitionLimit
	}
	return &Cache{
		store:          store,
		storeTimeout:   storeTimeout,
		partitionLimit: partitionLimit,
		partitions:     make(map[string]*partition),
	}
}

// CreateAndCache persists the request and, only after the durable write
// succeeds, appends a snapshot to the request's partition. The returned record
// carries the store-assigned id. The durable failure is surfaced, never
// retried here.
func (c *Cache) CreateAndCache(ctx context.Context, req *domain.NotificationRequest) (*domain.NotificationRequest, error) {
	if strings.TrimSpace(req.InventoryItemID) == "" {
		req.InventoryItemID = domain.UnresolvedInventoryItem
	}

	tctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	if err := c.store.Put(tctx, req); err != nil {
		return nil, fmt.Errorf("persist notification request: %w: %w", domain.ErrPersistence, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.resident(req.InventoryItemID)
	if p == nil {
		p = c.insert(req.InventoryItemID)
	}
	// A lazy load racing the durable write may have made the partition resident
	// with this record already in it; appending again would duplicate it.
	want := canonicalID(req.RequestID)
	for i := range p.requests {
		if canonicalID(p.requests[i].RequestID) == want {
			return req, nil
		}
	}
	p.requests = append(p.requests, *req)
	return req, nil
}

// PendingForItem returns the pending requests for one inventory item. A
// resident partition, including a cached empty one, is served from memory;
// otherwise the partition is loaded from the durable store and cached. A
// failed load propagates; no empty or stale result is substituted.
func (c *Cache) PendingForItem(ctx context.Context, inventoryItemID string) ([]domain.NotificationRequest, error) {
	key := partitionKey(inventoryItemID)

	c.mu.Lock()
	if p := c.resident(key); p != nil {
		out := snapshot(p.requests)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	tctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	loaded, err := c.store.ListPendingByItem(tctx, key)
	if err != nil {
		return nil, fmt.Errorf("load partition %s: %w: %w", key, domain.ErrStoreUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A concurrent signup may have made the partition resident while the load
	// was in flight; its view includes that write, ours may not. Keep it.
	if p := c.resident(key); p != nil {
		return snapshot(p.requests), nil
	}
	p := c.insert(key)
	p.requests = snapshot(loaded)
	return snapshot(p.requests), nil
}

// MarkNotifiedAndEvict flips the durable notified flag (idempotent) and then
// removes every entry with the same canonical id from the resident partition.
// Callers must only invoke it after confirmed dispatch: a failed send leaves
// the entry pending for the next restock event.
func (c *Cache) MarkNotifiedAndEvict(ctx context.Context, requestID, inventoryItemID string) error {
	tctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	if err := c.store.MarkNotified(tctx, requestID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("mark notified %s: %w: %w", requestID, domain.ErrPersistence, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.resident(partitionKey(inventoryItemID))
	if p == nil {
		return nil
	}
	want := canonicalID(requestID)
	kept := p.requests[:0]
	for _, r := range p.requests {
		if canonicalID(r.RequestID) != want {
			kept = append(kept, r)
		}
	}
	p.requests = kept
	return nil
}

// FindDuplicate reports an existing pending request for the signup tuple, or
// nil when there is none. Partition-scoped when the inventory-item id is
// known, otherwise a scan of resident partitions with a durable fallback. The
// global scan is O(resident pending entries); fine at the expected hundreds of
// entries per deployment.
func (c *Cache) FindDuplicate(ctx context.Context, q DuplicateQuery) (*domain.NotificationRequest, error) {
	if strings.TrimSpace(q.InventoryItemID) != "" {
		requests, err := c.PendingForItem(ctx, q.InventoryItemID)
		if err != nil {
			return nil, err
		}
		return matchIn(requests, q), nil
	}

	c.mu.Lock()
	for _, p := range c.partitions {
		if m := matchIn(p.requests, q); m != nil {
			c.mu.Unlock()
			return m, nil
		}
	}
	c.mu.Unlock()

	tctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	found, err := c.store.FindPending(tctx, q.Email, q.ProductID, q.VariantID, q.StoreDomain)
	if err != nil {
		return nil, fmt.Errorf("duplicate lookup: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return found, nil
}

// resident returns the partition for key if cached, refreshing its LRU clock.
// Callers must hold c.mu.
func (c *Cache) resident(key string) *partition {
	p, ok := c.partitions[key]
	if !ok {
		return nil
	}
	p.touched = time.Now()
	return p
}

// insert adds an empty partition for key, evicting the least-recently-touched
// partition when the cap is reached. Eviction is safe: a cold partition
// reloads from the durable store on its next lookup. Callers must hold c.mu.
func (c *Cache) insert(key string) *partition {
	if len(c.partitions) >= c.partitionLimit {
		var oldestKey string
		var oldest time.Time
		for k, p := range c.partitions {
			if oldestKey == "" || p.touched.Before(oldest) {
				oldestKey, oldest = k, p.touched
			}
		}
		delete(c.partitions, oldestKey)
	}
	p := &partition{touched: time.Now()}
	c.partitions[key] = p
	return p
}

func matchIn(requests []domain.NotificationRequest, q DuplicateQuery) *domain.NotificationRequest {
	for i := range requests {
		r := &requests[i]
		if !r.Notified &&
			r.Email == q.Email &&
			r.ProductID == q.ProductID &&
			r.VariantID == q.VariantID &&
			r.StoreDomain == q.StoreDomain {
			m := *r
			return &m
		}
	}
	return nil
}

// partitionKey normalizes an inventory-item id into the cache key, mapping an
// absent id to the unresolved marker partition.
func partitionKey(inventoryItemID string) string {
	key := strings.TrimSpace(inventoryItemID)
	if key == "" {
		return domain.UnresolvedInventoryItem
	}
	return key
}

// canonicalID normalizes request ids from different layers (JSON payloads,
// store records) into one comparable form. ULIDs are case-insensitive.
func canonicalID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// snapshot copies a request slice so callers never alias cache-owned memory.
// A cached empty partition yields an empty, non-nil slice.
func snapshot(requests []domain.NotificationRequest) []domain.NotificationRequest {
	out := make([]domain.NotificationRequest, len(requests))
	copy(out, requests)
	return out
}
