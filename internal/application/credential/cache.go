package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/restock-api/internal/domain"
)

// Store is the durable backend for store credentials.
type Store interface {
	Get(ctx context.Context, shop, app string) (*domain.StoreCredential, error)
}

const defaultStoreTimeout = 5 * time.Second

// Cache is a read-through map from (shop, app) to the store's access token.
// Revocation installs an explicit invalid marker rather than dropping the
// entry, so a revoked tenant fails closed instead of re-reading a stale
// durable record between webhook and write.
type Cache struct {
	store        Store
	storeTimeout time.Duration

	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	token   string
	revoked bool
}

func NewCache(store Store, storeTimeout time.Duration) *Cache {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Cache{
		store:        store,
		storeTimeout: storeTimeout,
		entries:      make(map[string]entry),
	}
}

// Token returns the access token for (shop, app). Unknown, uninstalled or
// revoked tenants return ErrStaleCredential; those outcomes are cached so
// repeated signups against a dead tenant don't hammer the durable store.
func (c *Cache) Token(ctx context.Context, shop, app string) (string, error) {
	k := key(shop, app)

	c.mu.Lock()
	if e, ok := c.entries[k]; ok {
		c.mu.Unlock()
		if e.revoked {
			return "", fmt.Errorf("store %s/%s: %w", shop, app, domain.ErrStaleCredential)
		}
		return e.token, nil
	}
	c.mu.Unlock()

	tctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()
	cred, err := c.store.Get(tctx, shop, app)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.set(k, entry{revoked: true})
			return "", fmt.Errorf("store %s/%s: %w", shop, app, domain.ErrStaleCredential)
		}
		return "", fmt.Errorf("credential lookup %s/%s: %w: %w", shop, app, domain.ErrStoreUnavailable, err)
	}
	if !cred.Valid() {
		c.set(k, entry{revoked: true})
		return "", fmt.Errorf("store %s/%s: %w", shop, app, domain.ErrStaleCredential)
	}

	c.set(k, entry{token: cred.AccessToken})
	return cred.AccessToken, nil
}

// Update installs a freshly issued token. Called after the durable write on
// the install webhook.
func (c *Cache) Update(shop, app, token string) {
	c.set(key(shop, app), entry{token: token})
}

// Revoke marks the tenant invalid. Called on the uninstall webhook.
func (c *Cache) Revoke(shop, app string) {
	c.set(key(shop, app), entry{revoked: true})
}

func (c *Cache) set(k string, e entry) {
	c.mu.Lock()
	c.entries[k] = e
	c.mu.Unlock()
}

func key(shop, app string) string {
	return app + "/" + shop
}
