package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")

	// ErrDuplicate marks a signup for a (email, product, variant, shop) tuple
	// that already has a pending request.
	ErrDuplicate = errors.New("already requested")

	// ErrPersistence marks a failed durable write (create, mark-notified).
	// Never retried inside the caches; retries belong to the caller.
	ErrPersistence = errors.New("durable store write failed")

	// ErrStoreUnavailable marks a failed or timed-out durable read during a
	// cache-miss fallback. The caches never substitute an empty result for it.
	ErrStoreUnavailable = errors.New("durable store unavailable")

	// ErrStaleCredential marks a credential lookup for a revoked or never
	// installed (shop, app). Callers must fail closed, not retry.
	ErrStaleCredential = errors.New("access token not found")
)
