package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/restock-api/internal/domain"
	"github.com/restock-api/internal/infrastructure/shopify"
	"github.com/restock-api/internal/pkg/validate"
)

// SignupRequest is the payload of a back-in-stock signup. The orchestration
// layer owns field-presence validation; the cache assumes it already happened.
type SignupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email" validate:"required,email"`
	ProductID     string `json:"product_id" validate:"required"`
	VariantID     string `json:"variant_id" validate:"required"`
	ProductTitle  string `json:"product_title"`
	ProductImage  string `json:"product_image"`
	ProductHandle string `json:"product_handle"`
	StoreDomain   string `json:"store_domain" validate:"required"`
	App           string `json:"app" validate:"required"`
}

// CredentialSource yields a usable access token for a (shop, app), failing
// closed for revoked or unknown tenants.
type CredentialSource interface {
	Token(ctx context.Context, shop, app string) (string, error)
}

// VariantResolver resolves a variant id to its inventory item.
type VariantResolver interface {
	Resolve(ctx context.Context, storeDomain, accessToken, variantID string) (*shopify.Variant, error)
}

// Mailer dispatches one rendered email.
type Mailer interface {
	SendHTML(to, subject, htmlBody string) error
}

type Service interface {
	RegisterInterest(ctx context.Context, req SignupRequest) (*domain.NotificationRequest, error)
	HandleRestock(ctx context.Context, inventoryItemID string, available int) (int, error)
}

type service struct {
	cache       *Cache
	credentials CredentialSource
	resolver    VariantResolver
	mailer      Mailer
}

func NewService(cache *Cache, credentials CredentialSource, resolver VariantResolver, mailer Mailer) Service {
	return &service{
		cache:       cache,
		credentials: credentials,
		resolver:    resolver,
		mailer:      mailer,
	}
}

// RegisterInterest validates the signup, rejects duplicates, resolves the
// variant's inventory item, and writes the request through the cache. A failed
// resolution does not fail the signup: the request lands in the unresolved
// partition and stays queryable.
func (s *service) RegisterInterest(ctx context.Context, req SignupRequest) (*domain.NotificationRequest, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}

	token, err := s.credentials.Token(ctx, req.StoreDomain, req.App)
	if err != nil {
		return nil, err
	}

	// The inventory item is not known yet, so this is the global-scan mode.
	dup, err := s.cache.FindDuplicate(ctx, DuplicateQuery{
		Email:       req.Email,
		ProductID:   req.ProductID,
		VariantID:   req.VariantID,
		StoreDomain: req.StoreDomain,
	})
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("pending request exists for %s: %w", req.Email, domain.ErrDuplicate)
	}

	record := &domain.NotificationRequest{
		Name:          req.Name,
		Email:         req.Email,
		ProductID:     req.ProductID,
		VariantID:     req.VariantID,
		ProductTitle:  req.ProductTitle,
		ProductImage:  req.ProductImage,
		ProductHandle: req.ProductHandle,
		StoreDomain:   req.StoreDomain,
		App:           req.App,
		Notified:      false,
	}
	if variant, err := s.resolver.Resolve(ctx, req.StoreDomain, token, req.VariantID); err != nil {
		slog.Warn("variant resolution failed, filing under unresolved",
			"shop", req.StoreDomain, "variant_id", req.VariantID, "err", err)
	} else {
		record.InventoryItemID = variant.InventoryItemID
		record.VariantTitle = variant.Title
	}

	return s.cache.CreateAndCache(ctx, record)
}

// HandleRestock fans out to every pending subscriber of the inventory item.
// An entry is marked notified only after its email was dispatched, so a send
// failure leaves it pending for the next restock event. Returns the number of
// subscribers notified.
func (s *service) HandleRestock(ctx context.Context, inventoryItemID string, available int) (int, error) {
	if available < 1 {
		return 0, nil
	}

	pending, err := s.cache.PendingForItem(ctx, inventoryItemID)
	if err != nil {
		return 0, err
	}

	notified := 0
	var firstErr error
	for i := range pending {
		sub := &pending[i]
		if sub.Notified {
			continue
		}
		subject, body, err := renderRestockEmail(sub)
		if err != nil {
			slog.Warn("could not render restock email", "request_id", sub.RequestID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.mailer.SendHTML(sub.Email, subject, body); err != nil {
			slog.Warn("restock email dispatch failed, request stays pending",
				"request_id", sub.RequestID, "email", sub.Email, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.cache.MarkNotifiedAndEvict(ctx, sub.RequestID, inventoryItemID); err != nil {
			// The email went out but the flag did not stick; the subscriber may
			// get one more email on the next restock. Surface it to the caller.
			slog.Warn("mark-notified failed after dispatch", "request_id", sub.RequestID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		notified++
	}
	return notified, firstErr
}
