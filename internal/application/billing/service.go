package billing

import (
	"context"
	"fmt"

	"github.com/restock-api/internal/domain"
	"github.com/restock-api/internal/pkg/validate"
)

// ChargeRequest is the payload of a platform billing-charge webhook.
type ChargeRequest struct {
	Shop     string `json:"shop" validate:"required"`
	Plan     string `json:"plan" validate:"required"`
	Price    string `json:"price" validate:"required"`
	ChargeID string `json:"charge_id" validate:"required"`
	Status   string `json:"status" validate:"required"`
}

// Store is the durable backend for billing charges.
type Store interface {
	Put(ctx context.Context, c *domain.BillingCharge) error
	ListByShop(ctx context.Context, shop string) ([]domain.BillingCharge, error)
}

type Service interface {
	Record(ctx context.Context, req ChargeRequest) (*domain.BillingCharge, error)
	ListByShop(ctx context.Context, shop string) ([]domain.BillingCharge, error)
}

type service struct {
	repo Store
}

func NewService(repo Store) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, req ChargeRequest) (*domain.BillingCharge, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	charge := &domain.BillingCharge{
		ChargeID: req.ChargeID,
		Shop:     req.Shop,
		Plan:     req.Plan,
		Price:    req.Price,
		Status:   req.Status,
	}
	if err := s.repo.Put(ctx, charge); err != nil {
		return nil, fmt.Errorf("record charge %s: %w: %w", req.ChargeID, domain.ErrPersistence, err)
	}
	return charge, nil
}

func (s *service) ListByShop(ctx context.Context, shop string) ([]domain.BillingCharge, error) {
	charges, err := s.repo.ListByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("list charges for %s: %w: %w", shop, domain.ErrStoreUnavailable, err)
	}
	return charges, nil
}
