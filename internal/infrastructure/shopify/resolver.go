package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Variant holds the fields the notification flow needs from the Admin API's
// variant payload.
type Variant struct {
	InventoryItemID string
	Title           string
}

// Resolver resolves a variant id to its inventory-item id via the Shopify
// Admin REST API, authenticated with the store's access token.
type Resolver struct {
	apiVersion string
	httpClient *http.Client
}

func NewResolver(apiVersion string) *Resolver {
	return &Resolver{
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type variantResponse struct {
	Variant struct {
		InventoryItemID json.Number `json:"inventory_item_id"`
		Title           string      `json:"title"`
	} `json:"variant"`
}

// Resolve fetches the variant and returns its inventory-item id and title.
func (r *Resolver) Resolve(ctx context.Context, storeDomain, accessToken, variantID string) (*Variant, error) {
	url := fmt.Sprintf("https://%s/admin/api/%s/variants/%s.json", storeDomain, r.apiVersion, variantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch variant %s: %w", variantID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch variant %s: admin api returned %s", variantID, resp.Status)
	}

	var body variantResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode variant %s: %w", variantID, err)
	}
	if body.Variant.InventoryItemID.String() == "" {
		return nil, fmt.Errorf("variant %s has no inventory item", variantID)
	}
	return &Variant{
		InventoryItemID: body.Variant.InventoryItemID.String(),
		Title:           body.Variant.Title,
	}, nil
}
