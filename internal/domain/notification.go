package domain

import "time"

// UnresolvedInventoryItem is the partition marker assigned when the variant
// resolver could not produce an inventory-item id at signup time. Requests
// persisted under it stay queryable but never match a real restock partition.
const UnresolvedInventoryItem = "unresolved"

// NotificationRequest is one subscriber's interest in a product variant at a
// specific store. Product fields are denormalized at signup so the restock
// email can be rendered without further lookups.
type NotificationRequest struct {
	RequestID       string    `json:"id" dynamodbav:"request_id"`
	Name            string    `json:"name,omitempty" dynamodbav:"name"`
	Email           string    `json:"email" dynamodbav:"email"`
	ProductID       string    `json:"product_id" dynamodbav:"product_id"`
	VariantID       string    `json:"variant_id" dynamodbav:"variant_id"`
	InventoryItemID string    `json:"inventory_item_id" dynamodbav:"inventory_item_id"`
	VariantTitle    string    `json:"variant_title,omitempty" dynamodbav:"variant_title"`
	ProductTitle    string    `json:"product_title,omitempty" dynamodbav:"product_title"`
	ProductImage    string    `json:"product_image,omitempty" dynamodbav:"product_image"`
	ProductHandle   string    `json:"product_handle,omitempty" dynamodbav:"product_handle"`
	StoreDomain     string    `json:"store_domain" dynamodbav:"store_domain"`
	App             string    `json:"app" dynamodbav:"app"`
	Notified        bool      `json:"notified" dynamodbav:"notified"`
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}
