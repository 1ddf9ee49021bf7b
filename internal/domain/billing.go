package domain

import "time"

// BillingCharge is one recurring-charge event reported by the platform's
// billing webhook. ChargeID is platform-assigned and unique.
type BillingCharge struct {
	ChargeID  string    `json:"charge_id" dynamodbav:"charge_id"`
	Shop      string    `json:"shop" dynamodbav:"shop"`
	Plan      string    `json:"plan" dynamodbav:"plan"`
	Price     string    `json:"price" dynamodbav:"price"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
