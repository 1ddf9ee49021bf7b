package http

import (
	"github.com/restock-api/internal/infrastructure/dynamo"
	"github.com/restock-api/internal/infrastructure/shopify"
	"github.com/restock-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	RequestRepo *dynamo.NotificationRequestRepo
	StoreRepo   *dynamo.StoreRepo
	BillingRepo *dynamo.BillingRepo
	Resolver    *shopify.Resolver
	Mailer      smtp.Mailer
}
