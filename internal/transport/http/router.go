package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/restock-api/internal/application/billing"
	"github.com/restock-api/internal/application/credential"
	"github.com/restock-api/internal/application/notify"
	"github.com/restock-api/internal/config"
	"github.com/restock-api/internal/transport/http/handler"
	appmiddleware "github.com/restock-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second with a burst of 10; the signup endpoint is storefront-public.
	signupRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	credCache := credential.NewCache(deps.StoreRepo, cfg.StoreTimeout)
	requestCache := notify.NewCache(deps.RequestRepo, cfg.StoreTimeout, cfg.PartitionLimit)
	notifySvc := notify.NewService(requestCache, credCache, deps.Resolver, deps.Mailer)
	billingSvc := billing.NewService(deps.BillingRepo)

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(notifySvc)
	storeH := handler.NewStoreHandler(deps.StoreRepo, credCache)
	billingH := handler.NewBillingHandler(billingSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check", healthH.Ping)

		// Storefront widget
		r.With(signupRL.Limit).Post("/notify", notifH.Signup)

		// Platform webhooks. Signature verification happens upstream at the
		// platform proxy; these routes trust the forwarded payloads.
		r.Post("/stock-update", notifH.StockUpdate)
		r.Post("/stores/installed", storeH.Installed)
		r.Post("/stores/uninstalled", storeH.Uninstalled)
		r.Post("/billing", billingH.Record)
		r.Get("/billing/{shop}", billingH.ListByShop)
	})

	return r
}
