package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Amanc77/Datamart-app/internal/config"
	authsvc "github.com/Amanc77/Datamart-app/internal/services/auth"
	entsvc "github.com/Amanc77/Datamart-app/internal/services/entitlements"
	exportsvc "github.com/Amanc77/Datamart-app/internal/services/exports"
	paymentsvc "github.com/Amanc77/Datamart-app/internal/services/payments"
	"github.com/Amanc77/Datamart-app/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	PaymentService     *paymentsvc.Service
	EntitlementService *entsvc.Service
	ExportService      *exportsvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	paymentHandler := handlers.NewPaymentHandler(
		deps.PaymentService,
		deps.EntitlementService,
		deps.ExportService,
		deps.Logger,
	)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/api/payment", func(r chi.Router) {
		// Webhook is authenticated by its signature, not a bearer token.
		r.Post("/webhook", paymentHandler.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Post("/checkout/dataset", paymentHandler.Checkout)
			r.Post("/verify", paymentHandler.Verify)
			r.Get("/purchases", paymentHandler.Purchases)
			r.Get("/downloads/{purchaseId}", paymentHandler.Download)
		})
	})
}
