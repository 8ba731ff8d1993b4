package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxindia/quickcart-backend/api/controllers"
	webhookcontrollers "github.com/voxindia/quickcart-backend/api/controllers/webhooks"
	"github.com/voxindia/quickcart-backend/api/middleware"
	cartsvc "github.com/voxindia/quickcart-backend/internal/cart"
	checkoutsvc "github.com/voxindia/quickcart-backend/internal/checkout"
	cashfreewebhook "github.com/voxindia/quickcart-backend/internal/webhooks/cashfree"
	"github.com/voxindia/quickcart-backend/pkg/config"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/redis"
)

// Deps carries the wired services the router mounts.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           redis.Pinger
	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	WebhookService  *cashfreewebhook.Service
	WebhookGuard    *cashfreewebhook.IdempotencyGuard
}

// NewRouter assembles the HTTP surface: health, metrics, cart, checkout,
// and the payment-link webhook.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(cfg.Checkout.CORSOrigins))

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Redis, logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartService, logg))
			r.Put("/", controllers.CartReplace(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Patch("/items", controllers.CartUpdateItem(deps.CartService, logg))
			r.Delete("/items", controllers.CartRemoveItem(deps.CartService, logg))
		})

		r.Route("/api/v1/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(deps.CheckoutService, logg))
			r.Post("/razorpay/complete", controllers.CheckoutRazorpayComplete(deps.CheckoutService, logg))
			r.Get("/status", controllers.CheckoutStatus(deps.CheckoutService, logg))
			r.Get("/links/{orderRef}", controllers.CheckoutLinkStatus(deps.CheckoutService, logg))
			r.Post("/reset", controllers.CheckoutReset(deps.CheckoutService, logg))
		})
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/cashfree", webhookcontrollers.CashfreeWebhook(deps.WebhookService, deps.WebhookGuard, logg))
	})

	return r
}
