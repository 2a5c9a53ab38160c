package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cryptonite-hq/cryptonite-backend/api/controllers"
	webhookcontrollers "github.com/cryptonite-hq/cryptonite-backend/api/controllers/webhooks"
	"github.com/cryptonite-hq/cryptonite-backend/api/middleware"
	"github.com/cryptonite-hq/cryptonite-backend/internal/cart"
	"github.com/cryptonite-hq/cryptonite-backend/internal/catalog"
	"github.com/cryptonite-hq/cryptonite-backend/internal/hosting"
	"github.com/cryptonite-hq/cryptonite-backend/internal/invoices"
	"github.com/cryptonite-hq/cryptonite-backend/internal/orders"
	"github.com/cryptonite-hq/cryptonite-backend/internal/payments"
	"github.com/cryptonite-hq/cryptonite-backend/internal/rentals"
	stripewebhook "github.com/cryptonite-hq/cryptonite-backend/internal/webhooks/stripe"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/config"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/redis"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/stripe"
)

// RouterParams bundles everything NewRouter wires into the route tree.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   redis.Pinger
	Metrics prometheus.Gatherer

	Catalog  catalog.Service
	Cart     cart.Service
	Payments payments.Service
	Hosting  hosting.Service
	Orders   orders.Service
	Rentals  rentals.Service
	Invoices invoices.Service

	StripeClient       *stripe.Client
	StripeWebhook      *stripewebhook.Service
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.HealthLive())
	r.Get("/readyz", controllers.HealthReady(logg, p.DB, p.Redis))
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public storefront and webhook surface.
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(p.Catalog, logg))
		})
		r.Route("/bundles", func(r chi.Router) {
			r.Get("/", controllers.ListBundles(p.Catalog, logg))
			r.Get("/{bundleID}", controllers.GetBundle(p.Catalog, logg))
		})
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.StripeClient, p.StripeWebhookGuard, logg))

		// Authenticated storefront surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.ViewCart(p.Cart, logg))
				r.Post("/", controllers.AddCartLine(p.Cart, logg))
				r.Delete("/", controllers.ClearCart(p.Cart, logg))
				r.Patch("/{lineID}", controllers.UpdateCartLine(p.Cart, logg))
				r.Delete("/{lineID}", controllers.RemoveCartLine(p.Cart, logg))
			})

			r.Get("/checkout/summary", controllers.CheckoutSummary(p.Payments, logg))
			r.Post("/payments/create-intent", controllers.CreatePaymentIntent(p.Payments, logg))

			r.Route("/hosting-requests", func(r chi.Router) {
				r.Post("/", controllers.CreateHostingRequest(p.Hosting, logg))
				r.Get("/", controllers.ListMyHostingRequests(p.Hosting, logg))
				r.Get("/{requestID}", controllers.GetHostingRequest(p.Hosting, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(p.Orders, logg))
				r.Get("/{orderID}", controllers.GetMyOrder(p.Orders, logg))
			})

			r.Get("/rentals", controllers.ListMyRentals(p.Rentals, logg))

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", controllers.ListMyInvoices(p.Invoices, logg))
				r.Get("/{invoiceID}", controllers.GetMyInvoice(p.Invoices, logg))
				r.Get("/{invoiceID}/document", controllers.DownloadInvoiceDocument(p.Invoices, logg))
			})
		})

		// Back-office surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole("admin", logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateProduct(p.Catalog, logg))
				r.Put("/{productID}", controllers.AdminUpdateProduct(p.Catalog, logg))
				r.Delete("/{productID}", controllers.AdminDeleteProduct(p.Catalog, logg))
			})
			r.Route("/bundles", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateBundle(p.Catalog, logg))
				r.Put("/{bundleID}", controllers.AdminUpdateBundle(p.Catalog, logg))
				r.Delete("/{bundleID}", controllers.AdminDeleteBundle(p.Catalog, logg))
			})
			r.Route("/hosting-requests", func(r chi.Router) {
				r.Get("/", controllers.AdminListHostingRequests(p.Hosting, logg))
				r.Post("/{requestID}/reject", controllers.AdminRejectHostingRequest(p.Hosting, logg))
				r.Post("/{requestID}/activate-monitoring", controllers.AdminActivateMonitoring(p.Hosting, logg))
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(p.Orders, logg))
				r.Patch("/{orderID}/status", controllers.AdminUpdateOrderStatus(p.Orders, logg))
			})
		})
	})

	return r
}
