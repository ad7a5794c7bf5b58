package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/paypal"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type mediaReader interface {
	Download(ctx context.Context, key string) (*gcs.Object, error)
}

// Dependencies are the collaborators the HTTP surface is built from.
// RateLimiter and Gatherer may be nil.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Ready       map[string]controllers.Pinger
	RateLimiter rateLimiter
	Gatherer    prometheus.Gatherer

	Auth     auth.Service
	Carts    cart.Service
	Checkout checkout.Service
	Products product.Service
	Orders   orders.Service
	Media    mediaReader
	PayPal   paypal.Resolver
}

func NewRouter(d Dependencies) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins()),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	setupPolicy := middleware.NewAuthRateLimitPolicy(
		"setup",
		cfg.AuthRateLimit.SetupWindow,
		cfg.AuthRateLimit.SetupIPLimit,
		0,
	)
	adminOnly := middleware.AdminAuth(d.Auth, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.Ready))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/api/paypal-config", controllers.PayPalConfig(d.PayPal, logg))
	r.Get("/subscriptions/plans", controllers.SubscriptionPlans(cfg.Plans))

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimited(setupPolicy, d.RateLimiter, logg)).Post("/setup-admin", controllers.AuthSetupAdmin(d.Auth, logg))
		r.With(rateLimited(loginPolicy, d.RateLimiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
		r.Get("/me", controllers.AuthMe(d.Auth, logg))
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", controllers.CartGet(d.Carts, cfg.Session, logg))
		r.Post("/", controllers.CartAdd(d.Carts, cfg.Session, logg))
		r.Delete("/{productId}", controllers.CartRemove(d.Carts, logg))
	})

	r.Route("/paypal", func(r chi.Router) {
		r.Post("/create-order", controllers.CheckoutCreateOrder(d.Checkout, logg))
		r.Post("/capture-order", controllers.CheckoutCaptureOrder(d.Checkout, logg))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(d.Products, logg))
		r.With(adminOnly).Get("/orders", controllers.OrderList(d.Orders, logg))
		r.Get("/{id}", controllers.ProductGet(d.Products, logg))
		r.With(adminOnly).Post("/", controllers.ProductCreate(d.Products, cfg.Media, logg))
		r.With(adminOnly).Delete("/{id}", controllers.ProductDelete(d.Products, logg))
	})
	r.With(adminOnly).Get("/orders", controllers.OrderList(d.Orders, logg))

	r.Get("/media/*", controllers.MediaGet(d.Media, logg))
	r.Head("/media/*", controllers.MediaGet(d.Media, logg))

	return r
}

func rateLimited(policy middleware.AuthRateLimitPolicy, limiter rateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, limiter, logg)
}
