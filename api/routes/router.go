package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanhale/storefront-backend/api/controllers"
	"github.com/jordanhale/storefront-backend/api/middleware"
	authsvc "github.com/jordanhale/storefront-backend/internal/auth"
	cartsvc "github.com/jordanhale/storefront-backend/internal/cart"
	catalogsvc "github.com/jordanhale/storefront-backend/internal/catalog"
	checkoutsvc "github.com/jordanhale/storefront-backend/internal/checkout"
	ordersvc "github.com/jordanhale/storefront-backend/internal/orders"
	"github.com/jordanhale/storefront-backend/pkg/auth/session"
	"github.com/jordanhale/storefront-backend/pkg/config"
	"github.com/jordanhale/storefront-backend/pkg/logger"
	"github.com/jordanhale/storefront-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Metrics     http.Handler
	AuthService authsvc.Service
	CartService cartsvc.Service
	Catalog     catalogsvc.Service
	Checkout    checkoutsvc.Service
	Orders      ordersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.Register(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, deps.CartService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).
			Post("/logout", controllers.Logout(deps.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/{productId}", controllers.GetProduct(deps.Catalog, logg))
	})

	// Cart and checkout serve guests and shoppers alike: the auth middleware
	// is optional, and the cart session middleware resolves the owner key
	// from whichever identity is present.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.CartSession(logg))

		r.Route("/api/v1/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.CartService, logg))
			r.Delete("/", controllers.ClearCart(deps.CartService, logg))
			r.Post("/items", controllers.AddCartItem(deps.CartService, logg))
			r.Patch("/items/{productId}", controllers.UpdateCartItem(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.CartService, logg))
		})

		r.Post("/api/v1/checkout", controllers.Checkout(deps.Checkout, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Get("/", controllers.ListMyOrders(deps.Orders, logg))
		r.Get("/{orderId}", controllers.GetMyOrder(deps.Orders, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.Catalog, logg))
			r.Patch("/{productId}/stock", controllers.AdminAdjustStock(deps.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.AdminGetOrder(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
			r.Patch("/{orderId}/payment-status", controllers.AdminUpdatePaymentStatus(deps.Orders, logg))
		})
	})

	return r
}
