package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kioskworks/counter-backend/api/controllers"
	"github.com/kioskworks/counter-backend/api/middleware"
	authsvc "github.com/kioskworks/counter-backend/internal/auth"
	cartsvc "github.com/kioskworks/counter-backend/internal/cart"
	"github.com/kioskworks/counter-backend/internal/liveview"
	"github.com/kioskworks/counter-backend/internal/orders"
	productsvc "github.com/kioskworks/counter-backend/internal/products"
	statssvc "github.com/kioskworks/counter-backend/internal/stats"
	"github.com/kioskworks/counter-backend/pkg/config"
	"github.com/kioskworks/counter-backend/pkg/logger"
	"github.com/kioskworks/counter-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	AuthService *authsvc.Service
	Cart        *cartsvc.Manager
	Orders      *orders.Store
	Liveview    *liveview.Facade
	Products    *productsvc.Service
	Stats       *statssvc.Service
	Registry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	idempotency := passthrough
	if cfg.FeatureFlags.EnableIdempotency {
		idempotency = middleware.Idempotency(deps.Redis, logg)
	}

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
	)

	pingers := map[string]controllers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		pingers["redis"] = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(idempotency)
		r.Post("/", controllers.CartCreate(deps.Cart, logg))
		r.Get("/", controllers.CartFetch(deps.Cart, logg))
		r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
		r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
		r.Delete("/items", controllers.CartClear(deps.Cart, logg))
		r.Post("/submit", controllers.CartSubmit(deps.Cart, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		// Boards read by both the kiosk queue display and the kitchen.
		r.Get("/incoming", controllers.OrdersIncoming(deps.Liveview, logg))
		r.Get("/resolved", controllers.OrdersResolved(deps.Liveview, logg))
		r.Get("/canceled", controllers.OrdersCanceled(deps.Liveview, logg))
		r.Get("/completed", controllers.OrdersCompleted(deps.Liveview, logg))
		r.Get("/products", controllers.OrderedProducts(deps.Liveview, logg))
		r.Get("/incoming-stream", controllers.IncomingStream(deps.Liveview, logg))
		r.Get("/{orderId}", controllers.OrderDetail(deps.Liveview, logg))

		// Kitchen mutations sit behind the staff token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.StaffAuth(cfg.JWT, logg))
			r.Use(idempotency)
			r.Post("/{orderId}/products/{productId}/supplied-at", controllers.SupplyOrderedProduct(deps.Orders, logg))
			r.Post("/{orderId}/supplied-at", controllers.SupplyOrder(deps.Orders, logg))
			r.Post("/{orderId}/completed-at", controllers.CompleteOrder(deps.Orders, logg))
			r.Post("/{orderId}/canceled-at", controllers.CancelOrder(deps.Orders, logg))
			r.Delete("/{orderId}/resolved-at", controllers.ResetOrder(deps.Orders, logg))
			r.Delete("/", controllers.ClearOrders(deps.Orders, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.StaffAuth(cfg.JWT, logg))
			r.Use(idempotency)
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
		})
	})

	r.Route("/api/v1/stats", func(r chi.Router) {
		r.Get("/wait-estimate", controllers.WaitEstimate(deps.Stats, logg))
		r.With(middleware.StaffAuth(cfg.JWT, logg)).
			Post("/export", controllers.StatsExport(deps.Stats, logg))
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
