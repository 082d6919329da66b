package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakmarket/storefront-backend/api/controllers"
	"github.com/oakmarket/storefront-backend/api/middleware"
	authsvc "github.com/oakmarket/storefront-backend/internal/auth"
	cartsvc "github.com/oakmarket/storefront-backend/internal/cart"
	categoriessvc "github.com/oakmarket/storefront-backend/internal/categories"
	checkoutsvc "github.com/oakmarket/storefront-backend/internal/checkout"
	imagessvc "github.com/oakmarket/storefront-backend/internal/images"
	orderssvc "github.com/oakmarket/storefront-backend/internal/orders"
	productssvc "github.com/oakmarket/storefront-backend/internal/products"
	userssvc "github.com/oakmarket/storefront-backend/internal/users"
	"github.com/oakmarket/storefront-backend/pkg/config"
	"github.com/oakmarket/storefront-backend/pkg/db"
	"github.com/oakmarket/storefront-backend/pkg/logger"
	"github.com/oakmarket/storefront-backend/pkg/metrics"
	"github.com/oakmarket/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	authService authsvc.Service,
	userService userssvc.Service,
	categoryService categoriessvc.Service,
	productService productssvc.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	orderService orderssvc.Service,
	imageService *imagessvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Get("/uploads/products/{imageName}", controllers.ServeProductImage(imageService))
	r.Get("/uploads/{imageName}", controllers.ServeProfileImage(imageService))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/random", controllers.ProductRandom(productService, logg))
			r.Get("/{productId}", controllers.ProductGet(productService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(categoryService, logg))
			r.Get("/{categoryId}", controllers.CategoryGet(categoryService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/auth/me", controllers.AuthMe(userService, logg))

			r.Route("/users/me", func(r chi.Router) {
				r.Patch("/", controllers.UserUpdateProfile(userService, logg))
				r.Put("/password", controllers.UserUpdatePassword(userService, logg))
				r.Put("/profile-image", controllers.UserUploadProfileImage(userService, imageService, logg))
				r.Delete("/", controllers.UserDelete(userService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Put("/items/{productId}", controllers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(orderService, logg))
				r.Get("/{orderId}", controllers.OrderGet(orderService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(userService, logg))
			r.Get("/{userId}", controllers.AdminGetUser(userService, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(productService, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(productService, imageService, logg))
			r.Put("/{productId}/image", controllers.AdminProductUploadImage(productService, imageService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoryCreate(categoryService, logg))
			r.Put("/{categoryId}", controllers.AdminCategoryUpdate(categoryService, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(categoryService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(orderService, logg))
			r.Patch("/{orderId}/delivery-date", controllers.AdminOrderUpdateDeliveryDate(orderService, logg))
		})
	})

	return r
}
