package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendorx/marketplace/internal/api/http/handlers"
	"github.com/vendorx/marketplace/internal/auth"
	"github.com/vendorx/marketplace/internal/domain"
)

// Login pages that page guards redirect to.
const (
	SellerLoginPath = "/auth/login"
	BuyerLoginPath  = "/auth/login/buyer"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Products    *handlers.ProductsHandler
	Cart        *handlers.CartHandler
	BuyRequests *handlers.BuyRequestsHandler
	Pages       *handlers.PagesHandler
	Guard       *auth.Guard
	// Gatherer backs /metrics; nil skips the route.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	guard := cfg.Guard
	buyerOnly := guard.API(domain.RoleBuyer)
	sellerOnly := guard.API(domain.RoleSeller)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", guard.Any(), cfg.Auth.Me)
	authGroup.Post("/password/change", guard.Any(), cfg.Auth.ChangePassword)

	api.Get("/products", cfg.Products.List)
	api.Get("/products/:id", cfg.Products.Get)
	api.Post("/products", sellerOnly, cfg.Products.Create)
	api.Put("/products/:id", sellerOnly, cfg.Products.Update)
	api.Delete("/products/:id", sellerOnly, cfg.Products.Delete)

	cart := api.Group("/cart", buyerOnly)
	cart.Get("", cfg.Cart.List)
	cart.Post("", cfg.Cart.Add)
	cart.Put("", cfg.Cart.Update)
	cart.Delete("", cfg.Cart.Remove)

	api.Post("/buy-requests", buyerOnly, cfg.BuyRequests.Create)
	api.Get("/buy-requests", buyerOnly, cfg.BuyRequests.ListMine)

	seller := api.Group("/seller", sellerOnly)
	seller.Get("/products", cfg.Products.ListMine)
	seller.Get("/buy-requests", cfg.BuyRequests.ListIncoming)
	seller.Patch("/buy-requests/:id", cfg.BuyRequests.UpdateStatus)

	app.Get(SellerLoginPath, cfg.Pages.LoginPage(string(domain.RoleSeller)))
	app.Get(BuyerLoginPath, cfg.Pages.LoginPage(string(domain.RoleBuyer)))

	buyerPages := guard.Page(domain.RoleBuyer, BuyerLoginPath)
	sellerPages := guard.Page(domain.RoleSeller, SellerLoginPath)
	app.Get("/buyer", buyerPages, cfg.Pages.BuyerHome)
	app.Get("/buyer/cart", buyerPages, cfg.Pages.BuyerCart)
	app.Get("/seller", sellerPages, cfg.Pages.SellerHome)
	app.Get("/seller/requests", sellerPages, cfg.Pages.SellerRequests)
}
