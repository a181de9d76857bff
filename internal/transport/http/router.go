package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stylehub/storefront/internal/handlers"
	"github.com/stylehub/storefront/internal/service/token"
)

type Deps struct {
	Auth     *handlers.AuthHandler
	Product  *handlers.ProductHandler
	Category *handlers.CategoryHandler
	Cart     *handlers.CartHandler
	Order    *handlers.OrderHandler
	Admin    *handlers.AdminHandler
	Payment  *handlers.PaymentHandler
	Search   *handlers.SearchHandler
	Tokens   *token.Service
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	// Public
	api.POST("/register", d.Auth.Register)
	api.POST("/login", d.Auth.Login)
	api.POST("/logout", d.Auth.Logout)
	api.GET("/products", d.Product.GetProducts)
	api.GET("/products/:id", d.Product.GetProduct)
	api.GET("/categories", d.Category.GetCategories)
	api.GET("/categories/:slug/products", d.Category.GetCategoryProducts)
	api.GET("/search", d.Search.Handler)

	// Authenticated
	authed := api.Group("", d.Tokens.RequireUser)
	authed.GET("/user", d.Auth.CurrentUser)
	authed.GET("/cart", d.Cart.GetCart)
	authed.POST("/cart", d.Cart.AddToCart)
	authed.PUT("/cart/:productId", d.Cart.UpdateQuantity)
	authed.DELETE("/cart/:productId", d.Cart.RemoveFromCart)
	authed.GET("/orders", d.Order.GetOrders)
	authed.POST("/orders", d.Order.CreateOrder)
	authed.GET("/orders/:id", d.Order.GetOrder)
	authed.POST("/create-payment-intent", d.Payment.CreateIntent)

	// Admin
	admin := api.Group("", d.Tokens.RequireAdmin)
	admin.POST("/products", d.Product.CreateProduct)
	admin.PUT("/products/:id", d.Product.UpdateProduct)
	admin.DELETE("/products/:id", d.Product.DeleteProduct)
	admin.POST("/categories", d.Category.CreateCategory)
	admin.PUT("/orders/:id/status", d.Order.UpdateStatus)
	admin.GET("/admin/stats", d.Admin.GetStats)
}
