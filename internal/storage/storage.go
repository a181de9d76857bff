// Package storage holds the entity store: six keyed collections with
// per-kind auto-increment ids, the read-side joins across them, and the
// derived aggregates (cart totals, admin statistics).
package storage

import (
	"context"
	"errors"

	"github.com/stylehub/storefront/internal/models"
)

// Closed error set. The store never logs or retries; handlers map these to
// response codes with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation")
	ErrForbidden  = errors.New("forbidden")
	ErrIntegrity  = errors.New("referential integrity")
)

// CartItemWithProduct is a cart row joined with its product. Total is
// computed from the product's current price on every read, never cached, so
// a price change is reflected in carts filled before the change.
type CartItemWithProduct struct {
	models.CartItem
	Product models.Product `json:"product"`
	Total   float64        `json:"total"`
}

// OrderItemWithProduct attaches the referenced product to an order item.
// Product is nil when the product has since been deleted; the price snapshot
// on the item keeps historical orders readable.
type OrderItemWithProduct struct {
	models.OrderItem
	Product *models.Product `json:"product"`
}

type OrderWithItems struct {
	models.Order
	Items []OrderItemWithProduct `json:"items"`
}

type AdminStats struct {
	TotalSales     float64          `json:"totalSales"`
	TotalOrders    int              `json:"totalOrders"`
	TotalProducts  int              `json:"totalProducts"`
	TotalCustomers int              `json:"totalCustomers"`
	RecentOrders   []OrderWithItems `json:"recentOrders"`
}

// OrderItemInput carries the caller-supplied snapshot for one order line.
type OrderItemInput struct {
	ProductID int     `json:"productId" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type Store interface {
	UserByID(ctx context.Context, id int) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	Categories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (*models.Category, error)

	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id int) (*models.Product, error)
	ProductsByCategorySlug(ctx context.Context, slug string) ([]models.Product, error)
	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int, product models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) (bool, error)

	CartItems(ctx context.Context, userID int) ([]CartItemWithProduct, error)
	AddToCart(ctx context.Context, item models.CartItem) (*models.CartItem, error)
	UpdateCartQuantity(ctx context.Context, userID, productID, quantity int) (*models.CartItem, error)
	RemoveFromCart(ctx context.Context, userID, productID int) (bool, error)
	ClearCart(ctx context.Context, userID int) error

	CreateOrder(ctx context.Context, order models.Order, items []OrderItemInput) (*OrderWithItems, error)
	OrdersByUser(ctx context.Context, userID int) ([]OrderWithItems, error)
	Orders(ctx context.Context) ([]OrderWithItems, error)
	OrderByID(ctx context.Context, id int) (*OrderWithItems, error)
	UpdateOrderStatus(ctx context.Context, id int, status string) (*models.Order, error)

	AdminStats(ctx context.Context) (*AdminStats, error)

	CreateRefreshToken(ctx context.Context, token models.RefreshToken) error
	RefreshTokenByValue(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}
