package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stylehub/storefront/internal/hash"
	"github.com/stylehub/storefront/internal/models"
)

// OpenDB opens the relational backend for a DSN: postgres:// DSNs use the
// postgres driver, anything else is treated as a sqlite path.
func OpenDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.CartItem{},
		&models.RefreshToken{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// GormStore implements Store over a relational database. Selected by
// configuration instead of the default in-memory store.
type GormStore struct {
	DB *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func wrapDBErr(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// User methods

func (s *GormStore) UserByID(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("user %d", id), err)
	}
	return &u, nil
}

func (s *GormStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&u).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("user %q", username), err)
	}
	return &u, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).Where("lower(email) = lower(?)", email).First(&u).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("user %q", email), err)
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if !hash.IsHashed(user.Password) {
		hashed, err := hash.HashPassword(user.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, wrapDBErr("create user", err)
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Category methods

func (s *GormStore) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapDBErr("categories", err)
	}
	return out, nil
}

func (s *GormStore) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("category %q", slug), err)
	}
	return &c, nil
}

func (s *GormStore) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	if err := s.DB.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, wrapDBErr("create category", err)
	}
	return &category, nil
}

// Product methods

func (s *GormStore) Products(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapDBErr("products", err)
	}
	return out, nil
}

func (s *GormStore) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("product %d", id), err)
	}
	return &p, nil
}

func (s *GormStore) ProductsByCategorySlug(ctx context.Context, slug string) ([]models.Product, error) {
	category, err := s.CategoryBySlug(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, err
	}

	var out []models.Product
	if err := s.DB.WithContext(ctx).Where("category_id = ?", category.ID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapDBErr("products by category", err)
	}
	return out, nil
}

func (s *GormStore) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, wrapDBErr("create product", err)
	}
	return &product, nil
}

func (s *GormStore) UpdateProduct(ctx context.Context, id int, product models.Product) (*models.Product, error) {
	var existing models.Product
	if err := s.DB.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("product %d", id), err)
	}
	product.ID = id
	if err := s.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, wrapDBErr("update product", err)
	}
	return &product, nil
}

func (s *GormStore) DeleteProduct(ctx context.Context, id int) (bool, error) {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return false, wrapDBErr("delete product", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Cart methods

func (s *GormStore) CartItems(ctx context.Context, userID int) ([]CartItemWithProduct, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, wrapDBErr("cart items", err)
	}

	out := make([]CartItemWithProduct, 0, len(items))
	for _, item := range items {
		var product models.Product
		if err := s.DB.WithContext(ctx).First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("cart item %d references product %d: %w", item.ID, item.ProductID, ErrIntegrity)
			}
			return nil, wrapDBErr("cart product", err)
		}
		out = append(out, CartItemWithProduct{
			CartItem: item,
			Product:  product,
			Total:    product.Price * float64(item.Quantity),
		})
	}
	return out, nil
}

func (s *GormStore) AddToCart(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
			}
			return err
		}

		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(&item).Error
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) UpdateCartQuantity(ctx context.Context, userID, productID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	var item models.CartItem
	if err := s.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("cart item for product %d", productID), err)
	}
	item.Quantity = quantity
	if err := s.DB.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, wrapDBErr("update cart item", err)
	}
	return &item, nil
}

func (s *GormStore) RemoveFromCart(ctx context.Context, userID, productID int) (bool, error) {
	res := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, wrapDBErr("remove from cart", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) ClearCart(ctx context.Context, userID int) error {
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return wrapDBErr("clear cart", err)
	}
	return nil
}

// Order methods

func (s *GormStore) CreateOrder(ctx context.Context, order models.Order, items []OrderItemInput) (*OrderWithItems, error) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, in := range items {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Price:     in.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapDBErr("create order", err)
	}
	return s.OrderByID(ctx, order.ID)
}

func (s *GormStore) OrdersByUser(ctx context.Context, userID int) ([]OrderWithItems, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, wrapDBErr("orders by user", err)
	}
	return s.joinOrders(ctx, orders)
}

func (s *GormStore) Orders(ctx context.Context) ([]OrderWithItems, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, wrapDBErr("orders", err)
	}
	return s.joinOrders(ctx, orders)
}

func (s *GormStore) joinOrders(ctx context.Context, orders []models.Order) ([]OrderWithItems, error) {
	out := make([]OrderWithItems, 0, len(orders))
	for _, o := range orders {
		joined, err := s.orderWithItems(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, joined)
	}
	return out, nil
}

func (s *GormStore) OrderByID(ctx context.Context, id int) (*OrderWithItems, error) {
	var o models.Order
	if err := s.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("order %d", id), err)
	}
	joined, err := s.orderWithItems(ctx, o)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *GormStore) orderWithItems(ctx context.Context, order models.Order) (OrderWithItems, error) {
	var items []models.OrderItem
	if err := s.DB.WithContext(ctx).Where("order_id = ?", order.ID).Order("id ASC").Find(&items).Error; err != nil {
		return OrderWithItems{}, wrapDBErr("order items", err)
	}

	joined := make([]OrderItemWithProduct, 0, len(items))
	for _, item := range items {
		row := OrderItemWithProduct{OrderItem: item}
		var product models.Product
		err := s.DB.WithContext(ctx).First(&product, item.ProductID).Error
		switch {
		case err == nil:
			p := product
			row.Product = &p
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Product deleted after purchase; the snapshot price stands.
		default:
			return OrderWithItems{}, wrapDBErr("order item product", err)
		}
		joined = append(joined, row)
	}
	return OrderWithItems{Order: order, Items: joined}, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id int, status string) (*models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("status must not be empty: %w", ErrValidation)
	}

	var o models.Order
	if err := s.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, wrapDBErr(fmt.Sprintf("order %d", id), err)
	}
	o.Status = status
	if err := s.DB.WithContext(ctx).Save(&o).Error; err != nil {
		return nil, wrapDBErr("update order status", err)
	}
	return &o, nil
}

// Admin stats

func (s *GormStore) AdminStats(ctx context.Context) (*AdminStats, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}

	var totalSales float64
	for _, o := range orders {
		totalSales += o.Total
	}

	var products int64
	if err := s.DB.WithContext(ctx).Model(&models.Product{}).Count(&products).Error; err != nil {
		return nil, wrapDBErr("count products", err)
	}
	var customers int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("is_admin = ?", false).Count(&customers).Error; err != nil {
		return nil, wrapDBErr("count customers", err)
	}

	recent := make([]OrderWithItems, len(orders))
	copy(recent, orders)
	sort.Slice(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &AdminStats{
		TotalSales:     totalSales,
		TotalOrders:    len(orders),
		TotalProducts:  int(products),
		TotalCustomers: int(customers),
		RecentOrders:   recent,
	}, nil
}

// Refresh tokens

func (s *GormStore) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	if err := s.DB.WithContext(ctx).Create(&token).Error; err != nil {
		return wrapDBErr("create refresh token", err)
	}
	return nil
}

func (s *GormStore) RefreshTokenByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, wrapDBErr("refresh token", err)
	}
	return &t, nil
}

func (s *GormStore) RevokeRefreshToken(ctx context.Context, token string) error {
	res := s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true)
	if res.Error != nil {
		return wrapDBErr("revoke refresh token", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("refresh token: %w", ErrNotFound)
	}
	return nil
}
