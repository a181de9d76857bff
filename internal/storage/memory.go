package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stylehub/storefront/internal/hash"
	"github.com/stylehub/storefront/internal/models"
)

// MemoryStore keeps every collection in a map guarded by one mutex, so each
// operation (including the cart upsert's read-modify-write) is atomic.
// Counters start at 1 and only ever move forward: an id freed by a delete is
// never handed out again within the store's lifetime.
type MemoryStore struct {
	mu sync.Mutex

	users         map[int]models.User
	categories    map[int]models.Category
	products      map[int]models.Product
	orders        map[int]models.Order
	orderItems    map[int]models.OrderItem
	cartItems     map[int]models.CartItem
	refreshTokens map[int]models.RefreshToken

	userID      int
	categoryID  int
	productID   int
	orderID     int
	orderItemID int
	cartItemID  int
	refreshID   int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int]models.User),
		categories:    make(map[int]models.Category),
		products:      make(map[int]models.Product),
		orders:        make(map[int]models.Order),
		orderItems:    make(map[int]models.OrderItem),
		cartItems:     make(map[int]models.CartItem),
		refreshTokens: make(map[int]models.RefreshToken),
		userID:        1,
		categoryID:    1,
		productID:     1,
		orderID:       1,
		orderItemID:   1,
		cartItemID:    1,
		refreshID:     1,
	}
}

// User methods

func (s *MemoryStore) UserByID(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, ErrNotFound)
}

func (s *MemoryStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	// Seed data arrives pre-hashed; everything else is hashed here.
	if !hash.IsHashed(user.Password) {
		hashed, err := hash.HashPassword(user.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.userID
	s.userID++
	s.users[user.ID] = user

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Category methods

func (s *MemoryStore) Categories(ctx context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categoryBySlugLocked(slug)
	if !ok {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return &c, nil
}

// Slug matching is case-sensitive, unlike username/email lookup.
func (s *MemoryStore) categoryBySlugLocked(slug string) (models.Category, bool) {
	for _, c := range s.categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return models.Category{}, false
}

func (s *MemoryStore) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = s.categoryID
	s.categoryID++
	s.categories[category.ID] = category
	return &category, nil
}

// Product methods

func (s *MemoryStore) Products(ctx context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (s *MemoryStore) ProductsByCategorySlug(ctx context.Context, slug string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unknown slug yields an empty catalog page, not an error.
	category, ok := s.categoryBySlugLocked(slug)
	if !ok {
		return []models.Product{}, nil
	}

	out := make([]models.Product, 0)
	for _, p := range s.products {
		if p.CategoryID == category.ID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = s.productID
	s.productID++
	s.products[product.ID] = product
	return &product, nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id int, product models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	product.ID = id
	s.products[id] = product
	return &product, nil
}

// DeleteProduct does not cascade into carts; resolving a cart row that still
// points at the deleted product surfaces ErrIntegrity.
func (s *MemoryStore) DeleteProduct(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false, nil
	}
	delete(s.products, id)
	return true, nil
}

// Cart methods

func (s *MemoryStore) CartItems(ctx context.Context, userID int) ([]CartItemWithProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CartItemWithProduct, 0)
	for _, item := range s.cartItems {
		if item.UserID != userID {
			continue
		}
		product, ok := s.products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("cart item %d references product %d: %w", item.ID, item.ProductID, ErrIntegrity)
		}
		out = append(out, CartItemWithProduct{
			CartItem: item,
			Product:  product,
			Total:    product.Price * float64(item.Quantity),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AddToCart(ctx context.Context, item models.CartItem) (*models.CartItem, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[item.ProductID]; !ok {
		return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
	}

	// Upsert: a repeated (user, product) add merges quantities into the
	// existing row instead of creating a second one.
	for id, existing := range s.cartItems {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			s.cartItems[id] = existing
			return &existing, nil
		}
	}

	item.ID = s.cartItemID
	s.cartItemID++
	s.cartItems[item.ID] = item
	return &item, nil
}

func (s *MemoryStore) UpdateCartQuantity(ctx context.Context, userID, productID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity = quantity
			s.cartItems[id] = item
			return &item, nil
		}
	}
	return nil, fmt.Errorf("cart item for product %d: %w", productID, ErrNotFound)
}

func (s *MemoryStore) RemoveFromCart(ctx context.Context, userID, productID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			delete(s.cartItems, id)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ClearCart(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.UserID == userID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

// Order methods

// CreateOrder stores the caller-supplied total verbatim and snapshots the
// supplied per-item prices. Nothing is recomputed from the catalog.
func (s *MemoryStore) CreateOrder(ctx context.Context, order models.Order, items []OrderItemInput) (*OrderWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.ID = s.orderID
	s.orderID++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	s.orders[order.ID] = order

	for _, in := range items {
		item := models.OrderItem{
			ID:        s.orderItemID,
			OrderID:   order.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     in.Price,
		}
		s.orderItemID++
		s.orderItems[item.ID] = item
	}

	joined := s.orderWithItemsLocked(order)
	return &joined, nil
}

func (s *MemoryStore) OrdersByUser(ctx context.Context, userID int) ([]OrderWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]OrderWithItems, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, s.orderWithItemsLocked(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Orders(ctx context.Context) ([]OrderWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.allOrdersLocked(), nil
}

func (s *MemoryStore) allOrdersLocked() []OrderWithItems {
	out := make([]OrderWithItems, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, s.orderWithItemsLocked(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) OrderByID(ctx context.Context, id int) (*OrderWithItems, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	joined := s.orderWithItemsLocked(o)
	return &joined, nil
}

// orderWithItemsLocked gathers the order's item rows and resolves each
// product. A product deleted after purchase resolves to nil; the line's
// snapshot price stands on its own.
func (s *MemoryStore) orderWithItemsLocked(order models.Order) OrderWithItems {
	items := make([]OrderItemWithProduct, 0)
	for _, item := range s.orderItems {
		if item.OrderID != order.ID {
			continue
		}
		joined := OrderItemWithProduct{OrderItem: item}
		if product, ok := s.products[item.ProductID]; ok {
			p := product
			joined.Product = &p
		}
		items = append(items, joined)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return OrderWithItems{Order: order, Items: items}
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id int, status string) (*models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("status must not be empty: %w", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	o.Status = status
	s.orders[id] = o
	return &o, nil
}

// Admin stats

func (s *MemoryStore) AdminStats(ctx context.Context) (*AdminStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.allOrdersLocked()

	var totalSales float64
	for _, o := range orders {
		totalSales += o.Total
	}

	customers := 0
	for _, u := range s.users {
		if !u.IsAdmin {
			customers++
		}
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
		TotalProducts:  len(s.products),
		TotalCustomers: customers,
		RecentOrders:   recent,
	}, nil
}

// Refresh tokens

func (s *MemoryStore) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token.ID = s.refreshID
	s.refreshID++
	s.refreshTokens[token.ID] = token
	return nil
}

func (s *MemoryStore) RefreshTokenByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.refreshTokens {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("refresh token: %w", ErrNotFound)
}

func (s *MemoryStore) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.refreshTokens {
		if t.Token == token {
			t.Revoked = true
			s.refreshTokens[id] = t
			return nil
		}
	}
	return fmt.Errorf("refresh token: %w", ErrNotFound)
}
