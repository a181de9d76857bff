package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stylehub/storefront/internal/hash"
	"github.com/stylehub/storefront/internal/models"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	return NewGormStore(db)
}

func gormSeedProduct(t *testing.T, s *GormStore, name string, price float64) *models.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), models.Product{
		Name:        name,
		Description: "test product",
		Price:       price,
		ImageURL:    "https://example.com/p.jpg",
		CategoryID:  1,
		Stock:       10,
	})
	require.NoError(t, err)
	return p
}

func TestGormCreateUserHashes(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	require.Equal(t, models.FilteredPassword, created.Password)

	stored, err := s.UserByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, hash.CheckPassword(stored.Password, "password1"))

	u, err := s.UserByUsername(ctx, "ALICE")
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGormAddToCartUpserts(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	p := gormSeedProduct(t, s, "watch", 10)

	first, err := s.AddToCart(ctx, models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 2, first.Quantity)

	second, err := s.AddToCart(ctx, models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 5, second.Quantity)

	items, err := s.CartItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 50.0, items[0].Total)
}

func TestGormAddToCartValidates(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	_, err := s.AddToCart(ctx, models.CartItem{UserID: 1, ProductID: 99, Quantity: 1})
	require.ErrorIs(t, err, ErrNotFound)

	p := gormSeedProduct(t, s, "watch", 10)
	_, err = s.AddToCart(ctx, models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 0})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGormDanglingCartRowIsIntegrityError(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	p := gormSeedProduct(t, s, "watch", 10)

	_, err := s.AddToCart(ctx, models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)

	deleted, err := s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = s.CartItems(ctx, 1)
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestGormCreateOrderSnapshots(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()
	p := gormSeedProduct(t, s, "watch", 10)

	order, err := s.CreateOrder(ctx, models.Order{UserID: 1, Total: 999.99, Status: "processing"},
		[]OrderItemInput{{ProductID: p.ID, Quantity: 2, Price: 10}})
	require.NoError(t, err)
	require.Equal(t, 999.99, order.Total)
	require.Len(t, order.Items, 1)

	updated := *p
	updated.Price = 50
	_, err = s.UpdateProduct(ctx, p.ID, updated)
	require.NoError(t, err)

	got, err := s.OrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 10.0, got.Items[0].Price)

	_, err = s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)

	got, err = s.OrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Nil(t, got.Items[0].Product)
}

func TestGormProductsByCategorySlug(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, models.Category{Name: "Watches", Slug: "watches"})
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, models.Product{
		Name: "watch", Description: "d", Price: 10,
		ImageURL: "https://example.com/w.jpg", CategoryID: cat.ID, Stock: 1,
	})
	require.NoError(t, err)

	products, err := s.ProductsByCategorySlug(ctx, "watches")
	require.NoError(t, err)
	require.Len(t, products, 1)

	products, err = s.ProductsByCategorySlug(ctx, "nope")
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestGormAdminStats(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, models.User{Username: "admin", Email: "a@x.com", Password: "pw123456", IsAdmin: true})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{Username: "alice", Email: "al@x.com", Password: "pw123456"})
	require.NoError(t, err)

	gormSeedProduct(t, s, "watch", 10)

	for _, total := range []float64{10, 20, 30} {
		_, err = s.CreateOrder(ctx, models.Order{UserID: 2, Total: total, Status: "processing"}, nil)
		require.NoError(t, err)
	}

	stats, err := s.AdminStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 60.0, stats.TotalSales)
	require.Equal(t, 3, stats.TotalOrders)
	require.Equal(t, 1, stats.TotalProducts)
	require.Equal(t, 1, stats.TotalCustomers)
	require.Len(t, stats.RecentOrders, 3)
}

func TestGormRefreshTokenLifecycle(t *testing.T) {
	s := newGormStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRefreshToken(ctx, models.RefreshToken{
		Token:     "tok-1",
		UserID:    1,
		ExpiresAt: 9999999999,
	}))

	stored, err := s.RefreshTokenByValue(ctx, "tok-1")
	require.NoError(t, err)
	require.False(t, stored.Revoked)

	require.NoError(t, s.RevokeRefreshToken(ctx, "tok-1"))
	stored, err = s.RefreshTokenByValue(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, stored.Revoked)

	require.ErrorIs(t, s.RevokeRefreshToken(ctx, "missing"), ErrNotFound)
}
