// Package bootstrap seeds a fresh store with an admin account and a small
// default catalog. Each step checks before inserting, so reruns against an
// already-populated store are no-ops.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stylehub/storefront/internal/models"
	"github.com/stylehub/storefront/internal/storage"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@stylehub.com"
	adminPassword = "admin123"
)

func Seed(ctx context.Context, store storage.Store, log *slog.Logger) error {
	if err := seedAdmin(ctx, store, log); err != nil {
		return err
	}
	if err := seedCategories(ctx, store, log); err != nil {
		return err
	}
	return seedProducts(ctx, store, log)
}

func seedAdmin(ctx context.Context, store storage.Store, log *slog.Logger) error {
	_, err := store.UserByUsername(ctx, adminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	if _, err := store.CreateUser(ctx, models.User{
		Username: adminUsername,
		Email:    adminEmail,
		Password: adminPassword,
		IsAdmin:  true,
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("seeded admin user", slog.String("username", adminUsername))
	return nil
}

func seedCategories(ctx context.Context, store storage.Store, log *slog.Logger) error {
	existing, err := store.Categories(ctx)
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range []models.Category{
		{Name: "Watches", Slug: "watches"},
		{Name: "Clothing", Slug: "clothing"},
		{Name: "Shoes", Slug: "shoes"},
	} {
		if _, err := store.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	log.Info("seeded default categories")
	return nil
}

func seedProducts(ctx context.Context, store storage.Store, log *slog.Logger) error {
	existing, err := store.Products(ctx)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	categoryID := func(slug string) int {
		c, err := store.CategoryBySlug(ctx, slug)
		if err != nil {
			return 0
		}
		return c.ID
	}

	catalog := []models.Product{
		{
			Name:        "Classic Timepiece",
			Description: "Elegant watch with leather strap and minimalist design.",
			Price:       149.99,
			ImageURL:    "https://images.unsplash.com/photo-1523275335684-37898b6baf30",
			CategoryID:  categoryID("watches"),
			Stock:       25,
			Color:       "Black",
			Material:    "Leather",
		},
		{
			Name:        "Premium Linen Shirt",
			Description: "High-quality linen shirt, perfect for summer days.",
			Price:       89.99,
			ImageURL:    "https://images.unsplash.com/photo-1620799139834-6b8f844fbe61",
			CategoryID:  categoryID("clothing"),
			Stock:       50,
			Color:       "White",
			Material:    "Linen",
		},
		{
			Name:        "Designer Denim Jacket",
			Description: "Stylish denim jacket with modern design and comfortable fit.",
			Price:       199.99,
			ImageURL:    "https://images.unsplash.com/photo-1591047139829-d91aecb6caea",
			CategoryID:  categoryID("clothing"),
			Stock:       30,
			Color:       "Blue",
			Material:    "Denim",
		},
		{
			Name:        "Urban Sneakers",
			Description: "Comfortable canvas sneakers for everyday urban style.",
			Price:       129.99,
			ImageURL:    "https://images.unsplash.com/photo-1600185365926-3a2ce3cdb9eb",
			CategoryID:  categoryID("shoes"),
			Stock:       40,
			Color:       "White",
			Material:    "Canvas",
		},
	}

	for _, p := range catalog {
		if p.CategoryID == 0 {
			continue
		}
		if _, err := store.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}
	log.Info("seeded default catalog", slog.Int("products", len(catalog)))
	return nil
}
