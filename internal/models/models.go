package models

import (
	"time"
)

// FilteredPassword replaces the stored password in any user struct handed
// back to a client.
const FilteredPassword = "[FILTERED]"

type User struct {
	ID       int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"unique;not null"          json:"username"`
	Email    string `gorm:"unique;not null"          json:"email"`
	Password string `gorm:"not null"                 json:"password"`
	IsAdmin  bool   `gorm:"not null;default:false"   json:"isAdmin"`
}

// Sanitized returns a copy safe to serialize for a client.
func (u User) Sanitized() User {
	u.Password = FilteredPassword
	return u
}

type Category struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
	Slug string `gorm:"unique;not null"          json:"slug"`
}

type Product struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Description string  `gorm:"not null"                 json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	ImageURL    string  `gorm:"not null"                 json:"imageUrl"`
	CategoryID  int     `gorm:"not null"                 json:"categoryId"`
	Stock       int     `gorm:"not null;default:0"       json:"stock"`
	Color       string  `json:"color,omitempty"`
	Material    string  `json:"material,omitempty"`
}

type Order struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int       `gorm:"index;not null"           json:"userId"`
	Total     float64   `gorm:"not null"                 json:"total"`
	Status    string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time `gorm:"not null"                 json:"createdAt"`
}

// OrderItem.Price is the product price captured at purchase time. It is never
// re-derived from the current Product.Price.
type OrderItem struct {
	ID        int     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int     `gorm:"index;not null"           json:"orderId"`
	ProductID int     `gorm:"not null"                 json:"productId"`
	Quantity  int     `gorm:"not null"                 json:"quantity"`
	Price     float64 `gorm:"not null"                 json:"price"`
}

// One row per (user, product) pair; repeated adds merge quantities.
type CartItem struct {
	ID        int `gorm:"primaryKey;autoIncrement"              json:"id"`
	UserID    int `gorm:"uniqueIndex:idx_user_product;not null" json:"userId"`
	ProductID int `gorm:"uniqueIndex:idx_user_product;not null" json:"productId"`
	Quantity  int `gorm:"not null;check:quantity>0"             json:"quantity"`
}

type RefreshToken struct {
	ID        int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string `gorm:"unique;not null"          json:"token"`
	UserID    int    `gorm:"index;not null"           json:"user_id"`
	ExpiresAt int64  `gorm:"not null"                 json:"expires_at"`
	Revoked   bool   `gorm:"default:false"            json:"revoked"`
}
