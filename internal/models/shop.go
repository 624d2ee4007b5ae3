package models

import (
	"time"
)

// ShopItem is a purchasable catalog entry. Price is in the smallest
// DeltaCoin unit. Inactive items reject new holds but do not affect
// holds already authorized against them.
type ShopItem struct {
	SKU       string    `json:"sku" db:"sku"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
