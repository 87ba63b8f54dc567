package models

import "time"

// ShopItem is purchasable with rap coins. TargetColumn names the users
// column credited on purchase and must be on the purchase whitelist.
type ShopItem struct {
	ID                string     `json:"id" gorm:"primaryKey"`
	Name              string     `json:"name" gorm:"not null"`
	Description       string     `json:"description"`
	Price             int64      `json:"price" gorm:"not null"` // rap coins
	DiscountPercent   int        `json:"discount_percent" gorm:"default:0"`
	DiscountExpiresAt *time.Time `json:"discount_expires_at,omitempty"`
	TargetColumn      string     `json:"target_column"`
	Quantity          int64      `json:"quantity" gorm:"default:0"`

	Timestamps
}
