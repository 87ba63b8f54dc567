package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"battle-arena-system/models"

	"gorm.io/gorm"
)

// creditableColumns whitelists users columns a shop item may target.
var creditableColumns = map[string]bool{
	"boost_credits": true,
	"story_slots":   true,
}

type ShopService struct {
	DB            *gorm.DB
	Notifications *NotificationService
}

func NewShopService(db *gorm.DB, notifications *NotificationService) *ShopService {
	return &ShopService{DB: db, Notifications: notifications}
}

// ListItems returns the catalog, cheapest first.
func (s *ShopService) ListItems() ([]models.ShopItem, error) {
	var out []models.ShopItem
	err := s.DB.Order("price ASC").Find(&out).Error
	return out, err
}

// FinalPrice applies a discount while its window is open.
func FinalPrice(item *models.ShopItem, now time.Time) int64 {
	if item.DiscountPercent > 0 && item.DiscountExpiresAt != nil && item.DiscountExpiresAt.After(now) {
		return int64(math.Round(float64(item.Price) * (1 - float64(item.DiscountPercent)/100)))
	}
	return item.Price
}

// Purchase debits rap coins and credits the item's target column, all in
// one transaction.
func (s *ShopService) Purchase(userID, itemID string) (*models.ArenaUser, error) {
	var item models.ShopItem
	if err := s.DB.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.TargetColumn != "" && !creditableColumns[item.TargetColumn] {
		return nil, ErrBadTargetColumn
	}

	price := FinalPrice(&item, time.Now())
	var updated models.ArenaUser
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var u models.ArenaUser
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if u.RapCoins < price {
			return ErrInsufficientCoins
		}

		updates := map[string]interface{}{"rap_coins": u.RapCoins - price}
		if item.TargetColumn != "" && item.Quantity > 0 {
			updates[item.TargetColumn] = gorm.Expr(item.TargetColumn+" + ?", item.Quantity)
		}
		if err := tx.Model(&models.ArenaUser{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&updated, "id = ?", userID).Error
	})
	if err != nil {
		return nil, err
	}

	s.Notifications.Notify(userID, userID, models.NotificationPurchase,
		fmt.Sprintf("You bought %s for %d rap coins.", item.Name, price), "shop")
	return &updated, nil
}
