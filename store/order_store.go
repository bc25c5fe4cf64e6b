package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/karaokehub/songbot/models"
)

type OrderStore struct {
	DB *gorm.DB
}

func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{DB: db}
}

// Create persists a new order row. The caller fills in the snapshot fields;
// the store assigns the id.
func (os *OrderStore) Create(order *models.Order) error {
	if err := os.DB.Create(order).Error; err != nil {
		return ErrUpstream
	}
	return nil
}

// FindByID returns one order with its user preloaded.
func (os *OrderStore) FindByID(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := os.DB.Preload("User").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUpstream
	}
	return &order, nil
}

// Resolve moves a pending order to the given terminal status. The update is
// conditioned on the order still being pending, so two racing resolvers are
// serialized by the database: the loser gets ErrAlreadyResolved and the
// order keeps the winner's outcome and timestamp.
func (os *OrderStore) Resolve(orderID uint, status string, now time.Time) (*models.Order, error) {
	res := os.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": now,
		})
	if res.Error != nil {
		return nil, ErrUpstream
	}
	if res.RowsAffected == 0 {
		order, err := os.FindByID(orderID)
		if err != nil {
			return nil, err
		}
		return order, ErrAlreadyResolved
	}
	return os.FindByID(orderID)
}

// ListPending returns all pending orders, oldest first.
func (os *OrderStore) ListPending() ([]models.Order, error) {
	var orders []models.Order
	if err := os.DB.Preload("User").
		Where("status = ?", models.OrderStatusPending).
		Order("ordered_at asc").
		Find(&orders).Error; err != nil {
		return nil, ErrUpstream
	}
	return orders, nil
}

// ListResolvedSince returns orders resolved at or after the cutoff, newest
// first.
func (os *OrderStore) ListResolvedSince(cutoff time.Time) ([]models.Order, error) {
	var orders []models.Order
	if err := os.DB.Preload("User").
		Where("status <> ? AND completed_at >= ?", models.OrderStatusPending, cutoff).
		Order("completed_at desc").
		Find(&orders).Error; err != nil {
		return nil, ErrUpstream
	}
	return orders, nil
}

// ListCompletedByUser returns the user's completed orders, newest first.
// Deduplication by song is done by the caller so the limit applies to
// distinct songs.
func (os *OrderStore) ListCompletedByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := os.DB.
		Where("user_id = ? AND status = ?", userID, models.OrderStatusCompleted).
		Order("completed_at desc").
		Find(&orders).Error; err != nil {
		return nil, ErrUpstream
	}
	return orders, nil
}
