package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/karaokehub/songbot/models"
)

type AdminStore struct {
	DB *gorm.DB
}

func NewAdminStore(db *gorm.DB) *AdminStore {
	return &AdminStore{DB: db}
}

// FindByChatID looks an admin up by chat id.
func (as *AdminStore) FindByChatID(chatID int64) (*models.Admin, error) {
	var admin models.Admin
	if err := as.DB.Where("chat_id = ?", chatID).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUpstream
	}
	return &admin, nil
}

// Enroll creates an admin row for the chat id. Enrolling an existing admin
// is a no-op and returns the existing row.
func (as *AdminStore) Enroll(chatID int64, username string) (*models.Admin, error) {
	admin, err := as.FindByChatID(chatID)
	if err == nil {
		return admin, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	admin = &models.Admin{
		ChatID:    chatID,
		Username:  username,
		CreatedAt: time.Now(),
	}
	if err := as.DB.Create(admin).Error; err != nil {
		return nil, ErrUpstream
	}
	return admin, nil
}

// All returns every enrolled admin, for notification fan-out.
func (as *AdminStore) All() ([]models.Admin, error) {
	var admins []models.Admin
	if err := as.DB.Find(&admins).Error; err != nil {
		return nil, ErrUpstream
	}
	return admins, nil
}
