package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/karaokehub/songbot/models"
)

type UserStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{DB: db}
}

// FindByChatID looks a user up by its stable chat id.
func (us *UserStore) FindByChatID(chatID int64) (*models.User, error) {
	var user models.User
	if err := us.DB.Where("chat_id = ?", chatID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUpstream
	}
	return &user, nil
}

// FindOrCreate returns the existing row for the chat id or creates one from
// the profile fields of the first inbound event.
func (us *UserStore) FindOrCreate(chatID int64, username, firstName, lastName, languageCode string) (*models.User, error) {
	user, err := us.FindByChatID(chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	user = &models.User{
		ChatID:       chatID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
		IsRegistered: false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := us.DB.Create(user).Error; err != nil {
		return nil, ErrUpstream
	}
	return user, nil
}

// SetDisplayName stores the name entered during registration and flips
// IsRegistered on.
func (us *UserStore) SetDisplayName(chatID int64, name string) error {
	res := us.DB.Model(&models.User{}).Where("chat_id = ?", chatID).Updates(map[string]interface{}{
		"display_name":  name,
		"is_registered": true,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return ErrUpstream
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTableNumber stores the table and stamps RegisteredAt, completing the
// registration.
func (us *UserStore) SetTableNumber(chatID int64, table string, now time.Time) error {
	res := us.DB.Model(&models.User{}).Where("chat_id = ?", chatID).Updates(map[string]interface{}{
		"table_number":  table,
		"registered_at": now,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return ErrUpstream
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRegistration empties the registration fields but keeps the row and
// its profile data. Used by /reset and by registration expiry.
func (us *UserStore) ClearRegistration(chatID int64) error {
	res := us.DB.Model(&models.User{}).Where("chat_id = ?", chatID).Updates(map[string]interface{}{
		"display_name":  nil,
		"table_number":  nil,
		"is_registered": false,
		"registered_at": nil,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return ErrUpstream
	}
	return nil
}
