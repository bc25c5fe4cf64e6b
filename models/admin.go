package models

import "time"

// Admin is enrolled via the password-gated /new_admin command. Rows are
// immutable once created; there is no deletion path.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    int64     `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username  string    `gorm:"type:varchar(255)" json:"username"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
