package models

import "time"

// User is a guest chatting with the bot. Created on the first inbound
// message from an unseen chat id and never deleted - /reset only clears
// the registration fields.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ChatID       int64      `gorm:"uniqueIndex;not null" json:"chat_id"`
	Username     string     `gorm:"type:varchar(255)" json:"username"`
	FirstName    string     `gorm:"type:varchar(255)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(255)" json:"last_name"`
	LanguageCode string     `gorm:"type:varchar(10)" json:"language_code"`
	DisplayName  *string    `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	TableNumber  *string    `gorm:"type:varchar(50)" json:"table_number,omitempty"`
	IsRegistered bool       `gorm:"not null;default:false" json:"is_registered"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
