package models

import "time"

// Order status lifecycle: pending -> completed or pending -> cancelled.
// Terminal states never transition again.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order links a registered user to a song from the catalog. Title, artist
// and the backing flag are snapshotted at order time so later catalog edits
// do not rewrite history. CompletedAt is set exactly when the order leaves
// pending, for either outcome.
type Order struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user"`
	SongID      int        `gorm:"not null" json:"song_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Artist      string     `gorm:"type:varchar(255);not null" json:"artist"`
	HasBacking  bool       `gorm:"not null;default:false" json:"has_backing"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	OrderedAt   time.Time  `gorm:"not null" json:"ordered_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
