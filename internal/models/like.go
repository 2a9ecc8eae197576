package models

import (
	"time"
)

// Like records that a user liked a vibe. Presence of the row is the state;
// the (UserID, VibeID) pair is unique so a user can hold at most one like
// per vibe at any time.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_vibe" json:"user_id"`
	VibeID    uint      `gorm:"not null;uniqueIndex:idx_like_user_vibe" json:"vibe_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Vibe Vibe `gorm:"foreignKey:VibeID;constraint:OnDelete:CASCADE" json:"-"`
}
