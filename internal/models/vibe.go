// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PrivacyStatus controls who may view a vibe.
type PrivacyStatus string

const (
	// PrivacyPublic makes a vibe visible to any user.
	PrivacyPublic PrivacyStatus = "PUBLIC"
	// PrivacyFriendsOnly restricts a vibe to the owner and accepted friends.
	PrivacyFriendsOnly PrivacyStatus = "FRIENDS_ONLY"
	// PrivacyPrivate restricts a vibe to its owner.
	PrivacyPrivate PrivacyStatus = "PRIVATE"
)

// Valid reports whether ps is one of the known privacy tiers.
func (ps PrivacyStatus) Valid() bool {
	switch ps {
	case PrivacyPublic, PrivacyFriendsOnly, PrivacyPrivate:
		return true
	}
	return false
}

// Vibe represents a user-authored post with text, an optional image and
// a privacy tier.
type Vibe struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	ImageURL  string        `json:"image_url"`
	Privacy   PrivacyStatus `gorm:"type:varchar(20);not null;default:'PUBLIC'" json:"privacy"`
	UserID    uint          `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"user_id"`
	User      User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
