// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment authored by a user on a vibe. Only the
// author may edit or remove it.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	VibeID    uint      `gorm:"not null;index" json:"vibe_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Vibe      Vibe      `gorm:"foreignKey:VibeID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
