// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// FriendshipStatus represents the lifecycle state of a friendship edge.
type FriendshipStatus string

const (
	// FriendshipStatusPending indicates a request awaiting the receiver's decision.
	FriendshipStatusPending FriendshipStatus = "PENDING"
	// FriendshipStatusAccepted indicates an established friendship.
	FriendshipStatusAccepted FriendshipStatus = "ACCEPTED"
)

// Friendship is a directed edge between two users. Direction is required to
// distinguish sent vs received pending requests; once accepted the relation
// is treated as symmetric. At most one edge may exist between any pair of
// users regardless of direction (enforced by a unique index over the
// unordered pair, see database migrations).
type Friendship struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RequesterID uint             `gorm:"not null;index" json:"requester_id"`
	ReceiverID  uint             `gorm:"not null;index" json:"receiver_id"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Requester User `gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE" json:"requester,omitempty"`
	Receiver  User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
}

// TableName specifies the table name for GORM.
func (Friendship) TableName() string {
	return "friendships"
}

// OtherUserID returns the participant on the opposite side of the edge
// from userID.
func (f *Friendship) OtherUserID(userID uint) uint {
	if f.RequesterID == userID {
		return f.ReceiverID
	}
	return f.RequesterID
}

// Involves reports whether userID is a participant of the edge.
func (f *Friendship) Involves(userID uint) bool {
	return f.RequesterID == userID || f.ReceiverID == userID
}
