// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// FriendshipStatus represents the status of a friendship request.
type FriendshipStatus string

const (
	// FriendshipStatusWaiting is the initial state of a request.
	FriendshipStatusWaiting FriendshipStatus = "waiting"
	// FriendshipStatusAccepted marks a confirmed friendship.
	FriendshipStatusAccepted FriendshipStatus = "accepted"
)

// Valid reports whether s is a known status.
func (s FriendshipStatus) Valid() bool {
	return s == FriendshipStatusWaiting || s == FriendshipStatusAccepted
}

// Friendship is a directed edge sender -> receiver. At most one row exists per
// ordered pair; the reverse direction is a separate row.
type Friendship struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	SenderID   uint             `gorm:"not null;uniqueIndex:idx_friendship_sender_receiver" json:"sender_id"`
	ReceiverID uint             `gorm:"not null;uniqueIndex:idx_friendship_sender_receiver;index" json:"receiver_id"`
	Status     FriendshipStatus `gorm:"type:varchar(20);not null;default:'waiting';index:idx_friendships_status" json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Relationships
	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "friendships"
}
