// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Post represents a post authored by an account.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	Text    string `gorm:"type:text;not null" json:"text"`
	IsDraft bool   `gorm:"not null;index" json:"is_draft"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// IsLiked indicates whether the requesting user liked this post (computed)
	IsLiked     bool         `gorm:"->" json:"is_liked"`
	Attachments []Attachment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"post_attachments"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Attachment is an opaque file stored in the blob store and bound to one post.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post"`
	File      string    `gorm:"not null" json:"file"`
	CreatedAt time.Time `json:"created_at"`
}

// TimeSince renders the elapsed time since t, e.g. "3 hours".
func TimeSince(t time.Time) string {
	return strings.TrimSpace(humanize.RelTime(t, time.Now(), "", ""))
}
