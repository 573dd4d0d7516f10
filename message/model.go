// Package message stores direct messages and serves the cached conversation views
package message

import "time"

const (
	DefaultPageLimit   = 50
	DefaultSearchLimit = 20
	DefaultRecentLimit = 10
	MaxLimit           = 100
	MaxContentLength   = 4000
)

type DirectMessage struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	SenderID    int64      `gorm:"not null;index:idx_dm_sender_created,priority:1" json:"sender_id"`
	RecipientID int64      `gorm:"not null;index:idx_dm_recipient_created,priority:1;index:idx_dm_recipient_read,priority:1" json:"recipient_id"`
	MessageType string     `gorm:"size:20;not null;default:text" json:"message_type"`
	IsRead      bool       `gorm:"not null;default:false;index:idx_dm_recipient_read,priority:2" json:"is_read"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `gorm:"index:idx_dm_sender_created,priority:2;index:idx_dm_recipient_created,priority:2" json:"created_at"`
}

func (DirectMessage) TableName() string { return "direct_messages" }

// Involves reports whether userID sent or received the message
func (m *DirectMessage) Involves(userID int64) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// Partner is one entry of a user's conversation list
type Partner struct {
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	UnreadCount int64  `json:"unread_count"`
}

// clampLimit applies the default for non-positive values and caps at MaxLimit
func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
