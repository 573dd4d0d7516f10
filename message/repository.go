package message

import (
	"context"
	"strings"
	"time"

	"github.com/KOMKZ/go-yogan-chat/database"
	"gorm.io/gorm"
)

type Repository struct {
	*database.BaseRepository[DirectMessage]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{BaseRepository: database.NewBaseRepository[DirectMessage](db)}
}

func (r *Repository) newestFirst(ctx context.Context) *gorm.DB {
	return r.DB(ctx).Order("created_at DESC").Order("id DESC")
}

// Conversation lists messages between a and b in either direction
func (r *Repository) Conversation(ctx context.Context, a, b int64, limit, offset int) ([]DirectMessage, error) {
	msgs := make([]DirectMessage, 0)
	err := r.newestFirst(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// ForUser lists messages the user sent or received
func (r *Repository) ForUser(ctx context.Context, userID int64, limit, offset int) ([]DirectMessage, error) {
	msgs := make([]DirectMessage, 0)
	err := r.newestFirst(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Offset(offset).Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *Repository) Received(ctx context.Context, userID int64, limit int) ([]DirectMessage, error) {
	msgs := make([]DirectMessage, 0)
	err := r.newestFirst(ctx).Where("recipient_id = ?", userID).Limit(limit).Find(&msgs).Error
	return msgs, err
}

// Search is a case-insensitive substring match over the user's messages
func (r *Repository) Search(ctx context.Context, userID int64, query string, limit int) ([]DirectMessage, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	msgs := make([]DirectMessage, 0)
	err := r.newestFirst(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Where("LOWER(content) LIKE ? ESCAPE '!'", pattern).
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *Repository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return r.Count(ctx, "recipient_id = ? AND is_read = ?", userID, false)
}

// UnreadBySender counts userID's unread messages per sender
func (r *Repository) UnreadBySender(ctx context.Context, userID int64) (map[int64]int64, error) {
	var rows []struct {
		SenderID int64
		N        int64
	}
	err := r.DB(ctx).Model(&DirectMessage{}).
		Select("sender_id, COUNT(*) AS n").
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.SenderID] = row.N
	}
	return out, nil
}

type partnerRow struct {
	ID          int64
	Username    string
	DisplayName *string
}

// Partners returns every user userID has exchanged a message with
func (r *Repository) Partners(ctx context.Context, userID int64) ([]partnerRow, error) {
	var rows []partnerRow
	err := r.DB(ctx).Table("users").
		Distinct("users.id", "users.username", "users.display_name").
		Joins("JOIN direct_messages dm ON (dm.sender_id = ? AND dm.recipient_id = users.id) OR (dm.recipient_id = ? AND dm.sender_id = users.id)", userID, userID).
		Scan(&rows).Error
	return rows, err
}

// MarkRead flips is_read once; it reports false when the row was already read
func (r *Repository) MarkRead(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.DB(ctx).Model(&DirectMessage{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected > 0, res.Error
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
