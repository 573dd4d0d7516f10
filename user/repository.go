package user

import (
	"context"
	"strings"
	"time"

	"github.com/KOMKZ/go-yogan-chat/database"
	"gorm.io/gorm"
)

type Repository struct {
	*database.BaseRepository[User]
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{BaseRepository: database.NewBaseRepository[User](db)}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.FindOne(ctx, "username = ?", username)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.FindOne(ctx, "email = ?", email)
}

// Search matches active users whose username or display name contains query, ignoring case
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	users := make([]User, 0)
	err := r.DB(ctx).
		Where("is_active = ?", true).
		Where("(LOWER(username) LIKE ? ESCAPE '!' OR LOWER(display_name) LIKE ? ESCAPE '!')", pattern, pattern).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// SeenSince lists active users with last_seen at or after since
func (r *Repository) SeenSince(ctx context.Context, since time.Time) ([]User, error) {
	users := make([]User, 0)
	err := r.DB(ctx).
		Where("is_active = ? AND last_seen >= ?", true, since).
		Order("last_seen DESC").
		Find(&users).Error
	return users, err
}

// FindByIDs keeps no particular order
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) ([]User, error) {
	users := make([]User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	err := r.DB(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *Repository) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	return r.UpdateColumns(ctx, id, map[string]any{"last_seen": at})
}

// escapeLike neutralises LIKE wildcards with '!' as the escape character
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
