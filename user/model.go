// Package user owns accounts, profiles and presence, read through the cache
package user

import "time"

// User is both the table row and the cached profile value
type User struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HashedPassword string     `gorm:"size:255;not null" json:"hashed_password"`
	IsActive       bool       `gorm:"not null;default:true;index:idx_users_active_created,priority:1" json:"is_active"`
	CreatedAt      time.Time  `gorm:"index:idx_users_active_created,priority:2" json:"created_at"`
	DisplayName    *string    `gorm:"size:100" json:"display_name"`
	AvatarURL      *string    `gorm:"type:text" json:"avatar_url"`
	LastSeen       *time.Time `gorm:"index:idx_users_last_seen" json:"last_seen"`
	Timezone       string     `gorm:"size:50;not null;default:UTC" json:"timezone"`
}

func (User) TableName() string { return "users" }

// Name prefers the display name
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}

// SeenWithin reports whether the user was active in the last window
func (u *User) SeenWithin(window time.Duration, now time.Time) bool {
	return u.LastSeen != nil && !u.LastSeen.Before(now.Add(-window))
}

// UpdateFields is a partial update; nil fields are left unchanged
type UpdateFields struct {
	Username    *string
	Email       *string
	DisplayName *string
	AvatarURL   *string
	Timezone    *string
	IsActive    *bool
}

func (f UpdateFields) columns() map[string]any {
	cols := make(map[string]any)
	if f.Username != nil {
		cols["username"] = *f.Username
	}
	if f.Email != nil {
		cols["email"] = *f.Email
	}
	if f.DisplayName != nil {
		cols["display_name"] = *f.DisplayName
	}
	if f.AvatarURL != nil {
		cols["avatar_url"] = *f.AvatarURL
	}
	if f.Timezone != nil {
		cols["timezone"] = *f.Timezone
	}
	if f.IsActive != nil {
		cols["is_active"] = *f.IsActive
	}
	return cols
}
