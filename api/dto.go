package api

import (
	"time"

	"github.com/KOMKZ/go-yogan-chat/httpx/types"
	"github.com/KOMKZ/go-yogan-chat/message"
	"github.com/KOMKZ/go-yogan-chat/user"
	"github.com/KOMKZ/go-yogan-chat/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const defaultUserSearchLimit = 20

type noRequest struct{}

type StatusResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validator.Username...),
		validation.Field(&r.Email, validator.Email...),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginRequest accepts the OAuth2 password form as well as JSON
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UpdateMeRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Timezone    *string `json:"timezone"`
}

func (r *UpdateMeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DisplayName, validator.DisplayName...),
		validation.Field(&r.AvatarURL, validator.AvatarURL...),
		validation.Field(&r.Timezone, validation.By(validTimezone)),
	)
}

func validTimezone(v any) error {
	tz, _ := v.(*string)
	if tz == nil {
		return nil
	}
	if *tz == "" {
		return validation.NewError("validation_timezone", "must not be empty")
	}
	if _, err := time.LoadLocation(*tz); err != nil {
		return validation.NewError("validation_timezone", "must be an IANA time zone")
	}
	return nil
}

// UserResponse never carries the password hash
type UserResponse struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName *string    `json:"display_name"`
	AvatarURL   *string    `json:"avatar_url"`
	Timezone    string     `json:"timezone"`
	IsActive    bool       `json:"is_active"`
	LastSeen    *time.Time `json:"last_seen"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newUserResponse(u *user.User) (*UserResponse, error) {
	var resp UserResponse
	if err := types.Copy(&resp, u); err != nil {
		return nil, err
	}
	return &resp, nil
}

type UserSummary struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	IsOnline    bool    `json:"is_online"`
}

type OnlineUser struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name"`
	LastSeen    *time.Time `json:"last_seen"`
}

type UserSearchQuery struct {
	Query string `form:"query"`
	types.LimitQuery
}

func (r *UserSearchQuery) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required, validation.Length(1, 100)),
	)
}

type SendRequest struct {
	RecipientID int64  `json:"recipient_id" form:"recipient_id"`
	Content     string `json:"content" form:"content"`
}

// Validate checks shape only; content rules belong to message.Service
func (r *SendRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RecipientID, validation.Required, validation.Min(int64(1))),
	)
}

type MessageResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	RecipientID int64      `json:"recipient_id"`
	Content     string     `json:"content"`
	MessageType string     `json:"message_type"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newMessageResponse(m message.DirectMessage) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		MessageType: m.MessageType,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

func newMessageList(msgs []message.DirectMessage) []MessageResponse {
	return types.CopySlice(msgs, newMessageResponse)
}

type ConversationQuery struct {
	WithUserID int64 `form:"with_user_id"`
	types.OffsetQuery
}

func (r *ConversationQuery) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WithUserID, validation.Required, validation.Min(int64(1))),
	)
}

type MessageSearchQuery struct {
	Query string `form:"query"`
	types.LimitQuery
}

func (r *MessageSearchQuery) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required, validation.Length(1, 200)),
	)
}

type MessagePath struct {
	ID int64 `uri:"id"`
}

func (r *MessagePath) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
	)
}

type PartnerResponse struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	UnreadCount int64  `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
