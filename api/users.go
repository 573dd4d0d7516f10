package api

import (
	"github.com/KOMKZ/go-yogan-chat/middleware"
	"github.com/KOMKZ/go-yogan-chat/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) register(c *gin.Context, req *RegisterRequest) (*UserResponse, error) {
	u, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return newUserResponse(u)
}

// login marks the user online before issuing the token
func (h *Handler) login(c *gin.Context, req *LoginRequest) (*TokenResponse, error) {
	ctx := c.Request.Context()
	account, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	if err := h.users.RecordLogin(ctx, account.ID, account.Username); err != nil {
		h.log.WarnCtx(ctx, "presence update failed on login", zap.Int64("user_id", account.ID), zap.Error(err))
	}
	token, err := h.tokens.Issue(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	}, nil
}

func (h *Handler) logout(c *gin.Context, _ *noRequest) (*StatusResponse, error) {
	ctx := c.Request.Context()
	claims, _ := middleware.Claims(c)
	if err := h.tokens.Revoke(ctx, claims); err != nil {
		return nil, err
	}
	if err := h.users.TouchPresence(ctx, me(c).ID, false); err != nil {
		return nil, err
	}
	return &StatusResponse{Message: "Logged out"}, nil
}

func (h *Handler) me(c *gin.Context, _ *noRequest) (*UserResponse, error) {
	return newUserResponse(me(c))
}

func (h *Handler) updateMe(c *gin.Context, req *UpdateMeRequest) (*UserResponse, error) {
	u, err := h.users.Update(c.Request.Context(), me(c).ID, user.UpdateFields{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Timezone:    req.Timezone,
	})
	if err != nil {
		return nil, err
	}
	return newUserResponse(u)
}

// searchUsers excludes the caller and reports presence per hit
func (h *Handler) searchUsers(c *gin.Context, req *UserSearchQuery) ([]UserSummary, error) {
	ctx := c.Request.Context()
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultUserSearchLimit
	}
	users, err := h.users.Search(ctx, req.Query, limit)
	if err != nil {
		return nil, err
	}

	self := me(c).ID
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		if u.ID == self {
			continue
		}
		out = append(out, UserSummary{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			IsOnline:    h.users.IsOnline(ctx, u.ID),
		})
	}
	return out, nil
}

func (h *Handler) onlineUsers(c *gin.Context, _ *noRequest) ([]OnlineUser, error) {
	users, err := h.users.Online(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if h.online != nil {
		h.online.Set(float64(len(users)))
	}

	self := me(c).ID
	out := make([]OnlineUser, 0, len(users))
	for _, u := range users {
		if u.ID == self {
			continue
		}
		out = append(out, OnlineUser{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, LastSeen: u.LastSeen})
	}
	return out, nil
}
