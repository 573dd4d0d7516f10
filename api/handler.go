// Package api exposes the chat services over HTTP
package api

import (
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-chat/auth"
	"github.com/KOMKZ/go-yogan-chat/errcode"
	"github.com/KOMKZ/go-yogan-chat/httpx"
	"github.com/KOMKZ/go-yogan-chat/jwt"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/message"
	"github.com/KOMKZ/go-yogan-chat/middleware"
	"github.com/KOMKZ/go-yogan-chat/user"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const currentUserKey = "current_user"

// Tokens is satisfied by *jwt.TokenManager
type Tokens interface {
	middleware.TokenVerifier
	Issue(ctx context.Context, userID int64) (string, error)
	Revoke(ctx context.Context, claims *jwt.Claims) error
	TTL() time.Duration
}

type Handler struct {
	users    *user.Service
	messages *message.Service
	auth     *auth.Authenticator
	tokens   Tokens
	online   prometheus.Gauge
	log      *logger.CtxZapLogger
}

// NewHandler; online may be nil when metrics are disabled
func NewHandler(users *user.Service, messages *message.Service, authenticator *auth.Authenticator, tokens Tokens, online prometheus.Gauge, log *logger.CtxZapLogger) *Handler {
	return &Handler{
		users:    users,
		messages: messages,
		auth:     authenticator,
		tokens:   tokens,
		online:   online,
		log:      log,
	}
}

// Register mounts every route on r
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/register", httpx.Wrap(h.register))
	r.POST("/login", httpx.Wrap(h.login))
	r.POST("/login/token", httpx.Wrap(h.login))

	authed := r.Group("", middleware.JWT(h.tokens), h.currentUser)
	authed.POST("/logout", httpx.Wrap(h.logout))
	authed.GET("/me", httpx.Wrap(h.me))
	authed.PATCH("/me", httpx.Wrap(h.updateMe))

	authed.POST("/send", httpx.Wrap(h.send))
	authed.GET("/messages", httpx.Wrap(h.conversation))
	authed.GET("/messages/inbox", httpx.Wrap(h.inbox))
	authed.GET("/messages/search", httpx.Wrap(h.searchMessages))
	authed.GET("/messages/recent", httpx.Wrap(h.recent))
	authed.GET("/messages/:id", httpx.Wrap(h.getMessage))
	authed.POST("/messages/:id/read", httpx.Wrap(h.markRead))
	authed.DELETE("/messages/:id", httpx.Wrap(h.deleteMessage))
	authed.GET("/conversations", httpx.Wrap(h.conversations))
	authed.GET("/unread-count", httpx.Wrap(h.unreadCount))

	authed.GET("/users/search", httpx.Wrap(h.searchUsers))
	authed.GET("/users/online", httpx.Wrap(h.onlineUsers))
}

// currentUser resolves the token subject; a deleted or disabled account is rejected
func (h *Handler) currentUser(c *gin.Context) {
	id, _ := middleware.UserID(c)
	u, err := h.users.GetByID(c.Request.Context(), id)
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		err = errcode.ErrUnauthorized.WithMsg("User not found")
	case err == nil && !u.IsActive:
		err = auth.ErrAccountDisabled
	}
	if err != nil {
		httpx.HandleError(c, err)
		c.Abort()
		return
	}
	c.Set(currentUserKey, u)
	c.Next()
}

func me(c *gin.Context) *user.User {
	return c.MustGet(currentUserKey).(*user.User)
}
