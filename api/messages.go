package api

import (
	"github.com/KOMKZ/go-yogan-chat/httpx/types"
	"github.com/gin-gonic/gin"
)

func (h *Handler) send(c *gin.Context, req *SendRequest) (*MessageResponse, error) {
	msg, err := h.messages.Send(c.Request.Context(), me(c).ID, req.RecipientID, req.Content)
	if err != nil {
		return nil, err
	}
	resp := newMessageResponse(*msg)
	return &resp, nil
}

func (h *Handler) conversation(c *gin.Context, req *ConversationQuery) ([]MessageResponse, error) {
	msgs, err := h.messages.Conversation(c.Request.Context(), me(c).ID, req.WithUserID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return newMessageList(msgs), nil
}

func (h *Handler) inbox(c *gin.Context, req *types.OffsetQuery) ([]MessageResponse, error) {
	msgs, err := h.messages.UserMessages(c.Request.Context(), me(c).ID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return newMessageList(msgs), nil
}

func (h *Handler) searchMessages(c *gin.Context, req *MessageSearchQuery) ([]MessageResponse, error) {
	msgs, err := h.messages.Search(c.Request.Context(), me(c).ID, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	return newMessageList(msgs), nil
}

func (h *Handler) recent(c *gin.Context, req *types.LimitQuery) ([]MessageResponse, error) {
	msgs, err := h.messages.Recent(c.Request.Context(), me(c).ID, req.Limit)
	if err != nil {
		return nil, err
	}
	return newMessageList(msgs), nil
}

func (h *Handler) getMessage(c *gin.Context, req *MessagePath) (*MessageResponse, error) {
	msg, err := h.messages.GetFor(c.Request.Context(), req.ID, me(c).ID)
	if err != nil {
		return nil, err
	}
	resp := newMessageResponse(*msg)
	return &resp, nil
}

func (h *Handler) markRead(c *gin.Context, req *MessagePath) (*StatusResponse, error) {
	if _, err := h.messages.MarkRead(c.Request.Context(), req.ID, me(c).ID); err != nil {
		return nil, err
	}
	return &StatusResponse{Message: "Message marked as read"}, nil
}

func (h *Handler) deleteMessage(c *gin.Context, req *MessagePath) (*StatusResponse, error) {
	if err := h.messages.Delete(c.Request.Context(), req.ID, me(c).ID); err != nil {
		return nil, err
	}
	return &StatusResponse{Message: "Message deleted"}, nil
}

func (h *Handler) conversations(c *gin.Context, _ *noRequest) ([]PartnerResponse, error) {
	partners, err := h.messages.Partners(c.Request.Context(), me(c).ID)
	if err != nil {
		return nil, err
	}
	out := make([]PartnerResponse, len(partners))
	for i, p := range partners {
		out[i] = PartnerResponse{UserID: p.UserID, Username: p.Name, UnreadCount: p.UnreadCount}
	}
	return out, nil
}

func (h *Handler) unreadCount(c *gin.Context, _ *noRequest) (*UnreadCountResponse, error) {
	n, err := h.messages.UnreadCount(c.Request.Context(), me(c).ID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{UnreadCount: n}, nil
}
