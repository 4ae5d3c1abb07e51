package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pairtalk/chat-backend/internal/application"
	"github.com/pairtalk/chat-backend/internal/domain/entity"
	"github.com/pairtalk/chat-backend/internal/interface/middleware"
	"github.com/pairtalk/chat-backend/pkg/response"
	"github.com/pairtalk/chat-backend/pkg/validation"
)

type MessageHandler struct {
	Svc    *application.MessageService
	Logger *logrus.Logger
}

func NewMessageHandler(svc *application.MessageService, logger *logrus.Logger) *MessageHandler {
	return &MessageHandler{Svc: svc, Logger: logger}
}

type sendMessageRequest struct {
	RecipientEmail string `json:"recipient_email" binding:"required,email"`
	Content        string `json:"content"`
}

type markReadRequest struct {
	SenderEmail string `json:"sender_email" binding:"required,email"`
}

// messageJSON is the wire shape of a message; isRead is included so a polling
// client can render delivery state without extra round trips.
type messageJSON struct {
	ID             int64     `json:"id"`
	SenderEmail    string    `json:"sender_email"`
	RecipientEmail string    `json:"recipient_email"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	IsRead         bool      `json:"is_read"`
}

func toJSON(m *entity.Message) messageJSON {
	return messageJSON{
		ID:             m.ID,
		SenderEmail:    m.SenderEmail,
		RecipientEmail: m.RecipientEmail,
		Content:        m.Content,
		Timestamp:      m.Timestamp,
		IsRead:         m.IsRead,
	}
}

// Send appends a message from the authenticated user to the recipient.
func (h *MessageHandler) Send(c *gin.Context) {
	sender := c.GetString(middleware.CtxUserEmailKey)
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	m, err := h.Svc.Send(c.Request.Context(), sender, req.RecipientEmail, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmptyContent):
			response.Error[any](c, http.StatusBadRequest, "message content must not be empty", nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "recipient not found", nil)
		default:
			h.Logger.WithError(err).Error("send message failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to send message", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, toJSON(m), "message sent", nil)
}

// History returns the full ordered conversation between the authenticated
// user and the peer given in ?peer=. An empty conversation is a 200 with an
// empty list, not an error.
func (h *MessageHandler) History(c *gin.Context) {
	caller := c.GetString(middleware.CtxUserEmailKey)
	peer := c.Query("peer")
	if peer == "" {
		response.Error[any](c, http.StatusBadRequest, "missing peer", nil)
		return
	}

	msgs, err := h.Svc.History(c.Request.Context(), caller, peer)
	if err != nil {
		h.Logger.WithError(err).Error("fetch history failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch messages", nil)
		return
	}
	out := make([]messageJSON, 0, len(msgs))
	for i := range msgs {
		out = append(out, toJSON(&msgs[i]))
	}
	response.Success(c, http.StatusOK, out, "messages", nil)
}

// Delete removes a message by id. Only a participant of the conversation may
// delete it; the delete is permanent.
func (h *MessageHandler) Delete(c *gin.Context) {
	caller := c.GetString(middleware.CtxUserEmailKey)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid message id", nil)
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), caller, id); err != nil {
		switch {
		case errors.Is(err, application.ErrMessageNotFound):
			response.Error[any](c, http.StatusNotFound, "message not found", nil)
		case errors.Is(err, application.ErrNotParticipant):
			response.Error[any](c, http.StatusForbidden, "not allowed to delete this message", nil)
		default:
			h.Logger.WithError(err).Error("delete message failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to delete message", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "message deleted", nil)
}

// Unread returns the authenticated user's unread counts grouped by sender.
func (h *MessageHandler) Unread(c *gin.Context) {
	caller := c.GetString(middleware.CtxUserEmailKey)
	counts, err := h.Svc.UnreadCounts(c.Request.Context(), caller)
	if err != nil {
		h.Logger.WithError(err).Error("unread counts failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch unread counts", nil)
		return
	}
	response.Success(c, http.StatusOK, counts, "unread counts", nil)
}

// MarkRead acknowledges every unread message from sender_email to the
// authenticated user. Safe to call repeatedly.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	caller := c.GetString(middleware.CtxUserEmailKey)
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.MarkRead(c.Request.Context(), req.SenderEmail, caller); err != nil {
		h.Logger.WithError(err).Error("mark read failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to mark messages read", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"read": true}, "messages marked read", nil)
}
