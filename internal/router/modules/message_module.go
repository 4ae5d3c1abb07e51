package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pairtalk/chat-backend/internal/container"
	handlers "github.com/pairtalk/chat-backend/internal/interface/http"
	"github.com/pairtalk/chat-backend/internal/interface/middleware"
	"github.com/pairtalk/chat-backend/pkg/helpers"
)

// MessageModule wires the message store and read-state routes. Everything is
// behind the session auth middleware: the sender/recipient identity always
// comes from the session, never from the request body.
// GET /api/messages?peer=   POST /api/messages   DELETE /api/messages/:id
// GET /api/messages/unread  POST /api/messages/read

type MessageModule struct {
	Handler *handlers.MessageHandler
	JWT     *helpers.JWTManager
}

func NewMessageModule(h *handlers.MessageHandler, jwt *helpers.JWTManager) *MessageModule {
	return &MessageModule{Handler: h, JWT: jwt}
}

func (m *MessageModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	// The chat UI polls history and unread counts, so per-user limits are
	// sized for polling clients rather than human click rates.
	auth.Use(middleware.RateLimit(container.GetRedis(), 600, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/messages", m.Handler.History)
		auth.POST("/messages", m.Handler.Send)
		auth.DELETE("/messages/:id", m.Handler.Delete)
		auth.GET("/messages/unread", m.Handler.Unread)
		auth.POST("/messages/read", m.Handler.MarkRead)
	}
}
