package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairtalk/chat-backend/internal/application"
	"github.com/pairtalk/chat-backend/internal/domain/entity"
	"github.com/pairtalk/chat-backend/internal/infrastructure/memory"
	"github.com/pairtalk/chat-backend/internal/interface/middleware"
	"github.com/pairtalk/chat-backend/pkg/validation"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newMessageService(t *testing.T, emails ...string) *application.MessageService {
	t.Helper()
	users := memory.NewUserRepository()
	for _, e := range emails {
		require.NoError(t, users.Create(context.Background(), &entity.User{Email: e, Password: "x"}))
	}
	msgs := memory.NewMessageRepository(users)
	return application.NewMessageService(msgs, users, nil)
}

// messageRouter registers the message routes behind a stub auth middleware
// that pins the caller identity, standing in for the session middleware.
func messageRouter(svc *application.MessageService, caller string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	h := NewMessageHandler(svc, logrus.New())

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.CtxUserEmailKey, caller)
		c.Next()
	})
	api.GET("/messages", h.History)
	api.POST("/messages", h.Send)
	api.DELETE("/messages/:id", h.Delete)
	api.GET("/messages/unread", h.Unread)
	api.POST("/messages/read", h.MarkRead)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestSendMessage(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	r := messageRouter(svc, "a@x.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipient_email": "b@x.com",
		"content":         "hi",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)

	var m messageJSON
	require.NoError(t, json.Unmarshal(env.Data, &m))
	assert.NotZero(t, m.ID)
	assert.Equal(t, "a@x.com", m.SenderEmail)
	assert.Equal(t, "b@x.com", m.RecipientEmail)
	assert.Equal(t, "hi", m.Content)
	assert.False(t, m.IsRead)
	assert.False(t, m.Timestamp.IsZero())
}

func TestSendMessageEmptyContent(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	r := messageRouter(svc, "a@x.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipient_email": "b@x.com",
		"content":         "",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	// Nothing was stored.
	w, env = doJSON(t, r, http.MethodGet, "/api/messages?peer=b@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []messageJSON
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	assert.Empty(t, msgs)
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	r := messageRouter(svc, "a@x.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/messages", gin.H{
		"recipient_email": "ghost@x.com",
		"content":         "hello?",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestHistoryBetweenPeers(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	asAlice := messageRouter(svc, "a@x.com")
	asBob := messageRouter(svc, "b@x.com")

	_, _ = doJSON(t, asAlice, http.MethodPost, "/api/messages", gin.H{"recipient_email": "b@x.com", "content": "hi"})
	_, _ = doJSON(t, asBob, http.MethodPost, "/api/messages", gin.H{"recipient_email": "a@x.com", "content": "hey"})

	for _, r := range []*gin.Engine{asAlice, asBob} {
		peer := "b@x.com"
		if r == asBob {
			peer = "a@x.com"
		}
		w, env := doJSON(t, r, http.MethodGet, "/api/messages?peer="+peer, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var msgs []messageJSON
		require.NoError(t, json.Unmarshal(env.Data, &msgs))
		require.Len(t, msgs, 2)
		assert.Equal(t, "hi", msgs[0].Content)
		assert.Equal(t, "hey", msgs[1].Content)
	}
}

func TestHistoryRequiresPeer(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	r := messageRouter(svc, "a@x.com")

	w, _ := doJSON(t, r, http.MethodGet, "/api/messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnreadAndMarkReadFlow(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	asAlice := messageRouter(svc, "a@x.com")
	asBob := messageRouter(svc, "b@x.com")

	_, _ = doJSON(t, asBob, http.MethodPost, "/api/messages", gin.H{"recipient_email": "a@x.com", "content": "ping"})
	_, _ = doJSON(t, asBob, http.MethodPost, "/api/messages", gin.H{"recipient_email": "a@x.com", "content": "ping again"})

	w, env := doJSON(t, asAlice, http.MethodGet, "/api/messages/unread", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counts map[string]int
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, map[string]int{"b@x.com": 2}, counts)

	w, _ = doJSON(t, asAlice, http.MethodPost, "/api/messages/read", gin.H{"sender_email": "b@x.com"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, asAlice, http.MethodGet, "/api/messages/unread", nil)
	require.Equal(t, http.StatusOK, w.Code)
	counts = nil
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Empty(t, counts)

	// Acknowledging again is still a 200, not an error.
	w, _ = doJSON(t, asAlice, http.MethodPost, "/api/messages/read", gin.H{"sender_email": "b@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteMessage(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com", "c@x.com")
	asAlice := messageRouter(svc, "a@x.com")
	asCarol := messageRouter(svc, "c@x.com")

	_, env := doJSON(t, asAlice, http.MethodPost, "/api/messages", gin.H{"recipient_email": "b@x.com", "content": "hi"})
	var m messageJSON
	require.NoError(t, json.Unmarshal(env.Data, &m))

	// An outsider must not be able to delete it.
	w, _ := doJSON(t, asCarol, http.MethodDelete, fmt.Sprintf("/api/messages/%d", m.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, asAlice, http.MethodDelete, fmt.Sprintf("/api/messages/%d", m.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Gone from history, and a second delete is a 404.
	w, env = doJSON(t, asAlice, http.MethodGet, "/api/messages?peer=b@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []messageJSON
	require.NoError(t, json.Unmarshal(env.Data, &msgs))
	assert.Empty(t, msgs)

	w, _ = doJSON(t, asAlice, http.MethodDelete, fmt.Sprintf("/api/messages/%d", m.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMessageInvalidID(t *testing.T) {
	svc := newMessageService(t, "a@x.com", "b@x.com")
	r := messageRouter(svc, "a@x.com")

	w, _ := doJSON(t, r, http.MethodDelete, "/api/messages/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
