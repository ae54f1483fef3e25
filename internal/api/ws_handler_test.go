package api

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	messages   chan string
	subscribed chan uint
}

func (f *fakeFeed) Subscribe(_ context.Context, userID uint) (<-chan string, func() error, error) {
	if f.subscribed != nil {
		f.subscribed <- userID
	}
	return f.messages, func() error { return nil }, nil
}

func dialWs(t *testing.T, feed notificationFeed) (*websocket.Conn, func()) {
	t.Helper()
	router := gin.New()
	h := newWsHandler(feed, newTestAuthService(t), slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	router.GET("/v1/ws", h.HandleConnection)
	server := httptest.NewServer(router)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func TestWebsocketForwardsNotifications(t *testing.T) {
	feed := &fakeFeed{messages: make(chan string, 1), subscribed: make(chan uint, 1)}
	feed.messages <- `{"status":"completed","resume_id":7}`

	conn, cleanup := dialWs(t, feed)
	defer cleanup()

	pair, err := newTestAuthService(t).GenerateTokenPair(42, false)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsAuthMessage{Type: "auth", Token: pair.AccessToken}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"completed","resume_id":7}`, string(payload))
	assert.Equal(t, uint(42), <-feed.subscribed)
}

func TestWebsocketRejectsRefreshToken(t *testing.T) {
	conn, cleanup := dialWs(t, &fakeFeed{messages: make(chan string)})
	defer cleanup()

	pair, err := newTestAuthService(t).GenerateTokenPair(42, false)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsAuthMessage{Type: "auth", Token: pair.RefreshToken}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), err.Error())
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", "api.example", nil))
	assert.True(t, originAllowed("https://api.example", "api.example", nil))
	assert.False(t, originAllowed("https://evil.example", "api.example", nil))

	allowed := []string{"https://app.example/"}
	assert.True(t, originAllowed("https://app.example", "api.example", allowed))
	assert.False(t, originAllowed("https://api.example", "api.example", allowed))
}
