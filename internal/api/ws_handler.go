package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"resumeforge/internal/auth"
	"resumeforge/internal/tasks"
)

const (
	wsAuthTimeout  = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 5 * time.Second
)

// notificationFeed 按用户订阅导出通知。
type notificationFeed interface {
	Subscribe(ctx context.Context, userID uint) (<-chan string, func() error, error)
}

// redisFeed 订阅 worker 发布到 user_notify:{id} 的消息。
type redisFeed struct {
	client redis.UniversalClient
}

func (f redisFeed) Subscribe(ctx context.Context, userID uint) (<-chan string, func() error, error) {
	pubsub := f.client.Subscribe(ctx, tasks.NotifyChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", tasks.NotifyChannel(userID), err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}

// WsHandler 负责 WebSocket 鉴权并把 PDF 导出通知转发给客户端。
type WsHandler struct {
	feed           notificationFeed
	authService    *auth.AuthService
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(redisClient redis.UniversalClient, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	return newWsHandler(redisFeed{client: redisClient}, authService, logger, allowedOrigins)
}

func newWsHandler(feed notificationFeed, authService *auth.AuthService, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		feed:           feed,
		authService:    authService,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), r.Host, h.allowedOrigins)
		},
	}
	return h
}

// originAllowed 未配置白名单时只接受同源请求。
func originAllowed(origin, host string, allowed []string) bool {
	if origin == "" {
		return true
	}
	if len(allowed) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, host)
	}
	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimRight(candidate, "/"), origin) {
			return true
		}
	}
	return false
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

var errWsPasswordChange = errors.New("password change required")

// HandleConnection 升级连接，首条消息必须是 {"type":"auth","token":...}。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	log := h.logger.With(slog.String("client_ip", c.ClientIP()))

	userID, err := h.authenticate(conn)
	if err != nil {
		log.Warn("websocket authentication failed", slog.Any("error", err))
		return
	}
	log = log.With(slog.Uint64("user_id", uint64(userID)))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 认证后客户端不再发送业务消息，读循环只用于感知断开。
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.forward(ctx, conn, userID, log); err != nil {
		log.Info("websocket connection closed", slog.Any("error", err))
		return
	}
	log.Info("websocket connection closed")
}

func (h *WsHandler) authenticate(conn *websocket.Conn) (uint, error) {
	_ = conn.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	defer conn.SetReadDeadline(time.Time{})

	_, message, err := conn.ReadMessage()
	if err != nil {
		return 0, fmt.Errorf("read auth message: %w", err)
	}

	var msg wsAuthMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "invalid auth payload")
		return 0, fmt.Errorf("decode auth payload: %w", err)
	}
	if msg.Type != "auth" || msg.Token == "" {
		writeClose(conn, websocket.ClosePolicyViolation, "auth required")
		return 0, errors.New("invalid auth message")
	}

	claims, err := h.authService.ValidateTokenOfType(msg.Token, auth.TokenTypeAccess)
	if err != nil {
		writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
		return 0, err
	}
	if claims.MustChangePassword {
		writeClose(conn, websocket.ClosePolicyViolation, "password change required")
		return 0, errWsPasswordChange
	}
	return claims.UserID, nil
}

func (h *WsHandler) forward(ctx context.Context, conn *websocket.Conn, userID uint, log *slog.Logger) error {
	messages, closeFeed, err := h.feed.Subscribe(ctx, userID)
	if err != nil {
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		return err
	}
	defer closeFeed()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-messages:
			if !ok {
				return errors.New("notification feed closed")
			}
			log.Debug("forwarding notification")
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(wsWriteTimeout))
}
