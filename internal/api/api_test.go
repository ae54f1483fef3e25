package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumeforge/internal/auth"
	"resumeforge/internal/config"
	"resumeforge/internal/database"
	"resumeforge/internal/editor"
	"resumeforge/internal/importer"
	"resumeforge/internal/render"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	keyOnce    sync.Once
	privatePEM []byte
	publicPEM  []byte
	keyErr     error
)

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	keyOnce.Do(func() {
		privatePEM, publicPEM, keyErr = auth.GenerateKeyPairPEM(auth.DefaultKeyBits)
	})
	require.NoError(t, keyErr)
	svc, err := auth.NewAuthService(privatePEM, publicPEM, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return svc
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type fakeStore struct {
	presignParams map[string]string
	deleted       []string
}

func (s *fakeStore) UploadFile(context.Context, string, io.Reader, int64, string) error { return nil }

func (s *fakeStore) GeneratePresignedURL(_ context.Context, key string, _ time.Duration, params map[string]string) (string, error) {
	s.presignParams = params
	return "https://files.example/" + key + "?sig=1", nil
}

func (s *fakeStore) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) DeletePrefix(_ context.Context, prefix string) error {
	s.deleted = append(s.deleted, prefix)
	return nil
}

type fakeGuard struct {
	blocked  error
	failures int
}

func (g *fakeGuard) Check(context.Context, string, string) error { return g.blocked }
func (g *fakeGuard) Fail(context.Context, string)                { g.failures++ }
func (g *fakeGuard) Reset(context.Context, string)               { g.failures = 0 }

type fakeRevoker struct {
	revoked map[string]bool
}

func (r *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.revoked[jti], nil
}

func (r *fakeRevoker) Revoke(_ context.Context, jti string, _ time.Duration) error {
	r.revoked[jti] = true
	return nil
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *auth.AuthService
	editor  *editor.Service
	queue   *fakeQueue
	store   *fakeStore
	guard   *fakeGuard
	revoker *fakeRevoker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{}
	cfg.API.PublicOrigin = "https://cv.example"
	cfg.API.InternalSecret = "internal-secret"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := &testServer{
		db:      db,
		auth:    newTestAuthService(t),
		editor:  editor.NewService(db, editor.NewMemoryHistoryStore(0), logger, 3),
		queue:   &fakeQueue{},
		store:   &fakeStore{},
		guard:   &fakeGuard{},
		revoker: &fakeRevoker{revoked: map[string]bool{}},
	}

	renderer, err := render.New(logger)
	require.NoError(t, err)

	deps := Dependencies{
		Config:   cfg,
		DB:       db,
		Queue:    srv.queue,
		Storage:  srv.store,
		Auth:     srv.auth,
		Editor:   srv.editor,
		Renderer: renderer,
		Importer: importer.New(importer.WithLogger(logger), importer.WithMaxBytes(64*1024)),
		Logger:   logger,
	}
	authHandler := &AuthHandler{
		db:          db,
		authService: srv.auth,
		guard:       srv.guard,
		revoker:     srv.revoker,
	}

	srv.router = NewRouter(cfg, logger)
	registerResourceRoutes(srv.router, deps, authHandler, NewResumeHandler(srv.editor, renderer, srv.store, cfg.API.PublicOrigin))
	return srv
}

// seedUser 创建用户并返回其访问令牌。
func (s *testServer) seedUser(t *testing.T, username, password string, mustChange bool) (uint, string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := database.User{Username: username, PasswordHash: hash, MustChangePassword: mustChange}
	require.NoError(t, s.db.Create(&user).Error)

	pair, err := s.auth.GenerateTokenPair(user.ID, mustChange)
	require.NoError(t, err)
	return user.ID, pair.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var errBoom = errors.New("boom")
