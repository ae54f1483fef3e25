package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	privatePEM, publicPEM, err := auth.GenerateKeyPairPEM(auth.DefaultKeyBits)
	require.NoError(t, err)
	svc, err := auth.NewAuthService(privatePEM, publicPEM, time.Minute, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestAuthMiddleware(t *testing.T) {
	svc := newAuthService(t)
	pair, err := svc.GenerateTokenPair(9, true)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/me", AuthMiddleware(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetUint(UserIDKey),
			"must_change": c.GetBool(MustChangePasswordKey),
		})
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + pair.AccessToken, http.StatusUnauthorized},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"access token", "Bearer " + pair.AccessToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":9,"must_change":true}`, rec.Body.String())
			}
		})
	}
}

func TestPasswordGateBlocksPendingChange(t *testing.T) {
	for _, mustChange := range []bool{true, false} {
		router := gin.New()
		router.GET("/x", func(c *gin.Context) {
			c.Set(MustChangePasswordKey, mustChange)
			c.Next()
		}, RequirePasswordChangeCompletedMiddleware(), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if mustChange {
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), passwordChangeRequiredMessage)
		} else {
			assert.Equal(t, http.StatusNoContent, rec.Code)
		}
	}
}

func TestInternalSecretMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/metrics", InternalSecretMiddleware("s3cret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set(InternalSecretHeader, "s3cret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	unconfigured := gin.New()
	unconfigured.GET("/metrics", InternalSecretMiddleware(" "), func(c *gin.Context) {})
	rec = httptest.NewRecorder()
	unconfigured.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCorrelationAndLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(CorrelationIDMiddleware(), SlogLoggerMiddleware(logger))
	router.GET("/items/:id", func(c *gin.Context) {
		LoggerFromContext(c).Info("handling")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/3", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(CorrelationIDHeader))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var completed map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &completed))
	assert.Equal(t, "request completed", completed["msg"])
	assert.Equal(t, "WARN", completed["level"])
	assert.Equal(t, "abc-123", completed["correlation_id"])
	assert.Equal(t, "/items/:id", completed["path"])
	assert.EqualValues(t, http.StatusNotFound, completed["status"])
}

func TestCorrelationIDGeneratedWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetCorrelationID(c))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(CorrelationIDHeader))
}
