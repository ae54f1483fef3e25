package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumeforge/internal/auth"
	"resumeforge/internal/database"
)

const refreshTokenCookieName = "refresh_token"

// CookieOptions 控制刷新令牌 Cookie 的作用域。
type CookieOptions struct {
	Domain string
	Secure bool
}

// AuthHandler 处理注册、登录、刷新、退出、资料与改密。
type AuthHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
	guard       loginGuard
	revoker     tokenRevoker
	cookies     CookieOptions
}

// NewAuthHandler 构造认证处理器，限流与令牌黑名单存放在 Redis。
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.Cmdable, limits LoginLimits, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{
		db:          db,
		authService: authService,
		guard:       newRedisLoginGuard(redisClient, limits),
		revoker:     &redisTokenRevoker{client: redisClient},
		cookies:     cookies,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// Register 创建新用户账号。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	username := strings.TrimSpace(req.Username)
	logger := requestLogger(c).With(slog.String("username", username))

	var count int64
	if err := h.db.WithContext(ctx).Model(&database.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		logger.Error("register lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if count > 0 {
		logger.Info("register conflict: user already exists")
		Conflict(c, "username already taken")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	user := database.User{Username: username, PasswordHash: hashed}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken        string `json:"access_token"`
	TokenType          string `json:"token_type"`
	ExpiresIn          int    `json:"expires_in"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Login 校验口令并返回 Token，刷新令牌写入 HttpOnly Cookie。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	username := strings.TrimSpace(req.Username)
	logger := requestLogger(c).With(slog.String("username", username))

	if err := h.guard.Check(ctx, c.ClientIP(), username); err != nil {
		logger.Warn("login throttled", slog.Any("reason", err))
		TooManyRequests(c, err.Error())
		return
	}

	var user database.User
	if err := h.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			h.guard.Fail(ctx, username)
			Unauthorized(c)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.guard.Fail(ctx, username)
		Unauthorized(c)
		return
	}
	h.guard.Reset(ctx, username)

	h.issueTokens(c, logger, user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh 校验刷新令牌并颁发新的 TokenPair，旧令牌随即失效。
func (h *AuthHandler) Refresh(c *gin.Context) {
	logger := requestLogger(c)
	claims, ok := h.validRefreshClaims(c, logger)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		logger.Info("refresh user not found", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	if err := h.revoker.Revoke(ctx, claims.ID, ttlUntil(claims.ExpiresAt, h.authService.RefreshTokenTTL())); err != nil {
		logger.Error("refresh revoke old token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.issueTokens(c, logger, user)
}

// Logout 将刷新令牌加入黑名单并清除 Cookie。
func (h *AuthHandler) Logout(c *gin.Context) {
	logger := requestLogger(c)
	claims, ok := h.validRefreshClaims(c, logger)
	if !ok {
		return
	}

	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, ttlUntil(claims.ExpiresAt, h.authService.RefreshTokenTTL())); err != nil {
		logger.Error("logout revoke token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.writeRefreshCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

type profileResponse struct {
	ID                 uint      `json:"id"`
	Username           string    `json:"username"`
	MustChangePassword bool      `json:"must_change_password"`
	ResumeCount        int64     `json:"resume_count"`
	CreatedAt          time.Time `json:"created_at"`
}

// Profile 返回当前登录用户的资料。
func (h *AuthHandler) Profile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var user database.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unauthorized(c)
			return
		}
		requestLogger(c).Error("profile query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var count int64
	if err := h.db.WithContext(ctx).Model(&database.Resume{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		requestLogger(c).Error("profile resume count failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:                 user.ID,
		Username:           user.Username,
		MustChangePassword: user.MustChangePassword,
		ResumeCount:        count,
		CreatedAt:          user.CreatedAt,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,max=72"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// ChangePassword 校验当前密码并更新，同时清除强制改密标记。
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := requestLogger(c).With(slog.Uint64("user_id", uint64(userID)))

	var user database.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		logger.Info("change password: user not found", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		logger.Info("change password: current password mismatch")
		Unauthorized(c)
		return
	}
	if req.NewPassword == req.CurrentPassword {
		BadRequest(c, "new password must be different from current password")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("change password: hash failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Model(&user).Updates(map[string]any{
		"password_hash":        hashed,
		"must_change_password": false,
	}).Error; err != nil {
		logger.Error("change password: update failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	user.MustChangePassword = false

	if raw, err := c.Cookie(refreshTokenCookieName); err == nil && raw != "" {
		if claims, err := h.authService.ValidateTokenOfType(raw, auth.TokenTypeRefresh); err == nil && claims.ID != "" {
			if err := h.revoker.Revoke(ctx, claims.ID, ttlUntil(claims.ExpiresAt, h.authService.RefreshTokenTTL())); err != nil {
				logger.Warn("change password: revoke refresh failed", slog.Any("error", err))
			}
		}
	}

	logger.Info("password changed")
	h.issueTokens(c, logger, user)
}

// validRefreshClaims 取出并校验刷新令牌；失败时已写入响应。
func (h *AuthHandler) validRefreshClaims(c *gin.Context, logger *slog.Logger) (*auth.TokenClaims, bool) {
	raw := h.extractRefreshToken(c)
	if raw == "" {
		Unauthorized(c)
		return nil, false
	}

	claims, err := h.authService.ValidateTokenOfType(raw, auth.TokenTypeRefresh)
	if err != nil || claims.ID == "" {
		logger.Info("refresh token invalid", slog.Any("error", err))
		Unauthorized(c)
		return nil, false
	}

	revoked, err := h.revoker.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		logger.Error("refresh token blacklist lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return nil, false
	}
	if revoked {
		logger.Info("refresh token revoked", slog.String("jti", claims.ID))
		Unauthorized(c)
		return nil, false
	}
	return claims, true
}

func (h *AuthHandler) issueTokens(c *gin.Context, logger *slog.Logger, user database.User) {
	pair, err := h.authService.GenerateTokenPair(user.ID, user.MustChangePassword)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.writeRefreshCookie(c, pair.RefreshToken, int(h.authService.RefreshTokenTTL().Seconds()))
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:        pair.AccessToken,
		TokenType:          "Bearer",
		ExpiresIn:          int(h.authService.AccessTokenTTL().Seconds()),
		MustChangePassword: user.MustChangePassword,
	})
}

func (h *AuthHandler) extractRefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(refreshTokenCookieName); err == nil && token != "" {
		return token
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}

// writeRefreshCookie 写入或清除（maxAge < 0）刷新令牌 Cookie。
func (h *AuthHandler) writeRefreshCookie(c *gin.Context, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   h.cookies.Secure || isHTTPSRequest(c),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Domain:   strings.TrimSpace(h.cookies.Domain),
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	}
	http.SetCookie(c.Writer, cookie)
}

func isHTTPSRequest(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}

func ttlUntil(expiresAt *jwt.NumericDate, fallback time.Duration) time.Duration {
	if expiresAt == nil {
		return fallback
	}
	return time.Until(expiresAt.Time)
}
