package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/services"
	"taskhub/internal/utils"
)

type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	resetService services.PasswordResetService
	revoker      TokenRevoker
	refreshTTL   time.Duration
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, resetService services.PasswordResetService, revoker TokenRevoker, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		resetService: resetService,
		revoker:      revoker,
		refreshTTL:   refreshTTL,
	}
}

type tokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *models.User `json:"user"`
}

// @Summary      Регистрация
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterRequest  true  "Данные пользователя"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		log.Printf("[auth][register] rejected: %v", err)
		respondError(c, "auth", "register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// issueTokens signs an access token and pairs it with refreshToken.
func (h *AuthHandler) issueTokens(user *models.User, refreshToken string) (*tokenResponse, error) {
	access, claims, err := h.authService.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &tokenResponse{
		Token:        access,
		RefreshToken: refreshToken,
		ExpiresAt:    claims.ExpiresAt.Time,
		User:         user,
	}, nil
}

// @Summary      Вход в систему
// @Description  Аутентифицирует пользователя и возвращает токены доступа
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  tokenResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, "auth", "login", err)
		return
	}

	// Refresh (opaque) -> хранится в БД
	rt, err := utils.NewRefreshToken()
	if err != nil {
		respondError(c, "auth", "login", err)
		return
	}
	if err := h.userService.StoreRefresh(ctx, user.ID, rt, time.Now().Add(h.refreshTTL)); err != nil {
		respondError(c, "auth", "login", err)
		return
	}

	resp, err := h.issueTokens(user, rt)
	if err != nil {
		respondError(c, "auth", "login", err)
		return
	}
	log.Printf("[auth][login][ok] userID=%d role=%s took=%s", user.ID, user.Role, time.Since(start).Truncate(time.Millisecond))
	c.JSON(http.StatusOK, resp)
}

// @Summary      Обновление токенов
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// rotate refresh
	newRT, err := utils.NewRefreshToken()
	if err != nil {
		respondError(c, "auth", "refresh", err)
		return
	}
	user, err := h.userService.RotateRefresh(c.Request.Context(), strings.TrimSpace(req.RefreshToken), newRT, time.Now().Add(h.refreshTTL))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		respondError(c, "auth", "refresh", err)
		return
	}

	resp, err := h.issueTokens(user, newRT)
	if err != nil {
		respondError(c, "auth", "refresh", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Выход
// @Tags         Auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	v, _ := c.Get(middleware.CtxClaims)
	claims, ok := v.(*services.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if h.revoker != nil && claims.ExpiresAt != nil {
		if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			respondError(c, "auth", "logout", err)
			return
		}
	}
	log.Printf("[auth][logout][ok] userID=%d", claims.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// @Summary      Запрос сброса пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, "auth", "forgot", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

// @Summary      Сброс пароля
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resetService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, "auth", "reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}
