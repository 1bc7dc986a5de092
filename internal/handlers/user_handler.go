package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/models"
	"taskhub/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type updateUserRequest struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	TelegramChatID *int64  `json:"telegramChatId"`
}

// @Summary      Текущий пользователь
// @Tags         Users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  models.User
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "user", "me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Список пользователей (admin)
// @Tags         Users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.User
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "user", "list", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Профиль пользователя
// @Tags         Users
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID пользователя"
// @Success      200  {object}  models.User
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "user", "get", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Обновление профиля
// @Tags         Users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "ID пользователя"
// @Param        user  body      updateUserRequest  true  "Изменяемые поля"
// @Success      200   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, role := getUserAndRole(c)
	user, err := h.service.Update(c.Request.Context(), userID, role, id, models.UserChanges{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		TelegramChatID: req.TelegramChatID,
	})
	if err != nil {
		respondError(c, "user", "update", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
