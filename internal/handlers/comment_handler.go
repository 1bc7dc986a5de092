package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/services"
)

type CommentHandler struct {
	service *services.CommentService
	users   services.UserService
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func NewCommentHandler(service *services.CommentService, users services.UserService) *CommentHandler {
	return &CommentHandler{service: service, users: users}
}

// @Summary      Добавить комментарий
// @Tags         Comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Param        comment  body      addCommentRequest  true  "Текст"
// @Success      201  {object}  models.Comment
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/comments [post]
func (h *CommentHandler) Add(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getUserAndRole(c)
	author, err := h.users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		// токен живой, а пользователя уже нет
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err != nil {
		respondError(c, "comment", "author", err)
		return
	}

	comment, err := h.service.Add(c.Request.Context(), taskID, author, req.Content)
	if err != nil {
		respondError(c, "comment", "create", err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// @Summary      Комментарии задачи
// @Tags         Comments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Success      200  {array}  models.Comment
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)
	comments, err := h.service.List(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, "comment", "list", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
