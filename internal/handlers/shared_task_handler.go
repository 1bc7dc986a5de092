package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/services"
)

type SharedTaskHandler struct {
	service services.ShareService
}

func NewSharedTaskHandler(service services.ShareService) *SharedTaskHandler {
	return &SharedTaskHandler{service: service}
}

type shareRequest struct {
	UserID     int64  `json:"userId"`
	Permission string `json:"permission"`
}

// @Summary      Поделиться задачей
// @Tags         Sharing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Param        share  body      shareRequest  true  "Пользователь и право"
// @Success      201  {object}  models.SharedTask
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/share [post]
func (h *SharedTaskHandler) Share(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	share, err := h.service.Share(c.Request.Context(), taskID, userID, req.UserID, req.Permission)
	if err != nil {
		respondError(c, "share", "create", err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

// @Summary      Задачи, которыми со мной поделились
// @Tags         Sharing
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.SharedTask
// @Router       /shared-tasks [get]
func (h *SharedTaskHandler) ListMine(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	shares, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "share", "list", err)
		return
	}
	c.JSON(http.StatusOK, shares)
}

// @Summary      Обновить задачу через доступ
// @Tags         Sharing
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int         true   "ID доступа"
// @Param        task  body      taskFields  false  "Изменяемые поля"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /shared-tasks/{id} [put]
func (h *SharedTaskHandler) Update(c *gin.Context) {
	shareID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req taskFields
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes, err := req.changes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)
	task, err := h.service.UpdateViaShare(c.Request.Context(), shareID, userID, changes)
	if err != nil {
		respondError(c, "share", "update", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Отозвать доступ
// @Tags         Sharing
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID доступа"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /shared-tasks/{id} [delete]
func (h *SharedTaskHandler) Remove(c *gin.Context) {
	shareID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)
	if err := h.service.Remove(c.Request.Context(), shareID, userID); err != nil {
		respondError(c, "share", "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Shared task access removed"})
}
