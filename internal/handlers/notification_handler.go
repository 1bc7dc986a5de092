package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/services"
)

type NotificationHandler struct {
	service services.NotificationService
}

func NewNotificationHandler(service services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// @Summary      Мои уведомления
// @Tags         Notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.Notification
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	items, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "notification", "list", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary      Отметить все как прочитанные
// @Tags         Notifications
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications/mark-read [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	n, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "notification", "mark-read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": n})
}
