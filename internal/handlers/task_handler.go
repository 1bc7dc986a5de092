package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskhub/internal/models"
	"taskhub/internal/pdf"
	"taskhub/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	users   services.UserService
	reports pdf.Generator
}

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

func NewTaskHandler(service services.TaskService, users services.UserService, reports pdf.Generator) *TaskHandler {
	return &TaskHandler{service: service, users: users, reports: reports}
}

// @Summary      Создать задачу
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        task  body      taskFields  true  "Поля задачи"
// @Success      201   {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var req taskFields
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.createInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, "task", "create", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary      Мои задачи
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  models.Task
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	tasks, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "task", "list", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Задача с комментариями
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Success      200  {object}  models.Task
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)
	task, err := h.service.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, "task", "get", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Обновить задачу (владелец)
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Param        task  body      taskFields  false  "Изменяемые поля"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
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
	task, err := h.service.Update(c.Request.Context(), id, userID, changes)
	if err != nil {
		respondError(c, "task", "update", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Удалить задачу (владелец)
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, _ := getUserAndRole(c)
	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, "task", "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}

// @Summary      Сменить статус
// @Tags         Tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "ID задачи"
// @Param        status  body      statusRequest  true  "Новый статус"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/status [put]
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getUserAndRole(c)
	task, err := h.service.UpdateStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		respondError(c, "task", "status", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary      Экспорт задач в PDF
// @Tags         Tasks
// @Security     BearerAuth
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /tasks/export [get]
func (h *TaskHandler) Export(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	ctx := c.Request.Context()

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, "task", "export", err)
		return
	}
	tasks, err := h.service.List(ctx, userID)
	if err != nil {
		respondError(c, "task", "export", err)
		return
	}

	var buf bytes.Buffer
	now := time.Now()
	if err := h.reports.TaskReport(&buf, pdf.TaskReportData{
		Owner:       user.Summary(),
		Tasks:       tasks,
		GeneratedAt: now,
	}); err != nil {
		respondError(c, "task", "export", err)
		return
	}
	filename := fmt.Sprintf("tasks_%s.pdf", now.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
