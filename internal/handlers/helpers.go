package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/services"
)

// bindOptionalJSON binds a JSON body where every field is optional;
// an empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// более устойчиво к типам (int / int64 / float64 / string)
func getInt64FromCtx(c *gin.Context, key string) (int64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func getUserAndRole(c *gin.Context) (userID int64, role models.Role) {
	if id, ok := getInt64FromCtx(c, middleware.CtxUserID); ok {
		userID = id
	}
	if v, ok := c.Get(middleware.CtxRole); ok {
		role, _ = v.(models.Role)
	}
	return
}

// parseIDParam reads a positive integer path parameter, answering 400 otherwise.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError maps service error kinds to status codes. Anything unrecognised
// is logged and answered with a generic 500.
func respondError(c *gin.Context, area, op string, err error) {
	var svcErr *services.Error
	msg := err.Error()
	if errors.As(err, &svcErr) {
		msg = svcErr.Message
	}

	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": msg})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	default:
		log.Printf("[%s][%s][err] %v", area, op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parseDueDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, errors.New("dueDate must be RFC3339 or YYYY-MM-DD")
}

// taskFields is the JSON shape shared by task create and partial updates.
type taskFields struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	DueDate     *string              `json:"dueDate"`
	Priority    *models.TaskPriority `json:"priority"`
	Status      *models.TaskStatus   `json:"status"`
}

// changes converts a partial update. An empty dueDate clears it.
func (f taskFields) changes() (models.TaskChanges, error) {
	ch := models.TaskChanges{
		Title:       f.Title,
		Description: f.Description,
		Priority:    f.Priority,
		Status:      f.Status,
	}
	if f.DueDate != nil {
		if strings.TrimSpace(*f.DueDate) == "" {
			ch.ClearDueDate = true
		} else {
			due, err := parseDueDate(*f.DueDate)
			if err != nil {
				return ch, err
			}
			ch.DueDate = due
		}
	}
	return ch, nil
}

func (f taskFields) createInput() (services.CreateTaskInput, error) {
	in := services.CreateTaskInput{
		Priority: f.Priority,
		Status:   f.Status,
	}
	if f.Title != nil {
		in.Title = *f.Title
	}
	if f.Description != nil {
		in.Description = *f.Description
	}
	if f.DueDate != nil && strings.TrimSpace(*f.DueDate) != "" {
		due, err := parseDueDate(*f.DueDate)
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}
	return in, nil
}
