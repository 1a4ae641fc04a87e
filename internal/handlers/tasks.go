package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muchtodo/taskapi/internal/ids"
	"github.com/muchtodo/taskapi/internal/models"
	"github.com/muchtodo/taskapi/internal/service"
)

type CreatedResponse struct {
	ID string `json:"id" example:"665f1f77bcf86cd799439011"`
}

type UpdatedResponse struct {
	Updated int64 `json:"updated" example:"1"`
}

type DeletedResponse struct {
	Deleted int64 `json:"deleted" example:"1"`
}

type TaskHandler struct {
	baseHandler
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(logger),
		tasks:       tasks,
	}
}

// ListTasks godoc
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} models.Task
// @Failure 500 {object} ErrorResponse
// @Router /api/tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		h.respondError(c, "list_tasks", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask godoc
// @Summary Create task
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body models.CreateTaskRequest true "Task to create"
// @Success 201 {object} CreatedResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondInvalidInput(c, "create_task", err)
		return
	}

	id, err := h.tasks.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "create_task", err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// UpdateTask godoc
// @Summary Partially update task
// @Description Only fields present with a non-null value are written; null is ignored.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task id"
// @Param task body models.TaskPatch false "Fields to change"
// @Success 200 {object} UpdatedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/tasks/{id} [patch]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	rawID := c.Param("id")
	if _, err := ids.Parse(rawID); err != nil {
		h.respondError(c, "update_task", err)
		return
	}

	var patch models.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		h.respondInvalidInput(c, "update_task", err)
		return
	}

	updated, err := h.tasks.Update(c.Request.Context(), rawID, patch)
	if err != nil {
		h.respondError(c, "update_task", err)
		return
	}
	c.JSON(http.StatusOK, UpdatedResponse{Updated: updated})
}

// DeleteTask godoc
// @Summary Delete task
// @Tags tasks
// @Produce json
// @Param id path string true "Task id"
// @Success 200 {object} DeletedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	deleted, err := h.tasks.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "delete_task", err)
		return
	}
	c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}
