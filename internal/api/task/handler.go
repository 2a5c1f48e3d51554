package task

import (
	"errors"
	"fmt"
	"net/http"

	"report-console/internal/models"
	"report-console/internal/services"
	"report-console/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListTasks godoc
// @Summary List tasks
// @Description List all tasks, newest first, optionally filtered to one status
// @Tags tasks
// @Produce json
// @Param status query string false "Task status filter"
// @Success 200 {object} models.TaskListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /tasks [get]
func ListTasks(c *gin.Context) {
	var status *models.TaskStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.TaskStatus(statusStr)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, utils.NewErrorDetail(fmt.Sprintf("unknown status %q", statusStr)))
			return
		}
		status = &s
	}

	tasks, err := services.ListTasks(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorDetail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.TaskListResponse{
		Tasks: tasks,
		Total: len(tasks),
	})
}

// GetTask godoc
// @Summary Get task detail
// @Description Get a single task with its progress and outcome
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Failure 404 {object} models.ErrorResponse
// @Router /tasks/{id} [get]
func GetTask(c *gin.Context) {
	task, err := services.GetTaskByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorDetail("task not found"))
		return
	}

	c.JSON(http.StatusOK, task)
}

// CancelTask godoc
// @Summary Cancel a pending task
// @Description Cancel a task that has not started running yet
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tasks/{id}/cancel [post]
func CancelTask(c *gin.Context) {
	_, err := services.CancelTask(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorDetail("task not found"))
			return
		}
		if errors.Is(err, services.ErrNotPending) {
			c.JSON(http.StatusBadRequest, utils.NewErrorDetail(services.ErrNotPending.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorDetail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewMessage("task cancelled"))
}
