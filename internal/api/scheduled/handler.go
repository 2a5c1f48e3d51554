package scheduled

import (
	"errors"
	"fmt"
	"net/http"

	"report-console/internal/models"
	"report-console/internal/services"
	"report-console/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Scheduler *services.Scheduler
}

// Create godoc
// @Summary Create a scheduled task
// @Description Register a recurring report submission under a unique name
// @Tags scheduled-tasks
// @Accept json
// @Produce json
// @Param request body CreateScheduledTaskRequest true "Schedule definition"
// @Success 200 {object} models.ScheduledTask
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /scheduled-tasks [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateScheduledTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorDetail(err.Error()))
		return
	}

	if req.Market == "" {
		req.Market = models.MarketHK
	}
	if !models.ValidMarket(req.Market) {
		c.JSON(http.StatusBadRequest, utils.NewErrorDetail(fmt.Sprintf("unsupported market %q", req.Market)))
		return
	}

	task, err := h.Scheduler.Create(req.TaskName, req.Company, req.Code, req.Market, req.CronExpression)
	if err != nil {
		if errors.Is(err, services.ErrScheduleExists) {
			c.JSON(http.StatusConflict, utils.NewErrorDetail(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, utils.NewErrorDetail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, task)
}

// List godoc
// @Summary List scheduled tasks
// @Tags scheduled-tasks
// @Produce json
// @Success 200 {object} models.ScheduledTaskListResponse
// @Router /scheduled-tasks [get]
func (h *Handler) List(c *gin.Context) {
	tasks, err := h.Scheduler.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorDetail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.ScheduledTaskListResponse{Tasks: tasks})
}

// Delete godoc
// @Summary Delete a scheduled task
// @Tags scheduled-tasks
// @Produce json
// @Param name path string true "Schedule name"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /scheduled-tasks/{name} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.Scheduler.Delete(c.Param("name")); err != nil {
		if errors.Is(err, services.ErrScheduleNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorDetail(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorDetail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewMessage("scheduled task deleted"))
}
