package report

import (
	"fmt"
	"net/http"
	"os"

	"report-console/internal/models"
	"report-console/internal/services"
	"report-console/internal/utils"

	"github.com/gin-gonic/gin"
)

// GenerateReport godoc
// @Summary Submit a report generation task
// @Description Submit an asynchronous report generation job; poll /tasks/{id} for progress
// @Tags reports
// @Accept json
// @Produce json
// @Param request body GenerateReportRequest true "Report subject"
// @Success 200 {object} models.SubmitResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /reports/generate [post]
func GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
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

	task, err := services.CreateTask(req.Company, req.Code, req.Market)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorDetail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.SubmitResponse{
		TaskID:  task.ID,
		Status:  "accepted",
		Message: "report generation task submitted, poll the task for progress",
	})
}

// DownloadReport godoc
// @Summary Download a generated report
// @Description Download the artifact of a completed task
// @Tags reports
// @Produce octet-stream
// @Param id path string true "Task ID"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reports/{id}/download [get]
func DownloadReport(c *gin.Context) {
	task, err := services.GetTaskByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorDetail("task not found"))
		return
	}

	if task.Status != models.TaskStatusCompleted {
		c.JSON(http.StatusBadRequest, utils.NewErrorDetail("task has not completed"))
		return
	}

	if task.OutputPath == "" {
		c.JSON(http.StatusNotFound, utils.NewErrorDetail("report file not found"))
		return
	}
	if _, err := os.Stat(task.OutputPath); err != nil {
		c.JSON(http.StatusNotFound, utils.NewErrorDetail("report file not found"))
		return
	}

	c.FileAttachment(task.OutputPath, fmt.Sprintf("research_report_%s.docx", task.ID))
}
