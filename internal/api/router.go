package api

import (
	"net/http"
	"time"

	"report-console/internal/api/report"
	"report-console/internal/api/scheduled"
	"report-console/internal/api/task"
	"report-console/internal/middleware"
	"report-console/internal/models"
	"report-console/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the API under /api. The caller owns database and
// scheduler setup.
func NewRouter(scheduler *services.Scheduler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// The browser console is served from a different origin.
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        5 * time.Minute,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)

		report.RegisterRoutes(api)
		task.RegisterRoutes(api)
		scheduled.RegisterRoutes(api, scheduler)
	}

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
