package scheduled

import (
	"report-console/internal/services"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, scheduler *services.Scheduler) {
	h := &Handler{Scheduler: scheduler}

	tasks := router.Group("/scheduled-tasks")
	{
		tasks.POST("", h.Create)
		tasks.GET("", h.List)
		tasks.DELETE("/:name", h.Delete)
	}
}
