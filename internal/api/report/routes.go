package report

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.POST("/generate", GenerateReport)
		reports.GET("/:id/download", DownloadReport)
	}
}
