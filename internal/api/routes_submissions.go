package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lectorium/lectorium/internal/handlers"
)

func registerSubmissionRoutes(api *gin.RouterGroup, handler *handlers.SubmissionHandler) {
	group := api.Group("/submissions")
	{
		group.GET("/uploaded", handler.ListUploaded)
		group.GET("/assigned", handler.ListAssigned)
		group.POST("/:id/review", handler.Review)
	}
}
