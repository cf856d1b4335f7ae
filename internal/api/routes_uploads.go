package api

import (
	"github.com/gin-gonic/gin"

	"github.com/lectorium/lectorium/internal/handlers"
)

func registerUploadRoutes(api *gin.RouterGroup, handler *handlers.UploadHandler) {
	group := api.Group("/uploads")
	{
		group.POST("/events", handler.Event)
	}
}
