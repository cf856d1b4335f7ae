package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext extracts the context from the inbound request. Handlers
// invoked without a request, as in unit tests, get a background context.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}
