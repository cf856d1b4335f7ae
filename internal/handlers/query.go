package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIntQuery reads an integer query parameter, falling back on absence or
// garbage input.
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
