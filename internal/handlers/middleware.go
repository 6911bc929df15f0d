package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// corsMiddleware applies the allow-all policy used on the plant LAN:
// the control UI is served from another origin on the same LAN.
func (h *Handler) corsMiddleware(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
