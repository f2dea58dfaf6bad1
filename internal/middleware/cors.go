package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows browser dashboards served from other origins to call the API.
// The service is read-only, so only GET and OPTIONS are offered.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
