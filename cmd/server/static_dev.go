//go:build !embed

package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// setupStaticFiles points browsers at the separately served frontend in development
func setupStaticFiles(router *gin.Engine, logger *zap.Logger) {
	logger.Info("frontend is served separately in development", zap.String("dev_url", "http://localhost:3000"))

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Frontend is running separately",
			"dev_url": "http://localhost:3000",
		})
	})
}
