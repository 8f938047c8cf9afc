package handler_global

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterGlobalHandlers(r gin.IRoutes) {
	r.GET("/alive", Alive)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Alive just makes sure we're up - used by groupcache peers to check each other
func Alive(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive": true,
		"ok":    true,
		"error": nil,
	})
}
