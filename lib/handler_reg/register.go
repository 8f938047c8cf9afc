package handler_reg

import (
	"github.com/fragforce/fragdonate/lib/handler_global"
	"github.com/fragforce/fragdonate/lib/handlers"
	"github.com/gin-gonic/gin"
)

// RegisterHandlers adds everything the web frontend serves
func RegisterHandlers(r *gin.Engine, ed *handlers.EventDetails) {
	handler_global.RegisterGlobalHandlers(r)
	handlers.RegisterEventDetailsHandlers(r, ed)
	handlers.RegisterMonitoringHandlers(r)
}

// RegisterWorkerHandlers adds what the worker serves next to the groupcache pool
func RegisterWorkerHandlers(r *gin.Engine) {
	handlers.RegisterStatusHandlers(r)
}
