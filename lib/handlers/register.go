package handlers

import "github.com/gin-gonic/gin"

// RegisterEventDetailsHandlers adds the event details routes for h. Dispatching needs the bearer token.
func RegisterEventDetailsHandlers(r gin.IRoutes, h *EventDetails) {
	r.GET("/event/details", h.GetEventDetails)
	r.POST("/event/actions", RequireToken, h.DispatchAction)
}

// RegisterMonitoringHandlers adds the routes that control what the workers refresh
func RegisterMonitoringHandlers(r gin.IRoutes) {
	r.POST("/monitor/:rtype", RequireToken, RegisterType)
}

// RegisterStatusHandlers adds the cache status route - only useful where the groupcache runs
func RegisterStatusHandlers(r gin.IRoutes) {
	r.GET("/status", GetDetailedStatus)
}
