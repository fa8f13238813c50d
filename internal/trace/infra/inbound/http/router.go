package http

import "github.com/gin-gonic/gin"

// RegisterTraceRoutes cuelga las rutas de trayectorias del mismo prefijo que
// el resto del dashboard.
func RegisterTraceRoutes(r *gin.Engine, handler *TraceHandler) {
	trace := r.Group("/wechat/epidemic")
	{
		trace.GET("/trackList", handler.TrackList)
		trace.POST("/trackDetail", handler.TrackDetail)
	}
}
