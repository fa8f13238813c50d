package http

import "github.com/gin-gonic/gin"

func RegisterEpidemicRoutes(r *gin.Engine, handler *EpidemicHandler) {
	epidemic := r.Group("/wechat/epidemic")
	{
		epidemic.GET("/", handler.GetEpidemicData)
		epidemic.GET("/getWorldData", handler.GetWorldData)
		epidemic.GET("/map", handler.Map)
		epidemic.POST("/ocr", handler.OCR)
		epidemic.POST("/viewCounter", handler.ViewCounter)
	}
}
