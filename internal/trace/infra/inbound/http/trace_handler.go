package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/epidash/internal/trace/application"
	"github.com/davicafu/epidash/pkg/utils"
)

// TraceHandler encapsula los endpoints HTTP de trayectorias.
type TraceHandler struct {
	service *application.TraceService
}

func NewTraceHandler(service *application.TraceService) *TraceHandler {
	return &TraceHandler{service: service}
}

// TrackList endpoint GET /wechat/epidemic/trackList
func (h *TraceHandler) TrackList(c *gin.Context) {
	cityCode := c.Query("city_code")
	cityName := c.Query("city_name")
	if cityCode == "" || cityName == "" {
		utils.SendBadRequest(c, "city_code and city_name are required")
		return
	}

	window := h.service.GetTrackList(c.Request.Context(), cityCode, cityName)
	if window == nil {
		utils.SendUnavailable(c, "track list unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, window)
}

// TrackDetail endpoint POST /wechat/epidemic/trackDetail
func (h *TraceHandler) TrackDetail(c *gin.Context) {
	var req struct {
		Poi      string `json:"poi" binding:"required"`
		CityCode string `json:"city_code" binding:"required"`
		CityName string `json:"city_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	detail := h.service.GetTrackDetail(c.Request.Context(), req.Poi, req.CityCode, req.CityName)
	if detail == nil {
		utils.SendUnavailable(c, "track detail unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, detail)
}
