package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/epidash/internal/epidemic/application"
	"github.com/davicafu/epidash/pkg/utils"
)

// EpidemicHandler encapsula los endpoints HTTP del dominio epidémico.
// Capa fina: valida la entrada, llama al servicio y traduce el "resultado
// nulo" del core en un 503 explícito. Nunca deja escapar una excepción de
// transporte.
type EpidemicHandler struct {
	service *application.EpidemicService
}

func NewEpidemicHandler(service *application.EpidemicService) *EpidemicHandler {
	return &EpidemicHandler{service: service}
}

// GetEpidemicData endpoint GET /wechat/epidemic/
func (h *EpidemicHandler) GetEpidemicData(c *gin.Context) {
	c.Header("Cache-Control", "private, max-age=1800")

	snapshot := h.service.GetEpidemicData(c.Request.Context())
	if snapshot == nil {
		utils.SendUnavailable(c, "epidemic data unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, snapshot)
}

// GetWorldData endpoint GET /wechat/epidemic/getWorldData
func (h *EpidemicHandler) GetWorldData(c *gin.Context) {
	c.Header("Cache-Control", "private, max-age=1800")

	data := h.service.GetWorldData(c.Request.Context())
	if data == nil {
		utils.SendUnavailable(c, "world data unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, data)
}

// OCR endpoint POST /wechat/epidemic/ocr
func (h *EpidemicHandler) OCR(c *gin.Context) {
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	if !h.service.OCR(c.Request.Context(), req.Image) {
		utils.SendUnavailable(c, "ocr unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"saved": true})
}

// Map endpoint GET /wechat/epidemic/map
func (h *EpidemicHandler) Map(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("longitude"), 64)
	if errLat != nil || errLon != nil {
		utils.SendBadRequest(c, "latitude and longitude must be numbers")
		return
	}

	result := h.service.Geocode(c.Request.Context(), lat, lon)
	if result == nil {
		utils.SendUnavailable(c, "geocoding unavailable")
		return
	}
	utils.SendSuccess(c, http.StatusOK, result)
}

// ViewCounter endpoint POST /wechat/epidemic/viewCounter
func (h *EpidemicHandler) ViewCounter(c *gin.Context) {
	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	// Dispara y olvida: el contador nunca falla de cara al cliente.
	h.service.RecordView(c.Request.Context(), req.Type)
	utils.SendSuccess(c, http.StatusOK, gin.H{"recorded": true})
}
