// Package upstream contiene los adapters de los proveedores HTTP externos
// del dominio epidémico. Las URLs y formas de respuesta son contratos de los
// proveedores: un cambio de forma upstream es un riesgo de compatibilidad
// externa, no un bug de este paquete.
package upstream

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	"github.com/davicafu/epidash/internal/shared/platform/upstream"
)

const (
	DefaultNewsViewBase = "https://view.inews.qq.com"
	DefaultNewsAPIBase  = "https://api.inews.qq.com"
)

// NewsClient implementa domain.NewsProvider contra el agregador de noticias.
type NewsClient struct {
	http     *upstream.Client
	viewBase string
	apiBase  string
}

var _ domain.NewsProvider = (*NewsClient)(nil)

// NewNewsClient construye el adapter. Bases vacías usan las URLs reales del
// proveedor; los tests pasan las de un httptest.Server.
func NewNewsClient(http *upstream.Client, viewBase, apiBase string) *NewsClient {
	if viewBase == "" {
		viewBase = DefaultNewsViewBase
	}
	if apiBase == "" {
		apiBase = DefaultNewsAPIBase
	}
	return &NewsClient{http: http, viewBase: viewBase, apiBase: apiBase}
}

// diseasePayload es la forma del JSON doblemente serializado de disease_h5.
type diseasePayload struct {
	LastUpdateTime string              `json:"lastUpdateTime"`
	ChinaAdd       domain.NationalStat `json:"chinaAdd"`
	ChinaTotal     domain.NationalStat `json:"chinaTotal"`
	AreaTree       []struct {
		Name     string `json:"name"`
		Children []struct {
			Name  string `json:"name"`
			Today struct {
				Confirm int `json:"confirm"`
			} `json:"today"`
			Total struct {
				NowConfirm int `json:"nowConfirm"`
				Confirm    int `json:"confirm"`
			} `json:"total"`
		} `json:"children"`
	} `json:"areaTree"`
}

func (c *NewsClient) DomesticSummary(ctx context.Context) (*domain.DomesticSummary, error) {
	// El campo data llega como un string JSON que hay que volver a parsear.
	var envelope struct {
		Ret  int    `json:"ret"`
		Data string `json:"data"`
	}
	query := url.Values{"name": {"disease_h5"}}
	if err := c.http.GetJSON(ctx, c.viewBase+"/g2/getOnsInfo", query, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == "" {
		return nil, domain.ErrShapeMismatch
	}

	var payload diseasePayload
	if err := json.Unmarshal([]byte(envelope.Data), &payload); err != nil {
		return nil, err
	}
	if len(payload.AreaTree) == 0 {
		return nil, domain.ErrShapeMismatch
	}

	// Normalizamos el árbol de provincias; los campos de presentación del
	// proveedor (showRate, showHeal) se quedan fuera aquí.
	children := payload.AreaTree[0].Children
	provinces := make([]domain.ProvinceReport, 0, len(children))
	for _, child := range children {
		provinces = append(provinces, domain.ProvinceReport{
			Name:         child.Name,
			TodayConfirm: child.Today.Confirm,
			NowConfirm:   child.Total.NowConfirm,
			TotalConfirm: child.Total.Confirm,
		})
	}

	return &domain.DomesticSummary{
		LastUpdateTime: payload.LastUpdateTime,
		ChinaAdd:       payload.ChinaAdd,
		ChinaTotal:     payload.ChinaTotal,
		Provinces:      provinces,
	}, nil
}

func (c *NewsClient) CityRanking(ctx context.Context) ([]domain.RankedCity, error) {
	var envelope struct {
		Ret  int `json:"ret"`
		Data struct {
			StatisGradeCityDetail []domain.RankedCity `json:"statisGradeCityDetail"`
		} `json:"data"`
	}
	target := c.apiBase + "/newsqa/v1/query/inner/publish/modules/list?modules=statisGradeCityDetail,diseaseh5Shelf"
	if err := c.http.PostJSON(ctx, target, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.StatisGradeCityDetail == nil {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Data.StatisGradeCityDetail, nil
}

func (c *NewsClient) DailyHistory(ctx context.Context) ([]domain.DayRecord, error) {
	var envelope struct {
		Ret  int `json:"ret"`
		Data struct {
			ChinaDayList []domain.DayRecord `json:"chinaDayList"`
		} `json:"data"`
	}
	target := c.apiBase + "/newsqa/v1/query/inner/publish/modules/list?modules=chinaDayList"
	if err := c.http.GetJSON(ctx, target, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ChinaDayList == nil {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Data.ChinaDayList, nil
}

func (c *NewsClient) WorldData(ctx context.Context) (json.RawMessage, error) {
	var envelope struct {
		Ret  int             `json:"ret"`
		Data json.RawMessage `json:"data"`
	}
	target := c.apiBase + "/newsqa/v1/automation/modules/list?modules=WomWorld,WomAboard"
	if err := c.http.PostJSON(ctx, target, nil, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Data, nil
}
