package upstream

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/davicafu/epidash/internal/shared/platform/upstream"
	"github.com/davicafu/epidash/internal/trace/domain"
)

const DefaultTrackBase = "https://i.snssdk.com"

// TrackClient implementa domain.TraceProvider contra el servicio de
// trayectorias.
type TrackClient struct {
	http *upstream.Client
	base string
}

var _ domain.TraceProvider = (*TrackClient)(nil)

func NewTrackClient(http *upstream.Client, base string) *TrackClient {
	if base == "" {
		base = DefaultTrackBase
	}
	return &TrackClient{http: http, base: base}
}

func (c *TrackClient) TrackList(ctx context.Context, cityCode, cityName string) ([]domain.TrackPoint, error) {
	query := url.Values{
		"city_code":     {cityCode},
		"city_name":     {cityName},
		"activeWidget":  {"15"},
		"show_poi_list": {"1"},
	}
	var envelope struct {
		Data struct {
			List []domain.TrackPoint `json:"list"`
		} `json:"data"`
	}
	if err := c.http.GetJSON(ctx, c.base+"/toutiao/normandy/pneumonia_trending/track_list/", query, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.List == nil {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Data.List, nil
}

func (c *TrackClient) TrackDetail(ctx context.Context, poi, cityCode, cityName string) (json.RawMessage, error) {
	query := url.Values{
		"city_code":          {cityCode},
		"city_name":          {cityName},
		"search_current_poi": {poi},
		"poi":                {poi},
		"activeWidget":       {"15"},
		"show_poi_list":      {"1"},
	}
	var envelope struct {
		Data struct {
			Data json.RawMessage `json:"data"`
		} `json:"data"`
	}
	if err := c.http.GetJSON(ctx, c.base+"/toutiao/normandy/pneumonia_trending/poi/", query, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data.Data) == 0 || string(envelope.Data.Data) == "null" {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Data.Data, nil
}
