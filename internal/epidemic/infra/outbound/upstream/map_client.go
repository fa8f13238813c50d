package upstream

import (
	"context"
	"encoding/json"
	"strconv"

	"net/url"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	"github.com/davicafu/epidash/internal/shared/platform/sign"
	"github.com/davicafu/epidash/internal/shared/platform/upstream"
)

const (
	DefaultMapBase = "https://apis.map.qq.com"

	// geocoderPath incluye el '?' porque así entra en la firma del proveedor.
	geocoderPath = "/ws/geocoder/v1/?"
)

// MapClient implementa domain.GeoProvider contra el geocodificador firmado.
type MapClient struct {
	http   *upstream.Client
	base   string
	key    string
	secret string
}

var _ domain.GeoProvider = (*MapClient)(nil)

func NewMapClient(http *upstream.Client, base, key, secret string) *MapClient {
	if base == "" {
		base = DefaultMapBase
	}
	return &MapClient{http: http, base: base, key: key, secret: secret}
}

func (c *MapClient) ReverseGeocode(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("key", c.key)

	// La firma cubre los parámetros sin el propio sig.
	query.Set("sig", sign.Signature(geocoderPath, query, c.secret))

	var envelope struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := c.http.GetJSON(ctx, c.base+"/ws/geocoder/v1/", query, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Result, nil
}
