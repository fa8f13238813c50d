package upstream

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	"github.com/davicafu/epidash/internal/shared/platform/upstream"
)

const DefaultOCRBase = "https://aip.baidubce.com"

// OCRClient implementa domain.OCRProvider: emisión de token y análisis de
// documentos.
type OCRClient struct {
	http   *upstream.Client
	base   string
	key    string
	secret string
}

var _ domain.OCRProvider = (*OCRClient)(nil)

func NewOCRClient(http *upstream.Client, base, key, secret string) *OCRClient {
	if base == "" {
		base = DefaultOCRBase
	}
	return &OCRClient{http: http, base: base, key: key, secret: secret}
}

func (c *OCRClient) IssueToken(ctx context.Context) (string, error) {
	var envelope struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"` // lo ignoramos: usamos un TTL fijo conservador
	}
	form := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.key,
		"client_secret": c.secret,
	}
	if err := c.http.PostForm(ctx, c.base+"/oauth/2.0/token", form, &envelope); err != nil {
		return "", err
	}
	if envelope.AccessToken == "" {
		return "", domain.ErrShapeMismatch
	}
	return envelope.AccessToken, nil
}

func (c *OCRClient) Recognize(ctx context.Context, token, image string) (json.RawMessage, error) {
	var envelope struct {
		Results  json.RawMessage `json:"results"`
		ErrorMsg string          `json:"error_msg"`
	}
	// El form codifica la imagen en URL-encoding, como exige el proveedor.
	target := c.base + "/rest/2.0/ocr/v1/doc_analysis_office?access_token=" + url.QueryEscape(token)
	if err := c.http.PostForm(ctx, target, map[string]string{"image": image}, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Results) == 0 || string(envelope.Results) == "null" {
		return nil, domain.ErrShapeMismatch
	}
	return envelope.Results, nil
}
