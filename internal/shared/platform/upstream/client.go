package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/davicafu/epidash/internal/shared/platform/obs"
)

// Error describe un fallo de una llamada upstream: red, timeout o status no-2xx.
type Error struct {
	Provider string
	Status   int // 0 si el fallo fue de transporte
	Cause    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: http %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Client envuelve resty para un proveedor concreto. No reintenta: la política
// de reintentos pertenece al llamante.
type Client struct {
	resty    *resty.Client
	provider string
	metrics  *obs.Metrics
}

// New crea el cliente con un timeout fijo por petición.
func New(provider string, timeout time.Duration, metrics *obs.Metrics) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "epidash/1.0")

	return &Client{resty: rc, provider: provider, metrics: metrics}
}

// GetJSON hace un GET y decodifica el cuerpo JSON en result.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, result interface{}) error {
	req := c.resty.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if result != nil {
		// Algunos proveedores responden JSON con content-type no estándar.
		req.SetResult(result).ForceContentType("application/json")
	}
	return c.finish(req.Get(rawURL))
}

// PostJSON hace un POST con cuerpo opcional y decodifica el JSON en result.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body, result interface{}) error {
	req := c.resty.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result).ForceContentType("application/json")
	}
	return c.finish(req.Post(rawURL))
}

// PostForm hace un POST application/x-www-form-urlencoded.
func (c *Client) PostForm(ctx context.Context, rawURL string, form map[string]string, result interface{}) error {
	req := c.resty.R().SetContext(ctx).SetFormData(form)
	if result != nil {
		req.SetResult(result).ForceContentType("application/json")
	}
	return c.finish(req.Post(rawURL))
}

func (c *Client) finish(resp *resty.Response, err error) error {
	if err != nil {
		c.metrics.ObserveUpstream(c.provider, "error")
		return &Error{Provider: c.provider, Cause: err}
	}
	if resp.IsError() {
		c.metrics.ObserveUpstream(c.provider, "error")
		return &Error{
			Provider: c.provider,
			Status:   resp.StatusCode(),
			Cause:    fmt.Errorf("http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())),
		}
	}
	c.metrics.ObserveUpstream(c.provider, "ok")
	return nil
}
