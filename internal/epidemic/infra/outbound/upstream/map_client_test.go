package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	"github.com/davicafu/epidash/internal/shared/platform/sign"
)

func TestReverseGeocode_SignsRequestAndReturnsResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/geocoder/v1/", r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, "39.9,116.3", query.Get("location"))
		assert.Equal(t, "testkey", query.Get("key"))

		// El servidor verifica la firma igual que lo haría el proveedor:
		// misma ruta con '?', mismos parámetros sin el propio sig.
		got := query.Get("sig")
		query.Del("sig")
		assert.Equal(t, sign.Signature("/ws/geocoder/v1/?", query, "s3cret"), got)

		w.Write([]byte(`{"status":0,"message":"query ok","result":{"address":"北京市"}}`))
	}))
	defer server.Close()

	client := NewMapClient(newTestHTTP(), server.URL, "testkey", "s3cret")
	result, err := client.ReverseGeocode(context.Background(), 39.9, 116.3)

	assert.NoError(t, err)
	assert.JSONEq(t, `{"address":"北京市"}`, string(result))
}

func TestReverseGeocode_MissingResultIsShapeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Firma inválida: el proveedor responde 200 con status!=0 y sin result.
		w.Write([]byte(`{"status":310,"message":"sig error","result":null}`))
	}))
	defer server.Close()

	client := NewMapClient(newTestHTTP(), server.URL, "testkey", "wrong")
	result, err := client.ReverseGeocode(context.Background(), 39.9, 116.3)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestReverseGeocode_FormatsCoordinatesWithoutPadding(t *testing.T) {
	var gotLocation string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("location")
		w.Write([]byte(`{"status":0,"result":{}}`))
	}))
	defer server.Close()

	client := NewMapClient(newTestHTTP(), server.URL, "k", "s")
	_, err := client.ReverseGeocode(context.Background(), 31.0, 121.47375)

	assert.NoError(t, err)
	// Sin ceros de relleno ni precisión fija.
	assert.Equal(t, "31,121.47375", gotLocation)
}
