package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ---------- Errores de dominio ----------

var (
	// ErrShapeMismatch: la respuesta upstream no trae el campo esperado.
	// Deriva del contrato del proveedor, no de un bug nuestro.
	ErrShapeMismatch = errors.New("upstream response missing expected field")
)

// ---------- Interfaces (Ports) ----------

// NewsProvider agrupa las consultas al agregador de noticias epidémicas.
// Cada método devuelve ErrShapeMismatch si falta el campo de datos esperado.
type NewsProvider interface {
	// DomesticSummary devuelve el resumen nacional con el árbol de provincias.
	DomesticSummary(ctx context.Context) (*DomesticSummary, error)

	// CityRanking devuelve el detalle por ciudad sin ordenar, en el orden upstream.
	CityRanking(ctx context.Context) ([]RankedCity, error)

	// DailyHistory devuelve la serie diaria nacional completa.
	DailyHistory(ctx context.Context) ([]DayRecord, error)

	// WorldData devuelve los datos mundiales tal cual, sin remodelar.
	WorldData(ctx context.Context) (json.RawMessage, error)
}

// GeoProvider resuelve coordenadas contra el servicio de geocodificación firmado.
type GeoProvider interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// OCRProvider habla con el servicio de OCR de documentos.
type OCRProvider interface {
	// IssueToken pide un bearer token nuevo al endpoint de emisión.
	IssueToken(ctx context.Context) (string, error)

	// Recognize envía la imagen y devuelve el campo de resultados, o
	// ErrShapeMismatch si la respuesta no lo trae.
	Recognize(ctx context.Context, token, image string) (json.RawMessage, error)
}

// OCRStore persiste resultados de OCR de forma duradera (solo-añadir).
type OCRStore interface {
	Save(ctx context.Context, doc *OCRDocument) error
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// GeoField forma el campo del hash mapLocation: longitud y latitud truncadas
// a entero, de modo que el jitter sub-grado reutilice el mismo resultado.
func GeoField(lat, lon float64) string {
	return fmt.Sprintf("%d,%d", int(math.Floor(lon)), int(math.Floor(lat)))
}
