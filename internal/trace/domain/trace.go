package domain

import (
	"context"
	"encoding/json"
	"errors"
)

const (
	// KeyTrackList es el hash cityCode→TrackWindow.
	KeyTrackList = "trackList"

	TTLTrackSecs = 60 * 60 * 3 // 3h
)

// ErrShapeMismatch: la respuesta del proveedor de trayectorias no trae la
// lista o el detalle esperado.
var ErrShapeMismatch = errors.New("trace response missing expected field")

// TrackPoint es un punto de trayectoria tal como lo publica el proveedor.
type TrackPoint struct {
	ID        int64   `json:"id,omitempty"`
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	CreateTS  int64   `json:"create_ts"`
	Source    string  `json:"source,omitempty"`
}

// TrackWindow son tres vistas sobre la misma lista de puntos: últimos 7
// días, últimos 14 y la lista sin filtrar. El corte se calcula con un
// snapshot de "ahora" en el momento del fetch, no en vivo.
type TrackWindow struct {
	Day7  []TrackPoint `json:"day7"`
	Day14 []TrackPoint `json:"day14"`
	All   []TrackPoint `json:"all"`
}

// TraceProvider habla con el servicio de trayectorias de la ciudad.
type TraceProvider interface {
	// TrackList devuelve la lista de puntos de una ciudad, o
	// ErrShapeMismatch si la respuesta no trae la lista.
	TrackList(ctx context.Context, cityCode, cityName string) ([]TrackPoint, error)

	// TrackDetail devuelve el detalle de un punto de interés tal cual.
	TrackDetail(ctx context.Context, poi, cityCode, cityName string) (json.RawMessage, error)
}
