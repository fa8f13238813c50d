package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheUnavailable indica que el almacén de respaldo no responde. Los
// llamantes lo tratan como un cache miss: la caché es una optimización,
// nunca una dependencia de corrección.
var ErrCacheUnavailable = errors.New("cache: backing store unavailable")

// Cache define la interfaz para una caché de clave-valor con soporte de
// hashes por clave (contadores y diccionarios campo→valor).
type Cache interface {
	// Get intenta poblar 'dest' (que debe ser un puntero) con el valor asociado a la 'key'.
	// Devuelve (true, nil) si hay un 'hit' y 'dest' fue rellenado.
	// Devuelve (false, nil) si es un 'miss'.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set serializa y guarda el valor con un TTL en segundos.
	// Un TTL <= 0 significa que la entrada no expira de forma implícita.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	// Delete elimina la 'key' de la caché.
	Delete(ctx context.Context, key string) error

	// FlushAll vacía el espacio de claves completo.
	FlushAll(ctx context.Context) error

	// HGet intenta poblar 'dest' con el valor del campo 'field' del hash 'key'.
	// Misma semántica hit/miss que Get.
	HGet(ctx context.Context, key, field string, dest interface{}) (bool, error)

	// HSet serializa y guarda el valor de un campo del hash 'key'.
	HSet(ctx context.Context, key, field string, val interface{}) error

	// HIncrBy incrementa el campo entero 'field' del hash 'key' en 'delta'
	// y devuelve el valor resultante. Crea el campo a 0+delta si no existe.
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	// HExists indica si el campo existe en el hash 'key'.
	HExists(ctx context.Context, key, field string) (bool, error)

	// Expire fija el TTL en segundos de una clave ya existente (plana o hash).
	Expire(ctx context.Context, key string, ttlSecs int) error

	// Ping comprueba la salud del almacén de respaldo.
	Ping(ctx context.Context) error
}

// secondsToDuration traduce el TTL en segundos del contrato a time.Duration.
// Cero significa "sin expiración" en ambos adapters.
func secondsToDuration(ttlSecs int) time.Duration {
	if ttlSecs <= 0 {
		return 0
	}
	return time.Duration(ttlSecs) * time.Second
}
