package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AsyncSet actualiza la caché en background sin bloquear la respuesta.
func AsyncSet(cache Cache, key string, value interface{}, ttlSecs int, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		// Usamos context.Background() deliberadamente: es una operación de
		// "dispara y olvida" que debe completarse aunque la petición original
		// ya haya terminado.
		cacheCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		if err := cache.Set(cacheCtx, key, value, ttlSecs); err != nil {
			log.Warn("Cache update failed",
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

// AsyncHSet guarda un campo de hash en background y renueva el TTL de la clave.
func AsyncHSet(cache Cache, key, field string, value interface{}, ttlSecs int, log *zap.Logger) {
	if cache == nil {
		return
	}

	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		if err := cache.HSet(cacheCtx, key, field, value); err != nil {
			log.Warn("Cache hash update failed",
				zap.String("key", key),
				zap.String("field", field),
				zap.Error(err))
			return
		}
		if ttlSecs > 0 {
			if err := cache.Expire(cacheCtx, key, ttlSecs); err != nil {
				log.Warn("Cache expire failed",
					zap.String("key", key),
					zap.Error(err))
			}
		}
	}()
}
