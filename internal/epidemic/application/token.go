package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	"github.com/davicafu/epidash/internal/shared/platform/cache"
)

// TokenManager cachea y refresca en diferido el bearer token del proveedor
// de OCR. No toma ningún lock distribuido: dos misses concurrentes pueden
// emitir dos tokens, y es aceptable porque la emisión es idempotente y barata.
type TokenManager struct {
	cache    cache.Cache
	provider domain.OCRProvider
	log      *zap.Logger
}

func NewTokenManager(c cache.Cache, provider domain.OCRProvider, log *zap.Logger) *TokenManager {
	return &TokenManager{cache: c, provider: provider, log: log}
}

// Token devuelve un bearer token válido, emitiendo uno nuevo solo si la
// caché no tiene ninguno. El token se guarda con un TTL conservador de 3
// días en lugar de confiar en el expiry exacto que declara el proveedor.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	var token string
	ok, err := m.cache.Get(ctx, domain.KeyAccessToken, &token)
	if err != nil {
		// Caché caída: seguimos al proveedor igualmente.
		m.log.Warn("token cache read failed", zap.Error(err))
	}
	if ok && token != "" {
		return token, nil
	}

	token, err = m.provider.IssueToken(ctx)
	if err != nil {
		return "", err
	}

	cache.AsyncSet(m.cache, domain.KeyAccessToken, token, domain.TTLTokenSecs, m.log)
	return token, nil
}
