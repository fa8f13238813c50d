package application

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/epidash/internal/shared/platform/cache"
	"github.com/davicafu/epidash/internal/shared/platform/obs"
	"github.com/davicafu/epidash/internal/trace/domain"
)

const secondsPerDay = 24 * 60 * 60

// TraceService sirve las listas de trayectorias por ciudad con cache-aside
// sobre el hash trackList, y el detalle de punto sin cachear (alta
// cardinalidad, poco tráfico: cachearlo no compensa).
type TraceService struct {
	cache    cache.Cache
	provider domain.TraceProvider
	metrics  *obs.Metrics
	log      *zap.Logger
}

func NewTraceService(c cache.Cache, provider domain.TraceProvider, metrics *obs.Metrics, log *zap.Logger) *TraceService {
	return &TraceService{cache: c, provider: provider, metrics: metrics, log: log}
}

// GetTrackList devuelve las ventanas 7/14/all de una ciudad. En miss trae la
// lista del proveedor, la particiona contra el "ahora" del fetch y la guarda
// como campo del hash trackList con TTL de 3 horas.
func (s *TraceService) GetTrackList(ctx context.Context, cityCode, cityName string) *domain.TrackWindow {
	var cached domain.TrackWindow
	ok, err := s.cache.HGet(ctx, domain.KeyTrackList, cityCode, &cached)
	if err != nil {
		s.metrics.ObserveCache(domain.KeyTrackList, "error")
		s.log.Warn("cache read failed, falling through to upstream",
			zap.String("key", domain.KeyTrackList),
			zap.String("cityCode", cityCode),
			zap.Error(err))
	} else if ok {
		s.metrics.ObserveCache(domain.KeyTrackList, "hit")
		return &cached
	} else {
		s.metrics.ObserveCache(domain.KeyTrackList, "miss")
	}

	points, err := s.provider.TrackList(ctx, cityCode, cityName)
	if err != nil {
		s.log.Error("track list fetch failed",
			zap.String("operation", "getTrackList"),
			zap.String("cityCode", cityCode),
			zap.String("cityName", cityName),
			zap.Error(err))
		return nil
	}

	window := bucketPoints(points, time.Now().Unix())

	cache.AsyncHSet(s.cache, domain.KeyTrackList, cityCode, window, domain.TTLTrackSecs, s.log)
	return window
}

// bucketPoints particiona la lista por differDay = floor((now-create)/86400):
// differDay <= 7 entra en Day7, <= 14 en Day14, y All conserva la lista
// completa sin filtrar.
func bucketPoints(points []domain.TrackPoint, nowUnix int64) *domain.TrackWindow {
	window := &domain.TrackWindow{
		Day7:  make([]domain.TrackPoint, 0, len(points)),
		Day14: make([]domain.TrackPoint, 0, len(points)),
		All:   points,
	}

	for _, p := range points {
		differDay := (nowUnix - p.CreateTS) / secondsPerDay
		if differDay <= 7 {
			window.Day7 = append(window.Day7, p)
		}
		if differDay <= 14 {
			window.Day14 = append(window.Day14, p)
		}
	}
	return window
}

// GetTrackDetail es un passthrough directo al proveedor, sin caché.
func (s *TraceService) GetTrackDetail(ctx context.Context, poi, cityCode, cityName string) json.RawMessage {
	detail, err := s.provider.TrackDetail(ctx, poi, cityCode, cityName)
	if err != nil {
		s.log.Error("track detail fetch failed",
			zap.String("operation", "getTrackDetail"),
			zap.String("poi", poi),
			zap.String("cityCode", cityCode),
			zap.Error(err))
		return nil
	}
	return detail
}
