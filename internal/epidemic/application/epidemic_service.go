package application

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	sharedBus "github.com/davicafu/epidash/internal/shared/platform/bus"
	"github.com/davicafu/epidash/internal/shared/platform/cache"
	"github.com/davicafu/epidash/internal/shared/platform/obs"
)

// trendStride es cada cuántos días se muestrea la serie histórica.
const trendStride = 5

// EpidemicService define los casos de uso de agregación epidémica: lectura
// cache-aside contra los proveedores upstream, ensamblado del snapshot,
// geocodificación firmada, OCR y contador de visitas.
//
// Política de errores: cualquier fallo upstream o de caché se loggea y se
// convierte en un resultado nulo. El servicio nunca propaga un error duro al
// transporte ("fail soft, serve stale-or-empty").
type EpidemicService struct {
	cache   cache.Cache
	news    domain.NewsProvider
	geo     domain.GeoProvider
	ocr     domain.OCRProvider
	store   domain.OCRStore
	tokens  *TokenManager
	events  sharedBus.EventPublisher
	metrics *obs.Metrics
	log     *zap.Logger
}

// NewEpidemicService constructor. events y metrics pueden ser nil.
func NewEpidemicService(
	c cache.Cache,
	news domain.NewsProvider,
	geo domain.GeoProvider,
	ocr domain.OCRProvider,
	store domain.OCRStore,
	tokens *TokenManager,
	events sharedBus.EventPublisher,
	metrics *obs.Metrics,
	log *zap.Logger,
) *EpidemicService {
	return &EpidemicService{
		cache:   c,
		news:    news,
		geo:     geo,
		ocr:     ocr,
		store:   store,
		tokens:  tokens,
		events:  events,
		metrics: metrics,
		log:     log,
	}
}

// probe hace la lectura cache-aside de una clave plana. Una caché caída se
// degrada a miss y lo anota en métricas.
func (s *EpidemicService) probe(ctx context.Context, key string, dest interface{}) bool {
	ok, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.metrics.ObserveCache(key, "error")
		s.log.Warn("cache read failed, falling through to upstream",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	if ok {
		s.metrics.ObserveCache(key, "hit")
		return true
	}
	s.metrics.ObserveCache(key, "miss")
	return false
}

// GetEpidemicData devuelve el snapshot agregado nacional. En miss lanza las
// tres consultas upstream en paralelo y solo ensambla si las tres secciones
// llegaron completas: un snapshot parcial equivale a fallo total y no se
// cachea nunca.
func (s *EpidemicService) GetEpidemicData(ctx context.Context) *domain.Snapshot {
	var cached domain.Snapshot
	if s.probe(ctx, domain.KeyEpidemicData, &cached) {
		return &cached
	}

	var (
		summary *domain.DomesticSummary
		ranking []domain.RankedCity
		history []domain.DayRecord
	)

	// Fan-out/fan-in: la latencia total queda acotada por la llamada más
	// lenta, no por la suma de las tres.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.news.DomesticSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ranking, err = s.news.CityRanking(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.news.DailyHistory(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("epidemic aggregation failed",
			zap.String("operation", "getEpidemicData"),
			zap.Error(err))
		return nil
	}

	snapshot := assembleSnapshot(summary, ranking, history)
	if snapshot == nil {
		s.log.Error("epidemic aggregation yielded incomplete sections",
			zap.String("operation", "getEpidemicData"))
		return nil
	}

	cache.AsyncSet(s.cache, domain.KeyEpidemicData, snapshot, domain.TTLEpidemicSecs, s.log)
	s.publishRefresh(snapshot)

	return snapshot
}

// assembleSnapshot construye el resultado público a partir de las tres
// respuestas. Devuelve nil si no hay resumen o la serie diaria viene vacía
// (la tendencia necesita al menos su punto final).
func assembleSnapshot(summary *domain.DomesticSummary, ranking []domain.RankedCity, history []domain.DayRecord) *domain.Snapshot {
	if summary == nil || len(history) == 0 {
		return nil
	}

	today := make([]domain.ProvinceStat, 0, len(summary.Provinces))
	nowConfirm := make([]domain.ProvinceStat, 0, len(summary.Provinces))
	total := make([]domain.ProvinceStat, 0, len(summary.Provinces))
	for _, p := range summary.Provinces {
		today = append(today, domain.ProvinceStat{Name: p.Name, Value: p.TodayConfirm})
		nowConfirm = append(nowConfirm, domain.ProvinceStat{Name: p.Name, Value: p.NowConfirm})
		total = append(total, domain.ProvinceStat{Name: p.Name, Value: p.TotalConfirm})
	}

	// Orden descendente por nuevos confirmados; los empates conservan el
	// orden upstream (sort estable sobre una copia).
	ranked := make([]domain.RankedCity, len(ranking))
	copy(ranked, ranking)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ConfirmAdd > ranked[j].ConfirmAdd
	})

	return &domain.Snapshot{
		LastUpdateTime:     summary.LastUpdateTime,
		ChinaAdd:           summary.ChinaAdd,
		ChinaTotal:         summary.ChinaTotal,
		TodayProvince:      today,
		NowConfirmProvince: nowConfirm,
		TotalProvince:      total,
		ProvinceRanking:    ranked,
		LocalConfirmTrend:  buildTrend(history, trendStride),
	}
}

// buildTrend muestrea la serie diaria cada 'stride' días y añade siempre el
// punto más reciente, sin duplicarlo si el muestreo ya lo incluyó.
func buildTrend(history []domain.DayRecord, stride int) domain.TrendSeries {
	trend := domain.TrendSeries{
		Days:         make([]string, 0, len(history)/stride+2),
		LocalConfirm: make([]int, 0, len(history)/stride+2),
	}

	last := len(history) - 1
	for idx := 0; idx <= last; idx += stride {
		trend.Days = append(trend.Days, history[idx].Date)
		trend.LocalConfirm = append(trend.LocalConfirm, history[idx].LocalConfirm)
	}
	if last%stride != 0 {
		trend.Days = append(trend.Days, history[last].Date)
		trend.LocalConfirm = append(trend.LocalConfirm, history[last].LocalConfirm)
	}
	return trend
}

func (s *EpidemicService) publishRefresh(snap *domain.Snapshot) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(domain.SnapshotRefreshed{
		LastUpdateTime: snap.LastUpdateTime,
		Provinces:      len(snap.TodayProvince),
		RefreshedAt:    time.Now().UTC(),
	})
	if err != nil {
		return
	}

	// Mismo racional que AsyncSet: el evento es un aviso, no puede atar su
	// suerte al contexto de la petición.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	evt := sharedBus.IntegrationEvent{
		Type:      domain.EventSnapshotRefreshed,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("failed to publish snapshot refresh event", zap.Error(err))
	}
}

// GetWorldData devuelve los datos mundiales sin remodelar, con cache-aside
// de 3 horas. Una sola llamada upstream, sin merge.
func (s *EpidemicService) GetWorldData(ctx context.Context) json.RawMessage {
	var cached json.RawMessage
	if s.probe(ctx, domain.KeyWorldData, &cached) {
		return cached
	}

	data, err := s.news.WorldData(ctx)
	if err != nil {
		s.log.Error("world data fetch failed",
			zap.String("operation", "getWorldData"),
			zap.Error(err))
		return nil
	}

	cache.AsyncSet(s.cache, domain.KeyWorldData, data, domain.TTLWorldSecs, s.log)
	return data
}

// Geocode resuelve unas coordenadas contra el proveedor firmado. El campo
// del hash mapLocation es la coordenada truncada a entero, así el jitter
// sub-grado reutiliza el resultado cacheado. La escritura es por campo (no
// se reescribe el hash completo) y renueva el TTL de 1 hora de la clave.
func (s *EpidemicService) Geocode(ctx context.Context, lat, lon float64) json.RawMessage {
	field := domain.GeoField(lat, lon)

	var cached json.RawMessage
	ok, err := s.cache.HGet(ctx, domain.KeyMapLocation, field, &cached)
	if err != nil {
		s.metrics.ObserveCache(domain.KeyMapLocation, "error")
		s.log.Warn("cache read failed, falling through to upstream",
			zap.String("key", domain.KeyMapLocation),
			zap.String("field", field),
			zap.Error(err))
	} else if ok {
		s.metrics.ObserveCache(domain.KeyMapLocation, "hit")
		return cached
	} else {
		s.metrics.ObserveCache(domain.KeyMapLocation, "miss")
	}

	result, err := s.geo.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.log.Error("geocode failed",
			zap.String("operation", "mapService"),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return nil
	}

	cache.AsyncHSet(s.cache, domain.KeyMapLocation, field, result, domain.TTLGeoSecs, s.log)
	return result
}

// OCR reconoce el texto de una imagen y persiste el resultado crudo en el
// almacén duradero. Devuelve true solo si el proveedor trajo resultados y
// se guardaron.
func (s *EpidemicService) OCR(ctx context.Context, image string) bool {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.log.Error("ocr token acquisition failed",
			zap.String("operation", "ocrService"),
			zap.Error(err))
		return false
	}

	results, err := s.ocr.Recognize(ctx, token, image)
	if err != nil {
		s.log.Error("ocr recognition failed",
			zap.String("operation", "ocrService"),
			zap.Error(err))
		return false
	}

	doc := &domain.OCRDocument{
		ID:        uuid.New(),
		Data:      string(results),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, doc); err != nil {
		s.log.Error("ocr result persistence failed",
			zap.String("operation", "ocrService"),
			zap.Error(err))
		return false
	}
	return true
}

// RecordView incrementa el contador de visitas de la categoría dada.
// Dispara y olvida: el llamante nunca se entera de un fallo.
func (s *EpidemicService) RecordView(ctx context.Context, viewType string) {
	exists, err := s.cache.HExists(ctx, domain.KeyViewCounter, viewType)
	if err != nil {
		s.log.Warn("view counter lookup failed",
			zap.String("type", viewType),
			zap.Error(err))
		return
	}

	if !exists {
		if err := s.cache.HSet(ctx, domain.KeyViewCounter, viewType, 1); err != nil {
			s.log.Warn("view counter init failed",
				zap.String("type", viewType),
				zap.Error(err))
		}
		return
	}

	if _, err := s.cache.HIncrBy(ctx, domain.KeyViewCounter, viewType, 1); err != nil {
		s.log.Warn("view counter increment failed",
			zap.String("type", viewType),
			zap.Error(err))
	}
}
