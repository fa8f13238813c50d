package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/davicafu/epidash/internal/epidemic/domain"
	sharedBus "github.com/davicafu/epidash/internal/shared/platform/bus"
	"github.com/davicafu/epidash/tests/mocks"
)

// ---------------- Fixtures ----------------

func fixtureSummary() *domain.DomesticSummary {
	return &domain.DomesticSummary{
		LastUpdateTime: "2022-04-01 09:00:00",
		ChinaAdd:       domain.NationalStat{Confirm: 120, NowConfirm: 30},
		ChinaTotal:     domain.NationalStat{Confirm: 150000, Dead: 5000, Heal: 140000},
		Provinces: []domain.ProvinceReport{
			{Name: "湖北", TodayConfirm: 3, NowConfirm: 12, TotalConfirm: 68000},
			{Name: "广东", TodayConfirm: 25, NowConfirm: 310, TotalConfirm: 7200},
			{Name: "北京", TodayConfirm: 7, NowConfirm: 90, TotalConfirm: 1800},
		},
	}
}

func fixtureRanking() []domain.RankedCity {
	return []domain.RankedCity{
		{City: "广州", ConfirmAdd: 10},
		{City: "上海", ConfirmAdd: 42},
		{City: "深圳", ConfirmAdd: 10},
		{City: "北京", ConfirmAdd: 7},
	}
}

func fixtureHistory(n int) []domain.DayRecord {
	history := make([]domain.DayRecord, n)
	for i := range history {
		history[i] = domain.DayRecord{
			Date:         time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("01.02"),
			LocalConfirm: i * 10,
		}
	}
	return history
}

func healthyNews() *mocks.StubNewsProvider {
	return &mocks.StubNewsProvider{
		Summary: fixtureSummary(),
		Ranking: fixtureRanking(),
		History: fixtureHistory(31),
		World:   json.RawMessage(`{"WomWorld":{"confirm":500000000}}`),
	}
}

func newService(c *mocks.DummyCache, news *mocks.StubNewsProvider, geo *mocks.StubGeoProvider, ocr *mocks.StubOCRProvider, store *mocks.InMemoryOCRStore, events *mocks.DummyPublisher) *EpidemicService {
	log := zap.NewNop()
	tokens := NewTokenManager(c, ocr, log)
	var bus sharedBus.EventPublisher
	if events != nil {
		bus = events
	}
	return NewEpidemicService(c, news, geo, ocr, store, tokens, bus, nil, log)
}

// ---------------- GetEpidemicData ----------------

func TestGetEpidemicData_AssemblesSnapshot(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	snap := service.GetEpidemicData(context.Background())
	assert.NotNil(t, snap)

	assert.Equal(t, "2022-04-01 09:00:00", snap.LastUpdateTime)
	assert.Equal(t, 120, snap.ChinaAdd.Confirm)
	assert.Equal(t, 150000, snap.ChinaTotal.Confirm)

	// Las tres series por provincia salen del mismo árbol.
	assert.Equal(t, []domain.ProvinceStat{
		{Name: "湖北", Value: 3}, {Name: "广东", Value: 25}, {Name: "北京", Value: 7},
	}, snap.TodayProvince)
	assert.Equal(t, []domain.ProvinceStat{
		{Name: "湖北", Value: 12}, {Name: "广东", Value: 310}, {Name: "北京", Value: 90},
	}, snap.NowConfirmProvince)
	assert.Equal(t, []domain.ProvinceStat{
		{Name: "湖北", Value: 68000}, {Name: "广东", Value: 7200}, {Name: "北京", Value: 1800},
	}, snap.TotalProvince)

	// Cada consulta upstream se hizo exactamente una vez.
	assert.Equal(t, int32(1), news.SummaryCalls.Load())
	assert.Equal(t, int32(1), news.RankingCalls.Load())
	assert.Equal(t, int32(1), news.HistoryCalls.Load())
}

func TestGetEpidemicData_RankingSortedDescendingStable(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	snap := service.GetEpidemicData(context.Background())
	assert.NotNil(t, snap)

	cities := make([]string, 0, len(snap.ProvinceRanking))
	for _, r := range snap.ProvinceRanking {
		cities = append(cities, r.City)
	}
	// 广州 y 深圳 empatan a 10: conservan su orden upstream.
	assert.Equal(t, []string{"上海", "广州", "深圳", "北京"}, cities)
}

func TestGetEpidemicData_CacheHitShortCircuits(t *testing.T) {
	cache := mocks.NewDummyCache()
	cache.SetForTest(domain.KeyEpidemicData, &domain.Snapshot{LastUpdateTime: "cached"})

	news := healthyNews()
	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	snap := service.GetEpidemicData(context.Background())
	assert.NotNil(t, snap)
	assert.Equal(t, "cached", snap.LastUpdateTime)

	// El hit no toca upstream.
	assert.Equal(t, int32(0), news.SummaryCalls.Load())
	assert.Equal(t, int32(0), news.RankingCalls.Load())
	assert.Equal(t, int32(0), news.HistoryCalls.Load())
}

func TestGetEpidemicData_SecondCallWithinTTLUsesCache(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	assert.NotNil(t, service.GetEpidemicData(context.Background()))

	// La escritura del snapshot es asíncrona; esperamos a que aterrice.
	assert.Eventually(t, func() bool {
		return cache.HasKey(domain.KeyEpidemicData)
	}, time.Second, 10*time.Millisecond)

	assert.NotNil(t, service.GetEpidemicData(context.Background()))
	assert.Equal(t, int32(1), news.SummaryCalls.Load())
}

func TestGetEpidemicData_MissingSectionYieldsNilAndNoCacheWrite(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	news.HistoryErr = domain.ErrShapeMismatch // una sección caída anula el todo

	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	snap := service.GetEpidemicData(context.Background())
	assert.Nil(t, snap)

	// Un resultado nulo jamás se cachea.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, cache.HasKey(domain.KeyEpidemicData))
}

func TestGetEpidemicData_EmptyHistoryYieldsNil(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	news.History = []domain.DayRecord{}

	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	assert.Nil(t, service.GetEpidemicData(context.Background()))
}

func TestGetEpidemicData_CacheUnavailableFailsOpen(t *testing.T) {
	cache := mocks.NewDummyCache()
	cache.Unavailable = true

	news := healthyNews()
	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	// La caché caída no impide servir desde upstream.
	snap := service.GetEpidemicData(context.Background())
	assert.NotNil(t, snap)
	assert.Equal(t, int32(1), news.SummaryCalls.Load())
}

func TestGetEpidemicData_PublishesRefreshEvent(t *testing.T) {
	cache := mocks.NewDummyCache()
	events := &mocks.DummyPublisher{}
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, events)

	assert.NotNil(t, service.GetEpidemicData(context.Background()))

	published := events.Published()
	assert.Len(t, published, 1)
	assert.Equal(t, domain.EventSnapshotRefreshed, published[0].Type)

	var payload domain.SnapshotRefreshed
	assert.NoError(t, json.Unmarshal(published[0].Data, &payload))
	assert.Equal(t, "2022-04-01 09:00:00", payload.LastUpdateTime)
	assert.Equal(t, 3, payload.Provinces)
}

// ---------------- Tendencia ----------------

func TestBuildTrend_31EntriesSamplesStrideAndFinal(t *testing.T) {
	history := fixtureHistory(31)

	trend := buildTrend(history, 5)

	// Índices 0,5,...,30; el índice 30 ya es el último, no se duplica.
	assert.Len(t, trend.Days, 7)
	assert.Equal(t, history[0].Date, trend.Days[0])
	assert.Equal(t, history[30].Date, trend.Days[6])
	assert.Equal(t, history[30].LocalConfirm, trend.LocalConfirm[6])
}

func TestBuildTrend_AppendsFinalWhenStrideMisses(t *testing.T) {
	history := fixtureHistory(33)

	trend := buildTrend(history, 5)

	// Índices 0,5,...,30 más el último (32).
	assert.Len(t, trend.Days, 8)
	assert.Equal(t, history[32].Date, trend.Days[7])
	assert.Equal(t, history[32].LocalConfirm, trend.LocalConfirm[7])
}

func TestBuildTrend_SingleEntry(t *testing.T) {
	history := fixtureHistory(1)

	trend := buildTrend(history, 5)

	assert.Len(t, trend.Days, 1)
	assert.Equal(t, history[0].Date, trend.Days[0])
}

// ---------------- GetWorldData ----------------

func TestGetWorldData_FetchesAndCaches(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	data := service.GetWorldData(context.Background())
	assert.JSONEq(t, `{"WomWorld":{"confirm":500000000}}`, string(data))
	assert.Equal(t, int32(1), news.WorldCalls.Load())

	assert.Eventually(t, func() bool {
		return cache.HasKey(domain.KeyWorldData)
	}, time.Second, 10*time.Millisecond)

	// Segunda llamada: hit.
	data = service.GetWorldData(context.Background())
	assert.NotNil(t, data)
	assert.Equal(t, int32(1), news.WorldCalls.Load())
}

func TestGetWorldData_UpstreamFailureYieldsNil(t *testing.T) {
	cache := mocks.NewDummyCache()
	news := healthyNews()
	news.WorldErr = domain.ErrShapeMismatch

	service := newService(cache, news, &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	assert.Nil(t, service.GetWorldData(context.Background()))
	time.Sleep(50 * time.Millisecond)
	assert.False(t, cache.HasKey(domain.KeyWorldData))
}

// ---------------- Geocode ----------------

func TestGeocode_HitReturnsCachedField(t *testing.T) {
	cache := mocks.NewDummyCache()
	cache.HSetForTest(domain.KeyMapLocation, domain.GeoField(39.9, 116.3), json.RawMessage(`{"address":"beijing"}`))

	geo := &mocks.StubGeoProvider{Result: json.RawMessage(`{"address":"fresh"}`)}
	service := newService(cache, healthyNews(), geo, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	result := service.Geocode(context.Background(), 39.9, 116.3)
	assert.JSONEq(t, `{"address":"beijing"}`, string(result))
	assert.Equal(t, int32(0), geo.Calls.Load())
}

func TestGeocode_SubDegreeJitterSharesField(t *testing.T) {
	// El campo del hash trunca a entero: el jitter sub-grado reutiliza la entrada.
	assert.Equal(t, domain.GeoField(39.9, 116.3), domain.GeoField(39.1, 116.8))
	assert.NotEqual(t, domain.GeoField(39.9, 116.3), domain.GeoField(39.9, 117.1))
}

func TestGeocode_MissFetchesAndStoresField(t *testing.T) {
	cache := mocks.NewDummyCache()
	geo := &mocks.StubGeoProvider{Result: json.RawMessage(`{"address":"beijing"}`)}
	service := newService(cache, healthyNews(), geo, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	result := service.Geocode(context.Background(), 39.9, 116.3)
	assert.JSONEq(t, `{"address":"beijing"}`, string(result))
	assert.Equal(t, int32(1), geo.Calls.Load())

	assert.Eventually(t, func() bool {
		var cached json.RawMessage
		ok, _ := cache.HGet(context.Background(), domain.KeyMapLocation, domain.GeoField(39.9, 116.3), &cached)
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestGeocode_UpstreamFailureYieldsNil(t *testing.T) {
	cache := mocks.NewDummyCache()
	geo := &mocks.StubGeoProvider{Err: domain.ErrShapeMismatch}
	service := newService(cache, healthyNews(), geo, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	assert.Nil(t, service.Geocode(context.Background(), 39.9, 116.3))
}

// ---------------- OCR ----------------

func TestOCR_SuccessPersistsResults(t *testing.T) {
	cache := mocks.NewDummyCache()
	ocr := &mocks.StubOCRProvider{Token: "tok", Results: json.RawMessage(`[{"words":"出示健康码"}]`)}
	store := &mocks.InMemoryOCRStore{}
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, ocr, store, nil)

	ok := service.OCR(context.Background(), "base64-image-data")
	assert.True(t, ok)

	assert.Len(t, store.Docs, 1)
	assert.JSONEq(t, `[{"words":"出示健康码"}]`, store.Docs[0].Data)
	assert.NotZero(t, store.Docs[0].ID)
	assert.Equal(t, int32(1), ocr.TokenCalls.Load())
	assert.Equal(t, int32(1), ocr.RecognizeCalls.Load())
}

func TestOCR_NoResultsFieldReturnsFalse(t *testing.T) {
	cache := mocks.NewDummyCache()
	ocr := &mocks.StubOCRProvider{Token: "tok", RecognizeErr: domain.ErrShapeMismatch}
	store := &mocks.InMemoryOCRStore{}
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, ocr, store, nil)

	assert.False(t, service.OCR(context.Background(), "img"))
	assert.Empty(t, store.Docs)
}

func TestOCR_StoreFailureReturnsFalse(t *testing.T) {
	cache := mocks.NewDummyCache()
	ocr := &mocks.StubOCRProvider{Token: "tok", Results: json.RawMessage(`[]`)}
	store := &mocks.InMemoryOCRStore{Err: assert.AnError}
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, ocr, store, nil)

	assert.False(t, service.OCR(context.Background(), "img"))
}

// ---------------- RecordView ----------------

func TestRecordView_FirstCallSetsToOne(t *testing.T) {
	cache := mocks.NewDummyCache()
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	ctx := context.Background()
	service.RecordView(ctx, "index")

	var count int64
	ok, err := cache.HGet(ctx, domain.KeyViewCounter, "index", &count)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), count)
}

func TestRecordView_SubsequentCallsIncrement(t *testing.T) {
	cache := mocks.NewDummyCache()
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	ctx := context.Background()
	service.RecordView(ctx, "map")
	service.RecordView(ctx, "map")
	service.RecordView(ctx, "map")

	var count int64
	ok, _ := cache.HGet(ctx, domain.KeyViewCounter, "map", &count)
	assert.True(t, ok)
	assert.Equal(t, int64(3), count)
}

func TestRecordView_CacheFailureIsSwallowed(t *testing.T) {
	cache := mocks.NewDummyCache()
	cache.Unavailable = true
	service := newService(cache, healthyNews(), &mocks.StubGeoProvider{}, &mocks.StubOCRProvider{}, &mocks.InMemoryOCRStore{}, nil)

	// No devuelve nada y no entra en pánico: el llamante nunca se entera.
	service.RecordView(context.Background(), "index")
}
