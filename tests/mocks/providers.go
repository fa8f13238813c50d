package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	epidomain "github.com/davicafu/epidash/internal/epidemic/domain"
	tracedomain "github.com/davicafu/epidash/internal/trace/domain"
)

// StubNewsProvider devuelve datos fijos y cuenta las llamadas. Los contadores
// son atómicos porque el agregador consulta en paralelo.
type StubNewsProvider struct {
	Summary *epidomain.DomesticSummary
	Ranking []epidomain.RankedCity
	History []epidomain.DayRecord
	World   json.RawMessage

	SummaryErr error
	RankingErr error
	HistoryErr error
	WorldErr   error

	SummaryCalls atomic.Int32
	RankingCalls atomic.Int32
	HistoryCalls atomic.Int32
	WorldCalls   atomic.Int32
}

var _ epidomain.NewsProvider = (*StubNewsProvider)(nil)

func (p *StubNewsProvider) DomesticSummary(ctx context.Context) (*epidomain.DomesticSummary, error) {
	p.SummaryCalls.Add(1)
	if p.SummaryErr != nil {
		return nil, p.SummaryErr
	}
	return p.Summary, nil
}

func (p *StubNewsProvider) CityRanking(ctx context.Context) ([]epidomain.RankedCity, error) {
	p.RankingCalls.Add(1)
	if p.RankingErr != nil {
		return nil, p.RankingErr
	}
	return p.Ranking, nil
}

func (p *StubNewsProvider) DailyHistory(ctx context.Context) ([]epidomain.DayRecord, error) {
	p.HistoryCalls.Add(1)
	if p.HistoryErr != nil {
		return nil, p.HistoryErr
	}
	return p.History, nil
}

func (p *StubNewsProvider) WorldData(ctx context.Context) (json.RawMessage, error) {
	p.WorldCalls.Add(1)
	if p.WorldErr != nil {
		return nil, p.WorldErr
	}
	return p.World, nil
}

// StubGeoProvider responde siempre lo mismo.
type StubGeoProvider struct {
	Result json.RawMessage
	Err    error
	Calls  atomic.Int32
}

var _ epidomain.GeoProvider = (*StubGeoProvider)(nil)

func (p *StubGeoProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	p.Calls.Add(1)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Result, nil
}

// StubOCRProvider emite un token fijo y resultados fijos.
type StubOCRProvider struct {
	Token        string
	TokenErr     error
	Results      json.RawMessage
	RecognizeErr error

	TokenCalls     atomic.Int32
	RecognizeCalls atomic.Int32
}

var _ epidomain.OCRProvider = (*StubOCRProvider)(nil)

func (p *StubOCRProvider) IssueToken(ctx context.Context) (string, error) {
	p.TokenCalls.Add(1)
	if p.TokenErr != nil {
		return "", p.TokenErr
	}
	return p.Token, nil
}

func (p *StubOCRProvider) Recognize(ctx context.Context, token, image string) (json.RawMessage, error) {
	p.RecognizeCalls.Add(1)
	if p.RecognizeErr != nil {
		return nil, p.RecognizeErr
	}
	return p.Results, nil
}

// InMemoryOCRStore acumula los documentos guardados.
type InMemoryOCRStore struct {
	mu   sync.Mutex
	Docs []*epidomain.OCRDocument
	Err  error
}

var _ epidomain.OCRStore = (*InMemoryOCRStore)(nil)

func (s *InMemoryOCRStore) Save(ctx context.Context, doc *epidomain.OCRDocument) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Docs = append(s.Docs, doc)
	return nil
}

// StubTraceProvider devuelve una lista fija de puntos.
type StubTraceProvider struct {
	Points    []tracedomain.TrackPoint
	Detail    json.RawMessage
	ListErr   error
	DetailErr error

	ListCalls   atomic.Int32
	DetailCalls atomic.Int32
}

var _ tracedomain.TraceProvider = (*StubTraceProvider)(nil)

func (p *StubTraceProvider) TrackList(ctx context.Context, cityCode, cityName string) ([]tracedomain.TrackPoint, error) {
	p.ListCalls.Add(1)
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	return p.Points, nil
}

func (p *StubTraceProvider) TrackDetail(ctx context.Context, poi, cityCode, cityName string) (json.RawMessage, error) {
	p.DetailCalls.Add(1)
	if p.DetailErr != nil {
		return nil, p.DetailErr
	}
	return p.Detail, nil
}
