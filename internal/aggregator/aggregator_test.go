package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"stock_advisor/internal/models"
)

// stubSource is a DataSource double. Function fields override behavior
// per test; unset fields answer with zero values. Counters are guarded
// because the aggregator calls into the source concurrently.
type stubSource struct {
	mu sync.Mutex

	quoteFn     func(symbol string) (models.Quote, error)
	newsFn      func(symbol string, from, to time.Time) ([]models.NewsItem, error)
	insiderFn   func(symbol string, from, to time.Time) ([]models.InsiderRecord, error)
	searchFn    func(query string) ([]models.SymbolMatch, error)
	generalFn   func() ([]models.NewsItem, error)
	sentimentFn func() (string, error)

	quoteCalls     int
	newsCalls      int
	insiderCalls   []models.DateRange
	searchCalls    int
	generalCalls   int
	sentimentCalls int
}

func (s *stubSource) Quote(_ context.Context, symbol string) (models.Quote, error) {
	s.mu.Lock()
	s.quoteCalls++
	s.mu.Unlock()
	if s.quoteFn != nil {
		return s.quoteFn(symbol)
	}
	return models.Quote{}, nil
}

func (s *stubSource) CompanyNews(_ context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	s.mu.Lock()
	s.newsCalls++
	s.mu.Unlock()
	if s.newsFn != nil {
		return s.newsFn(symbol, from, to)
	}
	return nil, nil
}

func (s *stubSource) InsiderSentiment(_ context.Context, symbol string, from, to time.Time) ([]models.InsiderRecord, error) {
	s.mu.Lock()
	s.insiderCalls = append(s.insiderCalls, models.DateRange{From: from, To: to})
	s.mu.Unlock()
	if s.insiderFn != nil {
		return s.insiderFn(symbol, from, to)
	}
	return nil, nil
}

func (s *stubSource) SymbolSearch(_ context.Context, query string) ([]models.SymbolMatch, error) {
	s.mu.Lock()
	s.searchCalls++
	s.mu.Unlock()
	if s.searchFn != nil {
		return s.searchFn(query)
	}
	return nil, nil
}

func (s *stubSource) GeneralNews(_ context.Context) ([]models.NewsItem, error) {
	s.mu.Lock()
	s.generalCalls++
	s.mu.Unlock()
	if s.generalFn != nil {
		return s.generalFn()
	}
	return nil, nil
}

func (s *stubSource) SentimentIndex(_ context.Context) (string, error) {
	s.mu.Lock()
	s.sentimentCalls++
	s.mu.Unlock()
	if s.sentimentFn != nil {
		return s.sentimentFn()
	}
	return "", nil
}

func liveQuote() models.Quote {
	return models.Quote{Current: decimal.NewFromFloat(123.45)}
}

func newTestAggregator(src *stubSource) *Aggregator {
	a := New(src, "SPY", zerolog.Nop())
	a.now = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAggregate_UnknownSymbolShortCircuits(t *testing.T) {
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) { return models.Quote{}, nil },
		searchFn: func(string) ([]models.SymbolMatch, error) {
			return []models.SymbolMatch{{Description: "Advanced Micro Devices", Symbol: "AMD"}}, nil
		},
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "AMDD", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.NotFound() {
		t.Fatal("all-zero quote must resolve to not found")
	}
	if len(outcome.Suggestions) != 1 || outcome.Suggestions[0].Symbol != "AMD" {
		t.Errorf("unexpected suggestions: %+v", outcome.Suggestions)
	}
	// Not-found must not spend any further source calls.
	if src.newsCalls != 0 || len(src.insiderCalls) != 0 || src.generalCalls != 0 || src.sentimentCalls != 0 {
		t.Errorf("enrichment fetches ran for an unknown symbol: news=%d insider=%d general=%d sentiment=%d",
			src.newsCalls, len(src.insiderCalls), src.generalCalls, src.sentimentCalls)
	}
	if src.quoteCalls != 1 {
		t.Errorf("expected a single quote call, got %d", src.quoteCalls)
	}
}

func TestAggregate_SuggestionsCapped(t *testing.T) {
	src := &stubSource{
		searchFn: func(string) ([]models.SymbolMatch, error) {
			matches := make([]models.SymbolMatch, 8)
			for i := range matches {
				matches[i] = models.SymbolMatch{Symbol: fmt.Sprintf("SYM%d", i)}
			}
			return matches, nil
		},
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "XXXX", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(outcome.Suggestions) != maxSuggestions {
		t.Errorf("expected %d suggestions, got %d", maxSuggestions, len(outcome.Suggestions))
	}
}

func TestAggregate_SearchFailureMeansNoSuggestions(t *testing.T) {
	src := &stubSource{
		searchFn: func(string) ([]models.SymbolMatch, error) {
			return nil, errors.New("search unavailable")
		},
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "XXXX", 14)
	if err != nil {
		t.Fatalf("search failure must not fail the aggregation: %v", err)
	}
	if !outcome.NotFound() || len(outcome.Suggestions) != 0 {
		t.Errorf("expected not-found with no suggestions, got %+v", outcome)
	}
}

func TestAggregate_QuoteTransportErrorPropagates(t *testing.T) {
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) {
			return models.Quote{}, errors.New("connection reset")
		},
	}
	a := newTestAggregator(src)

	_, err := a.Aggregate(context.Background(), "AMD", 14)
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !strings.Contains(err.Error(), "AMD") {
		t.Errorf("error should name the symbol: %v", err)
	}
	if src.searchCalls != 0 {
		t.Error("transport failures must not trigger a symbol search")
	}
}

func TestAggregate_EnrichmentFailuresDegrade(t *testing.T) {
	src := &stubSource{
		quoteFn: func(symbol string) (models.Quote, error) {
			if symbol == "SPY" {
				return models.Quote{}, errors.New("rate limited")
			}
			return liveQuote(), nil
		},
		newsFn: func(string, time.Time, time.Time) ([]models.NewsItem, error) {
			return nil, errors.New("rate limited")
		},
		insiderFn: func(string, time.Time, time.Time) ([]models.InsiderRecord, error) {
			return nil, errors.New("rate limited")
		},
		generalFn: func() ([]models.NewsItem, error) {
			return nil, errors.New("rate limited")
		},
		sentimentFn: func() (string, error) {
			return "", errors.New("rate limited")
		},
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "AMD", 14)
	if err != nil {
		t.Fatalf("degraded fetches must never fail the aggregation: %v", err)
	}
	b := outcome.Bundle
	if b == nil {
		t.Fatal("expected a bundle")
	}
	if b.News.Status != models.FieldError ||
		b.InsiderSentiment.Status != models.FieldError ||
		b.MarketQuote.Status != models.FieldError ||
		b.MarketNews.Status != models.FieldError ||
		b.MarketInsiderSentiment.Status != models.FieldError ||
		b.GeneralMarketNews.Status != models.FieldError ||
		b.FearGreed.Status != models.FieldError {
		t.Errorf("every enrichment field should carry the error marker: %+v", b)
	}
	if !b.Quote.Current.Equal(decimal.NewFromFloat(123.45)) {
		t.Errorf("subject quote must survive degradation, got %+v", b.Quote)
	}
}

func TestAggregate_NewsCappedPreservingOrder(t *testing.T) {
	items := make([]models.NewsItem, 15)
	for i := range items {
		items[i] = models.NewsItem{Headline: fmt.Sprintf("headline %d", i)}
	}
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) { return liveQuote(), nil },
		newsFn: func(string, time.Time, time.Time) ([]models.NewsItem, error) {
			return items, nil
		},
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "AMD", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	news := outcome.Bundle.News
	if news.Status != models.FieldOK {
		t.Fatalf("expected ok news, got %v", news.Status)
	}
	if len(news.Items) != maxNewsItems {
		t.Fatalf("expected %d items, got %d", maxNewsItems, len(news.Items))
	}
	for i, item := range news.Items {
		if item.Headline != fmt.Sprintf("headline %d", i) {
			t.Fatalf("ordering changed at %d: %q", i, item.Headline)
		}
	}
}

func TestAggregate_InsiderFallbackFiresOnce(t *testing.T) {
	record := models.InsiderRecord{Symbol: "AMD", Year: 2024, Month: 4, MSPR: decimal.NewFromInt(33)}
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) { return liveQuote(), nil },
		insiderFn: func(symbol string, from, to time.Time) ([]models.InsiderRecord, error) {
			if symbol != "AMD" {
				return nil, nil
			}
			// Records exist only in the wider window.
			if to.Sub(from) > 30*24*time.Hour {
				return []models.InsiderRecord{record}, nil
			}
			return nil, nil
		},
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "AMD", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := outcome.Bundle.InsiderSentiment
	if got.Status != models.FieldOK || len(got.Records) != 1 || !got.Records[0].MSPR.Equal(record.MSPR) {
		t.Errorf("expected the fallback records, got %+v", got)
	}

	src.mu.Lock()
	calls := append([]models.DateRange(nil), src.insiderCalls...)
	src.mu.Unlock()
	// Both AMD and the benchmark come back empty at 14 days, so each
	// gets exactly one fallback call: 4 total.
	if len(calls) != 4 {
		t.Fatalf("expected 4 insider calls (2 per symbol), got %d", len(calls))
	}
	to := a.now()
	wantFrom := to.AddDate(0, 0, -fallbackWindowDays)
	var fallbacks int
	for _, c := range calls {
		if c.From.Equal(wantFrom) {
			fallbacks++
		}
	}
	if fallbacks != 2 {
		t.Errorf("expected one 90-day fallback per symbol, counted %d", fallbacks)
	}
}

func TestAggregate_InsiderEmptyAfterFallback(t *testing.T) {
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) { return liveQuote(), nil },
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "AMD", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Bundle.InsiderSentiment.Status != models.FieldEmpty {
		t.Errorf("still-empty fallback should settle on empty, got %v", outcome.Bundle.InsiderSentiment.Status)
	}
}

func TestAggregate_DateRangeFromWindow(t *testing.T) {
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) { return liveQuote(), nil },
	}
	a := newTestAggregator(src)

	outcome, err := a.Aggregate(context.Background(), "AMD", 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dr := outcome.Bundle.DateRange
	if !dr.To.Equal(a.now()) {
		t.Errorf("range end should be now, got %v", dr.To)
	}
	if !dr.From.Equal(a.now().AddDate(0, 0, -365)) {
		t.Errorf("range start should be 365 days back, got %v", dr.From)
	}
}

func TestAggregate_DeterministicSourceYieldsIdenticalBundles(t *testing.T) {
	src := &stubSource{
		quoteFn: func(string) (models.Quote, error) { return liveQuote(), nil },
		newsFn: func(string, time.Time, time.Time) ([]models.NewsItem, error) {
			return []models.NewsItem{{Headline: "steady"}}, nil
		},
		sentimentFn: func() (string, error) { return "Neutral", nil },
	}
	a := newTestAggregator(src)

	first, err := a.Aggregate(context.Background(), "AMD", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.Aggregate(context.Background(), "AMD", 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a1, err := json.Marshal(first.Bundle)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	a2, err := json.Marshal(second.Bundle)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if string(a1) != string(a2) {
		t.Errorf("same inputs must yield the same bundle:\n%s\nvs\n%s", a1, a2)
	}
}

func TestLatestNews(t *testing.T) {
	var gotFrom, gotTo time.Time
	src := &stubSource{
		newsFn: func(_ string, from, to time.Time) ([]models.NewsItem, error) {
			gotFrom, gotTo = from, to
			return []models.NewsItem{{Headline: "AMD ships new chip"}}, nil
		},
	}
	a := newTestAggregator(src)

	result := a.LatestNews(context.Background(), "AMD", 14)
	if result.Status != models.FieldOK || len(result.Items) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !gotTo.Equal(a.now()) || !gotFrom.Equal(a.now().AddDate(0, 0, -14)) {
		t.Errorf("unexpected window: %v .. %v", gotFrom, gotTo)
	}
}
