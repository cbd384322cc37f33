package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stock_advisor/internal/market"
	"stock_advisor/internal/models"
)

const (
	// fallbackWindowDays is the extended insider-sentiment window tried
	// once when the requested window comes back empty.
	fallbackWindowDays = 90

	maxNewsItems   = 10
	maxSuggestions = 5
)

// Aggregator assembles one AnalysisBundle per request from independent
// sub-fetches. Everything except the subject's own quote degrades
// locally: a failed enrichment fetch marks its field and moves on.
type Aggregator struct {
	source    market.DataSource
	benchmark string
	log       zerolog.Logger

	// now is a seam for deterministic tests.
	now func() time.Time
}

// Outcome is the result of one aggregation: either a bundle, or a
// not-found answer carrying symbol suggestions. Not-found is a normal
// outcome, not an error; errors are reserved for transport failures on
// the primary quote fetch.
type Outcome struct {
	Bundle      *models.AnalysisBundle
	Suggestions []models.SymbolMatch
}

// NotFound reports whether the symbol could not be resolved.
func (o *Outcome) NotFound() bool { return o.Bundle == nil }

func New(source market.DataSource, benchmark string, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		source:    source,
		benchmark: benchmark,
		log:       log,
		now:       time.Now,
	}
}

// Aggregate builds the analysis bundle for a symbol over a windowDays
// lookback. The subject quote is fetched first: an all-zero quote
// short-circuits to suggestions without spending further calls, and a
// transport failure propagates so the caller can ask the user to retry.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string, windowDays int) (*Outcome, error) {
	quote, err := a.source.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", symbol, err)
	}

	if quote.IsZero() {
		return a.suggest(ctx, symbol), nil
	}

	to := a.now()
	from := to.AddDate(0, 0, -windowDays)

	bundle := &models.AnalysisBundle{
		Symbol:    symbol,
		Quote:     quote,
		DateRange: models.DateRange{From: from, To: to},
	}

	// The remaining fetches are independent and land in disjoint bundle
	// fields, so they run concurrently. None of them may fail the
	// aggregation; each closure degrades its own field and returns nil.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r := a.fetchNews(gctx, symbol, from, to)
		mu.Lock()
		bundle.News = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := a.fetchInsiderSentiment(gctx, symbol, from, to)
		mu.Lock()
		bundle.InsiderSentiment = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := a.fetchBenchmarkQuote(gctx)
		mu.Lock()
		bundle.MarketQuote = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := a.fetchNews(gctx, a.benchmark, from, to)
		mu.Lock()
		bundle.MarketNews = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := a.fetchInsiderSentiment(gctx, a.benchmark, from, to)
		mu.Lock()
		bundle.MarketInsiderSentiment = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := a.fetchGeneralNews(gctx)
		mu.Lock()
		bundle.GeneralMarketNews = r
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		r := a.fetchSentimentIndex(gctx)
		mu.Lock()
		bundle.FearGreed = r
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	return &Outcome{Bundle: bundle}, nil
}

// LatestNews serves the menu's "latest news" shortcut: company news for
// the last `days` days, truncated like a bundle's news field.
func (a *Aggregator) LatestNews(ctx context.Context, symbol string, days int) models.NewsResult {
	to := a.now()
	return a.fetchNews(ctx, symbol, to.AddDate(0, 0, -days), to)
}

// suggest resolves an unknown ticker into up to maxSuggestions matches.
// The search itself is best-effort: on failure the user simply gets the
// "no suggestions" wording.
func (a *Aggregator) suggest(ctx context.Context, symbol string) *Outcome {
	matches, err := a.source.SymbolSearch(ctx, symbol)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("symbol search failed")
		matches = nil
	}
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return &Outcome{Suggestions: matches}
}

// fetchNews truncates to maxNewsItems without re-sorting: ordering is
// whatever the source returned, assumed newest-first. News has no
// extended-window fallback.
func (a *Aggregator) fetchNews(ctx context.Context, symbol string, from, to time.Time) models.NewsResult {
	items, err := a.source.CompanyNews(ctx, symbol, from, to)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("news fetch degraded")
		return models.NewsError()
	}
	if len(items) == 0 {
		return models.NewsEmpty()
	}
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}
	return models.NewsOK(items)
}

// fetchInsiderSentiment retries an empty window exactly once with a
// 90-day lookback from the same end date before settling on empty.
func (a *Aggregator) fetchInsiderSentiment(ctx context.Context, symbol string, from, to time.Time) models.SentimentResult {
	records, err := a.source.InsiderSentiment(ctx, symbol, from, to)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("insider sentiment degraded")
		return models.SentimentError()
	}
	if len(records) == 0 {
		records, err = a.source.InsiderSentiment(ctx, symbol, to.AddDate(0, 0, -fallbackWindowDays), to)
		if err != nil {
			a.log.Warn().Err(err).Str("symbol", symbol).Msg("insider sentiment fallback degraded")
			return models.SentimentError()
		}
	}
	if len(records) == 0 {
		return models.SentimentEmpty()
	}
	return models.SentimentOK(records)
}

func (a *Aggregator) fetchBenchmarkQuote(ctx context.Context) models.QuoteResult {
	quote, err := a.source.Quote(ctx, a.benchmark)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", a.benchmark).Msg("benchmark quote degraded")
		return models.QuoteFieldError()
	}
	return models.QuoteFieldOK(quote)
}

func (a *Aggregator) fetchGeneralNews(ctx context.Context) models.NewsResult {
	items, err := a.source.GeneralNews(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("general news degraded")
		return models.NewsError()
	}
	if len(items) == 0 {
		return models.NewsEmpty()
	}
	if len(items) > maxNewsItems {
		items = items[:maxNewsItems]
	}
	return models.NewsOK(items)
}

func (a *Aggregator) fetchSentimentIndex(ctx context.Context) models.LabelResult {
	label, err := a.source.SentimentIndex(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("sentiment index degraded")
		return models.LabelError()
	}
	return models.LabelOK(label)
}
