package market

import (
	"context"
	"time"

	"stock_advisor/internal/models"
)

// DataSource is the behavior the aggregator needs from a financial-data
// backend. Keeping it an interface lets tests swap in a deterministic
// double and keeps the Finnhub wiring replaceable.
type DataSource interface {
	// Quote fetches the current price snapshot. A transport failure is
	// an error; an unknown symbol comes back as an all-zero quote.
	Quote(ctx context.Context, symbol string) (models.Quote, error)

	// CompanyNews lists articles for the symbol in [from, to], in
	// whatever order the source returns (assumed newest-first).
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error)

	// InsiderSentiment returns monthly insider-sentiment records for
	// the window, possibly empty.
	InsiderSentiment(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderRecord, error)

	// SymbolSearch finds instruments matching a query, best first.
	SymbolSearch(ctx context.Context, query string) ([]models.SymbolMatch, error)

	// GeneralNews lists market-wide headlines.
	GeneralNews(ctx context.Context) ([]models.NewsItem, error)

	// SentimentIndex returns the current market-mood label ("Fear",
	// "Greed", ...). Only the label is exposed, never a numeric score.
	SentimentIndex(ctx context.Context) (string, error)
}
