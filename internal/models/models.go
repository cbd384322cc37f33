package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price snapshot for one symbol.
// Field names mirror the Finnhub /quote response keys.
type Quote struct {
	Current       decimal.Decimal `json:"c"`
	High          decimal.Decimal `json:"h"`
	Low           decimal.Decimal `json:"l"`
	Open          decimal.Decimal `json:"o"`
	PreviousClose decimal.Decimal `json:"pc"`
}

// IsZero reports whether every price field is zero. Finnhub answers
// unknown tickers with HTTP 200 and an all-zero quote, so an all-zero
// quote is the "symbol not found" signal rather than an error.
func (q Quote) IsZero() bool {
	return q.Current.IsZero() &&
		q.High.IsZero() &&
		q.Low.IsZero() &&
		q.Open.IsZero() &&
		q.PreviousClose.IsZero()
}

// NewsItem is a single article as the data source returns it.
type NewsItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

// InsiderRecord is one month of aggregated insider-trading sentiment.
// MSPR is Finnhub's monthly share purchase ratio, -100..100.
type InsiderRecord struct {
	Symbol string          `json:"symbol"`
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Change decimal.Decimal `json:"change"`
	MSPR   decimal.Decimal `json:"mspr"`
}

// SymbolMatch is one symbol-search suggestion.
type SymbolMatch struct {
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
}

// DateRange is the news/sentiment window a bundle was assembled for.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}
