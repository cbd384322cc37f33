package models

// AnalysisBundle is the per-request data snapshot handed to the
// generation backend. It is assembled once per inbound ticker message,
// never cached, and discarded after generation completes.
//
// Invariant: a bundle only exists for a symbol whose own quote resolved.
// Unresolvable symbols short-circuit to a suggestion list before any
// enrichment fetch runs.
type AnalysisBundle struct {
	Symbol                 string          `json:"symbol"`
	Quote                  Quote           `json:"price"`
	News                   NewsResult      `json:"news"`
	InsiderSentiment       SentimentResult `json:"insider_sentiment"`
	DateRange              DateRange       `json:"date_range"`
	MarketQuote            QuoteResult     `json:"market_quote"`
	MarketNews             NewsResult      `json:"market_news"`
	MarketInsiderSentiment SentimentResult `json:"market_insider_sentiment"`
	GeneralMarketNews      NewsResult      `json:"general_market_news"`
	FearGreed              LabelResult     `json:"fear_greed_index"`
}
