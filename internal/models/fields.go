package models

import "encoding/json"

// FieldStatus records how a single enrichment fetch went. Fields are
// merged into the bundle with their status instead of aborting the
// whole aggregation, so the generation backend can reason about gaps.
type FieldStatus string

const (
	FieldOK    FieldStatus = "ok"
	FieldEmpty FieldStatus = "empty"
	FieldError FieldStatus = "error"
)

// unavailableMarker is what an errored field serializes to, so the
// generation backend sees a readable "indicator unavailable" value
// instead of a transport error string.
const unavailableMarker = "unavailable"

// NewsResult is a news fetch outcome.
type NewsResult struct {
	Status FieldStatus `json:"status"`
	Items  []NewsItem  `json:"items,omitempty"`
}

func NewsOK(items []NewsItem) NewsResult { return NewsResult{Status: FieldOK, Items: items} }
func NewsEmpty() NewsResult              { return NewsResult{Status: FieldEmpty} }
func NewsError() NewsResult              { return NewsResult{Status: FieldError} }

func (r NewsResult) MarshalJSON() ([]byte, error) {
	if r.Status == FieldError {
		return json.Marshal(unavailableMarker)
	}
	if len(r.Items) == 0 {
		return json.Marshal([]NewsItem{})
	}
	return json.Marshal(r.Items)
}

// SentimentResult is an insider-sentiment fetch outcome.
type SentimentResult struct {
	Status  FieldStatus     `json:"status"`
	Records []InsiderRecord `json:"records,omitempty"`
}

func SentimentOK(records []InsiderRecord) SentimentResult {
	return SentimentResult{Status: FieldOK, Records: records}
}
func SentimentEmpty() SentimentResult { return SentimentResult{Status: FieldEmpty} }
func SentimentError() SentimentResult { return SentimentResult{Status: FieldError} }

func (r SentimentResult) MarshalJSON() ([]byte, error) {
	if r.Status == FieldError {
		return json.Marshal(unavailableMarker)
	}
	if len(r.Records) == 0 {
		return json.Marshal([]InsiderRecord{})
	}
	return json.Marshal(r.Records)
}

// QuoteResult is a benchmark-quote fetch outcome. The subject's own
// quote is not a field result: its failure fails the whole aggregation.
type QuoteResult struct {
	Status FieldStatus `json:"status"`
	Quote  Quote       `json:"quote,omitempty"`
}

func QuoteFieldOK(q Quote) QuoteResult { return QuoteResult{Status: FieldOK, Quote: q} }
func QuoteFieldError() QuoteResult     { return QuoteResult{Status: FieldError} }

func (r QuoteResult) MarshalJSON() ([]byte, error) {
	if r.Status != FieldOK {
		return json.Marshal(unavailableMarker)
	}
	return json.Marshal(r.Quote)
}

// LabelResult is a market sentiment-index fetch outcome.
type LabelResult struct {
	Status FieldStatus `json:"status"`
	Label  string      `json:"label,omitempty"`
}

func LabelOK(label string) LabelResult { return LabelResult{Status: FieldOK, Label: label} }
func LabelError() LabelResult          { return LabelResult{Status: FieldError} }

func (r LabelResult) MarshalJSON() ([]byte, error) {
	if r.Status != FieldOK {
		return json.Marshal(unavailableMarker)
	}
	return json.Marshal(r.Label)
}
