package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
)

// The Fear & Greed index is not part of the Finnhub API; CNN publishes
// it as a public JSON endpoint. It is folded into this client so the
// aggregator sees a single data source.
const (
	fearGreedBaseURL = "https://production.dataviz.cnn.io"
	fearGreedPath    = "/index/fearandgreed/graphdata"
)

type fearGreedResponse struct {
	FearAndGreed struct {
		Score  float64 `json:"score"`
		Rating string  `json:"rating"`
	} `json:"fear_and_greed"`
}

// SentimentIndex returns the current market-mood label, e.g. "fear" or
// "extreme greed". Only the label leaves this package.
func (c *Client) SentimentIndex(ctx context.Context) (string, error) {
	resp, err := c.sentiment.R().
		SetContext(ctx).
		Get(fearGreedPath)
	if err != nil {
		return "", fmt.Errorf("fear-greed index: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("fear-greed index: status %d", resp.StatusCode())
	}

	var parsed fearGreedResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("parse fear-greed index: %w", err)
	}
	if parsed.FearAndGreed.Rating == "" {
		return "", fmt.Errorf("fear-greed index: empty rating")
	}
	return parsed.FearAndGreed.Rating, nil
}
