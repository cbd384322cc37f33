package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"stock_advisor/internal/models"
)

const (
	baseURL        = "https://finnhub.io/api/v1"
	requestTimeout = 30 * time.Second
	dateLayout     = "2006-01-02"
)

// Client talks to the Finnhub REST API.
type Client struct {
	http      *resty.Client
	sentiment *resty.Client
	apiKey    string
}

// NewClient builds a Finnhub client. The second HTTP client points at
// the CNN Fear & Greed endpoint, which backs SentimentIndex.
func NewClient(apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout)

	sentiment := resty.New().
		SetBaseURL(fearGreedBaseURL).
		SetTimeout(requestTimeout).
		SetHeader("User-Agent", "stock-advisor/1.0")

	return &Client{
		http:      http,
		sentiment: sentiment,
		apiKey:    apiKey,
	}
}

// Quote fetches the current price snapshot for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	var quote models.Quote
	body, err := c.get(ctx, "/quote", map[string]string{"symbol": symbol})
	if err != nil {
		return quote, err
	}
	if err := json.Unmarshal(body, &quote); err != nil {
		return quote, fmt.Errorf("parse quote for %s: %w", symbol, err)
	}
	return quote, nil
}

// CompanyNews lists articles for the symbol between from and to.
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	body, err := c.get(ctx, "/company-news", map[string]string{
		"symbol": symbol,
		"from":   from.Format(dateLayout),
		"to":     to.Format(dateLayout),
	})
	if err != nil {
		return nil, err
	}
	var items []models.NewsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse news for %s: %w", symbol, err)
	}
	return items, nil
}

// GeneralNews lists market-wide headlines.
func (c *Client) GeneralNews(ctx context.Context) ([]models.NewsItem, error) {
	body, err := c.get(ctx, "/news", map[string]string{"category": "general"})
	if err != nil {
		return nil, err
	}
	var items []models.NewsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parse general news: %w", err)
	}
	return items, nil
}

type insiderSentimentResponse struct {
	Data   []models.InsiderRecord `json:"data"`
	Symbol string                 `json:"symbol"`
}

// InsiderSentiment returns monthly insider-sentiment records for the
// window. An empty Data slice is a valid response, not an error.
func (c *Client) InsiderSentiment(ctx context.Context, symbol string, from, to time.Time) ([]models.InsiderRecord, error) {
	body, err := c.get(ctx, "/stock/insider-sentiment", map[string]string{
		"symbol": symbol,
		"from":   from.Format(dateLayout),
		"to":     to.Format(dateLayout),
	})
	if err != nil {
		return nil, err
	}
	var resp insiderSentimentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse insider sentiment for %s: %w", symbol, err)
	}
	return resp.Data, nil
}

type symbolSearchResponse struct {
	Count  int                  `json:"count"`
	Result []models.SymbolMatch `json:"result"`
}

// SymbolSearch finds instruments matching the query, best first.
func (c *Client) SymbolSearch(ctx context.Context, query string) ([]models.SymbolMatch, error) {
	body, err := c.get(ctx, "/search", map[string]string{"q": query})
	if err != nil {
		return nil, err
	}
	var resp symbolSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse symbol search for %q: %w", query, err)
	}
	return resp.Result, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("token", c.apiKey).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("finnhub %s: %w", path, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("finnhub %s: status %d: %s", path, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
