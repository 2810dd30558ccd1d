package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/birrdesk/etbrates/market/types"
)

var CoinGeckoSource types.Source = "CoinGecko"

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Client is the CoinGecko market data client
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a new instance of the CoinGecko client
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
	}
}

// CoinList fetches the full provider symbol listing in one call
func (c *Client) CoinList(ctx context.Context) ([]types.CoinListing, error) {
	var listings []types.CoinListing

	if err := c.getJSON(ctx, c.baseURL+"/coins/list", &listings); err != nil {
		return nil, fmt.Errorf("unable to fetch coin list: %w", err)
	}

	return listings, nil
}

// SimplePrices fetches the quotes for the given provider identifiers,
// denominated in the given reference currency.
// The response maps identifier -> reference currency code -> rate
func (c *Client) SimplePrices(
	ctx context.Context,
	ids []string,
	vsCurrency string,
) (map[string]map[string]float64, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", vsCurrency)

	var prices map[string]map[string]float64

	reqURL := c.baseURL + "/simple/price?" + query.Encode()
	if err := c.getJSON(ctx, reqURL, &prices); err != nil {
		return nil, fmt.Errorf("unable to fetch prices: %w", err)
	}

	return prices, nil
}

//nolint:tagliatelle // CoinGecko API uses snake case
type coinDetailResponse struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// CoinDetail fetches the market data snapshot for a single coin
func (c *Client) CoinDetail(ctx context.Context, id string) (*types.CoinDetail, error) {
	var resp coinDetailResponse

	reqURL := c.baseURL + "/coins/" + url.PathEscape(id)
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, fmt.Errorf("unable to fetch coin detail: %w", err)
	}

	detail := &types.CoinDetail{
		Name:      resp.Name,
		Symbol:    strings.ToUpper(resp.Symbol),
		Change24h: resp.MarketData.PriceChangePercentage24h,
	}

	if price, ok := resp.MarketData.CurrentPrice["usd"]; ok {
		detail.PriceUSD = &price
	}

	if cap, ok := resp.MarketData.MarketCap["usd"]; ok {
		detail.MarketCapUSD = &cap
	}

	return detail, nil
}

// getJSON issues a single GET request and decodes the JSON response.
// No retries, no backoff; the transport timeout is the only limit
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("unable to create GET request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode response: %w", err)
	}

	return nil
}
