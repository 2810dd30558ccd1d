//nolint:tagliatelle // Binance API uses camel case
package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/birrdesk/etbrates/market/types"
)

var BinanceP2PSource types.Source = "BinanceP2P"

const binanceP2PURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

const (
	p2pAsset = "USDT"
	p2pFiat  = "ETB"
	p2pRows  = 10
)

// p2pRequest is the request body for the Binance P2P search API
type p2pRequest struct {
	ProMerchantAds bool            `json:"proMerchantAds"`
	Page           int             `json:"page"`
	Rows           int             `json:"rows"`
	PayTypes       []string        `json:"payTypes"`
	Asset          string          `json:"asset"`
	Fiat           string          `json:"fiat"`
	TradeType      types.Direction `json:"tradeType"`
	Amount         *float64        `json:"amount"`
}

// p2pResponse is the response from the Binance P2P search API
type p2pResponse struct {
	Data []p2pAd `json:"data"`
}

type p2pAd struct {
	Adv        p2pAdv        `json:"adv"`
	Advertiser p2pAdvertiser `json:"advertiser"`
}

type p2pAdv struct {
	Price                string `json:"price"`
	MinSingleTransAmount string `json:"minSingleTransAmount"`
	MaxSingleTransAmount string `json:"maxSingleTransAmount"`
}

type p2pAdvertiser struct {
	NickName        string      `json:"nickName"`
	MonthOrderCount int         `json:"monthOrderCount"`
	MonthFinishRate json.Number `json:"monthFinishRate"`
}

// Client fetches USDT/ETB offers from the Binance P2P order book
type Client struct {
	client *http.Client
	url    string
}

// NewClient creates a new instance of the Binance P2P client
func NewClient(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		url: binanceP2PURL,
	}
}

// FetchOffers issues a single offer search for the given trade
// direction. amount optionally narrows the search to offers matching a
// fiat amount; nil requests the general book. The returned offers keep
// the provider's own ranking and are never re-sorted; an empty book is
// a successful, empty result
func (c *Client) FetchOffers(
	ctx context.Context,
	direction types.Direction,
	amount *float64,
) ([]types.Offer, error) {
	reqBody := p2pRequest{
		ProMerchantAds: false,
		Page:           1,
		Rows:           p2pRows,
		PayTypes:       []string{},
		Asset:          p2pAsset,
		Fiat:           p2pFiat,
		TradeType:      direction,
		Amount:         amount,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute POST request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp p2pResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	offers := make([]types.Offer, 0, len(apiResp.Data))

	for _, ad := range apiResp.Data {
		offers = append(offers, types.Offer{
			Price:           ad.Adv.Price,
			MinAmount:       ad.Adv.MinSingleTransAmount,
			MaxAmount:       ad.Adv.MaxSingleTransAmount,
			Advertiser:      ad.Advertiser.NickName,
			MonthOrderCount: ad.Advertiser.MonthOrderCount,
			MonthFinishRate: ad.Advertiser.MonthFinishRate.String(),
		})
	}

	return offers, nil
}
