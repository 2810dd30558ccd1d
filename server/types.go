package server

import "github.com/birrdesk/etbrates/market/types"

// OfferSummary is a single rendered P2P offer, safe for embedding in
// the transport's markup
type OfferSummary struct {
	Rank          int    `json:"rank"`
	Advertiser    string `json:"advertiser"`
	Rate          string `json:"rate"`
	MinAmount     string `json:"min_amount"`
	MaxAmount     string `json:"max_amount"`
	Orders        int    `json:"orders"`
	CompletionPct string `json:"completion_pct"`
}

type P2PResponse struct {
	Direction types.Direction `json:"direction"`
	Currency  string          `json:"currency"`
	Results   []OfferSummary  `json:"results"`

	// ConservativeRate is the execution-rate estimate taken deeper in
	// the book; omitted when the book is too shallow
	ConservativeRate string `json:"conservative_rate,omitempty"`
}

type ConversionResponse struct {
	Quote   *types.ConversionQuote `json:"quote"`
	Summary string                 `json:"summary"`
}

type CoinResponse struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	PriceUSD     string `json:"price_usd"`
	MarketCapUSD string `json:"market_cap_usd"`
	Change24h    string `json:"change_24h"`
}

type SourcesResponse struct {
	Results []types.Source `json:"results"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
