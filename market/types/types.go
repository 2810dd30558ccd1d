package types

import (
	"strings"
	"time"
)

// Symbol is a short ticker identifying a tradable asset.
// Lookups are case-insensitive; the canonical form is lower-case.
type Symbol string

// NewSymbol normalizes a raw ticker into its canonical form
func NewSymbol(raw string) Symbol {
	return Symbol(strings.ToLower(strings.TrimSpace(raw)))
}

func (s Symbol) String() string {
	return string(s)
}

// Upper returns the display (upper-case) form of the symbol
func (s Symbol) Upper() string {
	return strings.ToUpper(string(s))
}

type Direction string

const (
	DirectionBUY  Direction = "BUY"
	DirectionSELL Direction = "SELL"
)

func (d Direction) String() string {
	return string(d)
}

type Source string

func (s Source) String() string {
	return string(s)
}

// Offer is a single P2P advertisement, as ranked by the upstream
// provider. Price, transaction limits and the finish rate keep their
// upstream string form; the display layer decides how to render
// unparsable values.
type Offer struct {
	Price           string `json:"price"`
	MinAmount       string `json:"min_amount"`
	MaxAmount       string `json:"max_amount"`
	Advertiser      string `json:"advertiser"`
	MonthOrderCount int    `json:"month_order_count"`
	MonthFinishRate string `json:"month_finish_rate"` // fraction, 0-1
}

// ConversionQuote is a freshly computed cross-currency conversion
type ConversionQuote struct {
	From       Symbol  `json:"from"`
	To         Symbol  `json:"to"`
	Amount     float64 `json:"amount"`
	Result     float64 `json:"result"`
	RateFromTo float64 `json:"rate_from_to"`
	RateToFrom float64 `json:"rate_to_from"`
}

// CoinListing is a single entry of the bulk provider symbol listing
type CoinListing struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// CoinDetail is the per-coin market data snapshot.
// Optional fields are nil when the provider omits them.
type CoinDetail struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	PriceUSD     *float64 `json:"price_usd"`
	MarketCapUSD *float64 `json:"market_cap_usd"`
	Change24h    *float64 `json:"change_24h"`
}

// RateSnapshot is a point-in-time observation of the USDT/ETB rate,
// derived from the live P2P book
type RateSnapshot struct {
	TakenAt   time.Time `json:"taken_at"`
	Direction Direction `json:"direction"`
	Source    Source    `json:"source"`
	Rate      float64   `json:"rate"`
}

type SnapshotQuery struct {
	Direction *Direction `json:"direction"`
	Source    *Source    `json:"source"`
	Offset    int64      `json:"offset"`
	Limit     int32      `json:"limit"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
