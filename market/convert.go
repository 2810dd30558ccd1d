package market

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/birrdesk/etbrates/market/types"
)

// ReferenceAsset is the stable-valued asset used as the common quote
// currency for triangulated conversions
const ReferenceAsset types.Symbol = "usdt"

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SymbolResolver resolves ticker symbols to provider identifiers
type SymbolResolver interface {
	Resolve(ctx context.Context, symbol types.Symbol) (string, bool)
}

// QuoteFetcher fetches quotes for provider identifiers, denominated
// in a reference currency
type QuoteFetcher interface {
	SimplePrices(
		ctx context.Context,
		ids []string,
		vsCurrency string,
	) (map[string]map[string]float64, error)
}

// Engine computes cross-currency conversions.
// When neither side of the pair is the reference asset, the rate is
// triangulated by composing both legs' reference-asset quotes. Both
// legs are mid-rates with no bid/ask spread or slippage modeling, so
// the composed rate is a mid-rate approximation only
type Engine struct {
	resolver SymbolResolver
	quotes   QuoteFetcher
	logger   *slog.Logger
}

// NewEngine creates a new conversion engine
func NewEngine(resolver SymbolResolver, quotes QuoteFetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver: resolver,
		quotes:   quotes,
		logger:   noopLogger,
	}

	// Apply the options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Convert computes the destination amount for the given source amount
// and symbol pair, along with the unit rates both ways
func (e *Engine) Convert(
	ctx context.Context,
	amount float64,
	from, to types.Symbol,
) (*types.ConversionQuote, error) {
	fromID, ok := e.resolver.Resolve(ctx, from)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnresolvedSymbol, from)
	}

	toID, ok := e.resolver.Resolve(ctx, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnresolvedSymbol, to)
	}

	var rateFromTo float64

	switch {
	case from == ReferenceAsset:
		// The quote expresses the destination asset in reference
		// terms, so one reference unit buys 1/rate destination units
		rate, err := e.fetchRate(ctx, toID)
		if err != nil {
			return nil, err
		}

		rateFromTo = 1 / rate
	case to == ReferenceAsset:
		rate, err := e.fetchRate(ctx, fromID)
		if err != nil {
			return nil, err
		}

		rateFromTo = rate
	default:
		// Triangulate through the reference asset, with both legs
		// fetched in one batched request
		fromRate, toRate, err := e.fetchRatePair(ctx, fromID, toID)
		if err != nil {
			return nil, err
		}

		rateFromTo = fromRate / toRate
	}

	return &types.ConversionQuote{
		From:       from,
		To:         to,
		Amount:     amount,
		Result:     amount * rateFromTo,
		RateFromTo: rateFromTo,
		RateToFrom: 1 / rateFromTo,
	}, nil
}

// fetchRate fetches a single identifier's reference-asset quote
func (e *Engine) fetchRate(ctx context.Context, id string) (float64, error) {
	prices, err := e.fetchPrices(ctx, []string{id})
	if err != nil {
		return 0, err
	}

	return quoteRate(prices, id)
}

// fetchRatePair fetches both identifiers' reference-asset quotes in
// one batched request
func (e *Engine) fetchRatePair(
	ctx context.Context,
	fromID, toID string,
) (float64, float64, error) {
	prices, err := e.fetchPrices(ctx, []string{fromID, toID})
	if err != nil {
		return 0, 0, err
	}

	fromRate, err := quoteRate(prices, fromID)
	if err != nil {
		return 0, 0, err
	}

	toRate, err := quoteRate(prices, toID)
	if err != nil {
		return 0, 0, err
	}

	return fromRate, toRate, nil
}

func (e *Engine) fetchPrices(
	ctx context.Context,
	ids []string,
) (map[string]map[string]float64, error) {
	prices, err := e.quotes.SimplePrices(ctx, ids, ReferenceAsset.String())
	if err != nil {
		e.logger.Error(
			"unable to fetch quotes",
			"ids", ids,
			"err", err,
		)

		return nil, fmt.Errorf("%w: quote fetch", types.ErrFetchFailed)
	}

	return prices, nil
}

// quoteRate extracts a usable reference-asset rate from the quote
// response. A missing or zero rate is unusable
func quoteRate(prices map[string]map[string]float64, id string) (float64, error) {
	rate, ok := prices[id][ReferenceAsset.String()]
	if !ok || rate == 0 {
		return 0, fmt.Errorf("%w: %s", types.ErrRateUnavailable, id)
	}

	return rate, nil
}
