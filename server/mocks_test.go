package server

import (
	"context"

	"github.com/birrdesk/etbrates/market/types"
)

type (
	fetchOffersDelegate func(context.Context, types.Direction, *float64) ([]types.Offer, error)
	convertDelegate     func(context.Context, float64, types.Symbol, types.Symbol) (*types.ConversionQuote, error)
	coinDetailDelegate  func(context.Context, string) (*types.CoinDetail, error)
	resolveDelegate     func(context.Context, types.Symbol) (string, bool)
)

type mockOfferBook struct {
	fetchOffersFn fetchOffersDelegate
}

func (m *mockOfferBook) FetchOffers(
	ctx context.Context,
	direction types.Direction,
	amount *float64,
) ([]types.Offer, error) {
	if m.fetchOffersFn != nil {
		return m.fetchOffersFn(ctx, direction, amount)
	}

	return nil, nil
}

type mockConverter struct {
	convertFn convertDelegate
}

func (m *mockConverter) Convert(
	ctx context.Context,
	amount float64,
	from, to types.Symbol,
) (*types.ConversionQuote, error) {
	if m.convertFn != nil {
		return m.convertFn(ctx, amount, from, to)
	}

	return nil, nil
}

type mockCoinInfo struct {
	coinDetailFn coinDetailDelegate
}

func (m *mockCoinInfo) CoinDetail(ctx context.Context, id string) (*types.CoinDetail, error) {
	if m.coinDetailFn != nil {
		return m.coinDetailFn(ctx, id)
	}

	return nil, nil
}

type mockResolver struct {
	resolveFn resolveDelegate
}

func (m *mockResolver) Resolve(ctx context.Context, symbol types.Symbol) (string, bool) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, symbol)
	}

	return "", false
}
