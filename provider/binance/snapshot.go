package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/birrdesk/etbrates/market"
	"github.com/birrdesk/etbrates/market/types"
)

// SnapshotProvider periodically derives USDT/ETB rate snapshots from
// the live P2P book, using the conservative execution-rate estimate
// rather than the optimistic top of book
type SnapshotProvider struct {
	client *Client
}

// NewSnapshotProvider creates a new instance of the snapshot provider
func NewSnapshotProvider(client *Client) *SnapshotProvider {
	return &SnapshotProvider{
		client: client,
	}
}

func (p *SnapshotProvider) Name() string {
	return "Binance P2P (USDT/ETB)"
}

func (p *SnapshotProvider) Interval() time.Duration {
	return time.Minute * 10
}

func (p *SnapshotProvider) Fetch(ctx context.Context) ([]*types.RateSnapshot, error) {
	fetchTime := time.Now().UTC()

	directions := []types.Direction{
		types.DirectionBUY,
		types.DirectionSELL,
	}

	snapshots := make([]*types.RateSnapshot, 0, len(directions))

	for _, direction := range directions {
		offers, err := p.client.FetchOffers(ctx, direction, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch %s offers: %w", direction, err)
		}

		offer, err := market.ConservativeOffer(offers, market.ConservativeRankOffset)
		if err != nil {
			return nil, fmt.Errorf("unable to select %s offer: %w", direction, err)
		}

		rate, err := strconv.ParseFloat(offer.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %s price %q: %w", direction, offer.Price, err)
		}

		snapshots = append(snapshots, &types.RateSnapshot{
			TakenAt:   fetchTime,
			Direction: direction,
			Source:    BinanceP2PSource,
			Rate:      rate,
		})
	}

	return snapshots, nil
}
