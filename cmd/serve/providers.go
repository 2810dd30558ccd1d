package serve

import (
	"time"

	"github.com/birrdesk/etbrates/ingest"
	"github.com/birrdesk/etbrates/provider/binance"
	"github.com/birrdesk/etbrates/provider/coingecko"
)

const upstreamTimeout = time.Second * 30

// marketClients groups the upstream market data clients
type marketClients struct {
	binance   *binance.Client
	coingecko *coingecko.Client
}

// defaultClients returns the default upstream clients
func defaultClients() *marketClients {
	return &marketClients{
		binance:   binance.NewClient(upstreamTimeout),
		coingecko: coingecko.NewClient(upstreamTimeout),
	}
}

// defaultProviders returns the default ingestion providers
func defaultProviders(clients *marketClients) []ingest.Provider {
	return []ingest.Provider{
		// Conservative Binance P2P USDT / ETB rates
		binance.NewSnapshotProvider(clients.binance),
	}
}
