package server

import (
	"log/slog"

	"github.com/birrdesk/etbrates/server/config"
)

type Option func(s *Server)

// WithLogger specifies the logger for the server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig specifies the config for the server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithOfferBook specifies the P2P offer source for the server
func WithOfferBook(o OfferBook) Option {
	return func(s *Server) {
		s.offers = o
	}
}

// WithConverter specifies the conversion engine for the server
func WithConverter(c Converter) Option {
	return func(s *Server) {
		s.conv = c
	}
}

// WithCoinInfo specifies the coin market data source for the server
func WithCoinInfo(c CoinInfo) Option {
	return func(s *Server) {
		s.coins = c
	}
}

// WithSymbolResolver specifies the symbol resolver for the server
func WithSymbolResolver(r SymbolResolver) Option {
	return func(s *Server) {
		s.resolver = r
	}
}
