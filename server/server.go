package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/birrdesk/etbrates/market/types"
	"github.com/birrdesk/etbrates/server/config"
	"github.com/birrdesk/etbrates/storage"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// OfferBook fetches ranked P2P offers for a trade direction
type OfferBook interface {
	FetchOffers(
		ctx context.Context,
		direction types.Direction,
		amount *float64,
	) ([]types.Offer, error)
}

// Converter computes cross-currency conversion quotes
type Converter interface {
	Convert(
		ctx context.Context,
		amount float64,
		from, to types.Symbol,
	) (*types.ConversionQuote, error)
}

// CoinInfo fetches per-coin market data
type CoinInfo interface {
	CoinDetail(ctx context.Context, id string) (*types.CoinDetail, error)
}

// SymbolResolver resolves ticker symbols to provider identifiers
type SymbolResolver interface {
	Resolve(ctx context.Context, symbol types.Symbol) (string, bool)
}

type Server struct {
	logger *slog.Logger
	config *config.Config

	storage  storage.Storage
	offers   OfferBook
	conv     Converter
	coins    CoinInfo
	resolver SymbolResolver

	mux *chi.Mux
}

// New creates a new server instance
func New(storage storage.Storage, opts ...Option) (*Server, error) {
	s := &Server{
		logger:  noopLogger,
		storage: storage,
		config:  config.DefaultConfig(),
		mux:     chi.NewMux(),
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	// Validate the configuration
	if err := config.ValidateConfig(s.config); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	// Set up the CORS middleware
	if s.config.CORSConfig != nil {
		corsMiddleware := cors.New(cors.Options{
			AllowedOrigins: s.config.CORSConfig.AllowedOrigins,
			AllowedMethods: s.config.CORSConfig.AllowedMethods,
			AllowedHeaders: s.config.CORSConfig.AllowedHeaders,
		})

		s.mux.Use(corsMiddleware.Handler)
	}

	s.mux.Use(httplog.RequestLogger(s.logger, &httplog.Options{
		Level:         slog.LevelInfo,
		Schema:        httplog.SchemaOTEL,
		RecoverPanics: true,
		Skip: func(_ *http.Request, respStatus int) bool {
			return respStatus == 404 || respStatus == 405
		},
	}))

	// Register the health check handler
	s.mux.Get("/health", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})

	s.mux.Get("/v1/p2p", s.P2POffers)
	s.mux.Get("/v1/convert", s.Convert)
	s.mux.Get("/v1/coins/{symbol}", s.Coin)
	s.mux.Get("/v1/rates", s.Rates)
	s.mux.Get("/v1/sources", s.Sources)

	return s, nil
}

// Serve serves the etbrates service
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.mux,
		ReadHeaderTimeout: 60 * time.Second,
	}

	group, gCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer s.logger.Info("server shut down")

		ln, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return err
		}

		s.logger.Info(
			fmt.Sprintf(
				"server started at %s",
				ln.Addr().String(),
			),
		)

		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	group.Go(func() error {
		<-gCtx.Done()

		s.logger.Info("server to be shutdown")

		wsCtx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()

		return server.Shutdown(wsCtx)
	})

	return group.Wait()
}
