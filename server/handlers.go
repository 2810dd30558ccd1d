package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/birrdesk/etbrates/market"
	"github.com/birrdesk/etbrates/market/types"
	"github.com/birrdesk/etbrates/render"
)

const (
	defaultLimit = int32(100)
	maxLimit     = int32(500)

	defaultTop = 10

	currencyETB  = "ETB"
	currencyUSDT = "USDT"
)

var (
	errUnableToFetchRates   = errors.New("unable to fetch rates")
	errUnableToFetchSources = errors.New("unable to fetch sources")

	errInvalidAmount    = errors.New("invalid amount")
	errInvalidCurrency  = errors.New("invalid currency")
	errInvalidDirection = errors.New("invalid direction")
	errInvalidLimit     = errors.New("invalid limit")
	errInvalidOffset    = errors.New("invalid offset")
	errInvalidSymbol    = errors.New("invalid symbol")
	errInvalidTop       = errors.New("invalid top")
)

var symbolRegex = regexp.MustCompile(`^[a-zA-Z0-9]{1,10}$`)

func (s *Server) P2POffers(w http.ResponseWriter, r *http.Request) {
	var (
		directionParam = r.URL.Query().Get("direction")
		amountParam    = r.URL.Query().Get("amount")
		currencyParam  = r.URL.Query().Get("currency")
		topParam       = r.URL.Query().Get("top")
	)

	// Parse the trade direction (defaults to BUY)
	direction, err := parseDirection(directionParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the optional amount
	amount, err := parseAmount(amountParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the amount denomination (defaults to the fiat side)
	currency, err := parseCurrency(currencyParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the display count
	top, err := parseTop(topParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// The upstream search is fiat-scoped, so a USDT-denominated amount
	// is first converted with a rate estimated from the general book
	if amount != nil && currency == currencyUSDT {
		fiatAmount, err := s.estimateFiatAmount(r.Context(), direction, *amount)
		if err != nil {
			s.logger.Error(
				"unable to estimate fiat amount",
				"direction", direction,
				"err", err,
			)

			writeFailure(w, err)

			return
		}

		amount = &fiatAmount
	}

	offers, err := s.offers.FetchOffers(r.Context(), direction, amount)
	if err != nil {
		s.logger.Error(
			"unable to fetch p2p offers",
			"direction", direction,
			"err", err,
		)

		writeFailure(w, types.ErrFetchFailed)

		return
	}

	resp := &P2PResponse{
		Direction: direction,
		Currency:  currency,
		Results:   summarizeOffers(market.TopN(offers, top)),
	}

	// The conservative estimate is best-effort for display listings;
	// a shallow book simply omits it
	if offer, err := market.ConservativeOffer(offers, market.ConservativeRankOffset); err == nil {
		resp.ConservativeRate = render.Number(offer.Price)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var (
		amountParam = r.URL.Query().Get("amount")
		fromParam   = r.URL.Query().Get("from")
		toParam     = r.URL.Query().Get("to")
	)

	amount, err := parseAmount(amountParam)
	if err != nil || amount == nil {
		writeError(w, http.StatusBadRequest, errInvalidAmount)

		return
	}

	from, err := parseSymbol(fromParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	to, err := parseSymbol(toParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	quote, err := s.conv.Convert(r.Context(), *amount, from, to)
	if err != nil {
		s.logger.Error(
			"unable to convert",
			"from", from,
			"to", to,
			"err", err,
		)

		writeFailure(w, err)

		return
	}

	summary := render.Float(quote.Amount) + " " + from.Upper() +
		" is equal to " + render.Float(quote.Result) + " " + to.Upper()

	writeJSON(w, http.StatusOK, &ConversionResponse{
		Quote:   quote,
		Summary: summary,
	})
}

func (s *Server) Coin(w http.ResponseWriter, r *http.Request) {
	symbol, err := parseSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	id, ok := s.resolver.Resolve(r.Context(), symbol)
	if !ok {
		writeFailure(w, types.ErrUnresolvedSymbol)

		return
	}

	detail, err := s.coins.CoinDetail(r.Context(), id)
	if err != nil {
		s.logger.Error(
			"unable to fetch coin detail",
			"id", id,
			"err", err,
		)

		writeFailure(w, types.ErrFetchFailed)

		return
	}

	writeJSON(w, http.StatusOK, &CoinResponse{
		Name:         render.EscapeMarkup(detail.Name),
		Symbol:       detail.Symbol,
		PriceUSD:     formatOptional(detail.PriceUSD),
		MarketCapUSD: formatOptional(detail.MarketCapUSD),
		Change24h:    formatOptional(detail.Change24h),
	})
}

func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	var (
		directionParam = r.URL.Query().Get("direction")
		sourceParam    = r.URL.Query().Get("source")

		asOfParam   = r.URL.Query().Get("as_of")
		limitParam  = r.URL.Query().Get("limit")
		offsetParam = r.URL.Query().Get("offset")
	)

	// Parse the effective date (defaults to now)
	asOf, err := parseAsOf(asOfParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(limitParam, offsetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the direction and source (optional)
	direction, source, err := parseDirectionAndSource(directionParam, sourceParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.SnapshotQuery{
		Direction: direction,
		Source:    source,
		Limit:     limit,
		Offset:    offset,
	}

	page, err := s.storage.SnapshotsAsOf(r.Context(), q, asOf)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListSources(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch sources",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchSources,
		)

		return
	}

	resp := &SourcesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

// estimateFiatAmount converts a USDT-denominated amount into its fiat
// equivalent, using the conservative rate taken from the general book.
// A book too shallow for the conservative rank falls back to the best
// offer; an empty book yields no usable rate
func (s *Server) estimateFiatAmount(
	ctx context.Context,
	direction types.Direction,
	amount float64,
) (float64, error) {
	offers, err := s.offers.FetchOffers(ctx, direction, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: general book fetch", types.ErrFetchFailed)
	}

	if len(offers) == 0 {
		return 0, fmt.Errorf("%w: empty general book", types.ErrRateUnavailable)
	}

	estimator, err := market.ConservativeOffer(offers, market.ConservativeRankOffset)
	if err != nil {
		estimator = offers[0]
	}

	rate, err := strconv.ParseFloat(estimator.Price, 64)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf(
			"%w: unusable estimator price %q",
			types.ErrRateUnavailable,
			estimator.Price,
		)
	}

	return amount * rate, nil
}

// summarizeOffers renders the given offers in provider order
func summarizeOffers(offers []types.Offer) []OfferSummary {
	summaries := make([]OfferSummary, 0, len(offers))

	for i, offer := range offers {
		summaries = append(summaries, OfferSummary{
			Rank:          i + 1,
			Advertiser:    render.EscapeMarkup(offer.Advertiser),
			Rate:          render.Number(offer.Price),
			MinAmount:     render.Number(offer.MinAmount),
			MaxAmount:     render.Number(offer.MaxAmount),
			Orders:        offer.MonthOrderCount,
			CompletionPct: render.Percent(offer.MonthFinishRate),
		})
	}

	return summaries
}

func formatOptional(value *float64) string {
	if value == nil {
		return render.NotAvailable
	}

	return render.Float(*value)
}

func parseDirection(v string) (types.Direction, error) {
	switch types.Direction(strings.ToUpper(strings.TrimSpace(v))) {
	case "":
		return types.DirectionBUY, nil // default is BUY
	case types.DirectionBUY:
		return types.DirectionBUY, nil
	case types.DirectionSELL:
		return types.DirectionSELL, nil
	default:
		return "", errInvalidDirection
	}
}

func parseAmount(v string) (*float64, error) {
	value := strings.TrimSpace(v)
	if value == "" {
		return nil, nil // optional
	}

	amount, err := strconv.ParseFloat(value, 64)
	if err != nil || amount <= 0 {
		return nil, errInvalidAmount
	}

	return &amount, nil
}

func parseCurrency(v string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "":
		return currencyETB, nil // default is the fiat side
	case currencyETB:
		return currencyETB, nil
	case currencyUSDT:
		return currencyUSDT, nil
	default:
		return "", errInvalidCurrency
	}
}

func parseTop(v string) (int, error) {
	value := strings.TrimSpace(v)
	if value == "" {
		return defaultTop, nil
	}

	top, err := strconv.Atoi(value)
	if err != nil || top < 1 || top > defaultTop {
		return 0, errInvalidTop
	}

	return top, nil
}

func parseSymbol(v string) (types.Symbol, error) {
	value := strings.TrimSpace(v)
	if !symbolRegex.MatchString(value) {
		return "", errInvalidSymbol
	}

	return types.NewSymbol(value), nil
}

func parseAsOf(asOfRaw string) (time.Time, error) {
	v := strings.TrimSpace(asOfRaw)
	if v == "" {
		return time.Now().UTC(), nil // default is now
	}

	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.New("invalid as_of (must be RFC3339 UTC)")
	}

	return t.UTC(), nil
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n) //nolint:gosec // Fine to clamp
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return limit, offset, nil
}

func parseDirectionAndSource(directionRaw, sourceRaw string) (*types.Direction, *types.Source, error) {
	var direction *types.Direction

	if v := strings.TrimSpace(directionRaw); v != "" {
		d, err := parseDirection(v)
		if err != nil {
			return nil, nil, err
		}

		direction = &d
	}

	var source *types.Source

	if v := strings.TrimSpace(sourceRaw); v != "" {
		src := types.Source(v)

		source = &src
	}

	return direction, source, nil
}

// failureStatus maps a tagged failure outcome onto an HTTP status
func failureStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrUnresolvedSymbol):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInsufficientOffers):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrFetchFailed),
		errors.Is(err, types.ErrRateUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}

// writeFailure writes a tagged failure outcome, so the transport's
// caller can choose a user-facing message per tag
func writeFailure(w http.ResponseWriter, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
		Code:  types.FailureTag(err),
	}

	writeJSON(w, failureStatus(err), resp)
}
