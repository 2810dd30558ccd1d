package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birrdesk/etbrates/market/types"
)

const offersFixture = `{
	"data": [
		{
			"adv": {
				"price": "142.50",
				"minSingleTransAmount": "1000",
				"maxSingleTransAmount": "50000"
			},
			"advertiser": {
				"nickName": "abebe_trader",
				"monthOrderCount": 320,
				"monthFinishRate": 0.998
			}
		},
		{
			"adv": {
				"price": "143.00",
				"minSingleTransAmount": "500",
				"maxSingleTransAmount": "20000"
			},
			"advertiser": {
				"nickName": "selam*fx",
				"monthOrderCount": 58,
				"monthFinishRate": 0.95
			}
		}
	]
}`

func testP2PClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(time.Second * 5)
	c.url = srv.URL

	return c
}

func TestClient_FetchOffers(t *testing.T) {
	t.Parallel()

	t.Run("general book request", func(t *testing.T) {
		t.Parallel()

		var captured map[string]any

		c := testP2PClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			_, _ = w.Write([]byte(offersFixture))
		})

		offers, err := c.FetchOffers(context.Background(), types.DirectionBUY, nil)
		require.NoError(t, err)

		// Request contract
		assert.Equal(t, false, captured["proMerchantAds"])
		assert.Equal(t, float64(1), captured["page"])
		assert.Equal(t, float64(10), captured["rows"])
		assert.Equal(t, []any{}, captured["payTypes"])
		assert.Equal(t, "USDT", captured["asset"])
		assert.Equal(t, "ETB", captured["fiat"])
		assert.Equal(t, "BUY", captured["tradeType"])
		assert.Nil(t, captured["amount"])

		// Provider order preserved
		require.Len(t, offers, 2)
		assert.Equal(t, "142.50", offers[0].Price)
		assert.Equal(t, "abebe_trader", offers[0].Advertiser)
		assert.Equal(t, 320, offers[0].MonthOrderCount)
		assert.Equal(t, "0.998", offers[0].MonthFinishRate)
		assert.Equal(t, "143.00", offers[1].Price)
		assert.Equal(t, "500", offers[1].MinAmount)
		assert.Equal(t, "20000", offers[1].MaxAmount)
	})

	t.Run("amount-scoped request", func(t *testing.T) {
		t.Parallel()

		var captured map[string]any

		c := testP2PClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			_, _ = w.Write([]byte(`{"data":[]}`))
		})

		amount := 5000.0

		offers, err := c.FetchOffers(context.Background(), types.DirectionSELL, &amount)
		require.NoError(t, err)

		assert.Equal(t, "SELL", captured["tradeType"])
		assert.Equal(t, float64(5000), captured["amount"])

		// An empty book is a successful, empty result
		assert.Empty(t, offers)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		c := testP2PClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.FetchOffers(context.Background(), types.DirectionBUY, nil)
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		c := testP2PClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":`))
		})

		_, err := c.FetchOffers(context.Background(), types.DirectionBUY, nil)
		assert.Error(t, err)
	})
}

func TestSnapshotProvider_Fetch(t *testing.T) {
	t.Parallel()

	deepBook := func(t *testing.T, basePrice int) string {
		t.Helper()

		type ad struct {
			Adv struct {
				Price string `json:"price"`
			} `json:"adv"`
		}

		ads := make([]ad, 0, 8)

		for i := range 8 {
			var a ad

			a.Adv.Price = strconv.Itoa(basePrice + i)
			ads = append(ads, a)
		}

		raw, err := json.Marshal(map[string]any{"data": ads})
		require.NoError(t, err)

		return string(raw)
	}

	t.Run("conservative rates both directions", func(t *testing.T) {
		t.Parallel()

		c := testP2PClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any

			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			if req["tradeType"] == "BUY" {
				_, _ = w.Write([]byte(deepBook(t, 140)))

				return
			}

			_, _ = w.Write([]byte(deepBook(t, 150)))
		})

		p := NewSnapshotProvider(c)

		assert.Equal(t, time.Minute*10, p.Interval())
		assert.NotEmpty(t, p.Name())

		snapshots, err := p.Fetch(context.Background())
		require.NoError(t, err)
		require.Len(t, snapshots, 2)

		// Rank 5 offer, not top of book
		assert.Equal(t, types.DirectionBUY, snapshots[0].Direction)
		assert.InDelta(t, 145, snapshots[0].Rate, 0.0001)
		assert.Equal(t, types.DirectionSELL, snapshots[1].Direction)
		assert.InDelta(t, 155, snapshots[1].Rate, 0.0001)

		assert.Equal(t, BinanceP2PSource, snapshots[0].Source)
	})

	t.Run("shallow book fails", func(t *testing.T) {
		t.Parallel()

		c := testP2PClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(offersFixture)) // only 2 offers
		})

		_, err := NewSnapshotProvider(c).Fetch(context.Background())
		assert.ErrorIs(t, err, types.ErrInsufficientOffers)
	})

	t.Run("upstream error propagates", func(t *testing.T) {
		t.Parallel()

		c := testP2PClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := NewSnapshotProvider(c).Fetch(context.Background())
		assert.Error(t, err)
	})
}
