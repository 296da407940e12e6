package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/pkg/config"
	"github.com/leapscope/leapscope/pkg/httputil"
	"github.com/leapscope/leapscope/pkg/logger"
	"github.com/leapscope/leapscope/pkg/redis"
)

func testTradier(t *testing.T, handler http.Handler) *Tradier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := redis.New(&config.Config{}) // Redis off: cache and limiter no-op
	require.NoError(t, err)

	cfg := config.TradierConfig{
		Token:      "test-token",
		BaseURL:    srv.URL,
		RateLimit:  100,
		RateWindow: time.Second,
	}
	log := logger.NewNop()
	return NewTradier(cfg, httputil.New(100, 5*time.Second, log),
		redis.NewCache(client, "test"), redis.NewRateLimiter(client, "test"), log)
}

func TestGetQuote(t *testing.T) {
	tr := testTradier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbols"))
		fmt.Fprint(w, `{"quotes":{"quote":{"symbol":"AAPL","last":187.45,"type":"stock"}}}`)
	}))

	quote, err := tr.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 187.45, quote.Last)
}

func TestDecodeQuotesArrayAndObject(t *testing.T) {
	many, err := decodeQuotes([]byte(`[{"symbol":"A","last":1},{"symbol":"B","last":2}]`))
	require.NoError(t, err)
	assert.Len(t, many, 2)

	one, err := decodeQuotes([]byte(`{"symbol":"A","last":1}`))
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "A", one[0].Symbol)

	_, err = decodeQuotes([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestGetDailyHistory(t *testing.T) {
	tr := testTradier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{"history":{"day":[
			{"date":"2026-02-02","open":100,"high":102,"low":99,"close":101,"volume":1000},
			{"date":"2026-02-03","open":101,"high":103,"low":100,"close":102.5,"volume":1200}
		]}}`)
	}))

	series, err := tr.GetDailyHistory(context.Background(), "AAPL",
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 102.5, series.Bars[1].Close)
	assert.NoError(t, series.Validate())
}

func TestGetOptionChainSkipsShortExpirations(t *testing.T) {
	nearDate := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	farDate := time.Now().AddDate(0, 14, 0).Format("2006-01-02")

	var chainRequests []string
	tr := testTradier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/markets/options/expirations":
			fmt.Fprintf(w, `{"expirations":{"date":["%s","%s"]}}`, nearDate, farDate)
		case "/v1/markets/options/chains":
			chainRequests = append(chainRequests, r.URL.Query().Get("expiration"))
			fmt.Fprintf(w, `{"options":{"option":[
				{"symbol":"AAPL-C150","underlying":"AAPL","strike":150,"option_type":"call",
				 "expiration_date":"%s","bid":24.0,"ask":24.5,"open_interest":800,"volume":60,
				 "greeks":{"delta":0.75,"mid_iv":0.28}},
				{"symbol":"AAPL-P150","underlying":"AAPL","strike":150,"option_type":"put",
				 "expiration_date":"%s","bid":3.0,"ask":3.2,"open_interest":400,"volume":20}
			]}}`, farDate, farDate)
		default:
			http.NotFound(w, r)
		}
	}))

	chain, err := tr.GetOptionChain(context.Background(), "AAPL")

	require.NoError(t, err)
	// Only the far expiration gets a chain request.
	assert.Equal(t, []string{farDate}, chainRequests)
	require.Len(t, chain.Contracts, 2)

	call := chain.Contracts[0]
	assert.Equal(t, contracts.OptionCall, call.Type)
	require.False(t, call.Delta.Unknown())
	assert.Equal(t, 0.75, call.Delta.Value)
	assert.Equal(t, 0.28, call.ImpliedVol.Value)

	put := chain.Contracts[1]
	assert.Equal(t, contracts.OptionPut, put.Type)
	assert.True(t, put.Delta.Unknown())
	assert.True(t, put.ImpliedVol.Unknown())
}

func TestGetFundamentalsETFSkipsRatios(t *testing.T) {
	var paths []string
	tr := testTradier(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `{"quotes":{"quote":{"symbol":"SPY","last":500,"type":"etf"}}}`)
	}))

	snap, class, err := tr.GetFundamentals(context.Background(), "SPY")

	require.NoError(t, err)
	assert.Equal(t, contracts.AssetETF, class)
	assert.Empty(t, snap.Metrics)
	// Only the quote lookup fired; no ratios request for a basket.
	assert.Equal(t, []string{"/v1/markets/quotes"}, paths)
}
