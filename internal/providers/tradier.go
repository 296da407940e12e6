package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/pkg/config"
	"github.com/leapscope/leapscope/pkg/httputil"
	"github.com/leapscope/leapscope/pkg/logger"
	"github.com/leapscope/leapscope/pkg/redis"
)

// Quote cache stays short; chains and fundamentals move slower.
const (
	quoteTTL        = 1 * time.Minute
	historyTTL      = 1 * time.Hour
	chainTTL        = 15 * time.Minute
	fundamentalsTTL = 12 * time.Hour
)

// Tradier is the market-data provider backed by the Tradier REST API. All
// responses are cached in Redis and every request passes the shared
// sliding-window limiter, so concurrent scans across processes stay under
// the account's quota.
type Tradier struct {
	cfg     config.TradierConfig
	http    *httputil.Client
	cache   *redis.Cache
	limiter *redis.RateLimiter
	logger  *logger.Logger
}

// NewTradier creates the provider.
func NewTradier(cfg config.TradierConfig, http *httputil.Client, cache *redis.Cache, limiter *redis.RateLimiter, log *logger.Logger) *Tradier {
	return &Tradier{cfg: cfg, http: http, cache: cache, limiter: limiter, logger: log}
}

func (t *Tradier) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + t.cfg.Token,
		"Accept":        "application/json",
	}
}

func (t *Tradier) throttle(ctx context.Context) error {
	return t.limiter.Wait(ctx, redis.RateLimitConfig{
		Key:    "tradier",
		Limit:  t.cfg.RateLimit,
		Window: t.cfg.RateWindow,
	})
}

// tradierQuote mirrors one element of the quotes payload. Tradier returns
// a bare object for a single symbol and an array for several.
type tradierQuote struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	Type   string  `json:"type"` // stock, etf, option
}

type quotesEnvelope struct {
	Quotes struct {
		Quote json.RawMessage `json:"quote"`
	} `json:"quotes"`
}

func decodeQuotes(raw json.RawMessage) ([]tradierQuote, error) {
	var many []tradierQuote
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one tradierQuote
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("unexpected quote payload: %w", err)
	}
	return []tradierQuote{one}, nil
}

// GetQuote returns the current quote for one underlying.
func (t *Tradier) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	cacheKey := "quote:" + symbol
	var cached contracts.Quote
	if hit, _ := t.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	if err := t.throttle(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/markets/quotes?symbols=%s", t.cfg.BaseURL, url.QueryEscape(symbol))
	var env quotesEnvelope
	if err := t.http.GetJSON(ctx, endpoint, t.headers(), &env); err != nil {
		return nil, fmt.Errorf("quote fetch failed for %s: %w", symbol, err)
	}

	quotes, err := decodeQuotes(env.Quotes.Quote)
	if err != nil || len(quotes) == 0 {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	quote := &contracts.Quote{
		Symbol:    symbol,
		Last:      quotes[0].Last,
		Timestamp: time.Now(),
	}
	_ = t.cache.Set(ctx, cacheKey, quote, quoteTTL)
	return quote, nil
}

type historyEnvelope struct {
	History struct {
		Day []struct {
			Date   string  `json:"date"`
			Open   float64 `json:"open"`
			High   float64 `json:"high"`
			Low    float64 `json:"low"`
			Close  float64 `json:"close"`
			Volume int64   `json:"volume"`
		} `json:"day"`
	} `json:"history"`
}

// GetDailyHistory returns daily bars for [from, to].
func (t *Tradier) GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) (*contracts.OHLCVSeries, error) {
	cacheKey := fmt.Sprintf("history:%s:%s:%s", symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached contracts.OHLCVSeries
	if hit, _ := t.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	if err := t.throttle(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/markets/history?symbol=%s&interval=daily&start=%s&end=%s",
		t.cfg.BaseURL, url.QueryEscape(symbol), from.Format("2006-01-02"), to.Format("2006-01-02"))
	var env historyEnvelope
	if err := t.http.GetJSON(ctx, endpoint, t.headers(), &env); err != nil {
		return nil, fmt.Errorf("history fetch failed for %s: %w", symbol, err)
	}

	series := &contracts.OHLCVSeries{Symbol: symbol}
	for _, d := range env.History.Day {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		series.Bars = append(series.Bars, contracts.Bar{
			Date:   date,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.Volume,
		})
	}

	_ = t.cache.Set(ctx, cacheKey, series, historyTTL)
	return series, nil
}

type expirationsEnvelope struct {
	Expirations struct {
		Date []string `json:"date"`
	} `json:"expirations"`
}

type chainEnvelope struct {
	Options struct {
		Option []struct {
			Symbol         string  `json:"symbol"`
			Underlying     string  `json:"underlying"`
			Strike         float64 `json:"strike"`
			OptionType     string  `json:"option_type"`
			ExpirationDate string  `json:"expiration_date"`
			Bid            float64 `json:"bid"`
			Ask            float64 `json:"ask"`
			OpenInterest   int64   `json:"open_interest"`
			Volume         int64   `json:"volume"`
			Greeks         *struct {
				Delta float64 `json:"delta"`
				MidIV float64 `json:"mid_iv"`
			} `json:"greeks"`
		} `json:"option"`
	} `json:"options"`
}

// GetOptionChain returns the long-dated slice of the chain: expirations
// closer than ~9 months are skipped since nothing there can pass the
// LEAPS filter or serve the ATM IV read.
func (t *Tradier) GetOptionChain(ctx context.Context, symbol string) (*contracts.OptionChain, error) {
	cacheKey := "chain:" + symbol
	var cached contracts.OptionChain
	if hit, _ := t.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	if err := t.throttle(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/markets/options/expirations?symbol=%s", t.cfg.BaseURL, url.QueryEscape(symbol))
	var exps expirationsEnvelope
	if err := t.http.GetJSON(ctx, endpoint, t.headers(), &exps); err != nil {
		return nil, fmt.Errorf("expirations fetch failed for %s: %w", symbol, err)
	}

	chain := &contracts.OptionChain{Underlying: symbol}
	cutoff := time.Now().AddDate(0, 9, 0)
	for _, dateStr := range exps.Expirations.Date {
		expiration, err := time.Parse("2006-01-02", dateStr)
		if err != nil || expiration.Before(cutoff) {
			continue
		}

		if err := t.throttle(ctx); err != nil {
			return nil, err
		}

		endpoint := fmt.Sprintf("%s/v1/markets/options/chains?symbol=%s&expiration=%s&greeks=true",
			t.cfg.BaseURL, url.QueryEscape(symbol), dateStr)
		var env chainEnvelope
		if err := t.http.GetJSON(ctx, endpoint, t.headers(), &env); err != nil {
			return nil, fmt.Errorf("chain fetch failed for %s %s: %w", symbol, dateStr, err)
		}

		for _, o := range env.Options.Option {
			c := contracts.OptionContract{
				Symbol:     o.Symbol,
				Underlying: symbol,
				Expiration: expiration,
				Strike:     o.Strike,
				Type:       contracts.OptionCall,
				Bid:        o.Bid,
				Ask:        o.Ask,
				OpenInt:    o.OpenInterest,
				Volume:     o.Volume,
			}
			if o.OptionType == "put" {
				c.Type = contracts.OptionPut
			}
			if o.Greeks != nil {
				c.Delta = contracts.MetricOf(o.Greeks.Delta)
				if o.Greeks.MidIV > 0 {
					c.ImpliedVol = contracts.MetricOf(o.Greeks.MidIV)
				}
			}
			chain.Contracts = append(chain.Contracts, c)
		}
	}

	t.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"contracts": len(chain.Contracts),
	}).Debug("option chain fetched")

	_ = t.cache.Set(ctx, cacheKey, chain, chainTTL)
	return chain, nil
}
