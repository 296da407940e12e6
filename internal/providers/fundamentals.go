package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
)

type ratiosEnvelope []struct {
	Results []struct {
		Type   string `json:"type"`
		Tables struct {
			OperationRatios []map[string]struct {
				RevenueGrowth   *float64 `json:"revenue_growth"`
				NetIncomeGrowth *float64 `json:"net_income_growth"`
				NetMargin       *float64 `json:"net_margin"`
				ROE             *float64 `json:"r_o_e"`
			} `json:"operation_ratios_restate"`
			FinancialRatios []map[string]struct {
				DebtToEquity *float64 `json:"total_debt_equity_ratio"`
				CurrentRatio *float64 `json:"current_ratio"`
				CashFlow     *float64 `json:"cash_flow_from_operations"`
			} `json:"financial_ratios_restate"`
			AlphaBeta map[string]struct {
				Beta *float64 `json:"beta"`
			} `json:"alpha_beta"`
		} `json:"tables"`
	} `json:"results"`
}

func metricOfPtr(v *float64) contracts.Metric {
	if v == nil {
		return contracts.UnknownMetric
	}
	return contracts.MetricOf(*v)
}

// GetFundamentals builds a snapshot from the ratios endpoint. The asset
// class comes from the quote type: a basket instrument takes the ETF
// scoring path regardless of what the ratios payload holds. Metrics the
// payload omits stay UNKNOWN.
func (t *Tradier) GetFundamentals(ctx context.Context, symbol string) (*contracts.FundamentalSnapshot, contracts.AssetClass, error) {
	class, err := t.assetClass(ctx, symbol)
	if err != nil {
		return nil, "", err
	}
	if class == contracts.AssetETF {
		return &contracts.FundamentalSnapshot{Symbol: symbol, AsOf: time.Now()}, class, nil
	}

	cacheKey := "fundamentals:" + symbol
	var cached contracts.FundamentalSnapshot
	if hit, _ := t.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, class, nil
	}

	if err := t.throttle(ctx); err != nil {
		return nil, "", err
	}

	endpoint := fmt.Sprintf("%s/beta/markets/fundamentals/ratios?symbols=%s", t.cfg.BaseURL, url.QueryEscape(symbol))
	var env ratiosEnvelope
	if err := t.http.GetJSON(ctx, endpoint, t.headers(), &env); err != nil {
		return nil, "", fmt.Errorf("fundamentals fetch failed for %s: %w", symbol, err)
	}

	snap := &contracts.FundamentalSnapshot{
		Symbol:  symbol,
		AsOf:    time.Now(),
		Metrics: map[string]contracts.Metric{},
	}
	for _, item := range env {
		for _, res := range item.Results {
			for _, period := range res.Tables.OperationRatios {
				for _, row := range period {
					setIfKnown(snap, contracts.MetricRevenueGrowth, metricOfPtr(row.RevenueGrowth))
					setIfKnown(snap, contracts.MetricEarningsGrowth, metricOfPtr(row.NetIncomeGrowth))
					setIfKnown(snap, contracts.MetricProfitMargin, metricOfPtr(row.NetMargin))
					setIfKnown(snap, contracts.MetricReturnOnEquity, metricOfPtr(row.ROE))
				}
			}
			for _, period := range res.Tables.FinancialRatios {
				for _, row := range period {
					setIfKnown(snap, contracts.MetricDebtToEquity, metricOfPtr(row.DebtToEquity))
					setIfKnown(snap, contracts.MetricCurrentRatio, metricOfPtr(row.CurrentRatio))
					setIfKnown(snap, contracts.MetricOperatingCash, metricOfPtr(row.CashFlow))
				}
			}
			for _, row := range res.Tables.AlphaBeta {
				setIfKnown(snap, contracts.MetricBeta, metricOfPtr(row.Beta))
			}
		}
	}

	_ = t.cache.Set(ctx, cacheKey, snap, fundamentalsTTL)
	return snap, class, nil
}

func setIfKnown(snap *contracts.FundamentalSnapshot, name string, m contracts.Metric) {
	if m.Unknown() {
		return
	}
	snap.Metrics[name] = m
}

func (t *Tradier) assetClass(ctx context.Context, symbol string) (contracts.AssetClass, error) {
	cacheKey := "class:" + symbol
	var cached contracts.AssetClass
	if hit, _ := t.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	if err := t.throttle(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1/markets/quotes?symbols=%s", t.cfg.BaseURL, url.QueryEscape(symbol))
	var env quotesEnvelope
	if err := t.http.GetJSON(ctx, endpoint, t.headers(), &env); err != nil {
		return "", fmt.Errorf("asset class lookup failed for %s: %w", symbol, err)
	}

	quotes, err := decodeQuotes(env.Quotes.Quote)
	if err != nil || len(quotes) == 0 {
		return "", fmt.Errorf("no quote returned for %s", symbol)
	}

	class := contracts.AssetEquity
	if quotes[0].Type == "etf" {
		class = contracts.AssetETF
	}
	_ = t.cache.Set(ctx, cacheKey, class, fundamentalsTTL)
	return class, nil
}
