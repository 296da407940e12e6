package providers

import (
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/pkg/config"
	"github.com/leapscope/leapscope/pkg/httputil"
	"github.com/leapscope/leapscope/pkg/logger"
	"github.com/leapscope/leapscope/pkg/redis"
)

// Composite joins the Tradier market-data client with the earnings
// calendar scraper into the full provider surface the scanner consumes.
type Composite struct {
	*Tradier
	*EarningsCalendar
}

var _ contracts.MarketDataProvider = (*Composite)(nil)

// NewComposite wires the default provider stack from process config.
func NewComposite(cfg *config.Config, client *redis.Client, log *logger.Logger) *Composite {
	cache := redis.NewCache(client, "leapscope")
	limiter := redis.NewRateLimiter(client, "leapscope")

	// The in-process limiter backstops the Redis window when Redis is off.
	rps := cfg.Tradier.RateLimit
	if window := cfg.Tradier.RateWindow.Seconds(); window > 1 {
		rps = int(float64(rps) / window)
	}
	httpClient := httputil.New(rps, 30*time.Second, log)

	return &Composite{
		Tradier:          NewTradier(cfg.Tradier, httpClient, cache, limiter, log),
		EarningsCalendar: NewEarningsCalendar("", httpClient, cache, log),
	}
}
