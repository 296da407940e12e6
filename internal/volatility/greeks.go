package volatility

import (
	"math"

	"github.com/leapscope/leapscope/internal/contracts"
)

// CallDelta returns the Black-Scholes delta N(d1) for a European call.
// Used as a fallback when the provider omits greeks but publishes IV.
// UNKNOWN when any input cannot support the model.
func CallDelta(spot, strike, riskFree, sigma, yearsToExpiry float64) contracts.Metric {
	if spot <= 0 || strike <= 0 || sigma <= 0 || yearsToExpiry <= 0 {
		return contracts.UnknownMetric
	}
	d1 := (math.Log(spot/strike) + (riskFree+sigma*sigma/2)*yearsToExpiry) / (sigma * math.Sqrt(yearsToExpiry))
	return contracts.MetricOf(normCDF(d1))
}

// normCDF is the standard normal CDF via the error function.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
