package contracts

import (
	"context"
	"time"
)

// Market-data providers are external collaborators; the core consumes them
// only through these interfaces. Implementations may block on network I/O
// and own their cancellation semantics via ctx; the analyzers themselves
// never perform I/O.

// QuoteProvider serves current underlying quotes.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// HistoryProvider serves daily OHLCV history.
type HistoryProvider interface {
	GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) (*OHLCVSeries, error)
}

// FundamentalsProvider serves fundamental snapshots and the asset class.
type FundamentalsProvider interface {
	GetFundamentals(ctx context.Context, symbol string) (*FundamentalSnapshot, AssetClass, error)
}

// ChainProvider serves option chains spanning multiple expirations.
type ChainProvider interface {
	GetOptionChain(ctx context.Context, symbol string) (*OptionChain, error)
}

// EarningsProvider serves the next scheduled earnings date. A nil time with
// nil error means no upcoming earnings are known; the earnings gate treats
// that as no risk.
type EarningsProvider interface {
	NextEarningsDate(ctx context.Context, symbol string) (*time.Time, error)
}

// MarketDataProvider is the full provider surface the scanner needs.
type MarketDataProvider interface {
	QuoteProvider
	HistoryProvider
	FundamentalsProvider
	ChainProvider
	EarningsProvider
}

// DecisionRecorder receives every ConvictionResult as an append-only audit
// record. Records are immutable and independently replayable.
type DecisionRecorder interface {
	Record(ctx context.Context, result *ConvictionResult) error
}

// PositionSource serves the open-position snapshots the risk generator
// re-evaluates.
type PositionSource interface {
	OpenPositions(ctx context.Context) ([]Position, error)
}
