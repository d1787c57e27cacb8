// Package exchange holds the venue-facing clients: the primary trading venue
// where the grid is placed, and the read-only reference venues used for the
// consensus price.
package exchange

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Side of a limit order on the primary venue.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Ticker is one record of the primary venue's ticker feed. Price stays a raw
// string here; parsing (and rejecting the unparseable) is the oracle's job.
type Ticker struct {
	Symbol    string `json:"s"`
	Timestamp int64  `json:"t"`
	Price     string `json:"p"`
}

// Order is the transient reference the venue returns at submission time. We
// keep no local order book; the ID only matters for next-cycle cancellation.
type Order struct {
	ID       string
	Symbol   string
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Status   string
}

// OpenOrder is an entry of the venue's resting-order list.
type OpenOrder struct {
	ID     string
	Symbol string
	Side   Side
	Price  decimal.Decimal
	Status string
}

// Balance for a single currency.
type Balance struct {
	Currency  string
	Available decimal.Decimal
	Frozen    decimal.Decimal
}

var ErrOrderRejected = errors.New("order rejected by venue")

// PrimaryClient is the contract with the venue that hosts the grid.
type PrimaryClient interface {
	GetTickers(ctx context.Context, symbol string) ([]Ticker, error)
	GetOpenOrders(ctx context.Context, symbol string) ([]OpenOrder, error)
	CancelOrder(ctx context.Context, orderID string) error
	PlaceOrder(ctx context.Context, symbol string, side Side, price, quantity decimal.Decimal) (Order, error)
	GetBalance(ctx context.Context, currency string) (Balance, error)
}

// PriceSource is one independent reference venue. LastPrice failures are
// per-source; callers must treat them as "sample missing", never as fatal.
type PriceSource interface {
	Name() string
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "BUY", "buy":
		return Buy, nil
	case "SELL", "sell":
		return Sell, nil
	}
	return "", errors.New("unsupported order side: " + s)
}
