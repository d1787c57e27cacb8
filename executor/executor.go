// Package executor owns the order lifecycle on the primary venue: sweep the
// resting orders away, then lay the planned ladder down, one level at a time.
package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/aipglabs/gridbot/exchange"
	"github.com/aipglabs/gridbot/grid"
)

const (
	// Venue submission precision. Planning keeps full precision; rounding
	// happens exactly once, here. shopspring Round is half away from zero.
	pricePrecision  = 6
	amountPrecision = 2
)

type Executor struct {
	ex  exchange.PrimaryClient
	log *zap.SugaredLogger
}

func New(ex exchange.PrimaryClient, log *zap.SugaredLogger) *Executor {
	return &Executor{ex: ex, log: log}
}

// CancelAll sweeps the symbol's resting orders. Failure to fetch the open
// order list propagates; failure to cancel an individual order does not stop
// the sweep. The returned bool means "the sweep completed", not "all orders
// are confirmed gone".
func (e *Executor) CancelAll(ctx context.Context, symbol string) (bool, error) {
	orders, err := e.ex.GetOpenOrders(ctx, symbol)
	if err != nil {
		return false, err
	}
	if len(orders) == 0 {
		return true, nil
	}
	for _, o := range orders {
		if err := e.ex.CancelOrder(ctx, o.ID); err != nil {
			ordersFailed.WithLabelValues("cancel").Inc()
			e.log.Warnw("cancel failed", "symbol", symbol, "orderId", o.ID, "error", err)
			continue
		}
		e.log.Infow("order cancelled", "symbol", symbol, "orderId", o.ID)
	}
	return true, nil
}

// SubmitGrid places the planned levels in ascending index order, BUY then
// SELL per level. A failed side is logged and skipped; the other side of the
// level and all later levels are still attempted. Only accepted orders are
// returned, so a short list is the partial-failure signal.
func (e *Executor) SubmitGrid(ctx context.Context, symbol string, plan *grid.Result) []exchange.Order {
	placed := make([]exchange.Order, 0, 2*len(plan.Levels))
	for _, level := range plan.Levels {
		buyPrice := level.BuyPrice.Round(pricePrecision)
		buyQty := level.BuyAmount.Round(amountPrecision)
		if order, err := e.ex.PlaceOrder(ctx, symbol, exchange.Buy, buyPrice, buyQty); err != nil {
			ordersFailed.WithLabelValues("buy").Inc()
			e.log.Warnw("buy order failed", "symbol", symbol, "level", level.Index, "price", buyPrice, "error", err)
		} else {
			ordersPlaced.WithLabelValues("buy").Inc()
			placed = append(placed, order)
		}

		sellPrice := level.SellPrice.Round(pricePrecision)
		sellQty := level.SellAmount.Round(amountPrecision)
		if order, err := e.ex.PlaceOrder(ctx, symbol, exchange.Sell, sellPrice, sellQty); err != nil {
			ordersFailed.WithLabelValues("sell").Inc()
			e.log.Warnw("sell order failed", "symbol", symbol, "level", level.Index, "price", sellPrice, "error", err)
		} else {
			ordersPlaced.WithLabelValues("sell").Inc()
			placed = append(placed, order)
		}
	}
	e.log.Infow("grid submitted", "symbol", symbol, "levels", len(plan.Levels), "placed", len(placed))
	return placed
}
