// Package controller wires the oracle, planner and executor into one
// rebuild cycle: decide the reference price, sweep stale orders, plan the
// ladder, place it. Repetition is the scheduler's business, not the cycle's.
package controller

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aipglabs/gridbot/exchange"
	"github.com/aipglabs/gridbot/executor"
	"github.com/aipglabs/gridbot/grid"
	"github.com/aipglabs/gridbot/oracle"
	"github.com/aipglabs/gridbot/store"
)

type Controller struct {
	oracle    *oracle.Oracle
	exec      *executor.Executor
	store     *store.Store // optional
	threshold decimal.Decimal
	log       *zap.SugaredLogger
}

func New(o *oracle.Oracle, e *executor.Executor, s *store.Store, threshold decimal.Decimal, log *zap.SugaredLogger) *Controller {
	if threshold.IsZero() {
		threshold = oracle.DefaultThreshold
	}
	return &Controller{oracle: o, exec: e, store: s, threshold: threshold, log: log}
}

// Rebuild runs one full cycle for the symbol and returns the orders the
// venue accepted, possibly a partial or empty list. It fails only on invalid
// parameters (before any network I/O), on primary-price retrieval, or on
// open-order retrieval; everything else degrades and the cycle completes.
func (c *Controller) Rebuild(ctx context.Context, symbol string, params grid.Params) ([]exchange.Order, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	adjust, target := c.oracle.ShouldAdjust(ctx, symbol, c.threshold)

	market, err := c.oracle.PrimaryPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	reference := market
	skew := grid.SkewNone
	if adjust {
		reference = target
		skew = grid.SkewFor(market, target)
		correctionsTotal.Inc()
		c.log.Infow("price correction engaged",
			"symbol", symbol, "market", market, "center", target, "skew", skew.String())
	}

	// Best-effort sweep: the boolean only tells us the sweep ran, individual
	// cancels may still have failed and that is fine.
	swept, err := c.exec.CancelAll(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !swept {
		c.log.Warnw("cancel sweep incomplete", "symbol", symbol)
	}

	plan, err := grid.Plan(params, reference, skew)
	if err != nil {
		return nil, err
	}

	orders := c.exec.SubmitGrid(ctx, symbol, plan)
	cyclesTotal.Inc()

	c.persist(ctx, symbol, params, market, orders)
	return orders, nil
}

// persist records the cycle outcome; a store failure never fails the cycle.
func (c *Controller) persist(ctx context.Context, symbol string, params grid.Params, market decimal.Decimal, orders []exchange.Order) {
	if c.store == nil {
		return
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	total, _ := params.TotalAmount.Float64()
	min, _ := params.MinDistance.Float64()
	max, _ := params.MaxDistance.Float64()
	err := c.store.SaveState(ctx, store.State{
		Symbol:       symbol,
		Positions:    params.Positions,
		TotalAmount:  total,
		MinDistance:  min,
		MaxDistance:  max,
		CurrentPrice: market.String(),
		OrderIDs:     ids,
	})
	if err != nil {
		c.log.Warnw("failed to persist grid state", "symbol", symbol, "error", err)
	}
}

// Run rebuilds the grid on every tick until the context is cancelled. Cycle
// errors are logged and the loop keeps going; a scheduler has no business
// dying because one cycle did.
func (c *Controller) Run(ctx context.Context, symbol string, params grid.Params, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.log.Infow("update loop stopped", "symbol", symbol)
			return
		case <-t.C:
			orders, err := c.Rebuild(ctx, symbol, params)
			if err != nil {
				c.log.Errorw("rebuild cycle failed", "symbol", symbol, "error", err)
				continue
			}
			c.log.Infow("grid rebuilt", "symbol", symbol, "orders", len(orders))
		}
	}
}
