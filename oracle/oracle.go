// Package oracle decides whether the primary venue's price has drifted from
// the consensus of the reference venues, and by how much.
package oracle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/aipglabs/gridbot/exchange"
)

// ErrNoMatchingTicker means the primary venue's ticker feed had no record
// for the symbol with a parseable price.
var ErrNoMatchingTicker = errors.New("no matching ticker for symbol")

// DefaultThreshold is the relative divergence above which a corrective grid
// is warranted.
var DefaultThreshold = decimal.NewFromFloat(0.02)

// Sample is one successfully observed reference price.
type Sample struct {
	Source string
	Price  decimal.Decimal
	At     time.Time
}

type Oracle struct {
	primary exchange.PrimaryClient
	sources []exchange.PriceSource
	log     *zap.SugaredLogger
}

func New(primary exchange.PrimaryClient, sources []exchange.PriceSource, log *zap.SugaredLogger) *Oracle {
	return &Oracle{primary: primary, sources: sources, log: log}
}

// PrimaryPrice scans the venue's ticker records for the symbol
// (case-insensitive) and returns the first parseable price. Records with an
// unparseable price field are skipped, not fatal; only a fully empty scan is.
func (o *Oracle) PrimaryPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	tickers, err := o.primary.GetTickers(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	want := strings.ToLower(symbol)
	for _, t := range tickers {
		if strings.ToLower(t.Symbol) != want {
			continue
		}
		price, err := decimal.NewFromString(t.Price)
		if err != nil {
			o.log.Warnw("skipping unparseable ticker price", "symbol", t.Symbol, "price", t.Price)
			continue
		}
		return price, nil
	}
	return decimal.Zero, ErrNoMatchingTicker
}

// SecondaryPrices queries every reference source concurrently. A failing
// source is logged and dropped; siblings are unaffected. The result may be
// empty, it is never an error.
func (o *Oracle) SecondaryPrices(ctx context.Context, symbol string) []Sample {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		samples []Sample
	)
	for _, src := range o.sources {
		wg.Add(1)
		go func(src exchange.PriceSource) {
			defer wg.Done()
			price, err := src.LastPrice(ctx, symbol)
			if err != nil {
				o.log.Warnw("reference source failed", "source", src.Name(), "symbol", symbol, "error", err)
				return
			}
			mu.Lock()
			samples = append(samples, Sample{Source: src.Name(), Price: price, At: time.Now()})
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return samples
}

// Consensus is the arithmetic mean of the samples. ok is false when there is
// nothing to average.
func Consensus(samples []Sample) (decimal.Decimal, bool) {
	if len(samples) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, s := range samples {
		sum = sum.Add(s.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(samples)))), true
}

// Divergence is |primary - consensus| / consensus, so it is symmetric in
// direction; the sign of the raw difference only matters for skew selection.
// The consensus must be positive; ShouldAdjust guards that.
func Divergence(primary, consensus decimal.Decimal) decimal.Decimal {
	return primary.Sub(consensus).Abs().Div(consensus)
}

// ShouldAdjust reports whether the grid should be re-centered on the
// consensus price. Unavailable primary price or an empty sample set is a
// "cannot decide": (false, zero), never an error.
func (o *Oracle) ShouldAdjust(ctx context.Context, symbol string, threshold decimal.Decimal) (bool, decimal.Decimal) {
	primary, err := o.PrimaryPrice(ctx, symbol)
	if err != nil {
		o.log.Warnw("cannot decide adjustment, primary price unavailable", "symbol", symbol, "error", err)
		return false, decimal.Zero
	}
	consensus, ok := Consensus(o.SecondaryPrices(ctx, symbol))
	if !ok {
		o.log.Infow("no consensus from reference venues", "symbol", symbol)
		return false, decimal.Zero
	}
	// A dead market can legitimately report zero; there is no meaningful
	// relative divergence from that, so treat it as undecidable.
	if !consensus.IsPositive() {
		o.log.Warnw("non-positive consensus, cannot decide", "symbol", symbol, "consensus", consensus)
		return false, decimal.Zero
	}
	divergence := Divergence(primary, consensus)
	o.log.Infow("price comparison",
		"symbol", symbol, "primary", primary, "consensus", consensus, "divergence", divergence)
	if divergence.GreaterThan(threshold) {
		return true, consensus
	}
	return false, decimal.Zero
}
