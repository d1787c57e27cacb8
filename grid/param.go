package grid

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrTooFewPositions    = errors.New("grid needs at least 2 positions")
	ErrNonPositiveAmount  = errors.New("total amount must be positive")
	ErrInvertedDistances  = errors.New("max distance less than min distance")
	ErrDistanceOutOfRange = errors.New("distances must be within [0, 100) pct")
)

// Params describe one grid: how many paired levels, the quote amount spread
// across them, and the percentage band the levels occupy around the
// reference price.
type Params struct {
	Positions   int
	TotalAmount decimal.Decimal
	MinDistance decimal.Decimal // pct offset of the closest level
	MaxDistance decimal.Decimal // pct offset of the farthest level

	// Correction aggressiveness. Zero values fall back to the 2.0/0.5
	// defaults; they are parameters because they encode policy, not grid math.
	SkewBoost decimal.Decimal
	SkewCut   decimal.Decimal
}

var (
	defaultSkewBoost = decimal.NewFromInt(2)
	defaultSkewCut   = decimal.NewFromFloat(0.5)
)

func (p Params) Validate() error {
	if p.Positions < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewPositions, p.Positions)
	}
	if !p.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, p.TotalAmount)
	}
	if p.MaxDistance.LessThan(p.MinDistance) {
		return fmt.Errorf("%w: min %s, max %s", ErrInvertedDistances, p.MinDistance, p.MaxDistance)
	}
	// A distance of 100% puts the buy price at exactly zero; beyond it the
	// buy side goes negative. Neither is a placeable level.
	if p.MinDistance.IsNegative() || p.MaxDistance.GreaterThanOrEqual(hundred) {
		return fmt.Errorf("%w: min %s, max %s", ErrDistanceOutOfRange, p.MinDistance, p.MaxDistance)
	}
	return nil
}

func (p Params) skewBoost() decimal.Decimal {
	if p.SkewBoost.IsZero() {
		return defaultSkewBoost
	}
	return p.SkewBoost
}

func (p Params) skewCut() decimal.Decimal {
	if p.SkewCut.IsZero() {
		return defaultSkewCut
	}
	return p.SkewCut
}
