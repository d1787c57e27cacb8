// Package grid plans a ladder of paired buy/sell limit orders around a
// reference price. Planning is pure computation: no I/O, no rounding; the
// executor rounds right before transmission.
package grid

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNonPositiveReference rejects a reference price the ladder cannot be
// built around.
var ErrNonPositiveReference = errors.New("reference price must be positive")

// Skew biases every level's quantities toward one side to pull the primary
// venue's price back toward a corrective center price.
type Skew int

const (
	SkewNone      Skew = iota
	SkewSellHeavy      // primary overpriced: sell more, buy less
	SkewBuyHeavy       // primary underpriced: buy more, sell less
)

func (s Skew) String() string {
	switch s {
	case SkewSellHeavy:
		return "sell-heavy"
	case SkewBuyHeavy:
		return "buy-heavy"
	}
	return "none"
}

// SkewFor picks the skew from the live market price and the corrective center
// price the grid is built around. Equal prices mean no correction.
func SkewFor(market, center decimal.Decimal) Skew {
	switch market.Cmp(center) {
	case 1:
		return SkewSellHeavy
	case -1:
		return SkewBuyHeavy
	}
	return SkewNone
}

// Level is one rung of the grid. Prices and amounts carry full precision.
type Level struct {
	Index      int
	Distance   decimal.Decimal // pct offset from reference
	BuyPrice   decimal.Decimal
	SellPrice  decimal.Decimal
	BuyAmount  decimal.Decimal
	SellAmount decimal.Decimal
}

// Result is a planned grid: the reference it was centered on, the skew that
// was applied, and the levels in ascending distance order.
type Result struct {
	Reference decimal.Decimal
	Skew      Skew
	Levels    []Level
}

var hundred = decimal.NewFromInt(100)

// Plan computes the level ladder for the given parameters around reference.
// Levels are ordered by ascending index, distances non-decreasing. Each
// level gets an equal share of TotalAmount; skew multiplies quantities only,
// never prices.
func Plan(p Params, reference decimal.Decimal, skew Skew) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !reference.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrNonPositiveReference, reference)
	}
	positions := decimal.NewFromInt(int64(p.Positions))
	amountPerGrid := p.TotalAmount.Div(positions)
	// Positions >= 2 is guaranteed above, so the step divisor is never zero.
	priceStep := p.MaxDistance.Sub(p.MinDistance).Div(positions.Sub(decimal.NewFromInt(1)))

	buyFactor := decimal.NewFromInt(1)
	sellFactor := decimal.NewFromInt(1)
	switch skew {
	case SkewSellHeavy:
		sellFactor = p.skewBoost()
		buyFactor = p.skewCut()
	case SkewBuyHeavy:
		buyFactor = p.skewBoost()
		sellFactor = p.skewCut()
	}

	levels := make([]Level, 0, p.Positions)
	for i := 0; i < p.Positions; i++ {
		distance := p.MinDistance.Add(priceStep.Mul(decimal.NewFromInt(int64(i))))
		offset := distance.Div(hundred)
		buyPrice := reference.Mul(decimal.NewFromInt(1).Sub(offset))
		sellPrice := reference.Mul(decimal.NewFromInt(1).Add(offset))
		levels = append(levels, Level{
			Index:      i,
			Distance:   distance,
			BuyPrice:   buyPrice,
			SellPrice:  sellPrice,
			BuyAmount:  amountPerGrid.Div(buyPrice).Mul(buyFactor),
			SellAmount: amountPerGrid.Div(sellPrice).Mul(sellFactor),
		})
	}
	return &Result{Reference: reference, Skew: skew, Levels: levels}, nil
}
