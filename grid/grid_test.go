package grid

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(positions int, total, min, max float64) Params {
	return Params{
		Positions:   positions,
		TotalAmount: decimal.NewFromFloat(total),
		MinDistance: decimal.NewFromFloat(min),
		MaxDistance: decimal.NewFromFloat(max),
	}
}

func TestPlan_FivePositions(t *testing.T) {
	ref := decimal.NewFromInt(10)
	plan, err := Plan(params(5, 100, 0.5, 2.5), ref, SkewNone)
	require.NoError(t, err)
	require.Len(t, plan.Levels, 5)

	wantDistances := []float64{0.5, 1.0, 1.5, 2.0, 2.5}
	for i, level := range plan.Levels {
		assert.Equal(t, i, level.Index)
		d, _ := level.Distance.Float64()
		assert.InDelta(t, wantDistances[i], d, 1e-9)
	}

	first := plan.Levels[0]
	assert.True(t, first.BuyPrice.Equal(decimal.NewFromFloat(9.95)), "buy price %s", first.BuyPrice)
	assert.True(t, first.SellPrice.Equal(decimal.NewFromFloat(10.05)), "sell price %s", first.SellPrice)

	buyQty, _ := first.BuyAmount.Float64()
	sellQty, _ := first.SellAmount.Float64()
	assert.InDelta(t, 2.0100, buyQty, 1e-4)
	assert.InDelta(t, 1.9900, sellQty, 1e-4)
}

func TestPlan_AmountSpreadsEvenly(t *testing.T) {
	p := params(8, 200, 0.5, 10)
	ref := decimal.NewFromFloat(0.123456)
	plan, err := Plan(p, ref, SkewNone)
	require.NoError(t, err)

	perGrid := p.TotalAmount.Div(decimal.NewFromInt(int64(p.Positions)))
	sum := decimal.Zero
	for _, level := range plan.Levels {
		notional := level.BuyAmount.Mul(level.BuyPrice)
		nf, _ := notional.Float64()
		pf, _ := perGrid.Float64()
		assert.InDelta(t, pf, nf, 1e-9)
		sum = sum.Add(perGrid)
	}
	sf, _ := sum.Float64()
	tf, _ := p.TotalAmount.Float64()
	assert.InDelta(t, tf, sf, 1e-9)
}

func TestPlan_PricesBracketReference(t *testing.T) {
	ref := decimal.NewFromFloat(0.05)
	plan, err := Plan(params(20, 200, 0.5, 10), ref, SkewNone)
	require.NoError(t, err)

	prev := decimal.Zero
	for _, level := range plan.Levels {
		if level.Distance.IsPositive() {
			assert.True(t, level.BuyPrice.LessThan(ref), "level %d buy %s", level.Index, level.BuyPrice)
			assert.True(t, level.SellPrice.GreaterThan(ref), "level %d sell %s", level.Index, level.SellPrice)
		}
		assert.True(t, level.Distance.GreaterThanOrEqual(prev), "distances must not decrease")
		prev = level.Distance
	}
}

func TestPlan_Skew(t *testing.T) {
	p := params(5, 100, 0.5, 2.5)
	ref := decimal.NewFromInt(10)

	base, err := Plan(p, ref, SkewNone)
	require.NoError(t, err)

	sellHeavy, err := Plan(p, ref, SkewSellHeavy)
	require.NoError(t, err)
	buyHeavy, err := Plan(p, ref, SkewBuyHeavy)
	require.NoError(t, err)

	two := decimal.NewFromInt(2)
	half := decimal.NewFromFloat(0.5)
	for i := range base.Levels {
		b, s := base.Levels[i], sellHeavy.Levels[i]
		assert.True(t, s.SellAmount.Equal(b.SellAmount.Mul(two)), "level %d sell", i)
		assert.True(t, s.BuyAmount.Equal(b.BuyAmount.Mul(half)), "level %d buy", i)

		// Prices never move with skew, only quantities.
		assert.True(t, s.BuyPrice.Equal(b.BuyPrice))
		assert.True(t, s.SellPrice.Equal(b.SellPrice))

		bh := buyHeavy.Levels[i]
		assert.True(t, bh.BuyAmount.Equal(b.BuyAmount.Mul(two)), "level %d buy", i)
		assert.True(t, bh.SellAmount.Equal(b.SellAmount.Mul(half)), "level %d sell", i)
	}
}

func TestPlan_CustomSkewFactors(t *testing.T) {
	p := params(2, 100, 1, 2)
	p.SkewBoost = decimal.NewFromInt(3)
	p.SkewCut = decimal.NewFromFloat(0.25)
	ref := decimal.NewFromInt(10)

	base, err := Plan(params(2, 100, 1, 2), ref, SkewNone)
	require.NoError(t, err)
	skewed, err := Plan(p, ref, SkewSellHeavy)
	require.NoError(t, err)

	assert.True(t, skewed.Levels[0].SellAmount.Equal(base.Levels[0].SellAmount.Mul(decimal.NewFromInt(3))))
	assert.True(t, skewed.Levels[0].BuyAmount.Equal(base.Levels[0].BuyAmount.Mul(decimal.NewFromFloat(0.25))))
}

func TestPlan_InvalidParams(t *testing.T) {
	ref := decimal.NewFromInt(10)
	tests := []struct {
		name string
		p    Params
		want error
	}{
		{"one position", params(1, 100, 0.5, 2.5), ErrTooFewPositions},
		{"zero positions", params(0, 100, 0.5, 2.5), ErrTooFewPositions},
		{"zero amount", params(5, 0, 0.5, 2.5), ErrNonPositiveAmount},
		{"negative amount", params(5, -1, 0.5, 2.5), ErrNonPositiveAmount},
		{"inverted distances", params(5, 100, 2.5, 0.5), ErrInvertedDistances},
		{"negative min distance", params(5, 100, -1, 2.5), ErrDistanceOutOfRange},
		{"max distance at 100", params(2, 100, 0.5, 100), ErrDistanceOutOfRange},
		{"max distance beyond 100", params(2, 100, 0.5, 150), ErrDistanceOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.p, ref, SkewNone)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestPlan_NonPositiveReference(t *testing.T) {
	p := params(5, 100, 0.5, 2.5)
	_, err := Plan(p, decimal.Zero, SkewNone)
	assert.True(t, errors.Is(err, ErrNonPositiveReference), "got %v", err)

	_, err = Plan(p, decimal.NewFromInt(-1), SkewNone)
	assert.True(t, errors.Is(err, ErrNonPositiveReference), "got %v", err)
}

func TestSkewFor(t *testing.T) {
	ten := decimal.NewFromInt(10)
	assert.Equal(t, SkewSellHeavy, SkewFor(decimal.NewFromFloat(10.5), ten))
	assert.Equal(t, SkewBuyHeavy, SkewFor(decimal.NewFromFloat(9.5), ten))
	assert.Equal(t, SkewNone, SkewFor(ten, ten))
}
