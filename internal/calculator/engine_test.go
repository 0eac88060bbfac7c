package calculator

import (
	"errors"
	"math"
	"testing"

	calcerr "github.com/ducminhle1904/dca-calculator/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func singleBuyLong() TradeParameters {
	return TradeParameters{
		AvailableAmount:   1000,
		FirstBuyPrice:     100,
		StopLossPrice:     90,
		PositionType:      PositionLong,
		NumberOfPositions: 1,
		TotalBuys:         3,
		RiskPercentage:    5,
		BuyPercentages:    []float64{40, 30, 30},
		Variant:           VariantManualRisk,
	}
}

func threeBuyLadder() TradeParameters {
	return TradeParameters{
		AvailableAmount:   3000,
		FirstBuyPrice:     100,
		LastBuyPrice:      price(80),
		StopLossPrice:     70,
		PositionType:      PositionLong,
		NumberOfPositions: 1,
		TotalBuys:         3,
		RiskPercentage:    5,
		BuyPercentages:    []float64{40, 30, 30},
		Variant:           VariantManualRisk,
	}
}

// TestCompute_SingleBuyLong checks the one-order case end to end
func TestCompute_SingleBuyLong(t *testing.T) {
	res, err := Compute(singleBuyLong(), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.LimitOrders, 1)
	assert.InDelta(t, 100.0, res.LimitOrders[0].Price, 1e-9)
	assert.InDelta(t, 1000.0, res.LimitOrders[0].AmountInvested, 1e-9)
	assert.Equal(t, 100.0, res.LimitOrders[0].Percentage)
	assert.InDelta(t, 1000.0, res.InvestmentPerPosition, 1e-9)
	assert.InDelta(t, 50.0, res.RiskAmountPerPosition, 1e-9)
	assert.InDelta(t, 0.5, res.Leverage, 1e-9)
	assert.Equal(t, 100.0, res.ReferencePrice)

	d := res.Display()
	assert.Equal(t, "0.50x", d.Leverage)
	assert.Equal(t, "1000.00", d.InvestmentPerPosition)
	assert.Equal(t, "50.00", d.RiskAmountPerPosition)
	assert.Equal(t, "100.0000", d.LimitOrders[0].Price)
	assert.Equal(t, "1000.00", d.LimitOrders[0].AmountInvested)
	assert.Equal(t, "100", d.LimitOrders[0].Percentage)
	assert.Empty(t, d.AverageEntryPrice)
}

// TestCompute_ThreeBuyLadder checks an evenly spaced falling ladder
func TestCompute_ThreeBuyLadder(t *testing.T) {
	res, err := Compute(threeBuyLadder(), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.LimitOrders, 3)
	wantPrices := []float64{100, 90, 80}
	wantAmounts := []float64{1200, 900, 900}
	for i, o := range res.LimitOrders {
		assert.InDelta(t, wantPrices[i], o.Price, 1e-9)
		assert.InDelta(t, wantAmounts[i], o.AmountInvested, 1e-9)
		assert.InDelta(t, o.AmountInvested/o.Price, o.Quantity, 1e-12)
	}

	assert.InDelta(t, 150.0, res.RiskAmountPerPosition, 1e-9)
	assert.InDelta(t, (150.0/3000.0)*(100.0/30.0), res.Leverage, 1e-12)
	assert.Equal(t, "0.17x", res.Display().Leverage)
}

func TestCompute_InvalidScheduleSum(t *testing.T) {
	p := threeBuyLadder()
	p.BuyPercentages = []float64{40, 30, 29}

	res, err := Compute(p, DefaultOptions())
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, calcerr.ErrInvalidPercentageSchedule))

	ce, ok := calcerr.AsCalcError(err)
	require.True(t, ok)
	assert.Equal(t, 99.0, ce.Context["actual"])
}

func TestCompute_ScheduleLengthMismatch(t *testing.T) {
	p := threeBuyLadder()
	p.BuyPercentages = []float64{50, 50}

	_, err := Compute(p, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, calcerr.ErrInvalidPercentageSchedule))
	assert.Contains(t, err.Error(), "(2) does not match the total buys (3)")
}

func TestCompute_NegativePercentage(t *testing.T) {
	p := threeBuyLadder()
	p.BuyPercentages = []float64{110, 20, -30}

	_, err := Compute(p, DefaultOptions())
	assert.True(t, errors.Is(err, calcerr.ErrInvalidPercentageSchedule))
}

func TestCompute_PercentageTolerance(t *testing.T) {
	p := threeBuyLadder()
	p.BuyPercentages = []float64{33.33, 33.33, 33.33}

	_, err := Compute(p, DefaultOptions())
	assert.True(t, errors.Is(err, calcerr.ErrInvalidPercentageSchedule))

	res, err := NewEngine(Options{PercentageTolerance: 0.02}).Compute(p)
	require.NoError(t, err)
	assert.Len(t, res.LimitOrders, 3)
}

// TestCompute_SingleBuyCollapse ignores the supplied schedule without a last price
func TestCompute_SingleBuyCollapse(t *testing.T) {
	p := singleBuyLong()
	p.TotalBuys = 5
	p.BuyPercentages = []float64{10, 20}

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.LimitOrders, 1)
	assert.Equal(t, p.FirstBuyPrice, res.LimitOrders[0].Price)
	assert.Equal(t, 100.0, res.LimitOrders[0].Percentage)
	assert.InDelta(t, res.InvestmentPerPosition, res.LimitOrders[0].AmountInvested, 1e-9)

	p.LastBuyPrice = price(math.NaN())
	res, err = Compute(p, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, res.LimitOrders, 1)
}

func TestCompute_SingleTotalBuyWithLastPrice(t *testing.T) {
	p := threeBuyLadder()
	p.TotalBuys = 1
	p.BuyPercentages = []float64{40, 30, 30}

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.LimitOrders, 1)
	assert.Equal(t, 100.0, res.LimitOrders[0].Price)
	assert.Equal(t, 100.0, res.LimitOrders[0].Percentage)
}

func TestCompute_LadderMonotonicity(t *testing.T) {
	tests := []struct {
		name  string
		first float64
		last  float64
		buys  int
	}{
		{"falling five", 100, 60, 5},
		{"rising four", 50, 62, 4},
		{"fractional", 0.3, 0.1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcts := make([]float64, tt.buys)
			for i := range pcts {
				pcts[i] = 100.0 / float64(tt.buys)
			}
			pcts[tt.buys-1] = 100 - 100.0/float64(tt.buys)*float64(tt.buys-1)

			stop := math.Min(tt.first, tt.last) / 2
			p := TradeParameters{
				AvailableAmount:   1000,
				FirstBuyPrice:     tt.first,
				LastBuyPrice:      price(tt.last),
				StopLossPrice:     stop,
				NumberOfPositions: 2,
				TotalBuys:         tt.buys,
				RiskPercentage:    2,
				BuyPercentages:    pcts,
			}

			res, err := Compute(p, Options{PercentageTolerance: 1e-9})
			require.NoError(t, err)
			require.Len(t, res.LimitOrders, tt.buys)

			interval := (tt.last - tt.first) / float64(tt.buys-1)
			assert.InDelta(t, tt.first, res.LimitOrders[0].Price, 1e-9)
			assert.InDelta(t, tt.last, res.LimitOrders[tt.buys-1].Price, 1e-9)
			for i := 1; i < len(res.LimitOrders); i++ {
				assert.InDelta(t, interval, res.LimitOrders[i].Price-res.LimitOrders[i-1].Price, 1e-9)
			}
			assert.InDelta(t, 100.0, res.PercentageSum(), 1e-9)
		})
	}
}

func TestCompute_RiskScaling(t *testing.T) {
	for _, positions := range []int{1, 2, 4, 7} {
		p := threeBuyLadder()
		p.NumberOfPositions = positions

		res, err := Compute(p, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, res.RiskAmountPerPosition*float64(positions), res.TotalRiskAmount)
		assert.InDelta(t, p.AvailableAmount/float64(positions), res.InvestmentPerPosition, 1e-9)
	}
}

func TestCompute_DirectionEnforcement(t *testing.T) {
	tests := []struct {
		name     string
		position PositionType
		stop     float64
	}{
		{"long stop above entry", PositionLong, 110},
		{"long stop at entry", PositionLong, 100},
		{"short stop below entry", PositionShort, 90},
		{"short stop at entry", PositionShort, 100},
	}

	for _, variant := range []Variant{VariantManualRisk, VariantDerivedRisk} {
		for _, tt := range tests {
			t.Run(string(variant)+"/"+tt.name, func(t *testing.T) {
				p := singleBuyLong()
				p.Variant = variant
				p.PositionType = tt.position
				p.StopLossPrice = tt.stop

				_, err := Compute(p, DefaultOptions())
				require.Error(t, err)
				assert.True(t, errors.Is(err, calcerr.ErrInvalidStopLoss))
				if tt.position == PositionShort {
					assert.Contains(t, err.Error(), "greater than")
				} else {
					assert.Contains(t, err.Error(), "less than")
				}
			})
		}
	}
}

func TestCompute_ShortSingleBuy(t *testing.T) {
	p := singleBuyLong()
	p.PositionType = PositionShort
	p.StopLossPrice = 110

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, (50.0/1000.0)*(100.0/10.0), res.Leverage, 1e-12)
	assert.Equal(t, PositionShort, res.PositionType)
}

func TestCompute_MissingOrInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *TradeParameters)
		field  string
	}{
		{"NaN capital", func(p *TradeParameters) { p.AvailableAmount = math.NaN() }, "availableAmount"},
		{"zero capital", func(p *TradeParameters) { p.AvailableAmount = 0 }, "availableAmount"},
		{"NaN first", func(p *TradeParameters) { p.FirstBuyPrice = math.NaN() }, "firstBuyPrice"},
		{"negative first", func(p *TradeParameters) { p.FirstBuyPrice = -1 }, "firstBuyPrice"},
		{"infinite stop", func(p *TradeParameters) { p.StopLossPrice = math.Inf(1) }, "stopLossPrice"},
		{"NaN risk", func(p *TradeParameters) { p.RiskPercentage = math.NaN() }, "riskPercentage"},
		{"risk above 100", func(p *TradeParameters) { p.RiskPercentage = 150 }, "riskPercentage"},
		{"negative last", func(p *TradeParameters) { p.LastBuyPrice = price(-5) }, "lastBuyPrice"},
		{"bad position type", func(p *TradeParameters) { p.PositionType = "sideways" }, "positionType"},
		{"bad variant", func(p *TradeParameters) { p.Variant = "magic" }, "variant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := singleBuyLong()
			tt.mutate(&p)

			_, err := Compute(p, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, &calcerr.CalcError{Kind: calcerr.KindMissingOrInvalidField, Field: tt.field}),
				"got %v", err)
		})
	}
}

func TestCompute_DerivedVariantIgnoresRiskInput(t *testing.T) {
	p := singleBuyLong()
	p.Variant = VariantDerivedRisk
	p.RiskPercentage = math.NaN()
	p.NumberOfPositions = 4

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 25.0, res.RiskPercentage)
	assert.InDelta(t, 250.0, res.RiskAmountPerPosition, 1e-9)
	assert.InDelta(t, 1000.0, res.TotalRiskAmount, 1e-9)
}

func TestCompute_InvalidPositionCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		p := singleBuyLong()
		p.NumberOfPositions = n

		_, err := Compute(p, DefaultOptions())
		assert.True(t, errors.Is(err, calcerr.ErrInvalidPositionCount))
	}
}

// TestCompute_DerivedAverageEntry checks the money-weighted basis and the
// switch of leverage reference price to it
func TestCompute_DerivedAverageEntry(t *testing.T) {
	p := threeBuyLadder()
	p.Variant = VariantDerivedRisk

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)

	qty := 1200.0/100 + 900.0/90 + 900.0/80
	avg := 3000.0 / qty
	assert.InDelta(t, avg, res.AverageEntryPrice, 1e-9)
	assert.Equal(t, res.AverageEntryPrice, res.ReferencePrice)
	assert.InDelta(t, 100.0, res.RiskPercentage, 1e-12)
	assert.InDelta(t, (3000.0/3000.0)*(avg/(avg-70)), res.Leverage, 1e-9)

	d := res.Display()
	assert.Equal(t, FormatPrice(avg), d.AverageEntryPrice)
	assert.Equal(t, "derived", d.Variant)
}

func TestCompute_NonPositiveRiskDistanceAfterAveraging(t *testing.T) {
	p := TradeParameters{
		AvailableAmount:   1000,
		FirstBuyPrice:     100,
		LastBuyPrice:      price(50),
		StopLossPrice:     90,
		PositionType:      PositionLong,
		NumberOfPositions: 1,
		TotalBuys:         2,
		BuyPercentages:    []float64{50, 50},
		Variant:           VariantDerivedRisk,
	}

	res, err := Compute(p, DefaultOptions())
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, calcerr.ErrNonPositiveRiskDistance))

	// The manual variant measures against the first price and succeeds
	p.Variant = VariantManualRisk
	p.RiskPercentage = 5
	_, err = Compute(p, DefaultOptions())
	assert.NoError(t, err)
}

func TestCompute_ShortDerivedLadder(t *testing.T) {
	p := TradeParameters{
		AvailableAmount:   2000,
		FirstBuyPrice:     100,
		LastBuyPrice:      price(120),
		StopLossPrice:     130,
		PositionType:      PositionShort,
		NumberOfPositions: 2,
		TotalBuys:         2,
		BuyPercentages:    []float64{50, 50},
		Variant:           VariantDerivedRisk,
	}

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)

	avg := 1000.0 / (500.0/100 + 500.0/120)
	assert.InDelta(t, avg, res.AverageEntryPrice, 1e-9)
	assert.InDelta(t, (1000.0/1000.0)*(avg/(130-avg)), res.Leverage, 1e-9)
	assert.InDelta(t, 120.0, res.LimitOrders[1].Price, 1e-9)
}

func TestCompute_Idempotent(t *testing.T) {
	p := threeBuyLadder()
	p.Variant = VariantDerivedRisk

	first, err := Compute(p, DefaultOptions())
	require.NoError(t, err)
	second, err := Compute(p, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Display(), second.Display())
}

func TestCompute_DoesNotAliasInput(t *testing.T) {
	p := threeBuyLadder()
	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)

	p.BuyPercentages[0] = 90
	assert.Equal(t, 40.0, res.LimitOrders[0].Percentage)
}

func TestCompute_ZeroValueDefaults(t *testing.T) {
	p := singleBuyLong()
	p.PositionType = ""
	p.Variant = ""

	res, err := Compute(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, PositionLong, res.PositionType)
	assert.Equal(t, VariantManualRisk, res.Variant)
}
