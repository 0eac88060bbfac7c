package calculator

import (
	"fmt"
	"math"

	calcerr "github.com/ducminhle1904/dca-calculator/internal/errors"
)

const fullSchedule = 100.0

// Engine computes DCA ladders with fixed validation options
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine's validation options
func (e *Engine) Options() Options {
	return e.opts
}

// Compute runs one calculation with the engine's options
func (e *Engine) Compute(params TradeParameters) (*CalculationResult, error) {
	return Compute(params, e.opts)
}

// Compute validates params and builds the limit order ladder, risk amounts
// and the leverage needed to cap the loss at stop-loss to the risk budget.
//
// Formula:
//
//	investment = available / positions
//	risk       = riskPercent / 100 * available
//	leverage   = (risk / investment) * (ref / |ref - stop|)
//
// ref is the first buy price for VariantManualRisk and the average entry
// price for VariantDerivedRisk. Every error is a *errors.CalcError and no
// partial result is returned with it.
func Compute(params TradeParameters, opts Options) (*CalculationResult, error) {
	p, err := normalize(params)
	if err != nil {
		return nil, err
	}

	if err := validateNumerics(p); err != nil {
		return nil, err
	}
	if p.NumberOfPositions < 1 {
		return nil, calcerr.NewInvalidPositionCount(p.NumberOfPositions)
	}
	if err := validateStopLoss(p.PositionType, p.StopLossPrice, p.FirstBuyPrice, "First Buy Price"); err != nil {
		return nil, err
	}
	if err := validateSchedule(p.BuyPercentages, p.TotalBuys, opts.PercentageTolerance); err != nil {
		return nil, err
	}

	positions := float64(p.NumberOfPositions)
	investment := p.AvailableAmount / positions

	riskPercent := p.RiskPercentage
	if p.Variant == VariantDerivedRisk {
		riskPercent = fullSchedule / positions
	}
	riskAmount := riskPercent / 100 * p.AvailableAmount

	orders := buildLadder(p, investment)

	result := &CalculationResult{
		LimitOrders:           orders,
		InvestmentPerPosition: investment,
		RiskAmountPerPosition: riskAmount,
		TotalRiskAmount:       riskAmount * positions,
		RiskPercentage:        riskPercent,
		StopLossPrice:         p.StopLossPrice,
		NumberOfPositions:     p.NumberOfPositions,
		PositionType:          p.PositionType,
		Variant:               p.Variant,
	}

	ref := p.FirstBuyPrice
	if p.Variant == VariantDerivedRisk {
		result.AverageEntryPrice = averageEntryPrice(orders, investment)
		ref = result.AverageEntryPrice
	}
	result.ReferencePrice = ref

	distance := ref - p.StopLossPrice
	if p.PositionType == PositionShort {
		distance = p.StopLossPrice - ref
	}
	if distance <= 0 || math.IsNaN(distance) {
		return nil, calcerr.NewNonPositiveRiskDistance(ref, p.StopLossPrice, distance)
	}

	result.Leverage = (riskAmount / investment) * (ref / distance)
	return result, nil
}

// normalize fills defaults, collapses a missing last price to a single buy
// and copies the schedule so the caller's slice is never aliased.
func normalize(params TradeParameters) (TradeParameters, error) {
	p := params

	if p.PositionType == "" {
		p.PositionType = PositionLong
	}
	if p.PositionType != PositionLong && p.PositionType != PositionShort {
		return p, calcerr.NewMissingField("positionType", string(p.PositionType))
	}
	if p.Variant == "" {
		p.Variant = VariantManualRisk
	}
	if p.Variant != VariantManualRisk && p.Variant != VariantDerivedRisk {
		return p, calcerr.NewMissingField("variant", string(p.Variant))
	}

	if p.LastBuyPrice != nil && !isFinite(*p.LastBuyPrice) {
		p.LastBuyPrice = nil
	}

	if !p.HasLadder() || p.TotalBuys == 1 {
		p.TotalBuys = 1
		p.BuyPercentages = []float64{fullSchedule}
		return p, nil
	}

	p.BuyPercentages = append([]float64(nil), params.BuyPercentages...)
	return p, nil
}

func validateNumerics(p TradeParameters) error {
	if !isFinite(p.AvailableAmount) {
		return calcerr.NewMissingField("availableAmount", formatNonFinite(p.AvailableAmount))
	}
	if p.AvailableAmount <= 0 {
		return calcerr.NewInvalidField("availableAmount", p.AvailableAmount, "must be positive")
	}

	if !isFinite(p.FirstBuyPrice) {
		return calcerr.NewMissingField("firstBuyPrice", formatNonFinite(p.FirstBuyPrice))
	}
	if p.FirstBuyPrice <= 0 {
		return calcerr.NewInvalidField("firstBuyPrice", p.FirstBuyPrice, "must be positive")
	}

	if p.LastBuyPrice != nil && *p.LastBuyPrice <= 0 {
		return calcerr.NewInvalidField("lastBuyPrice", *p.LastBuyPrice, "must be positive")
	}

	if !isFinite(p.StopLossPrice) {
		return calcerr.NewMissingField("stopLossPrice", formatNonFinite(p.StopLossPrice))
	}
	if p.StopLossPrice < 0 {
		return calcerr.NewInvalidField("stopLossPrice", p.StopLossPrice, "must not be negative")
	}

	if p.Variant == VariantManualRisk {
		if !isFinite(p.RiskPercentage) {
			return calcerr.NewMissingField("riskPercentage", formatNonFinite(p.RiskPercentage))
		}
		if p.RiskPercentage <= 0 || p.RiskPercentage > 100 {
			return calcerr.NewInvalidField("riskPercentage", p.RiskPercentage, "must be within (0, 100]")
		}
	}

	return nil
}

func validateStopLoss(positionType PositionType, stopLoss, reference float64, against string) error {
	switch positionType {
	case PositionShort:
		if stopLoss <= reference {
			return calcerr.NewInvalidStopLoss(string(positionType), stopLoss, reference, against)
		}
	default:
		if stopLoss >= reference {
			return calcerr.NewInvalidStopLoss(string(positionType), stopLoss, reference, against)
		}
	}
	return nil
}

// validateSchedule checks entries, then the sum, then the count. The sum
// check comes first so a short list that also misses 100 reports the sum.
func validateSchedule(percentages []float64, totalBuys int, tolerance float64) error {
	sum := 0.0
	for i, pct := range percentages {
		if !isFinite(pct) || pct < 0 {
			return calcerr.NewInvalidPercentageEntry(i, fmt.Sprintf("%g", pct))
		}
		sum += pct
	}

	if math.Abs(sum-fullSchedule) > tolerance {
		return calcerr.NewScheduleSumMismatch(fullSchedule, sum)
	}

	if totalBuys < 1 || len(percentages) != totalBuys {
		return calcerr.NewScheduleLengthMismatch(totalBuys, len(percentages))
	}

	return nil
}

// buildLadder spaces prices linearly from first to last. The interval is
// negative when accumulating into a falling price, positive when rising.
func buildLadder(p TradeParameters, investment float64) []LimitOrder {
	interval := 0.0
	if p.TotalBuys > 1 {
		interval = (*p.LastBuyPrice - p.FirstBuyPrice) / float64(p.TotalBuys-1)
	}

	orders := make([]LimitOrder, 0, p.TotalBuys)
	for i := 0; i < p.TotalBuys; i++ {
		price := p.FirstBuyPrice + float64(i)*interval
		amount := investment * p.BuyPercentages[i] / 100
		orders = append(orders, LimitOrder{
			Price:          price,
			AmountInvested: amount,
			Percentage:     p.BuyPercentages[i],
			Quantity:       amount / price,
		})
	}
	return orders
}

// averageEntryPrice is the money-weighted entry: capital spent divided by
// units acquired, so cheaper fills pull the basis down.
func averageEntryPrice(orders []LimitOrder, investment float64) float64 {
	totalQty := 0.0
	for _, o := range orders {
		totalQty += o.Quantity
	}
	if totalQty == 0 {
		return 0
	}
	return investment / totalQty
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatNonFinite(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%g", v)
}
