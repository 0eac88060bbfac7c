package calculator

import (
	"fmt"
	"strings"
)

// PositionType is the trade direction
type PositionType string

const (
	PositionLong  PositionType = "long"
	PositionShort PositionType = "short"
)

// ParsePositionType accepts "long"/"short" in any case; empty means long.
func ParsePositionType(s string) (PositionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "long", "buy":
		return PositionLong, nil
	case "short", "sell":
		return PositionShort, nil
	default:
		return "", fmt.Errorf("unknown position type %q (want long or short)", s)
	}
}

// Opposite returns the other direction
func (p PositionType) Opposite() PositionType {
	if p == PositionShort {
		return PositionLong
	}
	return PositionShort
}

func (p PositionType) String() string {
	return string(p)
}

// Variant selects how risk is sized and which price leverage is measured
// against.
//
//   - VariantManualRisk: risk percentage is user input, leverage uses the first buy price.
//   - VariantDerivedRisk: risk percentage is 100 / positions, leverage uses the
//     money-weighted average entry price of the ladder.
type Variant string

const (
	VariantManualRisk  Variant = "manual"
	VariantDerivedRisk Variant = "derived"
)

// ParseVariant accepts "manual" or "derived"; empty means manual.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual", "base":
		return VariantManualRisk, nil
	case "derived", "average", "averaged":
		return VariantDerivedRisk, nil
	default:
		return "", fmt.Errorf("unknown variant %q (want manual or derived)", s)
	}
}

func (v Variant) String() string {
	return string(v)
}

// TradeParameters is the immutable input of one calculation
type TradeParameters struct {
	AvailableAmount   float64      `json:"available_amount"`
	FirstBuyPrice     float64      `json:"first_buy_price"`
	LastBuyPrice      *float64     `json:"last_buy_price,omitempty"` // nil = single buy at FirstBuyPrice
	StopLossPrice     float64      `json:"stop_loss_price"`
	PositionType      PositionType `json:"position_type"`
	NumberOfPositions int          `json:"number_of_positions"`
	TotalBuys         int          `json:"total_buys"`
	RiskPercentage    float64      `json:"risk_percentage"` // ignored by VariantDerivedRisk
	BuyPercentages    []float64    `json:"buy_percentages"`
	Variant           Variant      `json:"variant"`
}

// HasLadder reports whether a last buy price was supplied
func (p TradeParameters) HasLadder() bool {
	return p.LastBuyPrice != nil
}

// Options tune validation. The zero value is the strict behaviour.
type Options struct {
	// PercentageTolerance is the allowed absolute deviation of the schedule
	// sum from 100. Zero requires exact equality.
	PercentageTolerance float64 `json:"percentage_tolerance" yaml:"percentage_tolerance"`
}

// DefaultOptions returns strict options
func DefaultOptions() Options {
	return Options{PercentageTolerance: 0}
}

// LimitOrder is one rung of the entry ladder
type LimitOrder struct {
	Price          float64 `json:"price"`
	AmountInvested float64 `json:"amount_invested"`
	Percentage     float64 `json:"percentage"`
	Quantity       float64 `json:"quantity"`
}

// CalculationResult holds unrounded values; use Display for presentation.
type CalculationResult struct {
	LimitOrders           []LimitOrder `json:"limit_orders"`
	InvestmentPerPosition float64      `json:"investment_per_position"`
	RiskAmountPerPosition float64      `json:"risk_amount_per_position"`
	TotalRiskAmount       float64      `json:"total_risk_amount"`
	Leverage              float64      `json:"leverage"`
	RiskPercentage        float64      `json:"risk_percentage"`
	AverageEntryPrice     float64      `json:"average_entry_price,omitempty"` // derived variant only
	ReferencePrice        float64      `json:"reference_price"`
	StopLossPrice         float64      `json:"stop_loss_price"`
	NumberOfPositions     int          `json:"number_of_positions"`
	PositionType          PositionType `json:"position_type"`
	Variant               Variant      `json:"variant"`
}

// HasAverageEntry reports whether AverageEntryPrice was computed
func (r *CalculationResult) HasAverageEntry() bool {
	return r.Variant == VariantDerivedRisk
}

// PercentageSum adds up the order weights
func (r *CalculationResult) PercentageSum() float64 {
	sum := 0.0
	for _, o := range r.LimitOrders {
		sum += o.Percentage
	}
	return sum
}
