package calculator

import (
	"github.com/shopspring/decimal"
)

// Display precision
const (
	AmountPlaces   = 2
	LeveragePlaces = 2
	PricePlaces    = 4
	QuantityPlaces = 6
)

// DisplayOrder is a LimitOrder rounded for presentation
type DisplayOrder struct {
	Price          string `json:"price"`
	AmountInvested string `json:"amount_invested"`
	Percentage     string `json:"percentage"`
	Quantity       string `json:"quantity"`
}

// DisplayResult is the rounded, string-typed view a renderer shows. It is
// derived from a CalculationResult and never fed back into calculation.
type DisplayResult struct {
	PositionType          string         `json:"position_type"`
	Variant               string         `json:"variant"`
	LimitOrders           []DisplayOrder `json:"limit_orders"`
	Leverage              string         `json:"leverage"`
	InvestmentPerPosition string         `json:"investment_per_position"`
	RiskAmountPerPosition string         `json:"risk_amount_per_position"`
	TotalRiskAmount       string         `json:"total_risk_amount"`
	RiskPercentage        string         `json:"risk_percentage"`
	AverageEntryPrice     string         `json:"average_entry_price,omitempty"`
	ReferencePrice        string         `json:"reference_price"`
	StopLossPrice         string         `json:"stop_loss_price"`
	NumberOfPositions     int            `json:"number_of_positions"`
}

// Display rounds the result: 2 places for amounts and leverage, 4 for prices.
func (r *CalculationResult) Display() DisplayResult {
	d := DisplayResult{
		PositionType:          string(r.PositionType),
		Variant:               string(r.Variant),
		LimitOrders:           make([]DisplayOrder, 0, len(r.LimitOrders)),
		Leverage:              FormatLeverage(r.Leverage),
		InvestmentPerPosition: FormatAmount(r.InvestmentPerPosition),
		RiskAmountPerPosition: FormatAmount(r.RiskAmountPerPosition),
		TotalRiskAmount:       FormatAmount(r.TotalRiskAmount),
		RiskPercentage:        FormatAmount(r.RiskPercentage),
		ReferencePrice:        FormatPrice(r.ReferencePrice),
		StopLossPrice:         FormatPrice(r.StopLossPrice),
		NumberOfPositions:     r.NumberOfPositions,
	}

	if r.HasAverageEntry() {
		d.AverageEntryPrice = FormatPrice(r.AverageEntryPrice)
	}

	for _, o := range r.LimitOrders {
		d.LimitOrders = append(d.LimitOrders, DisplayOrder{
			Price:          FormatPrice(o.Price),
			AmountInvested: FormatAmount(o.AmountInvested),
			Percentage:     FormatPercentage(o.Percentage),
			Quantity:       FormatQuantity(o.Quantity),
		})
	}

	return d
}

// Round rounds half away from zero using decimal arithmetic, avoiding the
// binary artefacts of float formatting (1.005 -> 1.01).
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(AmountPlaces)
}

func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(PricePlaces)
}

func FormatQuantity(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(QuantityPlaces)
}

// FormatLeverage renders a multiplier with the "x" suffix, e.g. "0.50x"
func FormatLeverage(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(LeveragePlaces) + "x"
}

// FormatPercentage keeps the weight as entered: 40 -> "40", 33.5 -> "33.5"
func FormatPercentage(v float64) string {
	return decimal.NewFromFloat(v).String()
}
