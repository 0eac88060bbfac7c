package leverage

import (
	"fmt"
	"math"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
)

// Risk levels reported by an Assessment
const (
	RiskLow      = "LOW"
	RiskMedium   = "MEDIUM"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// Limits bounds the leverage an exchange will accept
type Limits struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// DefaultLimits returns spot (1x) to the common perpetual maximum (125x)
func DefaultLimits() Limits {
	return Limits{Min: 1.0, Max: 125.0}
}

// Calculator evaluates a computed leverage against exchange limits
type Calculator struct {
	limits Limits
}

// NewCalculator creates a leverage calculator with default limits
func NewCalculator() *Calculator {
	return &Calculator{limits: DefaultLimits()}
}

// NewCalculatorWithLimits creates a leverage calculator with custom limits
func NewCalculatorWithLimits(limits Limits) *Calculator {
	return &Calculator{limits: limits}
}

// Limits returns the configured bounds
func (c *Calculator) Limits() Limits {
	return c.limits
}

// Clamp returns leverage bounded to the configured limits
func (c *Calculator) Clamp(leverage float64) float64 {
	return math.Min(math.Max(leverage, c.limits.Min), c.limits.Max)
}

// RequiredMargin calculates the margin required for a position with given leverage
// Formula: Required Margin = Position Value / Leverage
//
// Example: $100 position with 10x leverage = $10 margin required
func (c *Calculator) RequiredMargin(positionValue, leverage float64) float64 {
	if leverage <= 0 {
		return positionValue
	}
	return positionValue / c.Clamp(leverage)
}

// Validate checks that leverage is usable on the exchange
func (c *Calculator) Validate(leverage float64) error {
	if leverage <= 0 {
		return fmt.Errorf("leverage must be greater than 0, got: %.2f", leverage)
	}
	if leverage > c.limits.Max {
		return fmt.Errorf("leverage %.2fx exceeds exchange maximum %.0fx", leverage, c.limits.Max)
	}
	return nil
}

// LiquidationPrice approximates where a leveraged position is liquidated.
// Simplified: exchanges add maintenance margin tiers and fees, represented
// here by a 0.9 factor on the initial margin.
//
//	long:  entry * (1 - 0.9/leverage)
//	short: entry * (1 + 0.9/leverage)
//
// Returns 0 when leverage <= 1 (no liquidation).
func LiquidationPrice(entryPrice, leverage float64, positionType calculator.PositionType) float64 {
	if leverage <= 1 {
		return 0
	}

	factor := 0.9 / leverage
	if positionType == calculator.PositionShort {
		return entryPrice * (1.0 + factor)
	}
	return entryPrice * (1.0 - factor)
}

// Assessment is the safety view of a calculation result
type Assessment struct {
	Leverage              float64  `json:"leverage"`
	EffectiveLeverage     float64  `json:"effective_leverage"`
	PositionNotional      float64  `json:"position_notional"`
	RequiredMargin        float64  `json:"required_margin"`
	LiquidationPrice      float64  `json:"liquidation_price,omitempty"`
	DistanceToLiquidation float64  `json:"distance_to_liquidation,omitempty"` // fraction of reference price
	DistanceToStop        float64  `json:"distance_to_stop"`                  // fraction of reference price
	LiquidatesBeforeStop  bool     `json:"liquidates_before_stop"`
	RiskLevel             string   `json:"risk_level"`
	Warnings              []string `json:"warnings"`
}

// Assess computes notional, margin and liquidation figures for one
// position slot of res and flags configurations where the stop-loss cannot
// protect the position.
func (c *Calculator) Assess(res *calculator.CalculationResult) *Assessment {
	a := &Assessment{
		Leverage: res.Leverage,
		Warnings: make([]string, 0),
	}

	// Notional that loses exactly the risk budget at the stop
	a.PositionNotional = res.InvestmentPerPosition * res.Leverage
	a.RequiredMargin = c.RequiredMargin(a.PositionNotional, res.Leverage)
	if a.RequiredMargin > 0 {
		a.EffectiveLeverage = a.PositionNotional / a.RequiredMargin
	}

	ref := res.ReferencePrice
	if ref > 0 {
		a.DistanceToStop = math.Abs(ref-res.StopLossPrice) / ref
	}

	a.LiquidationPrice = LiquidationPrice(ref, c.Clamp(res.Leverage), res.PositionType)
	if a.LiquidationPrice > 0 && ref > 0 {
		a.DistanceToLiquidation = math.Abs(ref-a.LiquidationPrice) / ref
		if res.PositionType == calculator.PositionShort {
			a.LiquidatesBeforeStop = a.LiquidationPrice <= res.StopLossPrice
		} else {
			a.LiquidatesBeforeStop = a.LiquidationPrice >= res.StopLossPrice
		}
	}

	a.RiskLevel = c.riskLevel(a)
	c.addWarnings(a)
	return a
}

func (c *Calculator) riskLevel(a *Assessment) string {
	if a.LiquidatesBeforeStop || a.Leverage > c.limits.Max {
		return RiskCritical
	}
	if a.Leverage > 50 || (a.LiquidationPrice > 0 && a.DistanceToLiquidation < 0.1) {
		return RiskHigh
	}
	if a.Leverage > 20 || (a.LiquidationPrice > 0 && a.DistanceToLiquidation < 0.2) {
		return RiskMedium
	}
	return RiskLow
}

func (c *Calculator) addWarnings(a *Assessment) {
	if err := c.Validate(a.Leverage); err != nil {
		a.Warnings = append(a.Warnings,
			fmt.Sprintf("%v; margin is computed at %.0fx", err, c.Clamp(a.Leverage)))
	}

	if a.Leverage < c.limits.Min {
		a.Warnings = append(a.Warnings,
			fmt.Sprintf("Leverage %.2fx is below %.0fx: only %.0f%% of the allocated capital needs to be deployed", a.Leverage, c.limits.Min, a.Leverage*100))
	}

	if a.LiquidatesBeforeStop {
		a.Warnings = append(a.Warnings,
			fmt.Sprintf("Estimated liquidation at %.4f is reached before the stop loss", a.LiquidationPrice))
	} else if a.LiquidationPrice > 0 && a.DistanceToLiquidation < 0.15 {
		a.Warnings = append(a.Warnings,
			fmt.Sprintf("Close to liquidation: %.1f%% price move", a.DistanceToLiquidation*100))
	}
}
