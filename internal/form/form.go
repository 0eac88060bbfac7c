// Package form turns raw user-entered fields into calculator parameters and
// keeps the submit/clear/toggle lifecycle of a calculator form.
package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	calcerr "github.com/ducminhle1904/dca-calculator/internal/errors"
)

// Field names, as used by Session.Set and in error messages
const (
	FieldAvailableAmount   = "availableAmount"
	FieldFirstBuyPrice     = "firstBuyPrice"
	FieldLastBuyPrice      = "lastBuyPrice"
	FieldStopLossPrice     = "stopLossPrice"
	FieldRiskPercentage    = "riskPercentage"
	FieldNumberOfPositions = "numberOfPositions"
	FieldTotalBuys         = "totalBuys"
	FieldBuyPercentages    = "buyPercentages"
)

// Fields lists the settable fields in display order
var Fields = []string{
	FieldAvailableAmount,
	FieldFirstBuyPrice,
	FieldLastBuyPrice,
	FieldStopLossPrice,
	FieldRiskPercentage,
	FieldNumberOfPositions,
	FieldTotalBuys,
	FieldBuyPercentages,
}

// Input is the raw form state: every value exactly as typed.
type Input struct {
	AvailableAmount   string `json:"availableAmount" yaml:"available_amount"`
	FirstBuyPrice     string `json:"firstBuyPrice" yaml:"first_buy_price"`
	LastBuyPrice      string `json:"lastBuyPrice" yaml:"last_buy_price"`
	StopLossPrice     string `json:"stopLossPrice" yaml:"stop_loss_price"`
	RiskPercentage    string `json:"riskPercentage" yaml:"risk_percentage"`
	NumberOfPositions string `json:"numberOfPositions" yaml:"number_of_positions"`
	TotalBuys         string `json:"totalBuys" yaml:"total_buys"`
	BuyPercentages    string `json:"buyPercentages" yaml:"buy_percentages"`
	Short             bool   `json:"short" yaml:"short"`
}

// DefaultInput returns the form defaults: 5% risk, 4 positions, 3 buys
// split 40/30/30, prices and capital empty.
func DefaultInput() Input {
	return Input{
		RiskPercentage:    "5",
		NumberOfPositions: "4",
		TotalBuys:         "3",
		BuyPercentages:    "40,30,30",
	}
}

// Get returns a field value by name
func (in Input) Get(field string) (string, error) {
	switch field {
	case FieldAvailableAmount:
		return in.AvailableAmount, nil
	case FieldFirstBuyPrice:
		return in.FirstBuyPrice, nil
	case FieldLastBuyPrice:
		return in.LastBuyPrice, nil
	case FieldStopLossPrice:
		return in.StopLossPrice, nil
	case FieldRiskPercentage:
		return in.RiskPercentage, nil
	case FieldNumberOfPositions:
		return in.NumberOfPositions, nil
	case FieldTotalBuys:
		return in.TotalBuys, nil
	case FieldBuyPercentages:
		return in.BuyPercentages, nil
	}
	return "", fmt.Errorf("unknown field %q", field)
}

// With returns a copy of in with field set to value
func (in Input) With(field, value string) (Input, error) {
	switch field {
	case FieldAvailableAmount:
		in.AvailableAmount = value
	case FieldFirstBuyPrice:
		in.FirstBuyPrice = value
	case FieldLastBuyPrice:
		in.LastBuyPrice = value
	case FieldStopLossPrice:
		in.StopLossPrice = value
	case FieldRiskPercentage:
		in.RiskPercentage = value
	case FieldNumberOfPositions:
		in.NumberOfPositions = value
	case FieldTotalBuys:
		in.TotalBuys = value
	case FieldBuyPercentages:
		in.BuyPercentages = value
	default:
		return in, fmt.Errorf("unknown field %q (fields: %s)", field, strings.Join(Fields, ", "))
	}
	return in, nil
}

// UnmarshalJSON accepts each field as a string or a JSON number. Keys that
// are absent keep their current value; unknown keys are an error.
func (in *Input) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	next := *in
	for key, msg := range raw {
		if key == "short" {
			if err := json.Unmarshal(msg, &next.Short); err != nil {
				return fmt.Errorf("short: %w", err)
			}
			continue
		}

		value, err := textOrNumber(msg)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if next, err = next.With(key, value); err != nil {
			return err
		}
	}

	*in = next
	return nil
}

func textOrNumber(msg json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", fmt.Errorf("want a string or a number, got %s", msg)
	}
	return n.String(), nil
}

// PositionType returns the direction selected by the Short flag
func (in Input) PositionType() calculator.PositionType {
	if in.Short {
		return calculator.PositionShort
	}
	return calculator.PositionLong
}

// Collect parses in into TradeParameters for the given variant.
//
// An empty or unparseable last buy price means a single buy; the schedule
// and buy count are then not parsed at all. The risk percentage is only
// required by the manual variant.
//
// Schedule problems are left for the engine to report so they rank after
// the position count and stop-loss checks: an unparseable buy count becomes
// zero and an unparseable entry becomes NaN.
func Collect(in Input, variant calculator.Variant) (calculator.TradeParameters, error) {
	p := calculator.TradeParameters{
		PositionType: in.PositionType(),
		Variant:      variant,
	}

	var err error
	if p.AvailableAmount, err = parseRequiredFloat(FieldAvailableAmount, in.AvailableAmount); err != nil {
		return p, err
	}
	if p.FirstBuyPrice, err = parseRequiredFloat(FieldFirstBuyPrice, in.FirstBuyPrice); err != nil {
		return p, err
	}
	if p.StopLossPrice, err = parseRequiredFloat(FieldStopLossPrice, in.StopLossPrice); err != nil {
		return p, err
	}
	if variant != calculator.VariantDerivedRisk {
		if p.RiskPercentage, err = parseRequiredFloat(FieldRiskPercentage, in.RiskPercentage); err != nil {
			return p, err
		}
	}
	if p.NumberOfPositions, err = parseRequiredInt(FieldNumberOfPositions, in.NumberOfPositions); err != nil {
		return p, err
	}

	last, ok := parseFloat(in.LastBuyPrice)
	if !ok {
		p.TotalBuys = 1
		p.BuyPercentages = []float64{100}
		return p, nil
	}
	p.LastBuyPrice = &last

	p.TotalBuys, _ = parseRequiredInt(FieldTotalBuys, in.TotalBuys)
	if p.TotalBuys == 1 {
		p.BuyPercentages = []float64{100}
		return p, nil
	}
	p.BuyPercentages = ParsePercentages(in.BuyPercentages)

	return p, nil
}

// ParsePercentages splits a comma separated schedule ("40, 30,30").
// Entries that are not numbers come back as NaN; the engine rejects them.
func ParsePercentages(raw string) []float64 {
	if strings.TrimSpace(raw) == "" {
		return []float64{}
	}

	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, ok := parseFloat(part)
		if !ok {
			v = math.NaN()
		}
		out = append(out, v)
	}
	return out
}

func parseFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseRequiredFloat(field, raw string) (float64, error) {
	v, ok := parseFloat(raw)
	if !ok {
		return 0, calcerr.NewMissingField(field, strings.TrimSpace(raw))
	}
	return v, nil
}

// parseRequiredInt accepts "4" and "4.0"; decimals are truncated toward zero.
func parseRequiredInt(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, ok := parseFloat(s)
	if !ok || math.Abs(v) > math.MaxInt32 {
		return 0, calcerr.NewMissingField(field, s)
	}
	return int(math.Trunc(v)), nil
}
