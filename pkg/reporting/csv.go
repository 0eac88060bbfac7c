package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// Write emits one row per limit order, a blank line, then a two-column
// summary block
func (r *DefaultCSVReporter) Write(w io.Writer, rep Report) error {
	if rep.Result == nil {
		return fmt.Errorf("report has no result")
	}
	d := rep.Result.Display()

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{
		"Order",
		"Price",
		"Amount_Invested",
		"Weight_%",
		"Quantity",
	}); err != nil {
		return err
	}

	for i, o := range d.LimitOrders {
		if err := cw.Write([]string{
			strconv.Itoa(i + 1),
			o.Price,
			o.AmountInvested,
			o.Percentage,
			o.Quantity,
		}); err != nil {
			return err
		}
	}

	summary := [][]string{
		{},
		{"Summary", "Value"},
		{"Position_Type", d.PositionType},
		{"Variant", d.Variant},
		{"Leverage", d.Leverage},
		{"Number_Of_Positions", strconv.Itoa(d.NumberOfPositions)},
		{"Investment_Per_Position", d.InvestmentPerPosition},
		{"Risk_Per_Position", d.RiskAmountPerPosition},
		{"Risk_%", d.RiskPercentage},
		{"Total_Risk", d.TotalRiskAmount},
		{"Reference_Price", d.ReferencePrice},
		{"Stop_Loss", d.StopLossPrice},
	}
	if d.AverageEntryPrice != "" {
		summary = append(summary, []string{"Average_Entry", d.AverageEntryPrice})
	}
	if a := rep.Assessment; a != nil {
		summary = append(summary,
			[]string{"Risk_Level", a.RiskLevel},
			[]string{"Required_Margin", calculator.FormatAmount(a.RequiredMargin)},
		)
		if a.LiquidationPrice > 0 {
			summary = append(summary, []string{"Liquidation_Price", calculator.FormatPrice(a.LiquidationPrice)})
		}
		for _, warning := range a.Warnings {
			summary = append(summary, []string{"Warning", warning})
		}
	}

	if err := cw.WriteAll(summary); err != nil {
		return err
	}
	return cw.Error()
}
