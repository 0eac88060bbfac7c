package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultConsoleReporter renders reports as go-pretty tables
type DefaultConsoleReporter struct {
	plain bool
}

func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// NewPlainConsoleReporter uses ASCII borders for terminals without box
// drawing support
func NewPlainConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{plain: true}
}

func (r *DefaultConsoleReporter) style() table.Style {
	if r.plain {
		return table.StyleDefault
	}
	return table.StyleRounded
}

// Write renders the limit orders, the position summary and any warnings
func (r *DefaultConsoleReporter) Write(w io.Writer, rep Report) error {
	if rep.Result == nil {
		return fmt.Errorf("report has no result")
	}
	d := rep.Result.Display()

	orders := table.NewWriter()
	orders.SetTitle("LIMIT ORDERS")
	orders.SetStyle(r.style())
	orders.AppendHeader(table.Row{"#", "Price", "Amount", "Weight %", "Quantity"})
	for i, o := range d.LimitOrders {
		orders.AppendRow(table.Row{i + 1, o.Price, o.AmountInvested, o.Percentage, o.Quantity})
	}
	orders.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	summary := table.NewWriter()
	summary.SetTitle("POSITION SUMMARY")
	summary.SetStyle(r.style())
	summary.AppendRows([]table.Row{
		{"Position", strings.ToUpper(d.PositionType)},
		{"Variant", d.Variant},
		{"Leverage", d.Leverage},
		{"Positions", strconv.Itoa(d.NumberOfPositions)},
		{"Investment / Position", d.InvestmentPerPosition},
		{"Risk / Position", d.RiskAmountPerPosition},
		{"Risk %", d.RiskPercentage},
		{"Total Risk", d.TotalRiskAmount},
	})
	if d.AverageEntryPrice != "" {
		summary.AppendRow(table.Row{"Average Entry", d.AverageEntryPrice})
	}
	summary.AppendRow(table.Row{"Stop Loss", d.StopLossPrice})

	if a := rep.Assessment; a != nil {
		summary.AppendSeparator()
		summary.AppendRows([]table.Row{
			{"Notional / Position", calculator.FormatAmount(a.PositionNotional)},
			{"Required Margin", calculator.FormatAmount(a.RequiredMargin)},
			{"Risk Level", a.RiskLevel},
		})
		if a.LiquidationPrice > 0 {
			summary.AppendRow(table.Row{"Liquidation", calculator.FormatPrice(a.LiquidationPrice)})
		}
	}
	summary.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 16, Align: text.AlignRight},
	})

	var b strings.Builder
	b.WriteString(orders.Render())
	b.WriteString("\n\n")
	b.WriteString(summary.Render())
	b.WriteString("\n")

	if rep.Assessment != nil {
		for _, warning := range rep.Assessment.Warnings {
			fmt.Fprintf(&b, "⚠️  %s\n", warning)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
