package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/xuri/excelize/v2"
)

const (
	ordersSheet  = "Limit Orders"
	summarySheet = "Summary"
)

var (
	priceNumFmt    = "#,##0.0000"
	quantityNumFmt = "0.000000"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// Write builds the workbook and streams it to w
func (r *DefaultExcelReporter) Write(w io.Writer, rep Report) error {
	if rep.Result == nil {
		return fmt.Errorf("report has no result")
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), ordersSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return fmt.Errorf("creating excel styles: %w", err)
	}

	if err := r.WriteOrdersSheet(fx, ordersSheet, rep, styles); err != nil {
		return err
	}
	if err := r.WriteSummarySheet(fx, summarySheet, rep, styles); err != nil {
		return err
	}

	return fx.Write(w)
}

func border(color string) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: color, Style: 1},
		{Type: "right", Color: color, Style: 1},
		{Type: "bottom", Color: color, Style: 1},
	}
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Dark slate header, white bold text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	styles.PriceStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &priceNumFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	styles.QuantityStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &quantityNumFmt,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	// Light blue label column
	styles.LabelStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"E6F3FF"},
			Pattern: 1,
		},
		Border: border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	styles.WarningStyle, err = fx.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Color: "FF0000"},
		Border: border("E0E0E0"),
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// WriteOrdersSheet writes one row per rung, first buy first
func (r *DefaultExcelReporter) WriteOrdersSheet(fx *excelize.File, sheet string, rep Report, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 8)
	fx.SetColWidth(sheet, "B", "B", 16)
	fx.SetColWidth(sheet, "C", "C", 16)
	fx.SetColWidth(sheet, "D", "D", 12)
	fx.SetColWidth(sheet, "E", "E", 16)

	headers := []string{"Order", "Price", "Amount Invested", "Weight", "Quantity"}
	for i, h := range headers {
		if err := fx.SetCellValue(sheet, cell(i+1, 1), h); err != nil {
			return err
		}
	}
	if err := fx.SetCellStyle(sheet, "A1", cell(len(headers), 1), styles.HeaderStyle); err != nil {
		return err
	}

	for i, o := range rep.Result.LimitOrders {
		row := i + 2
		values := []struct {
			value interface{}
			style int
		}{
			{i + 1, styles.BaseStyle},
			{calculator.Round(o.Price, calculator.PricePlaces), styles.PriceStyle},
			{calculator.Round(o.AmountInvested, calculator.AmountPlaces), styles.CurrencyStyle},
			{o.Percentage / 100, styles.PercentStyle},
			{calculator.Round(o.Quantity, calculator.QuantityPlaces), styles.QuantityStyle},
		}
		for col, v := range values {
			ref := cell(col+1, row)
			if err := fx.SetCellValue(sheet, ref, v.value); err != nil {
				return err
			}
			if err := fx.SetCellStyle(sheet, ref, ref, v.style); err != nil {
				return err
			}
		}
	}

	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteSummarySheet writes label/value pairs for the position and the
// leverage assessment
func (r *DefaultExcelReporter) WriteSummarySheet(fx *excelize.File, sheet string, rep Report, styles ExcelStyles) error {
	fx.SetColWidth(sheet, "A", "A", 26)
	fx.SetColWidth(sheet, "B", "B", 60)

	res := rep.Result
	type line struct {
		label string
		value interface{}
		style int
	}

	lines := []line{
		{"Position Type", strings.ToUpper(res.PositionType.String()), styles.BaseStyle},
		{"Variant", res.Variant.String(), styles.BaseStyle},
		{"Leverage", calculator.FormatLeverage(res.Leverage), styles.BaseStyle},
		{"Number of Positions", res.NumberOfPositions, styles.BaseStyle},
		{"Investment per Position", calculator.Round(res.InvestmentPerPosition, calculator.AmountPlaces), styles.CurrencyStyle},
		{"Risk per Position", calculator.Round(res.RiskAmountPerPosition, calculator.AmountPlaces), styles.CurrencyStyle},
		{"Risk Percentage", res.RiskPercentage / 100, styles.PercentStyle},
		{"Total Risk", calculator.Round(res.TotalRiskAmount, calculator.AmountPlaces), styles.CurrencyStyle},
		{"Reference Price", calculator.Round(res.ReferencePrice, calculator.PricePlaces), styles.PriceStyle},
		{"Stop Loss", calculator.Round(res.StopLossPrice, calculator.PricePlaces), styles.PriceStyle},
	}
	if res.HasAverageEntry() {
		lines = append(lines, line{"Average Entry", calculator.Round(res.AverageEntryPrice, calculator.PricePlaces), styles.PriceStyle})
	}
	if a := rep.Assessment; a != nil {
		lines = append(lines,
			line{"Notional per Position", calculator.Round(a.PositionNotional, calculator.AmountPlaces), styles.CurrencyStyle},
			line{"Required Margin", calculator.Round(a.RequiredMargin, calculator.AmountPlaces), styles.CurrencyStyle},
			line{"Risk Level", a.RiskLevel, styles.BaseStyle},
		)
		if a.LiquidationPrice > 0 {
			lines = append(lines, line{"Liquidation Price", calculator.Round(a.LiquidationPrice, calculator.PricePlaces), styles.PriceStyle})
		}
		for _, warning := range a.Warnings {
			lines = append(lines, line{"Warning", warning, styles.WarningStyle})
		}
	}
	if rep.ID != "" {
		lines = append(lines, line{"Calculation ID", rep.ID, styles.BaseStyle})
	}

	if err := fx.SetCellValue(sheet, "A1", "Metric"); err != nil {
		return err
	}
	if err := fx.SetCellValue(sheet, "B1", "Value"); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", styles.HeaderStyle); err != nil {
		return err
	}

	for i, l := range lines {
		row := i + 2
		if err := fx.SetCellValue(sheet, cell(1, row), l.label); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell(1, row), cell(1, row), styles.LabelStyle); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell(2, row), l.value); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell(2, row), cell(2, row), l.style); err != nil {
			return err
		}
	}
	return nil
}
