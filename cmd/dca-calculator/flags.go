package main

import (
	"flag"
	"strings"

	"github.com/ducminhle1904/dca-calculator/cmd/common"
	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/form"
	"github.com/ducminhle1904/dca-calculator/pkg/reporting"
)

// CalcFlags holds all command line flags for the calculator command.
// Field values stay raw strings so they go through the same parsing as
// interactive input; an empty flag falls back to the configured default.
type CalcFlags struct {
	// Trade inputs
	Capital     *string
	First       *string
	Last        *string
	Stop        *string
	Risk        *string
	Positions   *string
	Buys        *string
	Percentages *string
	Short       *bool
	Variant     *string

	// Output options
	Format      *string
	Out         *string
	Interactive *bool

	Common *common.CommonFlags
}

func NewCalcFlags(fs *flag.FlagSet) *CalcFlags {
	return &CalcFlags{
		Capital:     fs.String("capital", "", "Available amount to allocate across positions"),
		First:       fs.String("first", "", "First buy price"),
		Last:        fs.String("last", "", "Last buy price (empty for a single buy)"),
		Stop:        fs.String("stop", "", "Stop-loss price"),
		Risk:        fs.String("risk", "", "Risk percentage of capital per position (manual variant)"),
		Positions:   fs.String("positions", "", "Number of positions the capital is split into"),
		Buys:        fs.String("buys", "", "Total buys in the ladder"),
		Percentages: fs.String("percentages", "", "Comma-separated buy weights summing to 100, e.g. 40,30,30"),
		Short:       fs.Bool("short", false, "Short position (default long)"),
		Variant:     fs.String("variant", "", "Risk variant: manual or derived (default from config)"),

		Format:      fs.String("format", "table", "Output format: table, json, csv or xlsx"),
		Out:         fs.String("out", "", "Output file (xlsx defaults to a generated path under the output directory)"),
		Interactive: fs.Bool("interactive", false, "Start an interactive form session"),

		Common: common.RegisterCommonFlags(fs),
	}
}

// Input overlays non-empty flags on defaults
func (f *CalcFlags) Input(defaults form.Input) form.Input {
	in := defaults
	overlay := map[string]*string{
		form.FieldAvailableAmount:   f.Capital,
		form.FieldFirstBuyPrice:     f.First,
		form.FieldLastBuyPrice:      f.Last,
		form.FieldStopLossPrice:     f.Stop,
		form.FieldRiskPercentage:    f.Risk,
		form.FieldNumberOfPositions: f.Positions,
		form.FieldTotalBuys:         f.Buys,
		form.FieldBuyPercentages:    f.Percentages,
	}
	for _, field := range form.Fields {
		if v := strings.TrimSpace(*overlay[field]); v != "" {
			in, _ = in.With(field, v)
		}
	}
	if *f.Short {
		in.Short = true
	}
	return in
}

// ValidateCalcFlags checks the flags that are not form fields
func ValidateCalcFlags(f *CalcFlags) error {
	v := common.NewFlagValidator()

	v.ValidateChoice("-format", strings.ToLower(strings.TrimSpace(*f.Format)), reporting.FormatNames)
	if *f.Variant != "" {
		v.ValidateChoice("-variant", strings.ToLower(strings.TrimSpace(*f.Variant)),
			[]string{string(calculator.VariantManualRisk), string(calculator.VariantDerivedRisk)})
	}
	if *f.Interactive && *f.Out != "" {
		v.AddError("-out cannot be combined with -interactive")
	}

	return v.GetError()
}

func buildUsage() *common.UsageFormatter {
	return common.NewUsageFormatter(AppName, "position sizing, limit-order ladder and leverage for DCA entries").
		AddExample("dca-calculator -capital 3000 -first 100 -stop 90 -risk 5 -positions 4",
			"Single buy, manual risk").
		AddExample("dca-calculator -capital 3000 -first 100 -last 80 -stop 70 -buys 3 -percentages 40,30,30 -positions 1",
			"Three-rung ladder").
		AddExample("dca-calculator -variant derived -capital 3000 -first 100 -last 120 -stop 130 -short -format xlsx",
			"Short ladder sized against the average entry, exported to Excel").
		AddExample("dca-calculator -interactive", "Interactive form session")
}
