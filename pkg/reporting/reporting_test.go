package reporting

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/leverage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport(t *testing.T, variant calculator.Variant) Report {
	t.Helper()
	last := 80.0
	res, err := calculator.Compute(calculator.TradeParameters{
		AvailableAmount:   3000,
		FirstBuyPrice:     100,
		LastBuyPrice:      &last,
		StopLossPrice:     70,
		RiskPercentage:    5,
		NumberOfPositions: 1,
		TotalBuys:         3,
		BuyPercentages:    []float64{40, 30, 30},
		Variant:           variant,
	}, calculator.DefaultOptions())
	require.NoError(t, err)

	return Report{
		ID:          "calc-1",
		GeneratedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Result:      res,
		Assessment:  leverage.NewCalculator().Assess(res),
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		".csv":  FormatCSV,
		"excel": FormatXLSX,
		"xlsx":  FormatXLSX,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)

	assert.Equal(t, "txt", FormatTable.Extension())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDefaultConsoleReporter().Write(&buf, sampleReport(t, calculator.VariantManualRisk)))

	out := buf.String()
	assert.Contains(t, out, "LIMIT ORDERS")
	assert.Contains(t, out, "100.0000")
	assert.Contains(t, out, "90.0000")
	assert.Contains(t, out, "80.0000")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "0.17x")
	assert.Contains(t, out, "LONG")
	assert.NotContains(t, out, "Average Entry")
	assert.Contains(t, out, "╭", "rounded style by default")

	buf.Reset()
	require.NoError(t, NewPlainConsoleReporter().Write(&buf, sampleReport(t, calculator.VariantDerivedRisk)))
	assert.Contains(t, buf.String(), "Average Entry")
	assert.NotContains(t, buf.String(), "╭")
}

func TestCSVReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDefaultCSVReporter().Write(&buf, sampleReport(t, calculator.VariantManualRisk)))

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Order", "Price", "Amount_Invested", "Weight_%", "Quantity"}, records[0])
	assert.Equal(t, []string{"1", "100.0000", "1200.00", "40", "12.000000"}, records[1])
	assert.Equal(t, []string{"3", "80.0000", "900.00", "30", "11.250000"}, records[3])
	assert.Equal(t, []string{"Summary", "Value"}, records[4])

	summary := map[string]string{}
	for _, rec := range records[5:] {
		summary[rec[0]] = rec[1]
	}
	assert.Equal(t, "0.17x", summary["Leverage"])
	assert.Equal(t, "150.00", summary["Total_Risk"])
	assert.Equal(t, "long", summary["Position_Type"])
	assert.Equal(t, "LOW", summary["Risk_Level"])
}

func TestJSONFormatter(t *testing.T) {
	rep := sampleReport(t, calculator.VariantDerivedRisk)
	data, err := NewDefaultJSONFormatter().Format(rep)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "calc-1", doc["id"])

	result := doc["result"].(map[string]interface{})
	assert.Equal(t, "derived", result["variant"])
	assert.NotEmpty(t, result["average_entry_price"])
	assert.Len(t, result["limit_orders"], 3)
	assert.Contains(t, doc, "assessment")
}

func TestExcelReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDefaultExcelReporter().Write(&buf, sampleReport(t, calculator.VariantManualRisk)))

	fx, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{ordersSheet, summarySheet}, fx.GetSheetList())

	rows, err := fx.GetRows(ordersSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Order", rows[0][0])
	assert.Equal(t, []string{"2", "90", "900", "0.3", "10"}, rows[2])

	summary, err := fx.GetRows(summarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	labels := map[string]string{}
	for _, row := range summary[1:] {
		labels[row[0]] = row[1]
	}
	assert.Equal(t, "LONG", labels["Position Type"])
	assert.Equal(t, "0.17x", labels["Leverage"])
	assert.Equal(t, "calc-1", labels["Calculation ID"])
}

func TestOutputPath(t *testing.T) {
	rep := sampleReport(t, calculator.VariantDerivedRisk)
	assert.Equal(t,
		filepath.Join("out", "dca_derived_long_20261015_093000.xlsx"),
		DefaultOutputPath("out", rep, FormatXLSX))
	assert.Equal(t,
		filepath.Join("results", "dca_unknown_unknown_20261015_093000.json"),
		DefaultOutputPath("", Report{GeneratedAt: rep.GeneratedAt}, FormatJSON))
}

func TestReportingManager_Export(t *testing.T) {
	dir := t.TempDir()
	m := NewReportingManager(ReportingConfig{OutputDirectory: filepath.Join(dir, "nested")})
	rep := sampleReport(t, calculator.VariantManualRisk)

	path, err := m.Export(rep, FormatCSV, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join(dir, "nested")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Amount_Invested")

	explicit := filepath.Join(dir, "report.json")
	got, err := m.Export(rep, FormatJSON, explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestReporter_RejectsEmptyReport(t *testing.T) {
	r := NewDefaultReporter()
	for _, f := range []Format{FormatTable, FormatJSON, FormatCSV, FormatXLSX} {
		_, err := r.Render(Report{}, f)
		assert.Error(t, err, f)
	}
	_, err := r.WriterFor("pdf")
	assert.Error(t, err)
}
