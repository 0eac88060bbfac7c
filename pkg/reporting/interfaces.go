package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/leverage"
	"github.com/xuri/excelize/v2"
)

// Package reporting renders calculation results to the console and to files

// Report is one calculation ready for output. Assessment is optional.
type Report struct {
	ID          string
	GeneratedAt time.Time
	Result      *calculator.CalculationResult
	Assessment  *leverage.Assessment
}

// Format selects an output encoding
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// FormatNames lists the canonical format names
var FormatNames = []string{string(FormatTable), string(FormatJSON), string(FormatCSV), string(FormatXLSX)}

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "table", "console", "txt":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want table, json, csv or xlsx)", s)
	}
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	if f == FormatTable {
		return "txt"
	}
	return string(f)
}

// ContentType returns the MIME type used for HTTP downloads
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ReportWriter encodes a report to w
type ReportWriter interface {
	Write(w io.Writer, rep Report) error
}

// PathManager resolves output paths
type PathManager interface {
	OutputPath(dir string, rep Report, format Format) string
	EnsureDirectoryExists(path string) error
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	PercentStyle  int
	PriceStyle    int
	QuantityStyle int
	LabelStyle    int
	BaseStyle     int
	WarningStyle  int
}

// ExcelFormatter writes the workbook sheets
type ExcelFormatter interface {
	WriteOrdersSheet(fx *excelize.File, sheet string, rep Report, styles ExcelStyles) error
	WriteSummarySheet(fx *excelize.File, sheet string, rep Report, styles ExcelStyles) error
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	OutputDirectory string
	PlainTables     bool
}
