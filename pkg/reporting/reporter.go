package reporting

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// DefaultReporter dispatches a report to the writer for each format
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

func NewDefaultReporter() *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// WriterFor returns the ReportWriter for format
func (r *DefaultReporter) WriterFor(format Format) (ReportWriter, error) {
	switch format {
	case FormatTable:
		return r.console, nil
	case FormatJSON:
		return r.json, nil
	case FormatCSV:
		return r.csv, nil
	case FormatXLSX:
		return r.excel, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Write encodes rep in format to w
func (r *DefaultReporter) Write(w io.Writer, rep Report, format Format) error {
	rw, err := r.WriterFor(format)
	if err != nil {
		return err
	}
	return rw.Write(w, rep)
}

// Render encodes rep in format and returns the bytes
func (r *DefaultReporter) Render(rep Report, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf, rep, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders rep and writes it to path, creating parent directories
func (r *DefaultReporter) WriteFile(path string, rep Report, format Format) error {
	if err := r.paths.EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data, err := r.Render(rep, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReportingManager writes reports according to ReportingConfig
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
}

func NewReportingManager(config ReportingConfig) *ReportingManager {
	reporter := NewDefaultReporter()
	if config.PlainTables {
		reporter.console = NewPlainConsoleReporter()
	}
	return &ReportingManager{
		reporter: reporter,
		config:   config,
	}
}

func (m *ReportingManager) Reporter() *DefaultReporter {
	return m.reporter
}

// Print writes the console rendering of rep to w
func (m *ReportingManager) Print(w io.Writer, rep Report) error {
	return m.reporter.Write(w, rep, FormatTable)
}

// Export writes rep to path, or to a generated path under the output
// directory when path is empty. It returns the path written.
func (m *ReportingManager) Export(rep Report, format Format, path string) (string, error) {
	if path == "" {
		path = m.reporter.paths.OutputPath(m.config.OutputDirectory, rep, format)
	}
	if err := m.reporter.WriteFile(path, rep, format); err != nil {
		return "", err
	}
	return path, nil
}
