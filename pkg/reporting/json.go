package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
	"github.com/ducminhle1904/dca-calculator/internal/leverage"
)

// JSONReport is the document written by DefaultJSONFormatter
type JSONReport struct {
	ID          string                   `json:"id,omitempty"`
	GeneratedAt time.Time                `json:"generated_at"`
	Result      calculator.DisplayResult `json:"result"`
	Assessment  *leverage.Assessment     `json:"assessment,omitempty"`
}

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// Format returns the indented JSON document for rep
func (f *DefaultJSONFormatter) Format(rep Report) ([]byte, error) {
	if rep.Result == nil {
		return nil, fmt.Errorf("report has no result")
	}
	doc := JSONReport{
		ID:          rep.ID,
		GeneratedAt: rep.GeneratedAt.UTC(),
		Result:      rep.Result.Display(),
		Assessment:  rep.Assessment,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

func (f *DefaultJSONFormatter) Write(w io.Writer, rep Report) error {
	data, err := f.Format(rep)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
