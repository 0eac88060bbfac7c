package form

import (
	"errors"

	"github.com/ducminhle1904/dca-calculator/internal/calculator"
)

// ErrLongOnly is returned by TogglePosition in the manual variant
var ErrLongOnly = errors.New("position toggle is only available in the derived variant")

// Session is one user's calculator form: current inputs plus the last
// successful result.
//
//   - Submit replaces the result on success and leaves it untouched on failure.
//   - TogglePosition flips long/short and clears the result, keeping inputs.
//     The manual variant is long-only and refuses to toggle.
//   - Clear resets inputs to defaults except the capital field and clears the result.
//
// A Session is not safe for concurrent use.
type Session struct {
	engine   *calculator.Engine
	variant  calculator.Variant
	defaults Input
	input    Input
	result   *calculator.CalculationResult
}

// NewSession starts a form at defaults
func NewSession(engine *calculator.Engine, variant calculator.Variant, defaults Input) *Session {
	if engine == nil {
		engine = calculator.NewEngine(calculator.DefaultOptions())
	}
	return &Session{
		engine:   engine,
		variant:  variant,
		defaults: defaults,
		input:    defaults,
	}
}

func (s *Session) Input() Input {
	return s.input
}

func (s *Session) Variant() calculator.Variant {
	return s.variant
}

func (s *Session) PositionType() calculator.PositionType {
	return s.input.PositionType()
}

// Result returns the current result, nil when there is none
func (s *Session) Result() *calculator.CalculationResult {
	return s.result
}

// Set updates one field. The current result stays until the next submit.
func (s *Session) Set(field, value string) error {
	in, err := s.input.With(field, value)
	if err != nil {
		return err
	}
	s.input = in
	return nil
}

// SetInput replaces all fields at once
func (s *Session) SetInput(in Input) {
	s.input = in
}

// Submit collects the inputs and computes. The previous result is kept when
// validation fails.
func (s *Session) Submit() (*calculator.CalculationResult, error) {
	params, err := Collect(s.input, s.variant)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Compute(params)
	if err != nil {
		return nil, err
	}

	s.result = res
	return res, nil
}

// TogglePosition switches between long and short and drops the result
func (s *Session) TogglePosition() (calculator.PositionType, error) {
	if s.variant != calculator.VariantDerivedRisk {
		return s.input.PositionType(), ErrLongOnly
	}
	next := s.input.PositionType().Opposite()
	s.input.Short = next == calculator.PositionShort
	s.result = nil
	return next, nil
}

// Clear resets the form, preserving the capital field
func (s *Session) Clear() {
	capital := s.input.AvailableAmount
	s.input = s.defaults
	s.input.AvailableAmount = capital
	s.result = nil
}
