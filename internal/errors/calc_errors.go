package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a calculation failure. Every kind is a user input problem;
// none of them is fatal or retryable.
type Kind string

const (
	KindMissingOrInvalidField     Kind = "MISSING_OR_INVALID_FIELD"
	KindInvalidPositionCount      Kind = "INVALID_POSITION_COUNT"
	KindInvalidStopLoss           Kind = "INVALID_STOP_LOSS"
	KindInvalidPercentageSchedule Kind = "INVALID_PERCENTAGE_SCHEDULE"
	KindNonPositiveRiskDistance   Kind = "NON_POSITIVE_RISK_DISTANCE"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrMissingOrInvalidField     = &CalcError{Kind: KindMissingOrInvalidField}
	ErrInvalidPositionCount      = &CalcError{Kind: KindInvalidPositionCount}
	ErrInvalidStopLoss           = &CalcError{Kind: KindInvalidStopLoss}
	ErrInvalidPercentageSchedule = &CalcError{Kind: KindInvalidPercentageSchedule}
	ErrNonPositiveRiskDistance   = &CalcError{Kind: KindNonPositiveRiskDistance}
)

// CalcError is a validation failure with enough context to tell the user
// which rule was violated.
type CalcError struct {
	Kind    Kind
	Field   string
	Message string
	Context map[string]interface{}
}

// Error implements the error interface
func (e *CalcError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Is reports whether target is a CalcError of the same kind. A target with a
// field set only matches errors for that field.
func (e *CalcError) Is(target error) bool {
	t, ok := target.(*CalcError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// WithContext adds context information to the error
func (e *CalcError) WithContext(key string, value interface{}) *CalcError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// UserMessage returns the message without the kind prefix, suitable for
// showing next to a form.
func (e *CalcError) UserMessage() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// KindOf returns the kind of a CalcError anywhere in err's chain, or "".
func KindOf(err error) Kind {
	var ce *CalcError
	if stderrors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// AsCalcError extracts a CalcError from err's chain.
func AsCalcError(err error) (*CalcError, bool) {
	var ce *CalcError
	ok := stderrors.As(err, &ce)
	return ce, ok
}

func newCalcError(kind Kind, field, message string) *CalcError {
	return &CalcError{
		Kind:    kind,
		Field:   field,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// NewMissingField reports a required field that is empty or not a number.
func NewMissingField(field, raw string) *CalcError {
	msg := fmt.Sprintf("%s is required and must be a valid number", field)
	if raw != "" {
		msg = fmt.Sprintf("%s must be a valid number, got: %q", field, raw)
	}
	return newCalcError(KindMissingOrInvalidField, field, msg).WithContext("raw", raw)
}

// NewInvalidField reports a numeric field whose value is out of its domain.
func NewInvalidField(field string, value float64, reason string) *CalcError {
	return newCalcError(KindMissingOrInvalidField, field,
		fmt.Sprintf("%s %s, got: %g", field, reason, value)).WithContext("value", value)
}

func NewInvalidPositionCount(positions int) *CalcError {
	return newCalcError(KindInvalidPositionCount, "numberOfPositions",
		fmt.Sprintf("Number of Positions must be at least 1, got: %d", positions)).
		WithContext("actual", positions)
}

// NewInvalidStopLoss reports a stop-loss on the wrong side of the reference
// price. against names the reference ("First Buy Price", "Average Entry Price").
func NewInvalidStopLoss(positionType string, stopLoss, reference float64, against string) *CalcError {
	direction := "less"
	if positionType == "short" {
		direction = "greater"
	}
	return newCalcError(KindInvalidStopLoss, "stopLossPrice",
		fmt.Sprintf("Stop Loss Price must be %s than the %s for a %s position (stop %g, %s %g)",
			direction, against, positionType, stopLoss, against, reference)).
		WithContext("stop_loss", stopLoss).
		WithContext("reference", reference)
}

func NewScheduleLengthMismatch(expected, actual int) *CalcError {
	return newCalcError(KindInvalidPercentageSchedule, "buyPercentages",
		fmt.Sprintf("The number of buy percentages (%d) does not match the total buys (%d)", actual, expected)).
		WithContext("expected", expected).
		WithContext("actual", actual)
}

func NewScheduleSumMismatch(expected, actual float64) *CalcError {
	return newCalcError(KindInvalidPercentageSchedule, "buyPercentages",
		fmt.Sprintf("The sum of buy percentages must equal %g%%, got: %g%%", expected, actual)).
		WithContext("expected", expected).
		WithContext("actual", actual)
}

// NewInvalidPercentageEntry reports a single schedule entry that is negative
// or could not be parsed.
func NewInvalidPercentageEntry(index int, raw string) *CalcError {
	return newCalcError(KindInvalidPercentageSchedule, "buyPercentages",
		fmt.Sprintf("buy percentage #%d must be a non-negative number, got: %q", index+1, raw)).
		WithContext("index", index)
}

func NewNonPositiveRiskDistance(reference, stopLoss, distance float64) *CalcError {
	return newCalcError(KindNonPositiveRiskDistance, "stopLossPrice",
		fmt.Sprintf("stop loss %g does not bound risk against reference price %g (distance %g)",
			stopLoss, reference, distance)).
		WithContext("reference", reference).
		WithContext("stop_loss", stopLoss).
		WithContext("distance", distance)
}
