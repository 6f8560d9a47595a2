// Package valerr defines the error taxonomy shared by every valuation component.
// Callers match kinds with errors.Is against the sentinels and inspect details
// with errors.As against the carrier types.
package valerr

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidInput               = errors.New("invalid input")
	ErrDivergentTerminalValue     = errors.New("divergent terminal value")
	ErrLookupTableEmpty           = errors.New("lookup table empty")
	ErrNumericOverflow            = errors.New("numeric overflow")
	ErrAggregateSimulationFailure = errors.New("aggregate simulation failure")
)

// InputError names the offending field of a rejected input.
type InputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Invalid is shorthand for building an *InputError.
func Invalid(field string, value any, reason string) error {
	return &InputError{Field: field, Value: value, Reason: reason}
}

// DivergenceError is returned when the discount rate does not exceed terminal growth.
type DivergenceError struct {
	DiscountRate   float64
	TerminalGrowth float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("terminal value diverges: discount rate %.4f <= terminal growth %.4f",
		e.DiscountRate, e.TerminalGrowth)
}

func (e *DivergenceError) Unwrap() error { return ErrDivergentTerminalValue }

// NumericError reports a non-finite or undefined intermediate result.
type NumericError struct {
	Op    string
	Value float64
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("numeric overflow in %s: %v", e.Op, e.Value)
}

func (e *NumericError) Unwrap() error { return ErrNumericOverflow }

// SimulationError is returned when too many Monte Carlo samples fail.
type SimulationError struct {
	Failed    int
	Total     int
	Threshold float64
	Last      error
}

func (e *SimulationError) Error() string {
	msg := fmt.Sprintf("%d of %d samples failed (threshold %.0f%%)",
		e.Failed, e.Total, e.Threshold*100)
	if e.Last != nil {
		msg += ": last error: " + e.Last.Error()
	}
	return msg
}

func (e *SimulationError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrAggregateSimulationFailure}
	}
	return []error{ErrAggregateSimulationFailure, e.Last}
}

// CheckFinite returns a *NumericError when v is NaN or infinite.
func CheckFinite(op string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NumericError{Op: op, Value: v}
	}
	return nil
}
