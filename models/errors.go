package models

import (
	"fmt"
	"time"
)

// EmptyInputError reports that an operation received no data to work on.
type EmptyInputError struct {
	Op string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: empty input", e.Op)
}

// InsufficientDataError reports that data was present but below the minimum
// needed for a valid model fit.
type InsufficientDataError struct {
	Got  int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: got %d periods, need at least %d", e.Got, e.Need)
}

// SchemaMismatchError reports a feature shape inconsistency between fit time
// and predict time.
type SchemaMismatchError struct {
	Want string
	Got  string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch: want %s, got %s", e.Want, e.Got)
}

// AssumptionOutOfRangeError reports a scenario input outside its configured
// bounds. Values are never clamped silently.
type AssumptionOutOfRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *AssumptionOutOfRangeError) Error() string {
	return fmt.Sprintf("assumption %s=%.4f outside allowed range [%.2f, %.2f]", e.Field, e.Value, e.Min, e.Max)
}

// DivisionUndefinedError reports a zero denominator in a ratio computation.
type DivisionUndefinedError struct {
	Op     string
	Period Period
}

func (e *DivisionUndefinedError) Error() string {
	return fmt.Sprintf("%s: division undefined for period %s (zero denominator)", e.Op, e.Period)
}

// ComputationTimeoutError is imposed by a calling boundary that wrapped an
// engine call with a deadline; the engines themselves never time out.
type ComputationTimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *ComputationTimeoutError) Error() string {
	return fmt.Sprintf("%s: computation exceeded %s deadline", e.Op, e.Limit)
}
