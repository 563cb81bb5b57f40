package common

import (
	"fmt"
	"github.com/pkg/errors"
	"runtime"
	"strings"
)

type Stack *[]uintptr

// CaptureStack creates a new stack without the last three frames, because they are from the internal calls (e.g. to
// this function and the error constructor) and therefore irrelevant to the function creating the error.
func CaptureStack() Stack {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	var st = pcs[0:n]
	return &st
}

func PrintableStackTrace(stack Stack) string {
	if stack == nil {
		return ""
	}

	var sb strings.Builder

	for _, pc := range *stack {
		f := runtime.FuncForPC(pc)
		if f == nil {
			continue
		}
		file, line := f.FileLine(pc)
		sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", f.Name(), file, line))
	}

	return sb.String()
}

// ValidationError is returned when a geometry, an entity or a configuration value is rejected at construction time.
type ValidationError struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Value   any    `json:"value"`
	stack   Stack
}

func NewValidationError(field string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("Validation error: "+format, args...),
		Field:   field,
		Value:   value,
		stack:   CaptureStack(),
	}
}

// OutOfBoundsError creates a validation error for a numeric value outside the closed interval [min, max].
func OutOfBoundsError(field string, value float64, min float64, max float64) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("Validation error: %s was %v, but should be between %v and %v", field, value, min, max),
		Field:   field,
		Value:   value,
		stack:   CaptureStack(),
	}
}

func (e *ValidationError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s\n%s", e.Error(), PrintableStackTrace(e.stack))
			return
		}
		fmt.Fprintf(s, "%s", e.Error())
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// QueryError is returned when a query cannot be evaluated, e.g. because a key is not comparable or a regex is invalid.
type QueryError struct {
	Message   string `json:"message"`
	Operation string `json:"operation"`
	cause     error
	stack     Stack
}

func NewQueryError(operation string, format string, args ...any) *QueryError {
	return &QueryError{
		Message:   fmt.Sprintf("Query error in %s: %s", operation, fmt.Sprintf(format, args...)),
		Operation: operation,
		stack:     CaptureStack(),
	}
}

// WrapQueryError creates a query error keeping the given error as cause, e.g. the error of the regex compiler.
func WrapQueryError(cause error, operation string, format string, args ...any) *QueryError {
	return &QueryError{
		Message:   fmt.Sprintf("Query error in %s: %s: %s", operation, fmt.Sprintf(format, args...), cause.Error()),
		Operation: operation,
		cause:     cause,
		stack:     CaptureStack(),
	}
}

func (e *QueryError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s\n%s", e.Error(), PrintableStackTrace(e.stack))
			return
		}
		fmt.Fprintf(s, "%s", e.Error())
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	}
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Cause() error {
	return e.cause
}

func (e *QueryError) Unwrap() error {
	return e.cause
}

// IsValidationError returns true when the given error or one of the errors it wraps is a ValidationError.
func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// IsQueryError returns true when the given error or one of the errors it wraps is a QueryError.
func IsQueryError(err error) bool {
	var queryError *QueryError
	return errors.As(err, &queryError)
}
