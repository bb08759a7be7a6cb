package errortypes

import (
	"fmt"
	"strings"
)

// AggregateErrors represents the failures of a batch of independent decodes.
type AggregateErrors struct {
	Message string
	Errors  []error
}

// NewAggregateErrors builds a AggregateErrors struct.
func NewAggregateErrors(msg string, errs []error) AggregateErrors {
	return AggregateErrors{
		Message: msg,
		Errors:  errs,
	}
}

// Error lists every failure on its own line, numbered from 1.
func (e AggregateErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	var b strings.Builder
	noun := "errors"
	if len(e.Errors) == 1 {
		noun = "error"
	}
	fmt.Fprintf(&b, "%s (%d %s):\n", e.Message, len(e.Errors), noun)
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d: %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e AggregateErrors) Unwrap() []error {
	return e.Errors
}

// Codes returns the code of each failure, in order.
func (e AggregateErrors) Codes() []int {
	codes := make([]int, len(e.Errors))
	for i, err := range e.Errors {
		codes[i] = ReadCode(err)
	}
	return codes
}
