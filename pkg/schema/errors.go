package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a single field failure.
type ValidationError struct {
	Field  string
	Reason string
	Value  any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Field, e.Reason, e.Value)
}

// AggregateError collects every failure of one validation pass, in field order.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors flattens err into its field failures.
func ValidationErrors(err error) []*ValidationError {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		out := make([]*ValidationError, 0, len(aggr.Errors))
		for _, e := range aggr.Errors {
			var ve *ValidationError
			if errors.As(e, &ve) {
				out = append(out, ve)
			}
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return []*ValidationError{ve}
	}
	return nil
}
